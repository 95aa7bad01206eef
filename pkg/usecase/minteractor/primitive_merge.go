// 指示: miu200521358
package minteractor

import (
	"maps"

	"github.com/miu200521358/mu_vrm_reducer/pkg/domain/model"
)

// CombinePrimitives は名前に部分一致する最初のメッシュについて、
// 同じ材質が連続するプリミティブを1つに統合する。該当メッシュがなければそのまま返す。
func CombinePrimitives(graph *model.Graph, meshName string) (*model.Graph, error) {
	g, err := graph.Clone()
	if err != nil {
		return nil, err
	}
	meshIndexes := g.FindMeshes(meshName)
	if len(meshIndexes) == 0 {
		logReduceDebug("プリミティブ統合対象メッシュなし: %s", meshName)
		return g, nil
	}
	mesh := &g.Meshes[meshIndexes[0]]

	merged := make([]model.Primitive, 0, len(mesh.Primitives))
	for _, run := range groupPrimitivesByMaterial(mesh.Primitives) {
		primitive, err := mergePrimitiveRun(g, run)
		if err != nil {
			return nil, err
		}
		merged = append(merged, primitive)
	}
	logReduceDebug("プリミティブ統合: mesh=%s %d -> %d", mesh.Name, len(mesh.Primitives), len(merged))
	mesh.Primitives = merged
	return g, nil
}

// groupPrimitivesByMaterial は同じ材質が連続する区間ごとにプリミティブをまとめる。
func groupPrimitivesByMaterial(primitives []model.Primitive) [][]model.Primitive {
	runs := [][]model.Primitive{}
	for _, primitive := range primitives {
		last := len(runs) - 1
		if last >= 0 && sameMaterial(runs[last][0].Material, primitive.Material) {
			runs[last] = append(runs[last], primitive)
			continue
		}
		runs = append(runs, []model.Primitive{primitive})
	}
	return runs
}

// sameMaterial は材質参照が等しいか判定する。
func sameMaterial(a *int, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// mergePrimitiveRun は連続区間のインデックスを連結した新しいアクセサーとbufferViewを作り、
// 先頭プリミティブの属性と材質を引き継いだプリミティブを返す。
func mergePrimitiveRun(g *model.Graph, run []model.Primitive) (model.Primitive, error) {
	head := run[0]
	accessors := make([]model.Accessor, len(run))
	views := make([]model.BufferView, len(run))
	for i, primitive := range run {
		accessor, view, err := indexAccessorOf(g, primitive)
		if err != nil {
			return model.Primitive{}, err
		}
		accessors[i] = accessor
		views[i] = view
	}
	if err := validatePrimitiveRun(run, accessors, views); err != nil {
		return model.Primitive{}, err
	}

	data := make([]byte, 0)
	count := 0
	for i := range run {
		data = append(data, views[i].Data...)
		count += accessors[i].Count
	}

	headAccessor := accessors[0]
	headView := views[0]
	viewIndex := g.AppendBufferView(model.BufferView{
		Name:       headView.Name,
		Data:       data,
		ByteStride: headView.ByteStride,
		Target:     headView.Target,
	})
	accessorIndex := g.AppendAccessor(model.Accessor{
		Name:          headAccessor.Name,
		BufferView:    model.Ptr(viewIndex),
		ByteOffset:    headAccessor.ByteOffset,
		ComponentType: headAccessor.ComponentType,
		Normalized:    headAccessor.Normalized,
		Count:         count,
		Type:          headAccessor.Type,
	})

	merged := model.Primitive{
		Attributes: maps.Clone(head.Attributes),
		Indices:    model.Ptr(accessorIndex),
		Material:   head.Material,
		Mode:       head.Mode,
		Targets:    head.Targets,
		Extras:     head.Extras,
	}
	if head.Material != nil {
		merged.Material = model.Ptr(*head.Material)
	}
	return merged, nil
}

// indexAccessorOf はプリミティブのインデックスアクセサーとそのbufferViewを返す。
func indexAccessorOf(g *model.Graph, primitive model.Primitive) (model.Accessor, model.BufferView, error) {
	if primitive.Indices == nil {
		return model.Accessor{}, model.BufferView{}, model.NewPreconditionError("インデックスを持たないプリミティブは統合できません")
	}
	accessorIndex := *primitive.Indices
	if accessorIndex < 0 || accessorIndex >= len(g.Accessors) {
		return model.Accessor{}, model.BufferView{}, model.NewReferenceError("accessor", "", accessorIndex)
	}
	accessor := g.Accessors[accessorIndex]
	if accessor.BufferView == nil || accessor.Sparse != nil {
		return model.Accessor{}, model.BufferView{}, model.NewPreconditionError("accessor[%d] は密なbufferView参照ではありません", accessorIndex)
	}
	viewIndex := *accessor.BufferView
	if viewIndex < 0 || viewIndex >= len(g.BufferViews) {
		return model.Accessor{}, model.BufferView{}, model.NewReferenceError("bufferView", "", viewIndex)
	}
	return accessor, g.BufferViews[viewIndex], nil
}

// validatePrimitiveRun は連結結果が元のインデックス列と一致する配置か検証する。
// 2つ目以降の断片はbufferView先頭から始まり、最後以外の断片はbufferView末尾で終わる必要がある。
func validatePrimitiveRun(run []model.Primitive, accessors []model.Accessor, views []model.BufferView) error {
	head := accessors[0]
	for i, accessor := range accessors {
		if accessor.ComponentType != head.ComponentType || accessor.Type != head.Type {
			return model.NewPreconditionError("統合対象のインデックス型が一致しません: fragment=%d", i)
		}
		if !maps.Equal(run[i].Attributes, run[0].Attributes) {
			return model.NewPreconditionError("統合対象の頂点属性が一致しません: fragment=%d", i)
		}
		if i > 0 && accessor.ByteOffset != 0 {
			return model.NewPreconditionError("統合対象の断片がbufferView先頭から始まっていません: fragment=%d offset=%d", i, accessor.ByteOffset)
		}
		end := accessor.ByteOffset + accessor.Count*accessor.ElementSize()
		if end > views[i].ByteLength() {
			return model.NewPreconditionError("統合対象の断片がbufferView範囲外です: fragment=%d end=%d length=%d", i, end, views[i].ByteLength())
		}
		if i < len(accessors)-1 && end != views[i].ByteLength() {
			return model.NewPreconditionError("統合対象の断片がbufferView末尾で終わっていません: fragment=%d end=%d length=%d", i, end, views[i].ByteLength())
		}
		if views[i].ByteStride != views[0].ByteStride {
			return model.NewPreconditionError("統合対象のbufferView間隔が一致しません: fragment=%d", i)
		}
	}
	return nil
}
