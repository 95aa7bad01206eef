// 指示: miu200521358
package model

// MeshStat はメッシュごとのプリミティブ数を表す。
type MeshStat struct {
	Name       string
	Primitives int
}

// GraphStat はモデルの要素数集計を表す。
type GraphStat struct {
	Materials   int
	Textures    int
	Images      int
	Accessors   int
	BufferViews int
	Meshes      []MeshStat
	Primitives  int
	ImageBytes  int
}

// Stat はグラフの要素数を集計する。
func (g *Graph) Stat() GraphStat {
	stat := GraphStat{
		Materials:   len(g.Materials),
		Textures:    len(g.Textures),
		Images:      len(g.Images),
		Accessors:   len(g.Accessors),
		BufferViews: len(g.BufferViews),
		Meshes:      make([]MeshStat, 0, len(g.Meshes)),
	}
	for _, mesh := range g.Meshes {
		stat.Meshes = append(stat.Meshes, MeshStat{Name: mesh.Name, Primitives: len(mesh.Primitives)})
		stat.Primitives += len(mesh.Primitives)
	}
	for _, image := range g.Images {
		if image.BufferView == nil || *image.BufferView < 0 || *image.BufferView >= len(g.BufferViews) {
			continue
		}
		stat.ImageBytes += len(g.BufferViews[*image.BufferView].Data)
	}
	return stat
}
