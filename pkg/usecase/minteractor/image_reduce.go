// 指示: miu200521358
package minteractor

import (
	"context"
	"image"
	"runtime"
	"slices"

	"github.com/miu200521358/mu_vrm_reducer/pkg/domain/model"
	"github.com/miu200521358/mu_vrm_reducer/pkg/usecase/port/moutput"
	"golang.org/x/sync/errgroup"
)

// imageReduceTask は1つのbufferViewに対する縮小処理の結果を表す。
type imageReduceTask struct {
	viewIndex int
	resized   []byte
	from      image.Point
	to        image.Point
}

// ReduceImages は上限サイズを超える埋め込み画像を縮小してPNGへ置き換える。
// 上限内の画像はバイト列を変更しない。bufferViewを持たない画像は対象外。
func ReduceImages(
	ctx context.Context,
	graph *model.Graph,
	maxSize image.Point,
	codec moutput.IImageCodec,
) (*model.Graph, error) {
	g, err := graph.Clone()
	if err != nil {
		return nil, err
	}
	if maxSize.X <= 0 && maxSize.Y <= 0 {
		return g, nil
	}
	if codec == nil {
		return nil, model.NewPreconditionError("画像コーデックが設定されていません")
	}

	viewIndexes := []int{}
	for i, img := range g.Images {
		if img.BufferView == nil {
			continue
		}
		viewIndex := *img.BufferView
		if viewIndex < 0 || viewIndex >= len(g.BufferViews) {
			return nil, model.NewReferenceError("bufferView", img.Name, i)
		}
		if !slices.Contains(viewIndexes, viewIndex) {
			viewIndexes = append(viewIndexes, viewIndex)
		}
	}

	tasks := make([]imageReduceTask, len(viewIndexes))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.NumCPU())
	for n, viewIndex := range viewIndexes {
		data := g.BufferViews[viewIndex].Data
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			task, err := reduceImageData(data, maxSize, codec)
			if err != nil {
				return err
			}
			task.viewIndex = viewIndex
			tasks[n] = task
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	for _, task := range tasks {
		if task.resized == nil {
			continue
		}
		g.BufferViews[task.viewIndex].Data = task.resized
		for i := range g.Images {
			if g.Images[i].BufferView != nil && *g.Images[i].BufferView == task.viewIndex {
				g.Images[i].MimeType = pngMimeType
			}
		}
		logReduceInfo("画像縮小: bufferView=%d %dx%d -> %dx%d", task.viewIndex, task.from.X, task.from.Y, task.to.X, task.to.Y)
	}
	return g, nil
}

// reduceImageData は画像が上限を超える場合だけ縮小したPNGを返す。
func reduceImageData(data []byte, maxSize image.Point, codec moutput.IImageCodec) (imageReduceTask, error) {
	cfg, _, err := codec.DecodeConfig(data)
	if err != nil {
		return imageReduceTask{}, err
	}
	from := image.Pt(cfg.Width, cfg.Height)
	to := atlasCanvasSize(from, maxSize)
	if to == from {
		return imageReduceTask{from: from, to: to}, nil
	}
	img, err := codec.Decode(data)
	if err != nil {
		return imageReduceTask{}, err
	}
	encoded, err := codec.EncodePNG(codec.Resample(img, to.X, to.Y))
	if err != nil {
		return imageReduceTask{}, err
	}
	return imageReduceTask{resized: encoded, from: from, to: to}, nil
}
