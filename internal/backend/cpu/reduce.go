package cpu

import (
	"github.com/strand-ml/strand/internal/dispatch"
	"github.com/strand-ml/strand/internal/parallel"
	"github.com/strand-ml/strand/internal/tensor"
)

// reduceKernel builds a reduction from an identity, a fold and an optional
// finish applied to each output with the number of folded elements.
//
// dst has src's rank with reduced axes set to 1. Every output folds its
// sources in row-major order of the reduced axes. The sequential path gets
// that order by walking src once and accumulating through a stride-0 view of
// dst; the parallel path gives each worker whole outputs and walks the
// reduced sub-space per output. Both perform the same operations in the same
// order, so results are bit-identical.
func reduceKernel[T number](cfg parallel.Config, init T, fold func(acc, x T) T, finish func(acc T, count int) T) dispatch.ReduceKernel {
	return func(dst, src *tensor.RawTensor) {
		outN := dst.NumElements()
		if outN == 0 {
			return
		}
		ds := tensor.Elems[T](dst.Storage())
		ss := tensor.Elems[T](src.Storage())

		srcShape, keep := src.Shape(), dst.Shape()
		var (
			inner        []int
			innerStrides []int
		)
		count := 1
		for i := range keep {
			if keep[i] == 1 && srcShape[i] != 1 {
				inner = append(inner, srcShape[i])
				innerStrides = append(innerStrides, src.Strides()[i])
				count *= srcShape[i]
			}
		}

		if cfg.Enabled && cfg.NumWorkers > 1 && outN >= 2*max(cfg.MinChunkSize, 1) {
			reduceParallel(ds, ss, dst, src, inner, innerStrides, count, cfg, init, fold, finish)
			return
		}
		reduceSequential(ds, ss, dst, src, init, fold)
		if finish != nil {
			c := viewCursor(0, dst)
			for i := 0; i < outN; i++ {
				ds[c.offs[0]] = finish(ds[c.offs[0]], count)
				c.next()
			}
		}
	}
}

func reduceSequential[T number](ds, ss []T, dst, src *tensor.RawTensor, init T, fold func(acc, x T) T) {
	c := viewCursor(0, dst)
	for i := 0; i < dst.NumElements(); i++ {
		ds[c.offs[0]] = init
		c.next()
	}

	n := src.NumElements()
	if n == 0 {
		return
	}
	srcShape := src.Shape()
	bcast := make([]int, len(srcShape))
	for i, s := range dst.Strides() {
		if dst.Shape()[i] == 1 && srcShape[i] != 1 {
			continue
		}
		bcast[i] = s
	}
	w := newCursor(srcShape, 0, []int{dst.Offset(), src.Offset()}, [][]int{bcast, src.Strides()})
	for i := 0; i < n; i++ {
		ds[w.offs[0]] = fold(ds[w.offs[0]], ss[w.offs[1]])
		w.next()
	}
}

func reduceParallel[T number](
	ds, ss []T,
	dst, src *tensor.RawTensor,
	inner, innerStrides []int,
	count int,
	cfg parallel.Config,
	init T,
	fold func(acc, x T) T,
	finish func(acc T, count int) T,
) {
	parallel.ForRange(dst.NumElements(), func(start, end int) {
		outer := newCursor(dst.Shape(), start, []int{dst.Offset(), src.Offset()}, [][]int{dst.Strides(), src.Strides()})
		for i := start; i < end; i++ {
			acc := init
			if count > 0 {
				in := newCursor(inner, 0, []int{outer.offs[1]}, [][]int{innerStrides})
				for j := 0; j < count; j++ {
					acc = fold(acc, ss[in.offs[0]])
					in.next()
				}
			}
			if finish != nil {
				acc = finish(acc, count)
			}
			ds[outer.offs[0]] = acc
			outer.next()
		}
	}, cfg)
}
