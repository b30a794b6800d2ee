package cpu

import (
	"github.com/strand-ml/strand/internal/dispatch"
	"github.com/strand-ml/strand/internal/parallel"
	"github.com/strand-ml/strand/internal/tensor"
)

// number covers the dtypes with native Go arithmetic. Float16 kernels bridge
// through float32.
type number interface {
	~float32 | ~float64 | ~int32 | ~int64 | ~uint8
}

type float interface {
	~float32 | ~float64
}

type signed interface {
	~float32 | ~float64 | ~int32 | ~int64
}

// binaryKernel lifts fn to a strided kernel. Contiguous operands take a flat
// loop; anything else walks with a cursor. Both split the output range with
// parallel.ForRange, so each element is written by exactly one worker.
func binaryKernel[T number](cfg parallel.Config, fn func(a, b T) T) dispatch.BinaryKernel {
	return func(dst, a, b *tensor.RawTensor) {
		ds := tensor.Elems[T](dst.Storage())
		as := tensor.Elems[T](a.Storage())
		bs := tensor.Elems[T](b.Storage())
		n := dst.NumElements()

		if allContiguous(dst, a, b) {
			od, oa, ob := dst.Offset(), a.Offset(), b.Offset()
			parallel.ForRange(n, func(start, end int) {
				d := ds[od+start : od+end]
				x := as[oa+start : oa+end]
				y := bs[ob+start : ob+end]
				for i := range d {
					d[i] = fn(x[i], y[i])
				}
			}, cfg)
			return
		}

		parallel.ForRange(n, func(start, end int) {
			c := viewCursor(start, dst, a, b)
			for i := start; i < end; i++ {
				ds[c.offs[0]] = fn(as[c.offs[1]], bs[c.offs[2]])
				c.next()
			}
		}, cfg)
	}
}

func unaryKernel[T number](cfg parallel.Config, fn func(x T) T) dispatch.UnaryKernel {
	return func(dst, src *tensor.RawTensor) {
		ds := tensor.Elems[T](dst.Storage())
		ss := tensor.Elems[T](src.Storage())
		n := dst.NumElements()

		if allContiguous(dst, src) {
			od, so := dst.Offset(), src.Offset()
			parallel.ForRange(n, func(start, end int) {
				d := ds[od+start : od+end]
				x := ss[so+start : so+end]
				for i := range d {
					d[i] = fn(x[i])
				}
			}, cfg)
			return
		}

		parallel.ForRange(n, func(start, end int) {
			c := viewCursor(start, dst, src)
			for i := start; i < end; i++ {
				ds[c.offs[0]] = fn(ss[c.offs[1]])
				c.next()
			}
		}, cfg)
	}
}

// scalarKernel binds the scalar per call and reuses the unary loops.
func scalarKernel[T number](cfg parallel.Config, fn func(x, s T) T) dispatch.ScalarKernel {
	return func(dst, src *tensor.RawTensor, s float64) {
		sv := T(s)
		unaryKernel(cfg, func(x T) T { return fn(x, sv) })(dst, src)
	}
}

// floatScalarKernel keeps the scalar in float64 for operations such as pow
// whose exponent should not be rounded to the element type.
func floatScalarKernel[T float](cfg parallel.Config, fn func(x T, s float64) T) dispatch.ScalarKernel {
	return func(dst, src *tensor.RawTensor, s float64) {
		unaryKernel(cfg, func(x T) T { return fn(x, s) })(dst, src)
	}
}

func boolTo[T number](b bool) T {
	if b {
		return 1
	}
	return 0
}
