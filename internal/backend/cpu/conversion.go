package cpu

import (
	"github.com/x448/float16"

	"github.com/strand-ml/strand/internal/dispatch"
	"github.com/strand-ml/strand/internal/parallel"
	"github.com/strand-ml/strand/internal/tensor"
)

// castKernel converts between any two dtypes. Conversions between float16
// and float32 are exact in the widening direction and use typed loops; the
// rest go through float64, truncating toward zero for integer targets.
func castKernel(cfg parallel.Config) dispatch.CastKernel {
	return func(dst, src *tensor.RawTensor) {
		switch {
		case src.DType() == tensor.Float16 && dst.DType() == tensor.Float32:
			widenInto(dst, src, cfg)
			return
		case src.DType() == tensor.Float32 && dst.DType() == tensor.Float16:
			narrowInto(dst, src, cfg)
			return
		}
		ds, ss := dst.Storage(), src.Storage()
		parallel.ForRange(dst.NumElements(), func(start, end int) {
			c := viewCursor(start, dst, src)
			for i := start; i < end; i++ {
				ds.Store(c.offs[0], ss.Load(c.offs[1]))
				c.next()
			}
		}, cfg)
	}
}

func widenInto(dst, src *tensor.RawTensor, cfg parallel.Config) {
	fs := tensor.Elems[float32](dst.Storage())
	hs := tensor.Elems[float16.Float16](src.Storage())
	parallel.ForRange(dst.NumElements(), func(start, end int) {
		c := viewCursor(start, dst, src)
		for i := start; i < end; i++ {
			fs[c.offs[0]] = hs[c.offs[1]].Float32()
			c.next()
		}
	}, cfg)
}

func narrowInto(dst, src *tensor.RawTensor, cfg parallel.Config) {
	hs := tensor.Elems[float16.Float16](dst.Storage())
	fs := tensor.Elems[float32](src.Storage())
	parallel.ForRange(dst.NumElements(), func(start, end int) {
		c := viewCursor(start, dst, src)
		for i := start; i < end; i++ {
			hs[c.offs[0]] = float16.Fromfloat32(fs[c.offs[1]])
			c.next()
		}
	}, cfg)
}

// widen returns a contiguous float32 copy of a float16 tensor.
func widen(src *tensor.RawTensor, cfg parallel.Config) *tensor.RawTensor {
	out := alloc32(src.Shape())
	widenInto(out, src, cfg)
	return out
}

func alloc32(shape tensor.Shape) *tensor.RawTensor {
	out, err := tensor.NewRaw(shape, tensor.Float32, tensor.CPU)
	if err != nil {
		panic(err)
	}
	return out
}
