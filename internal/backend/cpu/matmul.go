package cpu

import (
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas32"
	"gonum.org/v1/gonum/blas/blas64"

	"github.com/strand-ml/strand/internal/dispatch"
	"github.com/strand-ml/strand/internal/parallel"
	"github.com/strand-ml/strand/internal/tensor"
)

// layout describes a rank-2 view as a BLAS general matrix: rows x cols with
// leading dimension stride, optionally to be read transposed.
type layout struct {
	rows, cols, stride int
	trans              blas.Transpose
	start, span        int
}

// gemmLayout maps v onto BLAS storage without copying when v is row-major
// (possibly padded) or the transpose of a row-major matrix.
func gemmLayout(v *tensor.RawTensor) (layout, bool) {
	r, c := v.Shape()[0], v.Shape()[1]
	s0, s1 := v.Strides()[0], v.Strides()[1]

	if c == 1 || s1 == 1 {
		ld := s0
		if r == 1 {
			ld = max(c, 1)
		}
		if ld >= max(c, 1) {
			return layout{rows: r, cols: c, stride: ld, trans: blas.NoTrans, start: v.Offset(), span: (r-1)*ld + c}, true
		}
	}
	if r == 1 || s0 == 1 {
		ld := s1
		if c == 1 {
			ld = max(r, 1)
		}
		if ld >= max(r, 1) {
			return layout{rows: c, cols: r, stride: ld, trans: blas.Trans, start: v.Offset(), span: (c-1)*ld + r}, true
		}
	}
	return layout{}, false
}

// gemmOperand returns a BLAS-compatible view of v, copying it into row-major
// storage when its strides cannot be expressed directly. release must be
// called when the operand is no longer needed.
func gemmOperand(v *tensor.RawTensor) (*tensor.RawTensor, layout, func()) {
	if l, ok := gemmLayout(v); ok {
		return v, l, func() {}
	}
	log.Trace().Stringer("shape", v.Shape()).Ints("strides", v.Strides()).Msg("matmul: copying strided operand")
	c, err := v.Copy()
	if err != nil {
		panic(err)
	}
	l, _ := gemmLayout(c)
	return c, l, c.Release
}

// gemmKernel multiplies float32 or float64 operands with gonum BLAS. The
// output is computed into a contiguous buffer and copied back if dst is a
// strided view.
func gemmKernel[T float32 | float64](cfg parallel.Config) dispatch.MatMulKernel {
	return func(dst, a, b *tensor.RawTensor) {
		m, k, n := a.Shape()[0], a.Shape()[1], b.Shape()[1]
		if m == 0 || n == 0 {
			return
		}
		out := dst
		if !dst.IsContiguous() {
			var err error
			out, err = tensor.NewRaw(dst.Shape(), dst.DType(), dst.Device())
			if err != nil {
				panic(err)
			}
			defer out.Release()
		}
		cs := tensor.Elems[T](out.Storage())[out.Offset() : out.Offset()+m*n]

		if k == 0 {
			clear(cs)
		} else {
			av, al, releaseA := gemmOperand(a)
			defer releaseA()
			bv, bl, releaseB := gemmOperand(b)
			defer releaseB()
			as := tensor.Elems[T](av.Storage())[al.start : al.start+al.span]
			bs := tensor.Elems[T](bv.Storage())[bl.start : bl.start+bl.span]
			gemm(cs, as, bs, al, bl, m, n)
		}

		if out != dst {
			unaryKernel(cfg, func(x T) T { return x })(dst, out)
		}
	}
}

func gemm[T float32 | float64](c, a, b []T, al, bl layout, m, n int) {
	switch c := any(c).(type) {
	case []float64:
		blas64.Gemm(al.trans, bl.trans, 1,
			blas64.General{Rows: al.rows, Cols: al.cols, Stride: al.stride, Data: any(a).([]float64)},
			blas64.General{Rows: bl.rows, Cols: bl.cols, Stride: bl.stride, Data: any(b).([]float64)},
			0,
			blas64.General{Rows: m, Cols: n, Stride: n, Data: c})
	case []float32:
		blas32.Gemm(al.trans, bl.trans, 1,
			blas32.General{Rows: al.rows, Cols: al.cols, Stride: al.stride, Data: any(a).([]float32)},
			blas32.General{Rows: bl.rows, Cols: bl.cols, Stride: bl.stride, Data: any(b).([]float32)},
			0,
			blas32.General{Rows: m, Cols: n, Stride: n, Data: c})
	}
}

// naiveMatMul handles integer dtypes with a row-parallel triple loop.
func naiveMatMul[T number](cfg parallel.Config) dispatch.MatMulKernel {
	return func(dst, a, b *tensor.RawTensor) {
		m, k, n := a.Shape()[0], a.Shape()[1], b.Shape()[1]
		ds := tensor.Elems[T](dst.Storage())
		as := tensor.Elems[T](a.Storage())
		bs := tensor.Elems[T](b.Storage())
		aS, bS, dS := a.Strides(), b.Strides(), dst.Strides()

		parallel.For(m, func(i int) {
			for j := 0; j < n; j++ {
				var acc T
				ai := a.Offset() + i*aS[0]
				bj := b.Offset() + j*bS[1]
				for p := 0; p < k; p++ {
					acc += as[ai+p*aS[1]] * bs[bj+p*bS[0]]
				}
				ds[dst.Offset()+i*dS[0]+j*dS[1]] = acc
			}
		}, cfg)
	}
}
