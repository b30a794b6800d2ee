package autodiff

import (
	"fmt"
	"math"

	"github.com/strand-ml/strand/internal/dispatch"
	"github.com/strand-ml/strand/internal/tensor"
)

// ScalarFunc evaluates a scalar function of several tensors.
type ScalarFunc func(inputs []*tensor.RawTensor) (float64, error)

// BuildFunc records a scalar-valued computation on g.
type BuildFunc func(g *Graph, inputs []*Node) (*Node, error)

// GradientMismatchError reports an analytic gradient element that disagrees
// with its finite-difference estimate.
type GradientMismatchError struct {
	Input    int
	Index    int
	Analytic float64
	Numeric  float64
}

// Error implements the error interface.
func (e *GradientMismatchError) Error() string {
	return fmt.Sprintf("gradient mismatch at input %d element %d: analytic %g, numeric %g (diff %g)",
		e.Input, e.Index, e.Analytic, e.Numeric, math.Abs(e.Analytic-e.Numeric))
}

// NumericGradient estimates the gradient of f at inputs with central
// differences (f(x+eps) - f(x-eps)) / 2eps, one element at a time. f sees
// float64 copies of the inputs whatever their dtype, so the step is not lost
// to float16 or float32 rounding. Inputs are not modified. Results are
// float64 tensors shaped like the inputs.
func NumericGradient(f ScalarFunc, inputs []*tensor.RawTensor, eps float64) ([]*tensor.RawTensor, error) {
	work := make([]*tensor.RawTensor, len(inputs))
	for i, in := range inputs {
		c, err := tensor.FromFloat64s(in.Float64s(), in.Shape(), tensor.Float64, in.Device())
		if err != nil {
			releaseAll(work)
			return nil, err
		}
		work[i] = c
	}
	defer releaseAll(work)

	grads := make([]*tensor.RawTensor, len(inputs))
	for i, w := range work {
		offsets := make([]int, 0, w.NumElements())
		w.Walk(func(off int) { offsets = append(offsets, off) })

		est := make([]float64, len(offsets))
		st := w.Storage()
		for j, off := range offsets {
			orig := st.Load(off)

			st.Store(off, orig+eps)
			plus, err := f(work)
			if err != nil {
				releaseAll(grads)
				return nil, err
			}
			st.Store(off, orig-eps)
			minus, err := f(work)
			if err != nil {
				releaseAll(grads)
				return nil, err
			}
			st.Store(off, orig)

			est[j] = (plus - minus) / (2 * eps)
		}

		g, err := tensor.FromFloat64s(est, w.Shape(), tensor.Float64, w.Device())
		if err != nil {
			releaseAll(grads)
			return nil, err
		}
		grads[i] = g
	}
	return grads, nil
}

// CheckGradients records build on fresh leaves for inputs, runs Backward and
// compares each leaf gradient with NumericGradient. An element passes when
// |analytic - numeric| <= tol * max(1, |numeric|). The numeric side evaluates
// build on float64 inputs, so tol must cover the rounding of the inputs' own
// dtype in the analytic pass.
func CheckGradients(d *dispatch.Dispatcher, build BuildFunc, inputs []*tensor.RawTensor, eps, tol float64) error {
	g := New(d)
	leaves := make([]*Node, len(inputs))
	for i, in := range inputs {
		leaves[i] = g.Track(in, true)
	}
	out, err := build(g, leaves)
	if err != nil {
		return err
	}
	if err := g.Backward(out); err != nil {
		return err
	}

	f := func(xs []*tensor.RawTensor) (float64, error) {
		eval := New(d)
		eval.SetGradEnabled(false)
		nodes := make([]*Node, len(xs))
		for i, x := range xs {
			nodes[i] = eval.Constant(x)
		}
		y, err := build(eval, nodes)
		if err != nil {
			return 0, err
		}
		return y.Value().Item(), nil
	}
	numeric, err := NumericGradient(f, inputs, eps)
	if err != nil {
		return err
	}
	defer releaseAll(numeric)

	for i, leaf := range leaves {
		want := numeric[i].Float64s()
		got := make([]float64, len(want))
		if leaf.Grad() != nil {
			got = leaf.Grad().Float64s()
		}
		for j := range want {
			if math.Abs(got[j]-want[j]) > tol*math.Max(1, math.Abs(want[j])) {
				return &GradientMismatchError{Input: i, Index: j, Analytic: got[j], Numeric: want[j]}
			}
		}
	}
	return nil
}
