package cpu

import (
	"math"
	"testing"

	"github.com/strand-ml/strand/internal/dispatch"
	"github.com/strand-ml/strand/internal/tensor"
)

const epsilon = 1e-5

func TestUnaryFloat(t *testing.T) {
	d := newTestDispatcher()
	input := []float64{-2, -0.5, 0, 0.25, 1, 3}

	tests := []struct {
		op   dispatch.Op
		want func(float64) float64
	}{
		{dispatch.OpNeg, func(x float64) float64 { return -x }},
		{dispatch.OpAbs, math.Abs},
		{dispatch.OpExp, math.Exp},
		{dispatch.OpSin, math.Sin},
		{dispatch.OpCos, math.Cos},
		{dispatch.OpTanh, math.Tanh},
		{dispatch.OpSigmoid, func(x float64) float64 { return 1 / (1 + math.Exp(-x)) }},
		{dispatch.OpReLU, func(x float64) float64 { return math.Max(x, 0) }},
		{dispatch.OpStep, func(x float64) float64 {
			if x > 0 {
				return 1
			}
			return 0
		}},
	}

	for _, dt := range []tensor.DataType{tensor.Float32, tensor.Float64} {
		for _, tt := range tests {
			t.Run(string(tt.op)+"/"+dt.String(), func(t *testing.T) {
				x := mustFrom(t, input, tensor.Shape{2, 3}, dt)
				out, err := d.Unary(tt.op, x)
				if err != nil {
					t.Fatalf("%s: %v", tt.op, err)
				}
				if !out.Shape().Equal(x.Shape()) {
					t.Errorf("expected shape %v, got %v", x.Shape(), out.Shape())
				}
				for i, v := range out.Float64s() {
					if want := tt.want(input[i]); math.Abs(v-want) > epsilon {
						t.Errorf("%s(%g) = %g, expected %g", tt.op, input[i], v, want)
					}
				}
			})
		}
	}
}

func TestLogSqrt(t *testing.T) {
	d := newTestDispatcher()
	input := []float64{0.5, 1, 4, 9}
	x := mustFrom(t, input, tensor.Shape{4}, tensor.Float64)

	lg, err := d.Log(x)
	if err != nil {
		t.Fatal(err)
	}
	sq, err := d.Sqrt(x)
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range input {
		if got := lg.At(i); math.Abs(got-math.Log(v)) > epsilon {
			t.Errorf("log(%g) = %g", v, got)
		}
		if got := sq.At(i); math.Abs(got-math.Sqrt(v)) > epsilon {
			t.Errorf("sqrt(%g) = %g", v, got)
		}
	}

	neg := mustFrom(t, []float64{-1}, tensor.Shape{1}, tensor.Float64)
	out, err := d.Sqrt(neg)
	if err != nil {
		t.Fatal(err)
	}
	if !math.IsNaN(out.At(0)) {
		t.Errorf("sqrt(-1) = %g, expected NaN", out.At(0))
	}
}

func TestSigmoidExtremes(t *testing.T) {
	if got := sigmoid(-1000); got != 0 {
		t.Errorf("sigmoid(-1000) = %g", got)
	}
	if got := sigmoid(1000); got != 1 {
		t.Errorf("sigmoid(1000) = %g", got)
	}
}

func TestScalarOps(t *testing.T) {
	d := newTestDispatcher()
	x := mustFrom(t, []float64{1, 2, 3, 4}, tensor.Shape{2, 2}, tensor.Float32)

	tests := []struct {
		op   dispatch.Op
		s    float64
		want []float64
	}{
		{dispatch.OpAddScalar, 1.5, []float64{2.5, 3.5, 4.5, 5.5}},
		{dispatch.OpMulScalar, -2, []float64{-2, -4, -6, -8}},
		{dispatch.OpPowScalar, 2, []float64{1, 4, 9, 16}},
		{dispatch.OpPowScalar, 0.5, []float64{1, math.Sqrt2, math.Sqrt(3), 2}},
	}
	for _, tt := range tests {
		out, err := d.ScalarOp(tt.op, x, tt.s)
		if err != nil {
			t.Fatalf("%s: %v", tt.op, err)
		}
		for i, v := range out.Float64s() {
			if math.Abs(v-tt.want[i]) > epsilon {
				t.Errorf("%s(%g, %g) = %g, expected %g", tt.op, x.Float64s()[i], tt.s, v, tt.want[i])
			}
		}
	}
}

func TestIntegerKernels(t *testing.T) {
	d := newTestDispatcher()
	a := mustFrom(t, []float64{-3, 0, 5}, tensor.Shape{3}, tensor.Int64)
	b := mustFrom(t, []float64{2, 0, 7}, tensor.Shape{3}, tensor.Int64)

	eq, err := d.Equal(a, b)
	if err != nil {
		t.Fatal(err)
	}
	mx, err := d.Maximum(a, b)
	if err != nil {
		t.Fatal(err)
	}
	relu, err := d.ReLU(a)
	if err != nil {
		t.Fatal(err)
	}
	checks := []struct {
		name      string
		got, want []float64
	}{
		{"equal", eq.Float64s(), []float64{0, 1, 0}},
		{"maximum", mx.Float64s(), []float64{2, 0, 7}},
		{"relu", relu.Float64s(), []float64{0, 0, 5}},
	}
	for _, c := range checks {
		for i := range c.want {
			if c.got[i] != c.want[i] {
				t.Errorf("%s: got %v, expected %v", c.name, c.got, c.want)
				break
			}
		}
	}

	if _, err := d.Div(a, b); err == nil {
		t.Error("integer division should be unsupported")
	}
}

func TestMaximumPropagatesNaN(t *testing.T) {
	d := newTestDispatcher()
	a := mustFrom(t, []float64{math.NaN(), 1}, tensor.Shape{2}, tensor.Float64)
	b := mustFrom(t, []float64{0, math.NaN()}, tensor.Shape{2}, tensor.Float64)
	out, err := d.Maximum(a, b)
	if err != nil {
		t.Fatal(err)
	}
	if !math.IsNaN(out.At(0)) {
		t.Errorf("max(NaN, 0) = %g", out.At(0))
	}
}
