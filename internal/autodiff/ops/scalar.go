package ops

import (
	"github.com/strand-ml/strand/internal/dispatch"
	"github.com/strand-ml/strand/internal/tensor"
)

// AddScalarOp represents output = x + s. The gradient passes unchanged.
type AddScalarOp struct {
	base
	scalar float64
}

// NewAddScalarOp creates a new AddScalarOp.
func NewAddScalarOp(x, output *tensor.RawTensor, s float64) *AddScalarOp {
	return &AddScalarOp{base: base{inputs: []*tensor.RawTensor{x}, output: output}, scalar: s}
}

// Name returns "add_scalar".
func (op *AddScalarOp) Name() string { return "add_scalar" }

// Backward returns outputGrad.
func (op *AddScalarOp) Backward(outputGrad *tensor.RawTensor, _ *dispatch.Dispatcher) ([]*tensor.RawTensor, error) {
	return []*tensor.RawTensor{outputGrad.Clone()}, nil
}

// MulScalarOp represents output = x * s.
type MulScalarOp struct {
	base
	scalar float64
}

// NewMulScalarOp creates a new MulScalarOp.
func NewMulScalarOp(x, output *tensor.RawTensor, s float64) *MulScalarOp {
	return &MulScalarOp{base: base{inputs: []*tensor.RawTensor{x}, output: output}, scalar: s}
}

// Name returns "mul_scalar".
func (op *MulScalarOp) Name() string { return "mul_scalar" }

// Backward returns outputGrad * s.
func (op *MulScalarOp) Backward(outputGrad *tensor.RawTensor, d *dispatch.Dispatcher) ([]*tensor.RawTensor, error) {
	grad, err := d.MulScalar(outputGrad, op.scalar)
	if err != nil {
		return nil, err
	}
	return []*tensor.RawTensor{grad}, nil
}

// PowScalarOp represents output = x^p.
//
// Backward: d(x^p)/dx = p * x^(p-1).
type PowScalarOp struct {
	base
	exponent float64
}

// NewPowScalarOp creates a new PowScalarOp.
func NewPowScalarOp(x, output *tensor.RawTensor, p float64) *PowScalarOp {
	return &PowScalarOp{base: base{inputs: []*tensor.RawTensor{x}, output: output}, exponent: p}
}

// Name returns "pow_scalar".
func (op *PowScalarOp) Name() string { return "pow_scalar" }

// Backward computes the input gradient for pow.
func (op *PowScalarOp) Backward(outputGrad *tensor.RawTensor, d *dispatch.Dispatcher) ([]*tensor.RawTensor, error) {
	pow, err := d.PowScalar(op.inputs[0], op.exponent-1)
	if err != nil {
		return nil, err
	}
	defer pow.Release()
	local, err := d.MulScalar(pow, op.exponent)
	return chainRule(outputGrad, local, err, d)
}
