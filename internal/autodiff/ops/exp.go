package ops

import (
	"github.com/strand-ml/strand/internal/dispatch"
	"github.com/strand-ml/strand/internal/tensor"
)

// ExpOp represents output = e^x.
//
// Backward: d(e^x)/dx = e^x, so grad = outputGrad * output.
type ExpOp struct {
	base
}

// NewExpOp creates a new ExpOp.
func NewExpOp(x, output *tensor.RawTensor) *ExpOp {
	return &ExpOp{base{inputs: []*tensor.RawTensor{x}, output: output}}
}

// Name returns "exp".
func (op *ExpOp) Name() string { return "exp" }

// Backward computes the input gradient for exp.
func (op *ExpOp) Backward(outputGrad *tensor.RawTensor, d *dispatch.Dispatcher) ([]*tensor.RawTensor, error) {
	grad, err := d.Mul(outputGrad, op.output)
	if err != nil {
		return nil, err
	}
	return []*tensor.RawTensor{grad}, nil
}
