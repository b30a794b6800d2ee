package ops

import (
	"github.com/strand-ml/strand/internal/dispatch"
	"github.com/strand-ml/strand/internal/tensor"
)

// AddOp represents an element-wise addition operation: output = a + b.
//
// Backward pass:
//   - d(a+b)/da = 1, so grad_a = outputGrad
//   - d(a+b)/db = 1, so grad_b = outputGrad
type AddOp struct {
	base
}

// NewAddOp creates a new AddOp.
func NewAddOp(a, b, output *tensor.RawTensor) *AddOp {
	return &AddOp{base{inputs: []*tensor.RawTensor{a, b}, output: output}}
}

// Name returns "add".
func (op *AddOp) Name() string { return "add" }

// Backward computes input gradients for addition.
func (op *AddOp) Backward(outputGrad *tensor.RawTensor, d *dispatch.Dispatcher) ([]*tensor.RawTensor, error) {
	gradA, err := reduceBroadcast(outputGrad, op.inputs[0].Shape(), d)
	if err != nil {
		return nil, err
	}
	gradB, err := reduceBroadcast(outputGrad, op.inputs[1].Shape(), d)
	if err != nil {
		gradA.Release()
		return nil, err
	}
	return []*tensor.RawTensor{gradA, gradB}, nil
}
