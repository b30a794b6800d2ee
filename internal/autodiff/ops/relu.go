package ops

import (
	"github.com/strand-ml/strand/internal/dispatch"
	"github.com/strand-ml/strand/internal/tensor"
)

// ReLUOp represents output = max(x, 0).
//
// Backward: the gradient passes where x > 0 and is zero elsewhere,
// including at x = 0.
type ReLUOp struct {
	base
}

// NewReLUOp creates a new ReLUOp.
func NewReLUOp(x, output *tensor.RawTensor) *ReLUOp {
	return &ReLUOp{base{inputs: []*tensor.RawTensor{x}, output: output}}
}

// Name returns "relu".
func (op *ReLUOp) Name() string { return "relu" }

// Backward computes the input gradient for ReLU.
func (op *ReLUOp) Backward(outputGrad *tensor.RawTensor, d *dispatch.Dispatcher) ([]*tensor.RawTensor, error) {
	mask, err := d.Step(op.inputs[0])
	return chainRule(outputGrad, mask, err, d)
}
