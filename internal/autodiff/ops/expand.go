package ops

import (
	"github.com/strand-ml/strand/internal/dispatch"
	"github.com/strand-ml/strand/internal/tensor"
)

// ExpandOp represents an explicit broadcast to a larger shape.
//
// Backward: the gradient is summed over the broadcast axes.
type ExpandOp struct {
	base
}

// NewExpandOp creates a new ExpandOp.
func NewExpandOp(input, output *tensor.RawTensor) *ExpandOp {
	return &ExpandOp{base{inputs: []*tensor.RawTensor{input}, output: output}}
}

// Name returns "expand".
func (op *ExpandOp) Name() string { return "expand" }

// Backward computes the input gradient for expand.
func (op *ExpandOp) Backward(outputGrad *tensor.RawTensor, d *dispatch.Dispatcher) ([]*tensor.RawTensor, error) {
	grad, err := reduceBroadcast(outputGrad, op.inputs[0].Shape(), d)
	if err != nil {
		return nil, err
	}
	return []*tensor.RawTensor{grad}, nil
}
