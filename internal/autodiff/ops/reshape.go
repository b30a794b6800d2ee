package ops

import (
	"github.com/strand-ml/strand/internal/dispatch"
	"github.com/strand-ml/strand/internal/tensor"
)

// ReshapeOp represents a reshape operation.
//
// Backward: the gradient is reshaped back to the input shape.
type ReshapeOp struct {
	base
}

// NewReshapeOp creates a new ReshapeOp.
func NewReshapeOp(input, output *tensor.RawTensor) *ReshapeOp {
	return &ReshapeOp{base{inputs: []*tensor.RawTensor{input}, output: output}}
}

// Name returns "reshape".
func (op *ReshapeOp) Name() string { return "reshape" }

// Backward computes the input gradient for reshape.
func (op *ReshapeOp) Backward(outputGrad *tensor.RawTensor, d *dispatch.Dispatcher) ([]*tensor.RawTensor, error) {
	grad, err := reshape(outputGrad, op.inputs[0].Shape(), d)
	if err != nil {
		return nil, err
	}
	return []*tensor.RawTensor{grad}, nil
}
