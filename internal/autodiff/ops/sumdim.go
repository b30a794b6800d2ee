package ops

import (
	"github.com/strand-ml/strand/internal/dispatch"
	"github.com/strand-ml/strand/internal/tensor"
)

// SumOp represents a sum over axes.
//
// Forward:
//
//	output = sum(input, axes, keepDims)
//
// Backward: every input element contributed once, so the output gradient is
// broadcast back over the reduced axes.
type SumOp struct {
	base
	mask []bool // reduced axes of the input
}

// NewSumOp creates a new SumOp. mask marks the reduced input axes.
func NewSumOp(input, output *tensor.RawTensor, mask []bool) *SumOp {
	return &SumOp{base: base{inputs: []*tensor.RawTensor{input}, output: output}, mask: mask}
}

// Name returns "sum".
func (op *SumOp) Name() string { return "sum" }

// Backward broadcasts the gradient to the input shape.
func (op *SumOp) Backward(outputGrad *tensor.RawTensor, d *dispatch.Dispatcher) ([]*tensor.RawTensor, error) {
	grad, err := unreduce(outputGrad, op.inputs[0].Shape(), op.mask, d)
	if err != nil {
		return nil, err
	}
	return []*tensor.RawTensor{grad}, nil
}
