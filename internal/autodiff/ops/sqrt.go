package ops

import (
	"github.com/strand-ml/strand/internal/dispatch"
	"github.com/strand-ml/strand/internal/tensor"
)

// SqrtOp represents output = √x.
//
// Backward: d(√x)/dx = 1/(2√x), so grad = 0.5 * outputGrad / output.
type SqrtOp struct {
	base
}

// NewSqrtOp creates a new SqrtOp.
func NewSqrtOp(x, output *tensor.RawTensor) *SqrtOp {
	return &SqrtOp{base{inputs: []*tensor.RawTensor{x}, output: output}}
}

// Name returns "sqrt".
func (op *SqrtOp) Name() string { return "sqrt" }

// Backward computes the input gradient for sqrt.
func (op *SqrtOp) Backward(outputGrad *tensor.RawTensor, d *dispatch.Dispatcher) ([]*tensor.RawTensor, error) {
	ratio, err := d.Div(outputGrad, op.output)
	if err != nil {
		return nil, err
	}
	defer ratio.Release()
	grad, err := d.MulScalar(ratio, 0.5)
	if err != nil {
		return nil, err
	}
	return []*tensor.RawTensor{grad}, nil
}
