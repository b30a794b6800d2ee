package ops

import (
	"github.com/strand-ml/strand/internal/dispatch"
	"github.com/strand-ml/strand/internal/tensor"
)

// SinOp represents output = sin(x).
//
// Backward: d(sin x)/dx = cos x.
type SinOp struct {
	base
}

// NewSinOp creates a new SinOp.
func NewSinOp(x, output *tensor.RawTensor) *SinOp {
	return &SinOp{base{inputs: []*tensor.RawTensor{x}, output: output}}
}

// Name returns "sin".
func (op *SinOp) Name() string { return "sin" }

// Backward computes the input gradient for sin.
func (op *SinOp) Backward(outputGrad *tensor.RawTensor, d *dispatch.Dispatcher) ([]*tensor.RawTensor, error) {
	local, err := d.Cos(op.inputs[0])
	return chainRule(outputGrad, local, err, d)
}
