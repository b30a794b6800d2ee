package ops

import (
	"github.com/strand-ml/strand/internal/dispatch"
	"github.com/strand-ml/strand/internal/tensor"
)

// SigmoidOp represents output = σ(x) = 1 / (1 + e^-x).
//
// Backward: dσ/dx = σ(x)(1 - σ(x)), so grad = outputGrad * output * (1 - output).
type SigmoidOp struct {
	base
}

// NewSigmoidOp creates a new SigmoidOp.
func NewSigmoidOp(x, output *tensor.RawTensor) *SigmoidOp {
	return &SigmoidOp{base{inputs: []*tensor.RawTensor{x}, output: output}}
}

// Name returns "sigmoid".
func (op *SigmoidOp) Name() string { return "sigmoid" }

// Backward computes the input gradient for sigmoid.
func (op *SigmoidOp) Backward(outputGrad *tensor.RawTensor, d *dispatch.Dispatcher) ([]*tensor.RawTensor, error) {
	neg, err := d.MulScalar(op.output, -1)
	if err != nil {
		return nil, err
	}
	defer neg.Release()
	oneMinus, err := d.AddScalar(neg, 1)
	if err != nil {
		return nil, err
	}
	defer oneMinus.Release()
	local, err := d.Mul(op.output, oneMinus)
	return chainRule(outputGrad, local, err, d)
}
