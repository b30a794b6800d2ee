package ops

import (
	"github.com/strand-ml/strand/internal/dispatch"
	"github.com/strand-ml/strand/internal/tensor"
)

// CosOp represents output = cos(x).
//
// Backward: d(cos x)/dx = -sin x.
type CosOp struct {
	base
}

// NewCosOp creates a new CosOp.
func NewCosOp(x, output *tensor.RawTensor) *CosOp {
	return &CosOp{base{inputs: []*tensor.RawTensor{x}, output: output}}
}

// Name returns "cos".
func (op *CosOp) Name() string { return "cos" }

// Backward computes the input gradient for cos.
func (op *CosOp) Backward(outputGrad *tensor.RawTensor, d *dispatch.Dispatcher) ([]*tensor.RawTensor, error) {
	sin, err := d.Sin(op.inputs[0])
	if err != nil {
		return nil, err
	}
	defer sin.Release()
	local, err := d.Neg(sin)
	return chainRule(outputGrad, local, err, d)
}
