package ops

import (
	"github.com/strand-ml/strand/internal/dispatch"
	"github.com/strand-ml/strand/internal/tensor"
)

// TanhOp represents output = tanh(x).
//
// Backward: d(tanh x)/dx = 1 - tanh²(x), so grad = outputGrad * (1 - output²).
type TanhOp struct {
	base
}

// NewTanhOp creates a new TanhOp.
func NewTanhOp(x, output *tensor.RawTensor) *TanhOp {
	return &TanhOp{base{inputs: []*tensor.RawTensor{x}, output: output}}
}

// Name returns "tanh".
func (op *TanhOp) Name() string { return "tanh" }

// Backward computes the input gradient for tanh.
func (op *TanhOp) Backward(outputGrad *tensor.RawTensor, d *dispatch.Dispatcher) ([]*tensor.RawTensor, error) {
	sq, err := d.Mul(op.output, op.output)
	if err != nil {
		return nil, err
	}
	defer sq.Release()
	negSq, err := d.MulScalar(sq, -1)
	if err != nil {
		return nil, err
	}
	defer negSq.Release()
	local, err := d.AddScalar(negSq, 1)
	return chainRule(outputGrad, local, err, d)
}
