package ops

import (
	"github.com/strand-ml/strand/internal/dispatch"
	"github.com/strand-ml/strand/internal/tensor"
)

// NegOp represents output = -x.
type NegOp struct {
	base
}

// NewNegOp creates a new NegOp.
func NewNegOp(x, output *tensor.RawTensor) *NegOp {
	return &NegOp{base{inputs: []*tensor.RawTensor{x}, output: output}}
}

// Name returns "neg".
func (op *NegOp) Name() string { return "neg" }

// Backward returns -outputGrad.
func (op *NegOp) Backward(outputGrad *tensor.RawTensor, d *dispatch.Dispatcher) ([]*tensor.RawTensor, error) {
	grad, err := d.Neg(outputGrad)
	if err != nil {
		return nil, err
	}
	return []*tensor.RawTensor{grad}, nil
}
