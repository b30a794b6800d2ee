package ops

import (
	"github.com/strand-ml/strand/internal/dispatch"
	"github.com/strand-ml/strand/internal/tensor"
)

// SubOp represents an element-wise subtraction operation: output = a - b.
//
// Backward pass:
//   - grad_a = outputGrad
//   - grad_b = -outputGrad
type SubOp struct {
	base
}

// NewSubOp creates a new SubOp.
func NewSubOp(a, b, output *tensor.RawTensor) *SubOp {
	return &SubOp{base{inputs: []*tensor.RawTensor{a, b}, output: output}}
}

// Name returns "sub".
func (op *SubOp) Name() string { return "sub" }

// Backward computes input gradients for subtraction.
func (op *SubOp) Backward(outputGrad *tensor.RawTensor, d *dispatch.Dispatcher) ([]*tensor.RawTensor, error) {
	gradA, err := reduceBroadcast(outputGrad, op.inputs[0].Shape(), d)
	if err != nil {
		return nil, err
	}
	neg, err := d.Neg(outputGrad)
	if err != nil {
		gradA.Release()
		return nil, err
	}
	defer neg.Release()
	gradB, err := reduceBroadcast(neg, op.inputs[1].Shape(), d)
	if err != nil {
		gradA.Release()
		return nil, err
	}
	return []*tensor.RawTensor{gradA, gradB}, nil
}
