package ops

import (
	"github.com/strand-ml/strand/internal/dispatch"
	"github.com/strand-ml/strand/internal/tensor"
)

// MulOp represents an element-wise multiplication operation: output = a * b.
//
// Backward pass:
//   - d(a*b)/da = b, so grad_a = outputGrad * b
//   - d(a*b)/db = a, so grad_b = outputGrad * a
type MulOp struct {
	base
}

// NewMulOp creates a new MulOp.
func NewMulOp(a, b, output *tensor.RawTensor) *MulOp {
	return &MulOp{base{inputs: []*tensor.RawTensor{a, b}, output: output}}
}

// Name returns "mul".
func (op *MulOp) Name() string { return "mul" }

// Backward computes input gradients for multiplication.
func (op *MulOp) Backward(outputGrad *tensor.RawTensor, d *dispatch.Dispatcher) ([]*tensor.RawTensor, error) {
	a, b := op.inputs[0], op.inputs[1]

	gb, err := d.Mul(outputGrad, b)
	if err != nil {
		return nil, err
	}
	defer gb.Release()
	gradA, err := reduceBroadcast(gb, a.Shape(), d)
	if err != nil {
		return nil, err
	}

	ga, err := d.Mul(outputGrad, a)
	if err != nil {
		gradA.Release()
		return nil, err
	}
	defer ga.Release()
	gradB, err := reduceBroadcast(ga, b.Shape(), d)
	if err != nil {
		gradA.Release()
		return nil, err
	}

	return []*tensor.RawTensor{gradA, gradB}, nil
}
