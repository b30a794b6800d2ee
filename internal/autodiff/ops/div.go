package ops

import (
	"github.com/strand-ml/strand/internal/dispatch"
	"github.com/strand-ml/strand/internal/tensor"
)

// DivOp represents an element-wise division operation: output = a / b.
//
// Backward pass:
//   - grad_a = outputGrad / b
//   - grad_b = -outputGrad * a / b² = -(outputGrad / b) * output
type DivOp struct {
	base
}

// NewDivOp creates a new DivOp.
func NewDivOp(a, b, output *tensor.RawTensor) *DivOp {
	return &DivOp{base{inputs: []*tensor.RawTensor{a, b}, output: output}}
}

// Name returns "div".
func (op *DivOp) Name() string { return "div" }

// Backward computes input gradients for division.
func (op *DivOp) Backward(outputGrad *tensor.RawTensor, d *dispatch.Dispatcher) ([]*tensor.RawTensor, error) {
	a, b := op.inputs[0], op.inputs[1]

	gOverB, err := d.Div(outputGrad, b)
	if err != nil {
		return nil, err
	}
	defer gOverB.Release()
	gradA, err := reduceBroadcast(gOverB, a.Shape(), d)
	if err != nil {
		return nil, err
	}

	scaled, err := d.Mul(gOverB, op.output)
	if err != nil {
		gradA.Release()
		return nil, err
	}
	defer scaled.Release()
	neg, err := d.Neg(scaled)
	if err != nil {
		gradA.Release()
		return nil, err
	}
	defer neg.Release()
	gradB, err := reduceBroadcast(neg, b.Shape(), d)
	if err != nil {
		gradA.Release()
		return nil, err
	}

	return []*tensor.RawTensor{gradA, gradB}, nil
}
