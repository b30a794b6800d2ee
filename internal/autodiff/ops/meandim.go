package ops

import (
	"github.com/strand-ml/strand/internal/dispatch"
	"github.com/strand-ml/strand/internal/tensor"
)

// MeanOp represents a mean over axes.
//
// Backward: grad_input = broadcast(outputGrad) / N, where N is the number of
// elements averaged into each output.
type MeanOp struct {
	base
	mask []bool
}

// NewMeanOp creates a new MeanOp. mask marks the reduced input axes.
func NewMeanOp(input, output *tensor.RawTensor, mask []bool) *MeanOp {
	return &MeanOp{base: base{inputs: []*tensor.RawTensor{input}, output: output}, mask: mask}
}

// Name returns "mean".
func (op *MeanOp) Name() string { return "mean" }

// Backward broadcasts the gradient to the input shape and divides by the
// reduction size.
func (op *MeanOp) Backward(outputGrad *tensor.RawTensor, d *dispatch.Dispatcher) ([]*tensor.RawTensor, error) {
	shape := op.inputs[0].Shape()
	n := 1
	for i, m := range op.mask {
		if m {
			n *= shape[i]
		}
	}

	spread, err := unreduce(outputGrad, shape, op.mask, d)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return []*tensor.RawTensor{spread}, nil
	}
	defer spread.Release()
	grad, err := d.MulScalar(spread, 1/float64(n))
	if err != nil {
		return nil, err
	}
	return []*tensor.RawTensor{grad}, nil
}
