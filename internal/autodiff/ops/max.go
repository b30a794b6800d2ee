package ops

import (
	"github.com/strand-ml/strand/internal/dispatch"
	"github.com/strand-ml/strand/internal/tensor"
)

// MaxOp represents a maximum over axes.
//
// Backward: the gradient of each output flows to the input elements equal to
// it. Ties share the gradient evenly, so the total reaching the input equals
// the output gradient.
type MaxOp struct {
	base
	mask []bool
}

// NewMaxOp creates a new MaxOp. mask marks the reduced input axes.
func NewMaxOp(input, output *tensor.RawTensor, mask []bool) *MaxOp {
	return &MaxOp{base: base{inputs: []*tensor.RawTensor{input}, output: output}, mask: mask}
}

// Name returns "max".
func (op *MaxOp) Name() string { return "max" }

// Backward routes the gradient to the arg-max positions.
func (op *MaxOp) Backward(outputGrad *tensor.RawTensor, d *dispatch.Dispatcher) ([]*tensor.RawTensor, error) {
	x := op.inputs[0]
	shape := x.Shape()

	peak, err := unreduce(op.output, shape, op.mask, d)
	if err != nil {
		return nil, err
	}
	defer peak.Release()
	hits, err := d.Equal(x, peak)
	if err != nil {
		return nil, err
	}
	defer hits.Release()

	ties, err := d.Sum(hits, axesOf(op.mask), true)
	if err != nil {
		return nil, err
	}
	defer ties.Release()
	share, err := d.Div(hits, ties)
	if err != nil {
		return nil, err
	}
	defer share.Release()

	spread, err := unreduce(outputGrad, shape, op.mask, d)
	if err != nil {
		return nil, err
	}
	defer spread.Release()
	grad, err := d.Mul(spread, share)
	if err != nil {
		return nil, err
	}
	return []*tensor.RawTensor{grad}, nil
}

func axesOf(mask []bool) []int {
	axes := make([]int, 0, len(mask))
	for i, m := range mask {
		if m {
			axes = append(axes, i)
		}
	}
	return axes
}
