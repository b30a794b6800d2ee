package ops

import (
	"github.com/strand-ml/strand/internal/dispatch"
	"github.com/strand-ml/strand/internal/tensor"
)

// PermuteOp represents an axis permutation.
//
// Forward:
//
//	output = permute(input, axes)
//
// Backward:
//
//	∂L/∂input = permute(∂L/∂output, inverse_axes)
//
// Transpose is the special case of swapping two axes.
type PermuteOp struct {
	base
	axes []int // normalized axes used for the forward permutation
}

// NewPermuteOp creates a new PermuteOp. axes must be non-negative.
func NewPermuteOp(input, output *tensor.RawTensor, axes []int) *PermuteOp {
	return &PermuteOp{
		base: base{inputs: []*tensor.RawTensor{input}, output: output},
		axes: append([]int(nil), axes...),
	}
}

// Name returns "permute".
func (op *PermuteOp) Name() string { return "permute" }

// Backward computes the input gradient for permute. The result is
// materialized so later accumulation reads a row-major buffer.
func (op *PermuteOp) Backward(outputGrad *tensor.RawTensor, _ *dispatch.Dispatcher) ([]*tensor.RawTensor, error) {
	inverse := make([]int, len(op.axes))
	for i, ax := range op.axes {
		inverse[ax] = i
	}

	view, err := outputGrad.Permute(inverse...)
	if err != nil {
		return nil, err
	}
	defer view.Release()
	grad, err := view.Copy()
	if err != nil {
		return nil, err
	}
	return []*tensor.RawTensor{grad}, nil
}
