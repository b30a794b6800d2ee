// Package ops defines the local-gradient rules used by reverse-mode autodiff.
//
// Each operation records the tensors its backward pass needs during the
// forward pass and maps an output gradient to one gradient per input:
//   - AddOp, SubOp: gradient flows unchanged (negated for the subtrahend)
//   - MulOp: d(a*b)/da = b, d(a*b)/db = a
//   - DivOp: d(a/b)/da = 1/b, d(a/b)/db = -a/b²
//   - MatMulOp: d(A@B)/dA = grad@B^T, d(A@B)/dB = A^T@grad
//   - SumOp, MeanOp, MaxOp: gradient is broadcast back over reduced axes
//   - ReshapeOp, PermuteOp, ExpandOp: gradient is mapped back to the input layout
//
// Input gradients are always shaped like the input as it was before any
// broadcasting: axes that broadcasting added or stretched are summed out.
package ops

import (
	"github.com/strand-ml/strand/internal/dispatch"
	"github.com/strand-ml/strand/internal/tensor"
)

// Operation represents a differentiable operation in the computation graph.
type Operation interface {
	// Name returns a short tag such as "mul" or "matmul".
	Name() string

	// Backward computes gradients for inputs given the output gradient.
	// The result has one entry per input, in input order. The returned
	// tensors are owned by the caller; outputGrad is not modified.
	//
	// Example for AddOp:
	//   inputs: [a, b]
	//   outputGrad: dL/d(a+b)
	//   returns: [dL/d(a+b), dL/d(a+b)]
	Backward(outputGrad *tensor.RawTensor, d *dispatch.Dispatcher) ([]*tensor.RawTensor, error)

	// Inputs returns the input tensors for this operation.
	Inputs() []*tensor.RawTensor

	// Output returns the output tensor produced by this operation.
	Output() *tensor.RawTensor
}

// base holds the recorded tensors shared by all operations.
type base struct {
	inputs []*tensor.RawTensor
	output *tensor.RawTensor
}

// Inputs returns the recorded inputs.
func (b *base) Inputs() []*tensor.RawTensor { return b.inputs }

// Output returns the recorded output.
func (b *base) Output() *tensor.RawTensor { return b.output }
