package ops

import (
	"github.com/strand-ml/strand/internal/dispatch"
	"github.com/strand-ml/strand/internal/tensor"
)

// MatMulOp represents a matrix multiplication operation: output = a @ b.
//
// Backward pass:
//   - d(A@B)/dA = outputGrad @ B^T
//   - d(A@B)/dB = A^T @ outputGrad
//
// The transposes are strided views; the CPU kernel hands them to BLAS
// without copying.
type MatMulOp struct {
	base
}

// NewMatMulOp creates a new MatMulOp.
func NewMatMulOp(a, b, output *tensor.RawTensor) *MatMulOp {
	return &MatMulOp{base{inputs: []*tensor.RawTensor{a, b}, output: output}}
}

// Name returns "matmul".
func (op *MatMulOp) Name() string { return "matmul" }

// Backward computes input gradients for matrix multiplication.
func (op *MatMulOp) Backward(outputGrad *tensor.RawTensor, d *dispatch.Dispatcher) ([]*tensor.RawTensor, error) {
	a, b := op.inputs[0], op.inputs[1]

	bT := b.T()
	defer bT.Release()
	gradA, err := d.MatMul(outputGrad, bT)
	if err != nil {
		return nil, err
	}

	aT := a.T()
	defer aT.Release()
	gradB, err := d.MatMul(aT, outputGrad)
	if err != nil {
		gradA.Release()
		return nil, err
	}

	return []*tensor.RawTensor{gradA, gradB}, nil
}
