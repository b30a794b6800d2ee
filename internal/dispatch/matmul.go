package dispatch

import (
	"fmt"

	"github.com/strand-ml/strand/internal/tensor"
)

// MatMul multiplies two rank-2 tensors: (m, k) @ (k, n) -> (m, n).
func (d *Dispatcher) MatMul(a, b *tensor.RawTensor) (*tensor.RawTensor, error) {
	if err := tensor.CheckSameKind(string(OpMatMul), a, b); err != nil {
		return nil, err
	}
	if a.Rank() != 2 || b.Rank() != 2 {
		return nil, &tensor.ShapeError{
			Op:     string(OpMatMul),
			A:      a.Shape(),
			B:      b.Shape(),
			Axis:   -1,
			Reason: fmt.Sprintf("operands must be rank 2, got %d and %d", a.Rank(), b.Rank()),
		}
	}
	m, k := a.Shape()[0], a.Shape()[1]
	k2, n := b.Shape()[0], b.Shape()[1]
	if k != k2 {
		return nil, &tensor.ShapeError{
			Op:     string(OpMatMul),
			A:      a.Shape(),
			B:      b.Shape(),
			Axis:   1,
			Reason: fmt.Sprintf("contraction extents %d and %d", k, k2),
		}
	}

	kern, err := resolve[MatMulKernel](d, OpMatMul, a)
	if err != nil {
		return nil, err
	}
	out, err := tensor.NewRaw(tensor.Shape{m, n}, a.DType(), a.Device())
	if err != nil {
		return nil, err
	}
	kern(out, a, b)
	return out, nil
}
