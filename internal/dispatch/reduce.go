package dispatch

import (
	"fmt"

	"github.com/strand-ml/strand/internal/tensor"
)

// ReduceAxes normalizes an axis list against shape. An empty list selects
// every axis. The returned mask has one entry per axis of shape.
func ReduceAxes(op Op, shape tensor.Shape, axes []int) ([]bool, error) {
	mask := make([]bool, len(shape))
	if len(axes) == 0 {
		for i := range mask {
			mask[i] = true
		}
		return mask, nil
	}
	for _, ax := range axes {
		a, ok := shape.NormalizeAxis(ax)
		if !ok {
			return nil, &tensor.ShapeError{Op: string(op), A: shape, Axis: ax, Reason: "axis out of range"}
		}
		if mask[a] {
			return nil, &tensor.ShapeError{Op: string(op), A: shape, Axis: ax, Reason: "duplicate axis"}
		}
		mask[a] = true
	}
	return mask, nil
}

// KeepDimsShape returns shape with every masked axis set to 1.
func KeepDimsShape(shape tensor.Shape, mask []bool) tensor.Shape {
	out := shape.Clone()
	for i, m := range mask {
		if m {
			out[i] = 1
		}
	}
	return out
}

func squeezeShape(shape tensor.Shape, mask []bool) tensor.Shape {
	out := make(tensor.Shape, 0, len(shape))
	for i, d := range shape {
		if !mask[i] {
			out = append(out, d)
		}
	}
	return out
}

// Reduce applies a reduction over axes. Each output element accumulates its
// sources in row-major order of the reduced axes, independent of how the
// kernel splits work.
func (d *Dispatcher) Reduce(op Op, x *tensor.RawTensor, axes []int, keepDims bool) (*tensor.RawTensor, error) {
	mask, err := ReduceAxes(op, x.Shape(), axes)
	if err != nil {
		return nil, err
	}
	if op == OpMax || op == OpMin {
		for i, m := range mask {
			if m && x.Shape()[i] == 0 {
				return nil, &tensor.ShapeError{Op: string(op), A: x.Shape(), Axis: i, Reason: "reduction over empty axis"}
			}
		}
	}
	k, err := resolve[ReduceKernel](d, op, x)
	if err != nil {
		return nil, err
	}

	out, err := tensor.NewRaw(KeepDimsShape(x.Shape(), mask), x.DType(), x.Device())
	if err != nil {
		return nil, err
	}
	k(out, x)
	if keepDims {
		return out, nil
	}
	defer out.Release()
	squeezed, err := out.Reshape(squeezeShape(x.Shape(), mask))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return squeezed, nil
}

// Sum adds elements over axes. An empty axis list reduces to a scalar.
func (d *Dispatcher) Sum(x *tensor.RawTensor, axes []int, keepDims bool) (*tensor.RawTensor, error) {
	return d.Reduce(OpSum, x, axes, keepDims)
}

// Mean averages elements over axes. Only float dtypes are supported.
func (d *Dispatcher) Mean(x *tensor.RawTensor, axes []int, keepDims bool) (*tensor.RawTensor, error) {
	return d.Reduce(OpMean, x, axes, keepDims)
}

// Max takes the largest element over axes.
func (d *Dispatcher) Max(x *tensor.RawTensor, axes []int, keepDims bool) (*tensor.RawTensor, error) {
	return d.Reduce(OpMax, x, axes, keepDims)
}

// Min takes the smallest element over axes.
func (d *Dispatcher) Min(x *tensor.RawTensor, axes []int, keepDims bool) (*tensor.RawTensor, error) {
	return d.Reduce(OpMin, x, axes, keepDims)
}
