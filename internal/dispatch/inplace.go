package dispatch

import (
	"fmt"

	"github.com/strand-ml/strand/internal/tensor"
)

// In-place operations write through dst's strides. Every view aliasing dst's
// storage observes the new values, and a src that overlaps dst with a
// different layout gives unspecified results. They exist for gradient
// accumulation and optimizer-style updates where the caller owns dst.

func checkWritable(op Op, dst *tensor.RawTensor) error {
	if dst.HasZeroStride() {
		return fmt.Errorf("%s: destination %v has broadcast strides %v: %w",
			op, dst.Shape(), dst.Strides(), tensor.ErrNotContiguous)
	}
	return nil
}

func (d *Dispatcher) binaryInPlace(op Op, dst, src *tensor.RawTensor) error {
	if err := tensor.CheckSameKind(string(op), dst, src); err != nil {
		return err
	}
	if err := checkWritable(op, dst); err != nil {
		return err
	}
	k, err := resolve[BinaryKernel](d, op, dst)
	if err != nil {
		return err
	}
	es, err := src.Expand(dst.Shape())
	if err != nil {
		return fmt.Errorf("%s in place: %w", op, err)
	}
	defer es.Release()
	k(dst, dst, es)
	return nil
}

// AddInPlace computes dst += src, broadcasting src to dst's shape.
func (d *Dispatcher) AddInPlace(dst, src *tensor.RawTensor) error {
	return d.binaryInPlace(OpAdd, dst, src)
}

// SubInPlace computes dst -= src.
func (d *Dispatcher) SubInPlace(dst, src *tensor.RawTensor) error {
	return d.binaryInPlace(OpSub, dst, src)
}

// MulInPlace computes dst *= src.
func (d *Dispatcher) MulInPlace(dst, src *tensor.RawTensor) error {
	return d.binaryInPlace(OpMul, dst, src)
}

// DivInPlace computes dst /= src.
func (d *Dispatcher) DivInPlace(dst, src *tensor.RawTensor) error {
	return d.binaryInPlace(OpDiv, dst, src)
}

// FillInPlace sets every element of dst to v.
func (d *Dispatcher) FillInPlace(dst *tensor.RawTensor, v float64) error {
	if err := checkWritable(OpFill, dst); err != nil {
		return err
	}
	k, err := resolve[ScalarKernel](d, OpFill, dst)
	if err != nil {
		return err
	}
	k(dst, dst, v)
	return nil
}

// ScaleInPlace computes dst *= s.
func (d *Dispatcher) ScaleInPlace(dst *tensor.RawTensor, s float64) error {
	if err := checkWritable(OpMulScalar, dst); err != nil {
		return err
	}
	k, err := resolve[ScalarKernel](d, OpMulScalar, dst)
	if err != nil {
		return err
	}
	k(dst, dst, s)
	return nil
}
