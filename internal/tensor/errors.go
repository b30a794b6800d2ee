package tensor

import (
	"errors"
	"fmt"
)

// Error kinds returned by tensor, dispatch and autodiff operations.
// Use errors.Is to test for a kind and errors.As to inspect details.
var (
	ErrShapeMismatch  = errors.New("shape mismatch")
	ErrNotContiguous  = errors.New("tensor is not contiguous")
	ErrSizeMismatch   = errors.New("size mismatch")
	ErrDeviceMismatch = errors.New("device mismatch")
	ErrGraphReused    = errors.New("graph already consumed by a backward pass")
	ErrUnsupported    = errors.New("unsupported operation")
	ErrNoGradient     = errors.New("tensor does not require gradient")
)

// ShapeError describes incompatible shapes for broadcast, reduction or matmul.
// Axis is -1 when no single axis is at fault.
type ShapeError struct {
	Op     string
	A, B   Shape
	Axis   int
	Reason string
}

// Error implements the error interface.
func (e *ShapeError) Error() string {
	msg := fmt.Sprintf("%s: %v vs %v", e.Op, e.A, e.B)
	if e.Axis >= 0 {
		msg += fmt.Sprintf(" (axis %d)", e.Axis)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg + ": " + ErrShapeMismatch.Error()
}

// Unwrap returns ErrShapeMismatch.
func (e *ShapeError) Unwrap() error { return ErrShapeMismatch }

// SizeError reports a data length that does not match a shape's element count.
type SizeError struct {
	Op       string
	Shape    Shape
	Expected int
	Got      int
}

// Error implements the error interface.
func (e *SizeError) Error() string {
	return fmt.Sprintf("%s: shape %v requires %d elements, got %d: %s",
		e.Op, e.Shape, e.Expected, e.Got, ErrSizeMismatch.Error())
}

// Unwrap returns ErrSizeMismatch.
func (e *SizeError) Unwrap() error { return ErrSizeMismatch }

// DeviceError reports operands living on different devices or holding
// different element types. The core never transfers or coerces implicitly.
type DeviceError struct {
	Op      string
	DeviceA Device
	DeviceB Device
	DTypeA  DataType
	DTypeB  DataType
}

// Error implements the error interface.
func (e *DeviceError) Error() string {
	if e.DeviceA != e.DeviceB {
		return fmt.Sprintf("%s: operands on %s and %s: %s", e.Op, e.DeviceA, e.DeviceB, ErrDeviceMismatch.Error())
	}
	return fmt.Sprintf("%s: operand types %s and %s: %s", e.Op, e.DTypeA, e.DTypeB, ErrDeviceMismatch.Error())
}

// Unwrap returns ErrDeviceMismatch.
func (e *DeviceError) Unwrap() error { return ErrDeviceMismatch }

// CheckSameKind returns a *DeviceError unless a and b share device and dtype.
func CheckSameKind(op string, a, b *RawTensor) error {
	if a.Device() == b.Device() && a.DType() == b.DType() {
		return nil
	}
	return &DeviceError{
		Op:      op,
		DeviceA: a.Device(),
		DeviceB: b.Device(),
		DTypeA:  a.DType(),
		DTypeB:  b.DType(),
	}
}
