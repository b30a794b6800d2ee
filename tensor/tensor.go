// Copyright 2025 Strand ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/strand-ml/strand/internal/tensor"
)

// Element is a constraint for Go types that can back a tensor.
type Element = tensor.Element

// DataType represents the element type of a tensor.
type DataType = tensor.DataType

// Data type constants.
const (
	Float32 DataType = tensor.Float32
	Float64 DataType = tensor.Float64
	Float16 DataType = tensor.Float16
	Int32   DataType = tensor.Int32
	Int64   DataType = tensor.Int64
	Uint8   DataType = tensor.Uint8
)

// Device tags where a tensor's kernels run.
type Device = tensor.Device

// Device constants.
const (
	CPU    Device = tensor.CPU
	CUDA   Device = tensor.CUDA
	Vulkan Device = tensor.Vulkan
	Metal  Device = tensor.Metal
	WebGPU Device = tensor.WebGPU
)

// Shape represents the dimensions of a tensor.
// Example: Shape{2, 3, 4} is a rank-3 tensor with 24 elements; Shape{} is a scalar.
type Shape = tensor.Shape

// RawTensor is a strided view over shared storage.
//
// Example:
//
//	x, _ := tensor.Zeros(tensor.Shape{2, 3}, tensor.Float32, tensor.CPU)
//	xt := x.T()           // (3, 2) view, no copy
//	v := xt.At(2, 1)      // element access as float64
//	c, _ := xt.Copy()     // contiguous deep copy
type RawTensor = tensor.RawTensor

// Storage is the reference-counted buffer behind one or more RawTensors.
type Storage = tensor.Storage

// Error types.
type (
	ShapeError  = tensor.ShapeError
	SizeError   = tensor.SizeError
	DeviceError = tensor.DeviceError
)

// Error kinds, for use with errors.Is.
var (
	ErrShapeMismatch  = tensor.ErrShapeMismatch
	ErrNotContiguous  = tensor.ErrNotContiguous
	ErrSizeMismatch   = tensor.ErrSizeMismatch
	ErrDeviceMismatch = tensor.ErrDeviceMismatch
	ErrGraphReused    = tensor.ErrGraphReused
	ErrUnsupported    = tensor.ErrUnsupported
	ErrNoGradient     = tensor.ErrNoGradient
)

// NewRaw allocates a zero-filled contiguous tensor.
func NewRaw(shape Shape, dtype DataType, device Device) (*RawTensor, error) {
	return tensor.NewRaw(shape, dtype, device)
}

// Zeros creates a tensor filled with zeros.
func Zeros(shape Shape, dtype DataType, device Device) (*RawTensor, error) {
	return tensor.Zeros(shape, dtype, device)
}

// Ones creates a tensor filled with ones.
func Ones(shape Shape, dtype DataType, device Device) (*RawTensor, error) {
	return tensor.Ones(shape, dtype, device)
}

// Full creates a tensor filled with value.
func Full(shape Shape, value float64, dtype DataType, device Device) (*RawTensor, error) {
	return tensor.Full(shape, value, dtype, device)
}

// Scalar creates a rank-0 tensor.
func Scalar(value float64, dtype DataType, device Device) *RawTensor {
	return tensor.Scalar(value, dtype, device)
}

// Arange creates a 1-D tensor with values start, start+1, ... below end.
func Arange(start, end float64, dtype DataType, device Device) (*RawTensor, error) {
	return tensor.Arange(start, end, dtype, device)
}

// FromSlice creates a tensor from a Go slice, copying the data.
// Returns an error wrapping ErrSizeMismatch if len(data) does not match shape.
func FromSlice[T Element](data []T, shape Shape, device Device) (*RawTensor, error) {
	return tensor.FromSlice(data, shape, device)
}

// FromFloat64s creates a tensor of any dtype from float64 values.
func FromFloat64s(data []float64, shape Shape, dtype DataType, device Device) (*RawTensor, error) {
	return tensor.FromFloat64s(data, shape, dtype, device)
}

// ToSlice copies the elements of t in row-major order into a typed slice.
func ToSlice[T Element](t *RawTensor) ([]T, error) {
	return tensor.ToSlice[T](t)
}

// ParseDataType maps a name such as "float32" to a DataType.
func ParseDataType(name string) (DataType, bool) {
	return tensor.ParseDataType(name)
}
