package tensor

import "math"

// Zeros creates a tensor filled with zeros.
//
// Example:
//
//	t, _ := tensor.Zeros(tensor.Shape{3, 4}, tensor.Float32, tensor.CPU)
func Zeros(shape Shape, dtype DataType, device Device) (*RawTensor, error) {
	return NewRaw(shape, dtype, device)
}

// Ones creates a tensor filled with ones.
func Ones(shape Shape, dtype DataType, device Device) (*RawTensor, error) {
	return Full(shape, 1, dtype, device)
}

// Full creates a tensor filled with value, converted to dtype.
//
// Example:
//
//	t, _ := tensor.Full(tensor.Shape{3, 3}, 3.14, tensor.Float64, tensor.CPU)
func Full(shape Shape, value float64, dtype DataType, device Device) (*RawTensor, error) {
	t, err := NewRaw(shape, dtype, device)
	if err != nil {
		return nil, err
	}
	if value != 0 {
		for i := 0; i < t.storage.Len(); i++ {
			t.storage.Store(i, value)
		}
	}
	return t, nil
}

// Scalar creates a rank-0 tensor.
func Scalar(value float64, dtype DataType, device Device) *RawTensor {
	t, err := Full(Shape{}, value, dtype, device)
	if err != nil {
		panic(err) // a scalar shape is always valid
	}
	return t
}

// FromSlice creates a tensor from a Go slice, copying the data.
// The slice length must equal the shape's element count.
//
// Example:
//
//	t, err := tensor.FromSlice([]float32{1, 2, 3, 4}, tensor.Shape{2, 2}, tensor.CPU)
func FromSlice[T Element](data []T, shape Shape, device Device) (*RawTensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	if shape.NumElements() != len(data) {
		return nil, &SizeError{Op: "from_slice", Shape: shape.Clone(), Expected: shape.NumElements(), Got: len(data)}
	}

	t, err := NewRaw(shape, DataTypeOf[T](), device)
	if err != nil {
		return nil, err
	}
	copy(Elems[T](t.storage), data)
	return t, nil
}

// FromFloat64s creates a tensor of any dtype from float64 values.
func FromFloat64s(data []float64, shape Shape, dtype DataType, device Device) (*RawTensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	if shape.NumElements() != len(data) {
		return nil, &SizeError{Op: "from_float64s", Shape: shape.Clone(), Expected: shape.NumElements(), Got: len(data)}
	}
	t, err := NewRaw(shape, dtype, device)
	if err != nil {
		return nil, err
	}
	for i, v := range data {
		t.storage.Store(i, v)
	}
	return t, nil
}

// Arange creates a 1-D tensor with values start, start+1, ... below end.
// An empty range yields a tensor of shape (0,).
func Arange(start, end float64, dtype DataType, device Device) (*RawTensor, error) {
	n := max(int(math.Ceil(end-start)), 0)
	t, err := NewRaw(Shape{n}, dtype, device)
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		t.storage.Store(i, start+float64(i))
	}
	return t, nil
}

// ZerosLike allocates zeros with the shape, dtype and device of t.
func ZerosLike(t *RawTensor) (*RawTensor, error) {
	return NewRaw(t.Shape(), t.DType(), t.Device())
}

// OnesLike allocates ones with the shape, dtype and device of t.
func OnesLike(t *RawTensor) (*RawTensor, error) {
	return Ones(t.Shape(), t.DType(), t.Device())
}
