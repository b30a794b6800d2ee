package tensor

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// RawTensor is a strided view over a shared Storage.
//
// The element at index (i0, i1, ...) lives at
// offset + i0*strides[0] + i1*strides[1] + ... in the storage. A stride of 0
// marks a broadcast axis: every index along it reads the same element.
//
// Views created by Reshape, Permute, Expand, Slice and friends retain the
// same storage. Writes through one view are visible through all of them,
// so in-place APIs are only safe when no other live view depends on the
// previous values.
type RawTensor struct {
	storage  *Storage
	shape    Shape
	stride   []int
	offset   int
	released atomic.Bool
}

// NewRaw allocates a zero-filled contiguous tensor.
func NewRaw(shape Shape, dtype DataType, device Device) (*RawTensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}

	storage, err := NewStorage(shape.NumElements(), dtype, device)
	if err != nil {
		return nil, err
	}

	return &RawTensor{
		storage: storage,
		shape:   shape.Clone(),
		stride:  shape.ComputeStrides(),
	}, nil
}

// NewView builds a view over storage, retaining it. The layout is checked
// so that every in-bounds index stays inside the storage.
func NewView(storage *Storage, shape Shape, strides []int, offset int) (*RawTensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}
	if len(strides) != len(shape) {
		return nil, &ShapeError{Op: "view", A: shape, Axis: -1, Reason: fmt.Sprintf("%d strides for rank %d", len(strides), len(shape))}
	}
	if shape.NumElements() > 0 {
		lo, hi := offset, offset
		for i, dim := range shape {
			span := (dim - 1) * strides[i]
			if span < 0 {
				lo += span
			} else {
				hi += span
			}
		}
		if lo < 0 || hi >= storage.Len() {
			return nil, &SizeError{Op: "view", Shape: shape, Expected: hi + 1, Got: storage.Len()}
		}
	}
	return newView(storage, shape, strides, offset), nil
}

// newView trusts its layout.
func newView(storage *Storage, shape Shape, strides []int, offset int) *RawTensor {
	return &RawTensor{
		storage: storage.Retain(),
		shape:   shape.Clone(),
		stride:  append([]int(nil), strides...),
		offset:  offset,
	}
}

// Shape returns the tensor's shape.
func (r *RawTensor) Shape() Shape {
	return r.shape
}

// Strides returns the per-axis element strides.
func (r *RawTensor) Strides() []int {
	return r.stride
}

// Offset returns the element offset of index (0, 0, ...) in the storage.
func (r *RawTensor) Offset() int {
	return r.offset
}

// Rank returns the number of axes.
func (r *RawTensor) Rank() int {
	return len(r.shape)
}

// DType returns the tensor's data type.
func (r *RawTensor) DType() DataType {
	return r.storage.dtype
}

// Device returns the tensor's device tag.
func (r *RawTensor) Device() Device {
	return r.storage.device
}

// Storage returns the shared storage.
func (r *RawTensor) Storage() *Storage {
	return r.storage
}

// NumElements returns the total number of logical elements.
func (r *RawTensor) NumElements() int {
	return r.shape.NumElements()
}

// IsContiguous reports whether the view is row-major over its storage.
func (r *RawTensor) IsContiguous() bool {
	return r.shape.IsContiguous(r.stride)
}

// HasZeroStride reports whether any non-trivial axis is a broadcast axis.
func (r *RawTensor) HasZeroStride() bool {
	for i, s := range r.stride {
		if s == 0 && r.shape[i] > 1 {
			return true
		}
	}
	return false
}

// IsUnique returns true if this view holds the only reference to its storage.
func (r *RawTensor) IsUnique() bool {
	return r.storage.IsUnique()
}

// Release drops this view's reference to the storage. Calling it more than
// once on the same view is a no-op.
func (r *RawTensor) Release() {
	if r.released.CompareAndSwap(false, true) {
		r.storage.Release()
	}
}

// Clone returns a new view sharing the same storage and layout.
func (r *RawTensor) Clone() *RawTensor {
	return newView(r.storage, r.shape, r.stride, r.offset)
}

// ElementOffset maps an index vector to a storage element offset.
// Panics if indices are out of bounds.
func (r *RawTensor) ElementOffset(indices ...int) int {
	if len(indices) != len(r.shape) {
		panic(fmt.Sprintf("expected %d indices, got %d", len(r.shape), len(indices)))
	}
	offset := r.offset
	for i, idx := range indices {
		if idx < 0 || idx >= r.shape[i] {
			panic(fmt.Sprintf("index %d out of bounds for dimension %d (size %d)", idx, i, r.shape[i]))
		}
		offset += idx * r.stride[i]
	}
	return offset
}

// At returns the element at the given indices as float64.
// Panics if indices are out of bounds.
func (r *RawTensor) At(indices ...int) float64 {
	return r.storage.Load(r.ElementOffset(indices...))
}

// Set writes the element at the given indices.
// Panics if indices are out of bounds. Writes are visible to every view
// aliasing the storage.
func (r *RawTensor) Set(value float64, indices ...int) {
	r.storage.Store(r.ElementOffset(indices...), value)
}

// Item returns the value of a single-element tensor.
// Panics if the tensor has more than one element.
func (r *RawTensor) Item() float64 {
	if r.NumElements() != 1 {
		panic(fmt.Sprintf("Item() only works for single-element tensors, got shape %v", r.shape))
	}
	return r.storage.Load(r.offset)
}

// Float64s copies the logical elements in row-major order into a new slice.
func (r *RawTensor) Float64s() []float64 {
	out := make([]float64, 0, r.NumElements())
	r.Walk(func(off int) {
		out = append(out, r.storage.Load(off))
	})
	return out
}

// Walk calls f with the storage offset of every logical element in row-major
// order.
func (r *RawTensor) Walk(f func(offset int)) {
	n := r.NumElements()
	if n == 0 {
		return
	}
	rank := len(r.shape)
	idx := make([]int, rank)
	off := r.offset
	for k := 0; k < n; k++ {
		f(off)
		for d := rank - 1; d >= 0; d-- {
			idx[d]++
			off += r.stride[d]
			if idx[d] < r.shape[d] {
				break
			}
			off -= idx[d] * r.stride[d]
			idx[d] = 0
		}
	}
}

// ToSlice copies the logical elements in row-major order into a typed slice.
func ToSlice[T Element](r *RawTensor) ([]T, error) {
	if dt := DataTypeOf[T](); dt != r.DType() {
		return nil, &DeviceError{Op: "to_slice", DeviceA: r.Device(), DeviceB: r.Device(), DTypeA: r.DType(), DTypeB: dt}
	}
	data := Elems[T](r.storage)
	out := make([]T, 0, r.NumElements())
	r.Walk(func(off int) {
		out = append(out, data[off])
	})
	return out, nil
}

// String returns a short description of the tensor.
func (r *RawTensor) String() string {
	return fmt.Sprintf("Tensor[%s]%v on %s", r.DType(), r.shape, r.Device())
}

// Format renders the tensor values, nested by axis.
func (r *RawTensor) Format() string {
	vals := r.Float64s()
	var sb strings.Builder
	var rec func(axis, base int) int
	rec = func(axis, base int) int {
		if axis == len(r.shape) {
			fmt.Fprintf(&sb, "%g", vals[base])
			return base + 1
		}
		sb.WriteByte('[')
		for i := 0; i < r.shape[axis]; i++ {
			if i > 0 {
				sb.WriteString(", ")
			}
			base = rec(axis+1, base)
		}
		sb.WriteByte(']')
		return base
	}
	rec(0, 0)
	return sb.String()
}
