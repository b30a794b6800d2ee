package tensor

import "fmt"

// Reshape returns a view with a new shape over the same storage.
//
// Reshape never copies: the tensor must be contiguous, otherwise it fails
// with ErrNotContiguous and the caller must call Contiguous first. One extent
// may be -1 and is inferred from the element count.
//
// Example:
//
//	t, _ := tensor.Arange(0, 12, tensor.Float32, tensor.CPU) // (12,)
//	m, _ := t.Reshape(tensor.Shape{3, -1})                   // (3, 4)
func (r *RawTensor) Reshape(newShape Shape) (*RawTensor, error) {
	shape, err := inferShape(newShape, r.NumElements())
	if err != nil {
		return nil, err
	}
	if shape.NumElements() != r.NumElements() {
		return nil, &SizeError{Op: "reshape", Shape: shape, Expected: shape.NumElements(), Got: r.NumElements()}
	}
	if !r.IsContiguous() {
		return nil, fmt.Errorf("reshape %v -> %v: %w", r.shape, shape, ErrNotContiguous)
	}
	return newView(r.storage, shape, shape.ComputeStrides(), r.offset), nil
}

func inferShape(shape Shape, n int) (Shape, error) {
	out := shape.Clone()
	infer := -1
	known := 1
	for i, d := range out {
		switch {
		case d == -1 && infer < 0:
			infer = i
		case d < 0:
			return nil, &ShapeError{Op: "reshape", A: shape, Axis: i, Reason: "invalid extent"}
		default:
			known *= d
		}
	}
	if infer >= 0 {
		if known == 0 || n%known != 0 {
			return nil, &SizeError{Op: "reshape", Shape: shape, Expected: known, Got: n}
		}
		out[infer] = n / known
	}
	return out, nil
}

// Permute reorders axes: result axis i is source axis axes[i].
// Never copies; the result is generally not contiguous.
func (r *RawTensor) Permute(axes ...int) (*RawTensor, error) {
	ndim := len(r.shape)
	if len(axes) != ndim {
		return nil, &ShapeError{Op: "permute", A: r.shape, Axis: -1, Reason: fmt.Sprintf("%d axes for rank %d", len(axes), ndim)}
	}

	seen := make([]bool, ndim)
	newShape := make(Shape, ndim)
	newStride := make([]int, ndim)
	for i, ax := range axes {
		a, ok := r.shape.NormalizeAxis(ax)
		if !ok || seen[a] {
			return nil, &ShapeError{Op: "permute", A: r.shape, Axis: ax, Reason: "not a permutation"}
		}
		seen[a] = true
		newShape[i] = r.shape[a]
		newStride[i] = r.stride[a]
	}
	return newView(r.storage, newShape, newStride, r.offset), nil
}

// Transpose swaps two axes.
func (r *RawTensor) Transpose(a, b int) (*RawTensor, error) {
	axes := make([]int, len(r.shape))
	for i := range axes {
		axes[i] = i
	}
	ia, okA := r.shape.NormalizeAxis(a)
	ib, okB := r.shape.NormalizeAxis(b)
	if !okA || !okB {
		return nil, &ShapeError{Op: "transpose", A: r.shape, Axis: max(a, b), Reason: "axis out of range"}
	}
	axes[ia], axes[ib] = axes[ib], axes[ia]
	return r.Permute(axes...)
}

// T reverses all axes.
func (r *RawTensor) T() *RawTensor {
	ndim := len(r.shape)
	axes := make([]int, ndim)
	for i := range axes {
		axes[i] = ndim - 1 - i
	}
	out, err := r.Permute(axes...)
	if err != nil {
		panic(err)
	}
	return out
}

// Expand returns a broadcast view with the given shape. Stretched and new
// leading axes get stride 0; no data is copied.
func (r *RawTensor) Expand(shape Shape) (*RawTensor, error) {
	out, err := r.shape.BroadcastWith(shape)
	if err != nil {
		return nil, err
	}
	if !out.Equal(shape) {
		return nil, &ShapeError{Op: "expand", A: r.shape, B: shape, Axis: -1, Reason: "target does not cover source"}
	}
	strides := make([]int, len(shape))
	lead := len(shape) - len(r.shape)
	for i := range shape {
		src := i - lead
		if src < 0 || (r.shape[src] == 1 && shape[i] != 1) {
			strides[i] = 0
			continue
		}
		strides[i] = r.stride[src]
	}
	return newView(r.storage, shape, strides, r.offset), nil
}

// Slice narrows one axis to [start, end).
func (r *RawTensor) Slice(axis, start, end int) (*RawTensor, error) {
	a, ok := r.shape.NormalizeAxis(axis)
	if !ok {
		return nil, &ShapeError{Op: "slice", A: r.shape, Axis: axis, Reason: "axis out of range"}
	}
	dim := r.shape[a]
	if start < 0 {
		start += dim
	}
	if end < 0 {
		end += dim
	}
	if start < 0 || end > dim || start > end {
		return nil, &ShapeError{Op: "slice", A: r.shape, Axis: a, Reason: fmt.Sprintf("range [%d, %d) outside extent %d", start, end, dim)}
	}
	shape := r.shape.Clone()
	shape[a] = end - start
	offset := r.offset
	if end > start {
		offset += start * r.stride[a]
	}
	return newView(r.storage, shape, r.stride, offset), nil
}

// Unsqueeze inserts an axis of extent 1 at position axis.
func (r *RawTensor) Unsqueeze(axis int) (*RawTensor, error) {
	if axis < 0 {
		axis += len(r.shape) + 1
	}
	if axis < 0 || axis > len(r.shape) {
		return nil, &ShapeError{Op: "unsqueeze", A: r.shape, Axis: axis, Reason: "axis out of range"}
	}
	shape := make(Shape, 0, len(r.shape)+1)
	strides := make([]int, 0, len(r.shape)+1)
	shape = append(shape, r.shape[:axis]...)
	strides = append(strides, r.stride[:axis]...)
	inner := 1
	if axis < len(r.shape) {
		inner = r.stride[axis] * max(r.shape[axis], 1)
	}
	shape = append(shape, 1)
	strides = append(strides, inner)
	shape = append(shape, r.shape[axis:]...)
	strides = append(strides, r.stride[axis:]...)
	return newView(r.storage, shape, strides, r.offset), nil
}

// Squeeze removes an axis of extent 1.
func (r *RawTensor) Squeeze(axis int) (*RawTensor, error) {
	a, ok := r.shape.NormalizeAxis(axis)
	if !ok || r.shape[a] != 1 {
		return nil, &ShapeError{Op: "squeeze", A: r.shape, Axis: axis, Reason: "axis is not of extent 1"}
	}
	shape := append(r.shape[:a:a], r.shape[a+1:]...)
	strides := append(r.stride[:a:a], r.stride[a+1:]...)
	return newView(r.storage, shape, strides, r.offset), nil
}

// Contiguous returns a row-major tensor with the same values. A tensor that
// is already contiguous is returned as a new view over the same storage;
// otherwise the elements are copied into fresh storage.
func (r *RawTensor) Contiguous() (*RawTensor, error) {
	if r.IsContiguous() {
		return r.Clone(), nil
	}
	return r.Copy()
}

// Copy returns a deep row-major copy in fresh storage.
func (r *RawTensor) Copy() (*RawTensor, error) {
	out, err := NewRaw(r.shape, r.DType(), r.Device())
	if err != nil {
		return nil, err
	}
	size := r.DType().Size()
	src := r.storage.Bytes()
	dst := out.storage.Bytes()
	pos := 0
	r.Walk(func(off int) {
		copy(dst[pos:pos+size], src[off*size:(off+1)*size])
		pos += size
	})
	return out, nil
}
