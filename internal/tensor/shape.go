package tensor

import "fmt"

// Shape represents the dimensions of a tensor. A nil or empty Shape is a scalar.
type Shape []int

// Rank returns the number of axes.
func (s Shape) Rank() int {
	return len(s)
}

// NumElements returns the total number of elements in the tensor.
// A scalar has one element; any zero extent makes the tensor empty.
func (s Shape) NumElements() int {
	n := 1
	for _, dim := range s {
		n *= dim
	}
	return n
}

// Size is an alias for NumElements.
func (s Shape) Size() int {
	return s.NumElements()
}

// Validate checks that every extent is non-negative.
func (s Shape) Validate() error {
	for i, dim := range s {
		if dim < 0 {
			return &ShapeError{Op: "shape", A: s, Axis: i, Reason: fmt.Sprintf("negative extent %d", dim)}
		}
	}
	return nil
}

// Equal checks if two shapes are equal.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of the shape.
func (s Shape) Clone() Shape {
	clone := make(Shape, len(s))
	copy(clone, s)
	return clone
}

// String formats the shape as (d0, d1, ...).
func (s Shape) String() string {
	out := "("
	for i, d := range s {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprint(d)
	}
	if len(s) == 1 {
		out += ","
	}
	return out + ")"
}

// ComputeStrides calculates row-major strides for the shape.
// stride[i] = product of all dimensions after i.
func (s Shape) ComputeStrides() []int {
	strides := make([]int, len(s))
	if len(s) == 0 {
		return strides
	}

	strides[len(s)-1] = 1
	for i := len(s) - 2; i >= 0; i-- {
		strides[i] = strides[i+1] * max(s[i+1], 1)
	}
	return strides
}

// IsContiguous reports whether strides describe the row-major layout of s.
// Axes of extent 1 are ignored since their stride never contributes to an
// offset, and empty shapes are always contiguous.
func (s Shape) IsContiguous(strides []int) bool {
	if len(strides) != len(s) {
		return false
	}
	if s.NumElements() == 0 {
		return true
	}
	expected := 1
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == 1 {
			continue
		}
		if strides[i] != expected {
			return false
		}
		expected *= s[i]
	}
	return true
}

// NormalizeAxis maps a possibly negative axis into [0, rank).
func (s Shape) NormalizeAxis(axis int) (int, bool) {
	if axis < 0 {
		axis += len(s)
	}
	if axis < 0 || axis >= len(s) {
		return 0, false
	}
	return axis, true
}

// BroadcastWith implements NumPy-style broadcasting.
//
// Shapes are aligned on their trailing axis. Each pair of extents must be
// equal, or one of them must be 1; a missing axis counts as 1.
//
//	(3, 1) with (3, 5) → (3, 5)
//	(5,)   with (3, 5) → (3, 5)
//	(3, 4) with (3, 5) → ShapeError at axis 1
func (s Shape) BroadcastWith(other Shape) (Shape, error) {
	maxLen := max(len(s), len(other))
	result := make(Shape, maxLen)

	for i := 0; i < maxLen; i++ {
		aIdx := len(s) - 1 - i
		bIdx := len(other) - 1 - i

		aDim := 1
		if aIdx >= 0 {
			aDim = s[aIdx]
		}
		bDim := 1
		if bIdx >= 0 {
			bDim = other[bIdx]
		}

		switch {
		case aDim == bDim:
			result[maxLen-1-i] = aDim
		case aDim == 1:
			result[maxLen-1-i] = bDim
		case bDim == 1:
			result[maxLen-1-i] = aDim
		default:
			return nil, &ShapeError{
				Op:     "broadcast",
				A:      s.Clone(),
				B:      other.Clone(),
				Axis:   maxLen - 1 - i,
				Reason: fmt.Sprintf("extents %d and %d", aDim, bDim),
			}
		}
	}

	return result, nil
}

// BroadcastShapes broadcasts a and b and reports whether either one had to be
// stretched.
func BroadcastShapes(a, b Shape) (Shape, bool, error) {
	out, err := a.BroadcastWith(b)
	if err != nil {
		return nil, false, err
	}
	return out, !a.Equal(out) || !b.Equal(out), nil
}
