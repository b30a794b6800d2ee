package tensor

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShapeNumElements(t *testing.T) {
	tests := []struct {
		shape Shape
		want  int
	}{
		{Shape{}, 1},
		{nil, 1},
		{Shape{5}, 5},
		{Shape{2, 3, 4}, 24},
		{Shape{3, 0, 2}, 0},
	}
	for _, tt := range tests {
		if got := tt.shape.NumElements(); got != tt.want {
			t.Errorf("%v.NumElements() = %d, want %d", tt.shape, got, tt.want)
		}
	}
}

func TestShapeString(t *testing.T) {
	assert.Equal(t, "()", Shape{}.String())
	assert.Equal(t, "(3,)", Shape{3}.String())
	assert.Equal(t, "(2, 3)", Shape{2, 3}.String())
}

func TestShapeComputeStrides(t *testing.T) {
	tests := []struct {
		shape Shape
		want  []int
	}{
		{Shape{}, []int{}},
		{Shape{4}, []int{1}},
		{Shape{2, 3, 4}, []int{12, 4, 1}},
		{Shape{2, 0, 3}, []int{3, 3, 1}},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, tt.shape.ComputeStrides()); diff != "" {
			t.Errorf("%v strides mismatch (-want +got):\n%s", tt.shape, diff)
		}
	}
}

func TestShapeIsContiguous(t *testing.T) {
	assert.True(t, Shape{2, 3}.IsContiguous([]int{3, 1}))
	assert.False(t, Shape{2, 3}.IsContiguous([]int{1, 2}))
	assert.True(t, Shape{2, 1, 3}.IsContiguous([]int{3, 99, 1}), "extent-1 strides are ignored")
	assert.True(t, Shape{0, 3}.IsContiguous([]int{0, 0}), "empty shapes are contiguous")
	assert.False(t, Shape{2}.IsContiguous([]int{1, 1}))
}

func TestShapeBroadcastWith(t *testing.T) {
	tests := []struct {
		a, b Shape
		want Shape
	}{
		{Shape{3, 1}, Shape{3, 5}, Shape{3, 5}},
		{Shape{5}, Shape{3, 5}, Shape{3, 5}},
		{Shape{}, Shape{2, 2}, Shape{2, 2}},
		{Shape{4, 1, 2}, Shape{3, 1}, Shape{4, 3, 2}},
		{Shape{0}, Shape{1}, Shape{0}},
	}
	for _, tt := range tests {
		got, err := tt.a.BroadcastWith(tt.b)
		require.NoError(t, err)
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("%v with %v (-want +got):\n%s", tt.a, tt.b, diff)
		}
		// Broadcasting is symmetric.
		rev, err := tt.b.BroadcastWith(tt.a)
		require.NoError(t, err)
		assert.Equal(t, got, rev)
	}
}

func TestShapeBroadcastWith_Error(t *testing.T) {
	_, err := Shape{3, 4}.BroadcastWith(Shape{3, 5})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrShapeMismatch))

	var se *ShapeError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 1, se.Axis)
	assert.Equal(t, Shape{3, 4}, se.A)
	assert.Equal(t, Shape{3, 5}, se.B)
	assert.Contains(t, err.Error(), "axis 1")
}

func TestBroadcastShapes(t *testing.T) {
	out, stretched, err := BroadcastShapes(Shape{2, 3}, Shape{2, 3})
	require.NoError(t, err)
	assert.Equal(t, Shape{2, 3}, out)
	assert.False(t, stretched)

	_, stretched, err = BroadcastShapes(Shape{1, 3}, Shape{2, 3})
	require.NoError(t, err)
	assert.True(t, stretched)
}

func TestShapeNormalizeAxis(t *testing.T) {
	s := Shape{2, 3, 4}
	for _, tt := range []struct {
		in   int
		want int
		ok   bool
	}{
		{0, 0, true},
		{-1, 2, true},
		{-3, 0, true},
		{3, 0, false},
		{-4, 0, false},
	} {
		got, ok := s.NormalizeAxis(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("NormalizeAxis(%d) = %d, %v; want %d, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestShapeValidate(t *testing.T) {
	require.NoError(t, Shape{0, 2}.Validate())
	err := Shape{2, -1}.Validate()
	var se *ShapeError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 1, se.Axis)
}

func TestDataType(t *testing.T) {
	for _, dt := range []DataType{Float32, Float64, Float16, Int32, Int64, Uint8} {
		parsed, ok := ParseDataType(dt.String())
		require.True(t, ok, dt.String())
		assert.Equal(t, dt, parsed)
	}
	_, ok := ParseDataType("complex64")
	assert.False(t, ok)

	assert.Equal(t, 2, Float16.Size())
	assert.True(t, Float16.IsFloat())
	assert.False(t, Uint8.IsFloat())
	assert.Equal(t, Int64, DataTypeOf[int64]())
}
