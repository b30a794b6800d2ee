package cpu

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strand-ml/strand/internal/dispatch"
	"github.com/strand-ml/strand/internal/tensor"
)

func TestSum(t *testing.T) {
	d := newTestDispatcher()
	x := mustFrom(t, []float64{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3}, tensor.Float32)

	tests := []struct {
		name     string
		axes     []int
		keepDims bool
		shape    tensor.Shape
		want     []float64
	}{
		{"All", nil, false, tensor.Shape{}, []float64{21}},
		{"AllKeep", nil, true, tensor.Shape{1, 1}, []float64{21}},
		{"Rows", []int{0}, false, tensor.Shape{3}, []float64{5, 7, 9}},
		{"Cols", []int{1}, false, tensor.Shape{2}, []float64{6, 15}},
		{"ColsKeep", []int{-1}, true, tensor.Shape{2, 1}, []float64{6, 15}},
		{"Both", []int{1, 0}, false, tensor.Shape{}, []float64{21}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := d.Sum(x, tt.axes, tt.keepDims)
			require.NoError(t, err)
			assert.Equal(t, tt.shape, out.Shape())
			assert.Equal(t, tt.want, out.Float64s())
		})
	}
}

// The reduced result has rank - |axes| dimensions, or the same rank with
// extent 1 on the reduced axes when keepDims is set.
func TestReduce_DimensionLaw(t *testing.T) {
	d := newTestDispatcher()
	x, err := tensor.Zeros(tensor.Shape{2, 3, 4, 5}, tensor.Float64, tensor.CPU)
	require.NoError(t, err)

	for _, axes := range [][]int{{0}, {1, 3}, {-1, 0, 2}, {0, 1, 2, 3}} {
		out, err := d.Sum(x, axes, false)
		require.NoError(t, err)
		assert.Equal(t, 4-len(axes), out.Rank(), axes)

		kept, err := d.Sum(x, axes, true)
		require.NoError(t, err)
		assert.Equal(t, 4, kept.Rank(), axes)
		for _, ax := range axes {
			a, _ := x.Shape().NormalizeAxis(ax)
			assert.Equal(t, 1, kept.Shape()[a])
		}
	}
}

func TestReduce_InvalidAxes(t *testing.T) {
	d := newTestDispatcher()
	x := mustFrom(t, []float64{1, 2, 3, 4}, tensor.Shape{2, 2}, tensor.Float64)

	_, err := d.Sum(x, []int{2}, false)
	var se *tensor.ShapeError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 2, se.Axis)

	_, err = d.Sum(x, []int{0, -2}, false)
	require.ErrorIs(t, err, tensor.ErrShapeMismatch)
}

func TestMaxMinMean(t *testing.T) {
	d := newTestDispatcher()
	x := mustFrom(t, []float64{3, -1, 4, 1, -5, 9, 2, 6}, tensor.Shape{2, 4}, tensor.Float64)

	mx, err := d.Max(x, []int{1}, false)
	require.NoError(t, err)
	assert.Equal(t, []float64{4, 9}, mx.Float64s())

	mn, err := d.Min(x, []int{0}, false)
	require.NoError(t, err)
	assert.Equal(t, []float64{-5, -1, 2, 1}, mn.Float64s())

	mean, err := d.Mean(x, nil, false)
	require.NoError(t, err)
	assert.InDelta(t, 19.0/8.0, mean.Item(), 1e-12)

	ints := mustFrom(t, []float64{3, -1, 4, 1}, tensor.Shape{4}, tensor.Int32)
	imax, err := d.Max(ints, nil, false)
	require.NoError(t, err)
	assert.Equal(t, 4.0, imax.Item())
	_, err = d.Mean(ints, nil, false)
	require.ErrorIs(t, err, tensor.ErrUnsupported)
}

func TestReduce_EmptyAxis(t *testing.T) {
	d := newTestDispatcher()
	x, err := tensor.Zeros(tensor.Shape{3, 0}, tensor.Float32, tensor.CPU)
	require.NoError(t, err)

	sum, err := d.Sum(x, []int{1}, false)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 0}, sum.Float64s())

	_, err = d.Max(x, []int{1}, false)
	var se *tensor.ShapeError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 1, se.Axis)

	mean, err := d.Mean(x, []int{1}, false)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(mean.At(0)))

	// Reducing the non-empty axis leaves an empty result.
	rows, err := d.Max(x, []int{0}, false)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{0}, rows.Shape())
}

func TestReduce_StridedInput(t *testing.T) {
	d := newTestDispatcher()
	x := mustFrom(t, []float64{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3}, tensor.Float64)
	xt := x.T()

	out, err := d.Sum(xt, []int{1}, false)
	require.NoError(t, err)
	assert.Equal(t, []float64{5, 7, 9}, out.Float64s())
}

func TestReduce_ParallelMatchesSequential(t *testing.T) {
	seq := newTestDispatcher()
	par := NewWithConfig(forcedParallel())

	rng := rand.New(rand.NewPCG(7, 11))
	data := make([]float64, 16*37*9)
	for i := range data {
		data[i] = rng.NormFloat64() * 1e3
	}

	for _, dt := range []tensor.DataType{tensor.Float32, tensor.Float64, tensor.Float16} {
		x := mustFrom(t, data, tensor.Shape{16, 37, 9}, dt)
		xp, err := x.Permute(1, 2, 0)
		require.NoError(t, err)

		for _, op := range []dispatch.Op{dispatch.OpSum, dispatch.OpMean, dispatch.OpMax, dispatch.OpMin} {
			for _, axes := range [][]int{{1}, {0, 2}, {2}} {
				for _, in := range []*tensor.RawTensor{x, xp} {
					want, err := seq.Reduce(op, in, axes, true)
					require.NoError(t, err)
					got, err := par.Reduce(op, in, axes, true)
					require.NoError(t, err)
					assert.Equal(t, want.Float64s(), got.Float64s(), "%s %s axes=%v", dt, op, axes)
				}
			}
		}
	}
}
