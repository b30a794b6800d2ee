package autodiff_test

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strand-ml/strand/internal/autodiff"
	"github.com/strand-ml/strand/internal/backend/cpu"
	"github.com/strand-ml/strand/internal/tensor"
)

func newGraph(t *testing.T) *autodiff.Graph {
	t.Helper()
	return autodiff.New(cpu.New())
}

func f64(t *testing.T, data []float64, shape ...int) *tensor.RawTensor {
	t.Helper()
	r, err := tensor.FromFloat64s(data, tensor.Shape(shape), tensor.Float64, tensor.CPU)
	require.NoError(t, err)
	return r
}

func sum(t *testing.T, g *autodiff.Graph, n *autodiff.Node) *autodiff.Node {
	t.Helper()
	s, err := g.Sum(n, nil, false)
	require.NoError(t, err)
	return s
}

func TestBackward_SquarePlusX(t *testing.T) {
	g := newGraph(t)
	x := g.Track(f64(t, []float64{1, 2, 3}, 3), true)

	sq, err := g.Mul(x, x)
	require.NoError(t, err)
	y, err := g.Add(sq, x)
	require.NoError(t, err)
	s := sum(t, g, y)

	require.NoError(t, g.Backward(s))
	assert.Equal(t, 20.0, s.Value().Item())
	require.NotNil(t, x.Grad())
	assert.Equal(t, []float64{3, 5, 7}, x.Grad().Float64s())

	// Interior nodes do not keep gradients unless asked.
	assert.Nil(t, sq.Grad())
	assert.Nil(t, y.Grad())
}

func TestBackward_BroadcastGradients(t *testing.T) {
	g := newGraph(t)
	a := g.Track(f64(t, []float64{1, 2, 3, 4, 5, 6}, 2, 3), true)
	b := g.Track(f64(t, []float64{10, 20, 30}, 3), true)

	c, err := g.Add(a, b)
	require.NoError(t, err)
	require.NoError(t, g.Backward(sum(t, g, c)))

	assert.Equal(t, tensor.Shape{2, 3}, a.Grad().Shape())
	assert.Equal(t, []float64{1, 1, 1, 1, 1, 1}, a.Grad().Float64s())
	assert.Equal(t, tensor.Shape{3}, b.Grad().Shape())
	assert.Equal(t, []float64{2, 2, 2}, b.Grad().Float64s())
}

func TestBackward_MaxTiesShareGradient(t *testing.T) {
	g := newGraph(t)
	x := g.Track(f64(t, []float64{1, 3, 3, 2}, 4), true)

	m, err := g.Max(x, nil, false)
	require.NoError(t, err)
	require.NoError(t, g.Backward(m))

	assert.Equal(t, 3.0, m.Value().Item())
	assert.Equal(t, []float64{0, 0.5, 0.5, 0}, x.Grad().Float64s())
}

func TestBackward_RootChecks(t *testing.T) {
	g := newGraph(t)
	x := g.Track(f64(t, []float64{1, 2}, 2), true)

	y, err := g.MulScalar(x, 2)
	require.NoError(t, err)
	err = g.Backward(y)
	var se *tensor.ShapeError
	require.ErrorAs(t, err, &se)
	assert.Contains(t, se.Reason, "rank-0")
	assert.Nil(t, x.Grad())

	c := g.Constant(tensor.Scalar(1, tensor.Float64, tensor.CPU))
	assert.ErrorIs(t, g.Backward(c), tensor.ErrNoGradient)
}

func TestBackward_GraphReused(t *testing.T) {
	g := newGraph(t)
	x := g.Track(f64(t, []float64{1, 2}, 2), true)
	y, err := g.Mul(x, x)
	require.NoError(t, err)
	s := sum(t, g, y)

	require.NoError(t, g.Backward(s))
	first := x.Grad().Float64s()

	assert.ErrorIs(t, g.Backward(s), tensor.ErrGraphReused)
	assert.Equal(t, first, x.Grad().Float64s(), "failed pass must not touch gradients")

	// A new graph over the same leaf is fine.
	s2 := sum(t, g, x)
	require.NoError(t, g.Backward(s2))
	assert.Equal(t, []float64{3, 5}, x.Grad().Float64s())
}

func TestBackward_RetainGraph(t *testing.T) {
	g := newGraph(t)
	x := g.Track(f64(t, []float64{1, 2}, 2), true)
	y, err := g.Mul(x, x)
	require.NoError(t, err)
	s := sum(t, g, y)

	require.NoError(t, g.Backward(s, autodiff.RetainGraph()))
	assert.Equal(t, []float64{2, 4}, x.Grad().Float64s())

	require.NoError(t, g.Backward(s))
	assert.Equal(t, []float64{4, 8}, x.Grad().Float64s())

	assert.ErrorIs(t, g.Backward(s), tensor.ErrGraphReused)
}

func TestNode_ZeroGradAndRetainGrad(t *testing.T) {
	g := newGraph(t)
	x := g.Track(f64(t, []float64{1, 2}, 2), true)
	y, err := g.MulScalar(x, 3)
	require.NoError(t, err)
	y.RetainGrad()
	require.NoError(t, g.Backward(sum(t, g, y)))

	assert.Equal(t, []float64{1, 1}, y.Grad().Float64s())
	assert.Equal(t, []float64{3, 3}, x.Grad().Float64s())

	x.ZeroGrad()
	assert.Nil(t, x.Grad())

	z, err := g.MulScalar(x, 5)
	require.NoError(t, err)
	require.NoError(t, g.Backward(sum(t, g, z)))
	assert.Equal(t, []float64{5, 5}, x.Grad().Float64s())
}

func TestNode_Detach(t *testing.T) {
	g := newGraph(t)
	x := g.Track(f64(t, []float64{2, 3}, 2), true)

	d := x.Detach()
	assert.False(t, d.RequiresGrad())
	assert.True(t, d.IsLeaf())
	assert.Equal(t, x.Value().Float64s(), d.Value().Float64s())

	y, err := g.Mul(d, x)
	require.NoError(t, err)
	require.NoError(t, g.Backward(sum(t, g, y)))

	// Only the tracked path contributes: d(d*x)/dx = d.
	assert.Equal(t, []float64{2, 3}, x.Grad().Float64s())
	assert.Nil(t, d.Grad())
}

func TestGraph_NoGrad(t *testing.T) {
	g := newGraph(t)
	x := g.Track(f64(t, []float64{1, 2}, 2), true)

	var y *autodiff.Node
	err := g.NoGrad(func() error {
		var err error
		y, err = g.Mul(x, x)
		return err
	})
	require.NoError(t, err)
	assert.True(t, g.GradEnabled())
	assert.False(t, y.RequiresGrad())
	assert.True(t, y.IsLeaf())
	assert.Equal(t, []float64{1, 4}, y.Value().Float64s())

	s := sum(t, g, y)
	assert.ErrorIs(t, g.Backward(s), tensor.ErrNoGradient)

	prev := g.SetGradEnabled(false)
	assert.True(t, prev)
	assert.False(t, g.SetGradEnabled(true))
}

func TestGraph_MatMulShapeMismatch(t *testing.T) {
	g := newGraph(t)
	a := g.Track(f64(t, make([]float64, 6), 2, 3), true)
	b := g.Track(f64(t, make([]float64, 20), 4, 5), true)

	_, err := g.MatMul(a, b)
	var se *tensor.ShapeError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 1, se.Axis)
	assert.ErrorIs(t, err, tensor.ErrShapeMismatch)
}

func TestGraph_ReshapeStrided(t *testing.T) {
	g := newGraph(t)
	x := g.Track(f64(t, []float64{1, 2, 3, 4, 5, 6}, 2, 3), true)

	xt, err := g.Transpose(x, 0, 1)
	require.NoError(t, err)
	assert.False(t, xt.Value().IsContiguous())

	flat, err := g.Reshape(xt, tensor.Shape{6})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 4, 2, 5, 3, 6}, flat.Value().Float64s())

	w := g.Constant(f64(t, []float64{1, 2, 3, 4, 5, 6}, 6))
	y, err := g.Mul(flat, w)
	require.NoError(t, err)
	require.NoError(t, g.Backward(sum(t, g, y)))

	// flat[k] = x^T flattened, so x[i][j] receives w at position j*2+i.
	assert.Equal(t, []float64{1, 3, 5, 2, 4, 6}, x.Grad().Float64s())
}

func TestNode_Introspection(t *testing.T) {
	g := newGraph(t)
	x := g.Track(f64(t, []float64{1, 2}, 2), true)
	c := g.Constant(f64(t, []float64{3, 4}, 2))
	y, err := g.Mul(x, c)
	require.NoError(t, err)

	assert.Equal(t, "leaf", x.Op())
	assert.Equal(t, "mul", y.Op())
	assert.False(t, y.IsLeaf())
	assert.Equal(t, []*autodiff.Node{x, c}, y.Parents())
	assert.Less(t, x.ID(), y.ID())
	assert.Contains(t, y.String(), "mul")
	assert.Contains(t, y.String(), "grad")
	assert.NotContains(t, c.String(), "grad")
}

func TestBackward_DeepChain(t *testing.T) {
	g := newGraph(t)
	x := g.Track(tensor.Scalar(1, tensor.Float64, tensor.CPU), true)

	y := x
	for range 10000 {
		var err error
		y, err = g.AddScalar(y, 1)
		require.NoError(t, err)
	}
	require.NoError(t, g.Backward(y))
	assert.Equal(t, 10001.0, y.Value().Item())
	assert.Equal(t, 1.0, x.Grad().Item())
}

func TestLibraryQuietAtDefaultLevel(t *testing.T) {
	var buf bytes.Buffer
	prev, prevLevel := log.Logger, zerolog.GlobalLevel()
	log.Logger = zerolog.New(&buf)
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	t.Cleanup(func() {
		log.Logger = prev
		zerolog.SetGlobalLevel(prevLevel)
	})

	g := newGraph(t)
	x := g.Track(f64(t, []float64{1, 2, 3, 4, 5, 6}, 2, 3), true)
	xt, err := g.Transpose(x, 0, 1)
	require.NoError(t, err)
	p, err := g.MatMul(x, xt)
	require.NoError(t, err)
	require.NoError(t, g.Backward(sum(t, g, p)))

	assert.Empty(t, buf.String())
}
