// Package autodiff implements reverse-mode automatic differentiation.
//
// A Graph records differentiable operations on Nodes as they execute. Values
// are computed eagerly through a dispatch.Dispatcher; when gradient tracking
// is enabled and any input requires a gradient, the result is a computed
// node that remembers its parents and a local-gradient rule from package ops.
//
// Usage:
//
//	g := autodiff.New(cpu.New())
//	x := g.Track(xValue, true)
//	y, _ := g.Mul(x, x)     // y = x²
//	s, _ := g.Sum(y, nil, false)
//	_ = g.Backward(s)
//	fmt.Println(x.Grad())   // ds/dx = 2x
//
// A Graph is not safe for concurrent use.
package autodiff

import (
	"github.com/strand-ml/strand/internal/autodiff/ops"
	"github.com/strand-ml/strand/internal/dispatch"
	"github.com/strand-ml/strand/internal/tensor"
)

// Graph records operations for backpropagation.
type Graph struct {
	d       *dispatch.Dispatcher
	enabled bool
	nextID  int64
}

// New creates a Graph computing through d, with tracking enabled.
func New(d *dispatch.Dispatcher) *Graph {
	return &Graph{d: d, enabled: true}
}

// Dispatcher returns the dispatcher used for forward and backward kernels.
func (g *Graph) Dispatcher() *dispatch.Dispatcher {
	return g.d
}

// Track wraps t as a leaf node. t is retained by the node, not copied.
func (g *Graph) Track(t *tensor.RawTensor, requiresGrad bool) *Node {
	return g.newLeaf(t, requiresGrad)
}

// Constant wraps t as a leaf that never requires a gradient.
func (g *Graph) Constant(t *tensor.RawTensor) *Node {
	return g.newLeaf(t, false)
}

// SetGradEnabled turns recording on or off and returns the previous setting.
func (g *Graph) SetGradEnabled(enabled bool) bool {
	prev := g.enabled
	g.enabled = enabled
	return prev
}

// GradEnabled reports whether operations are being recorded.
func (g *Graph) GradEnabled() bool {
	return g.enabled
}

// NoGrad runs fn with recording disabled. Nodes created inside fn are
// leaves that do not require gradients.
func (g *Graph) NoGrad(fn func() error) error {
	prev := g.SetGradEnabled(false)
	defer g.SetGradEnabled(prev)
	return fn()
}

func (g *Graph) newLeaf(t *tensor.RawTensor, requiresGrad bool) *Node {
	g.nextID++
	return &Node{id: g.nextID, graph: g, value: t, requiresGrad: requiresGrad}
}

// record wraps a forward value. The node is computed when tracking is on and
// some parent requires a gradient; otherwise it is a non-tracking leaf.
func (g *Graph) record(value *tensor.RawTensor, op ops.Operation, parents ...*Node) *Node {
	track := false
	if g.enabled {
		for _, p := range parents {
			if p.requiresGrad {
				track = true
				break
			}
		}
	}
	if !track {
		return g.newLeaf(value, false)
	}
	g.nextID++
	return &Node{
		id:           g.nextID,
		graph:        g,
		value:        value,
		op:           op,
		parents:      parents,
		requiresGrad: true,
	}
}

type binaryForward func(a, b *tensor.RawTensor) (*tensor.RawTensor, error)

func (g *Graph) binary(a, b *Node, fwd binaryForward, mk func(a, b, out *tensor.RawTensor) ops.Operation) (*Node, error) {
	out, err := fwd(a.value, b.value)
	if err != nil {
		return nil, err
	}
	return g.record(out, mk(a.value, b.value, out), a, b), nil
}

type unaryForward func(x *tensor.RawTensor) (*tensor.RawTensor, error)

func (g *Graph) unary(x *Node, fwd unaryForward, mk func(x, out *tensor.RawTensor) ops.Operation) (*Node, error) {
	out, err := fwd(x.value)
	if err != nil {
		return nil, err
	}
	return g.record(out, mk(x.value, out), x), nil
}

// Add returns a + b with broadcasting.
func (g *Graph) Add(a, b *Node) (*Node, error) {
	return g.binary(a, b, g.d.Add, func(a, b, out *tensor.RawTensor) ops.Operation { return ops.NewAddOp(a, b, out) })
}

// Sub returns a - b with broadcasting.
func (g *Graph) Sub(a, b *Node) (*Node, error) {
	return g.binary(a, b, g.d.Sub, func(a, b, out *tensor.RawTensor) ops.Operation { return ops.NewSubOp(a, b, out) })
}

// Mul returns a * b elementwise with broadcasting.
func (g *Graph) Mul(a, b *Node) (*Node, error) {
	return g.binary(a, b, g.d.Mul, func(a, b, out *tensor.RawTensor) ops.Operation { return ops.NewMulOp(a, b, out) })
}

// Div returns a / b elementwise with broadcasting.
func (g *Graph) Div(a, b *Node) (*Node, error) {
	return g.binary(a, b, g.d.Div, func(a, b, out *tensor.RawTensor) ops.Operation { return ops.NewDivOp(a, b, out) })
}

// MatMul returns a @ b for rank-2 operands.
func (g *Graph) MatMul(a, b *Node) (*Node, error) {
	return g.binary(a, b, g.d.MatMul, func(a, b, out *tensor.RawTensor) ops.Operation { return ops.NewMatMulOp(a, b, out) })
}

// Neg returns -x.
func (g *Graph) Neg(x *Node) (*Node, error) {
	return g.unary(x, g.d.Neg, func(x, out *tensor.RawTensor) ops.Operation { return ops.NewNegOp(x, out) })
}

// Exp returns e^x.
func (g *Graph) Exp(x *Node) (*Node, error) {
	return g.unary(x, g.d.Exp, func(x, out *tensor.RawTensor) ops.Operation { return ops.NewExpOp(x, out) })
}

// Log returns ln(x).
func (g *Graph) Log(x *Node) (*Node, error) {
	return g.unary(x, g.d.Log, func(x, out *tensor.RawTensor) ops.Operation { return ops.NewLogOp(x, out) })
}

// Sqrt returns √x.
func (g *Graph) Sqrt(x *Node) (*Node, error) {
	return g.unary(x, g.d.Sqrt, func(x, out *tensor.RawTensor) ops.Operation { return ops.NewSqrtOp(x, out) })
}

// Tanh returns tanh(x).
func (g *Graph) Tanh(x *Node) (*Node, error) {
	return g.unary(x, g.d.Tanh, func(x, out *tensor.RawTensor) ops.Operation { return ops.NewTanhOp(x, out) })
}

// Sigmoid returns 1 / (1 + e^-x).
func (g *Graph) Sigmoid(x *Node) (*Node, error) {
	return g.unary(x, g.d.Sigmoid, func(x, out *tensor.RawTensor) ops.Operation { return ops.NewSigmoidOp(x, out) })
}

// ReLU returns max(x, 0).
func (g *Graph) ReLU(x *Node) (*Node, error) {
	return g.unary(x, g.d.ReLU, func(x, out *tensor.RawTensor) ops.Operation { return ops.NewReLUOp(x, out) })
}

// Sin returns sin(x).
func (g *Graph) Sin(x *Node) (*Node, error) {
	return g.unary(x, g.d.Sin, func(x, out *tensor.RawTensor) ops.Operation { return ops.NewSinOp(x, out) })
}

// Cos returns cos(x).
func (g *Graph) Cos(x *Node) (*Node, error) {
	return g.unary(x, g.d.Cos, func(x, out *tensor.RawTensor) ops.Operation { return ops.NewCosOp(x, out) })
}

// AddScalar returns x + s.
func (g *Graph) AddScalar(x *Node, s float64) (*Node, error) {
	out, err := g.d.AddScalar(x.value, s)
	if err != nil {
		return nil, err
	}
	return g.record(out, ops.NewAddScalarOp(x.value, out, s), x), nil
}

// MulScalar returns x * s.
func (g *Graph) MulScalar(x *Node, s float64) (*Node, error) {
	out, err := g.d.MulScalar(x.value, s)
	if err != nil {
		return nil, err
	}
	return g.record(out, ops.NewMulScalarOp(x.value, out, s), x), nil
}

// PowScalar returns x^p.
func (g *Graph) PowScalar(x *Node, p float64) (*Node, error) {
	out, err := g.d.PowScalar(x.value, p)
	if err != nil {
		return nil, err
	}
	return g.record(out, ops.NewPowScalarOp(x.value, out, p), x), nil
}

type reduceOp func(input, output *tensor.RawTensor, mask []bool) ops.Operation

func (g *Graph) reduce(op dispatch.Op, x *Node, axes []int, keepDims bool, mk reduceOp) (*Node, error) {
	mask, err := dispatch.ReduceAxes(op, x.value.Shape(), axes)
	if err != nil {
		return nil, err
	}
	out, err := g.d.Reduce(op, x.value, axes, keepDims)
	if err != nil {
		return nil, err
	}
	return g.record(out, mk(x.value, out, mask), x), nil
}

// Sum adds elements over axes; an empty axis list reduces to a scalar.
func (g *Graph) Sum(x *Node, axes []int, keepDims bool) (*Node, error) {
	return g.reduce(dispatch.OpSum, x, axes, keepDims, func(in, out *tensor.RawTensor, mask []bool) ops.Operation {
		return ops.NewSumOp(in, out, mask)
	})
}

// Mean averages elements over axes.
func (g *Graph) Mean(x *Node, axes []int, keepDims bool) (*Node, error) {
	return g.reduce(dispatch.OpMean, x, axes, keepDims, func(in, out *tensor.RawTensor, mask []bool) ops.Operation {
		return ops.NewMeanOp(in, out, mask)
	})
}

// Max takes the largest element over axes. Ties share the gradient.
func (g *Graph) Max(x *Node, axes []int, keepDims bool) (*Node, error) {
	return g.reduce(dispatch.OpMax, x, axes, keepDims, func(in, out *tensor.RawTensor, mask []bool) ops.Operation {
		return ops.NewMaxOp(in, out, mask)
	})
}

// Reshape returns x with a new shape. Strided values are copied first, so
// unlike RawTensor.Reshape this never fails with ErrNotContiguous.
func (g *Graph) Reshape(x *Node, shape tensor.Shape) (*Node, error) {
	c, err := g.d.Contiguous(x.value)
	if err != nil {
		return nil, err
	}
	defer c.Release()
	out, err := c.Reshape(shape)
	if err != nil {
		return nil, err
	}
	return g.record(out, ops.NewReshapeOp(x.value, out), x), nil
}

// Permute reorders the axes of x without copying.
func (g *Graph) Permute(x *Node, axes ...int) (*Node, error) {
	out, err := x.value.Permute(axes...)
	if err != nil {
		return nil, err
	}
	normalized := make([]int, len(axes))
	for i, ax := range axes {
		normalized[i], _ = x.value.Shape().NormalizeAxis(ax)
	}
	return g.record(out, ops.NewPermuteOp(x.value, out, normalized), x), nil
}

// Transpose swaps axes a and b.
func (g *Graph) Transpose(x *Node, a, b int) (*Node, error) {
	rank := x.value.Rank()
	ia, okA := x.value.Shape().NormalizeAxis(a)
	ib, okB := x.value.Shape().NormalizeAxis(b)
	if !okA || !okB {
		return nil, &tensor.ShapeError{Op: "transpose", A: x.value.Shape(), Axis: max(a, b), Reason: "axis out of range"}
	}
	axes := make([]int, rank)
	for i := range axes {
		axes[i] = i
	}
	axes[ia], axes[ib] = axes[ib], axes[ia]
	return g.Permute(x, axes...)
}

// Expand broadcasts x to shape as a zero-copy view.
func (g *Graph) Expand(x *Node, shape tensor.Shape) (*Node, error) {
	out, err := x.value.Expand(shape)
	if err != nil {
		return nil, err
	}
	return g.record(out, ops.NewExpandOp(x.value, out), x), nil
}
