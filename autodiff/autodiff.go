// Copyright 2025 Strand ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package autodiff provides reverse-mode automatic differentiation.
//
// A Graph records differentiable operations as they execute. Backward then
// walks the recorded graph from a scalar output and accumulates gradients
// into the leaves that require them.
//
// Example:
//
//	import (
//	    "github.com/strand-ml/strand/autodiff"
//	    "github.com/strand-ml/strand/backend/cpu"
//	    "github.com/strand-ml/strand/tensor"
//	)
//
//	func main() {
//	    g := autodiff.New(cpu.New())
//
//	    v, _ := tensor.FromSlice([]float64{1, 2, 3}, tensor.Shape{3}, tensor.CPU)
//	    x := g.Track(v, true)
//
//	    sq, _ := g.Mul(x, x)
//	    y, _ := g.Add(sq, x)          // y = x² + x
//	    s, _ := g.Sum(y, nil, false)
//
//	    _ = g.Backward(s)
//	    fmt.Println(x.Grad().Float64s()) // [3 5 7]
//	}
//
// A recorded graph is consumed by Backward. Running Backward through it again
// returns tensor.ErrGraphReused unless RetainGraph was passed the first time.
// Leaf gradients accumulate across passes; Node.ZeroGrad resets them.
package autodiff

import (
	"github.com/strand-ml/strand/internal/autodiff"
	"github.com/strand-ml/strand/internal/dispatch"
)

// Graph records operations for backpropagation. Not safe for concurrent use.
type Graph = autodiff.Graph

// Node is a value in a Graph: a leaf or the result of a recorded operation.
type Node = autodiff.Node

// BackwardOption configures Graph.Backward.
type BackwardOption = autodiff.BackwardOption

// BuildFunc records a scalar-valued computation for CheckGradients.
type BuildFunc = autodiff.BuildFunc

// ScalarFunc evaluates a scalar function for NumericGradient.
type ScalarFunc = autodiff.ScalarFunc

// GradientMismatchError is returned by CheckGradients.
type GradientMismatchError = autodiff.GradientMismatchError

// New creates a Graph that computes through d.
//
// Example:
//
//	g := autodiff.New(cpu.New())
func New(d *dispatch.Dispatcher) *Graph {
	return autodiff.New(d)
}

// RetainGraph keeps a graph usable for another Backward.
func RetainGraph() BackwardOption {
	return autodiff.RetainGraph()
}

// NumericGradient estimates the gradient of f by central differences.
var NumericGradient = autodiff.NumericGradient

// CheckGradients compares Backward against NumericGradient for build.
var CheckGradients = autodiff.CheckGradients
