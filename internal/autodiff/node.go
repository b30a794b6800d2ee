package autodiff

import (
	"fmt"

	"github.com/strand-ml/strand/internal/autodiff/ops"
	"github.com/strand-ml/strand/internal/tensor"
)

// Node is a vertex of the computation graph: a value plus, for computed
// nodes, the operation that produced it and its parents.
//
// Parents are exactly the operation's inputs at creation time and always
// existed before the node, so the graph is acyclic by construction.
type Node struct {
	id           int64
	graph        *Graph
	value        *tensor.RawTensor
	op           ops.Operation // nil for leaves
	parents      []*Node
	grad         *tensor.RawTensor
	requiresGrad bool
	retainGrad   bool
	consumed     bool
}

// ID returns the node's creation index within its graph.
func (n *Node) ID() int64 { return n.id }

// Value returns the node's forward value.
func (n *Node) Value() *tensor.RawTensor { return n.value }

// Grad returns the accumulated gradient, or nil if none has been computed.
// Only leaves and nodes marked with RetainGrad keep a gradient.
func (n *Node) Grad() *tensor.RawTensor { return n.grad }

// RequiresGrad reports whether gradients flow to this node.
func (n *Node) RequiresGrad() bool { return n.requiresGrad }

// IsLeaf reports whether the node was created by Track (or by an untracked
// operation) rather than recorded from a differentiable operation.
func (n *Node) IsLeaf() bool { return n.op == nil }

// Op returns the operation tag, or "leaf".
func (n *Node) Op() string {
	if n.op == nil {
		return "leaf"
	}
	return n.op.Name()
}

// Parents returns the node's inputs. Leaves have none.
func (n *Node) Parents() []*Node {
	return append([]*Node(nil), n.parents...)
}

// Detach returns a new leaf sharing this node's value that does not require
// a gradient. Operations on it are not recorded.
func (n *Node) Detach() *Node {
	return n.graph.newLeaf(n.value.Clone(), false)
}

// RetainGrad keeps the gradient of a computed node after Backward.
func (n *Node) RetainGrad() {
	n.retainGrad = true
}

// ZeroGrad drops the accumulated gradient.
func (n *Node) ZeroGrad() {
	if n.grad != nil {
		n.grad.Release()
		n.grad = nil
	}
}

// String describes the node, e.g. "Node#3(mul, (2, 3), grad)".
func (n *Node) String() string {
	s := fmt.Sprintf("Node#%d(%s, %v", n.id, n.Op(), n.value.Shape())
	if n.requiresGrad {
		s += ", grad"
	}
	return s + ")"
}
