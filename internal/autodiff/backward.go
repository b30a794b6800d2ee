package autodiff

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/strand-ml/strand/internal/tensor"
)

// BackwardOption configures a Backward call.
type BackwardOption func(*backwardConfig)

type backwardConfig struct {
	retainGraph bool
}

// RetainGraph keeps the traversed computed nodes usable for another
// Backward. Leaf gradients from the second pass add to the first.
func RetainGraph() BackwardOption {
	return func(c *backwardConfig) { c.retainGraph = true }
}

// Backward computes the gradient of root with respect to every node it
// depends on that requires a gradient.
//
// root must be rank 0. Gradients are summed into leaves (and into nodes
// marked with RetainGrad), so calling Backward on several graphs that share
// a leaf accumulates; use Node.ZeroGrad to reset. A computed node can take
// part in only one Backward unless RetainGraph was passed when it was last
// traversed: a second pass returns ErrGraphReused.
//
// Gradients are staged for the whole pass and committed at the end. If any
// step fails, no node is changed.
func (g *Graph) Backward(root *Node, opts ...BackwardOption) error {
	var cfg backwardConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	if !root.requiresGrad {
		backwardPasses.WithLabelValues("error").Inc()
		return fmt.Errorf("backward: %v: %w", root, tensor.ErrNoGradient)
	}
	if root.value.Rank() != 0 {
		backwardPasses.WithLabelValues("error").Inc()
		return &tensor.ShapeError{
			Op:     "backward",
			A:      root.value.Shape(),
			B:      tensor.Shape{},
			Axis:   -1,
			Reason: "backward requires rank-0 output",
		}
	}

	start := time.Now()
	order := topoOrder(root)
	for _, n := range order {
		if n.consumed {
			backwardPasses.WithLabelValues("reused").Inc()
			return fmt.Errorf("backward: %v: %w", n, tensor.ErrGraphReused)
		}
	}

	grads, err := g.propagate(root, order)
	if err != nil {
		for _, gr := range grads {
			gr.Release()
		}
		backwardPasses.WithLabelValues("error").Inc()
		return err
	}
	if err := g.commit(order, grads, cfg.retainGraph); err != nil {
		backwardPasses.WithLabelValues("error").Inc()
		return err
	}

	backwardPasses.WithLabelValues("ok").Inc()
	backwardNodes.Observe(float64(len(order)))
	log.Trace().
		Int("nodes", len(order)).
		Bool("retain_graph", cfg.retainGraph).
		Dur("elapsed", time.Since(start)).
		Msg("backward pass complete")
	return nil
}

// topoOrder returns the nodes reachable from root through parents that
// require gradients, each after all of its parents. The walk is iterative so
// deep chains cannot overflow the goroutine stack.
func topoOrder(root *Node) []*Node {
	type frame struct {
		node *Node
		next int
	}

	var order []*Node
	visited := map[*Node]bool{root: true}
	stack := []frame{{node: root}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next < len(top.node.parents) {
			p := top.node.parents[top.next]
			top.next++
			if p.requiresGrad && !visited[p] {
				visited[p] = true
				stack = append(stack, frame{node: p})
			}
			continue
		}
		order = append(order, top.node)
		stack = stack[:len(stack)-1]
	}
	return order
}

// propagate walks order from the root back to the leaves and returns the
// staged gradient of every node that received one. On error the partial map
// is returned so the caller can release it.
func (g *Graph) propagate(root *Node, order []*Node) (map[*Node]*tensor.RawTensor, error) {
	seed, err := tensor.OnesLike(root.value)
	if err != nil {
		return nil, err
	}
	grads := map[*Node]*tensor.RawTensor{root: seed}

	for i := len(order) - 1; i >= 0; i-- {
		n := order[i]
		if n.op == nil {
			continue
		}
		outGrad, ok := grads[n]
		if !ok {
			continue
		}

		inGrads, err := n.op.Backward(outGrad, g.d)
		if err != nil {
			return grads, fmt.Errorf("backward %s: %w", n.Op(), err)
		}
		if len(inGrads) != len(n.parents) {
			releaseAll(inGrads)
			return grads, fmt.Errorf("backward %s: got %d gradients for %d inputs: %w",
				n.Op(), len(inGrads), len(n.parents), tensor.ErrSizeMismatch)
		}

		for j, p := range n.parents {
			gr := inGrads[j]
			if !p.requiresGrad || gr == nil {
				if gr != nil {
					gr.Release()
				}
				continue
			}
			if !gr.Shape().Equal(p.value.Shape()) {
				releaseAll(inGrads[j:])
				return grads, &tensor.ShapeError{
					Op:     "backward " + n.Op(),
					A:      gr.Shape(),
					B:      p.value.Shape(),
					Axis:   -1,
					Reason: "gradient does not match input shape",
				}
			}
			if err := g.accumulate(grads, p, gr); err != nil {
				releaseAll(inGrads[j+1:])
				return grads, err
			}
		}
	}
	return grads, nil
}

// accumulate adds gr into the staged gradient of n. The accumulator is a
// zeroed buffer owned by the pass; contributions may be views of other
// gradients and are never written to.
func (g *Graph) accumulate(grads map[*Node]*tensor.RawTensor, n *Node, gr *tensor.RawTensor) error {
	defer gr.Release()
	acc, ok := grads[n]
	if !ok {
		var err error
		if acc, err = tensor.ZerosLike(n.value); err != nil {
			return err
		}
		grads[n] = acc
	}
	return g.d.AddInPlace(acc, gr)
}

// commit stores the staged gradients on leaves and retained nodes and marks
// traversed computed nodes as consumed.
func (g *Graph) commit(order []*Node, grads map[*Node]*tensor.RawTensor, retainGraph bool) error {
	// Sums against existing gradients are computed before anything is
	// assigned, so a failing Add leaves every node untouched.
	next := make(map[*Node]*tensor.RawTensor, len(order))
	var sums []*tensor.RawTensor
	for _, n := range order {
		gr, ok := grads[n]
		if !ok || !(n.IsLeaf() || n.retainGrad) {
			continue
		}
		if n.grad == nil {
			next[n] = gr
			continue
		}
		sum, err := g.d.Add(n.grad, gr)
		if err != nil {
			releaseAll(sums)
			for _, t := range grads {
				t.Release()
			}
			return err
		}
		sums = append(sums, sum)
		next[n] = sum
	}

	for _, n := range order {
		gr, staged := grads[n]
		if t, ok := next[n]; ok {
			if n.grad != nil {
				n.grad.Release()
				gr.Release()
			}
			n.grad = t
		} else if staged {
			gr.Release()
		}
		if n.op != nil && !retainGraph {
			n.consumed = true
		}
	}
	return nil
}

func releaseAll(ts []*tensor.RawTensor) {
	for _, t := range ts {
		if t != nil {
			t.Release()
		}
	}
}
