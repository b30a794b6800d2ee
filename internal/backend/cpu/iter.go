package cpu

import "github.com/strand-ml/strand/internal/tensor"

// cursor walks a shape in row-major order while tracking the storage offset
// of the current element in several operands at once.
type cursor struct {
	shape   []int
	idx     []int
	strides [][]int
	offs    []int
}

// newCursor positions a cursor at flat row-major index start of shape.
// bases[i] and strides[i] describe operand i.
func newCursor(shape []int, start int, bases []int, strides [][]int) *cursor {
	c := &cursor{
		shape:   shape,
		idx:     make([]int, len(shape)),
		strides: strides,
		offs:    append([]int(nil), bases...),
	}
	rem := start
	for d := len(shape) - 1; d >= 0 && rem > 0; d-- {
		c.idx[d] = rem % shape[d]
		rem /= shape[d]
		for k := range c.offs {
			c.offs[k] += c.idx[d] * strides[k][d]
		}
	}
	return c
}

// viewCursor positions a cursor over views that all share dst's shape.
func viewCursor(start int, views ...*tensor.RawTensor) *cursor {
	bases := make([]int, len(views))
	strides := make([][]int, len(views))
	for i, v := range views {
		bases[i] = v.Offset()
		strides[i] = v.Strides()
	}
	return newCursor(views[0].Shape(), start, bases, strides)
}

func (c *cursor) next() {
	for d := len(c.shape) - 1; d >= 0; d-- {
		c.idx[d]++
		for k := range c.offs {
			c.offs[k] += c.strides[k][d]
		}
		if c.idx[d] < c.shape[d] {
			return
		}
		for k := range c.offs {
			c.offs[k] -= c.idx[d] * c.strides[k][d]
		}
		c.idx[d] = 0
	}
}

func allContiguous(views ...*tensor.RawTensor) bool {
	for _, v := range views {
		if !v.IsContiguous() {
			return false
		}
	}
	return true
}
