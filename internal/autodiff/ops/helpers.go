package ops

import (
	"github.com/strand-ml/strand/internal/dispatch"
	"github.com/strand-ml/strand/internal/tensor"
)

// reduceBroadcast reduces a gradient tensor to match the target shape.
// This is necessary when broadcasting was used in the forward pass.
//
// Example:
//
//	Forward: a(3, 1) + b(3, 4) -> c(3, 4)  (a was broadcast along axis 1)
//	Backward: grad_c(3, 4) -> grad_a(3, 1) (sum along axis 1)
//
// The result never aliases storage that the caller might accumulate into:
// when no reduction is needed the gradient is returned as a new view, and the
// backward pass only ever adds into buffers it allocated itself.
func reduceBroadcast(grad *tensor.RawTensor, target tensor.Shape, d *dispatch.Dispatcher) (*tensor.RawTensor, error) {
	gradShape := grad.Shape()
	if gradShape.Equal(target) {
		return grad.Clone(), nil
	}

	// Shapes align from the right: leading axes of grad were added by
	// broadcasting, and target extents of 1 were stretched.
	lead := len(gradShape) - len(target)
	var axes []int
	for i := range gradShape {
		if i < lead || (target[i-lead] == 1 && gradShape[i] != 1) {
			axes = append(axes, i)
		}
	}
	if len(axes) == 0 {
		return reshape(grad, target, d)
	}

	summed, err := d.Sum(grad, axes, true)
	if err != nil {
		return nil, err
	}
	defer summed.Release()
	return summed.Reshape(target)
}

// reshape returns x with a new shape, copying first when x is strided.
func reshape(x *tensor.RawTensor, shape tensor.Shape, d *dispatch.Dispatcher) (*tensor.RawTensor, error) {
	c, err := d.Contiguous(x)
	if err != nil {
		return nil, err
	}
	defer c.Release()
	return c.Reshape(shape)
}

// unreduce broadcasts a reduction's output gradient back to the input shape.
// grad has either the reduced shape or the keep-dims shape.
func unreduce(grad *tensor.RawTensor, input tensor.Shape, mask []bool, d *dispatch.Dispatcher) (*tensor.RawTensor, error) {
	kept, err := reshape(grad, dispatch.KeepDimsShape(input, mask), d)
	if err != nil {
		return nil, err
	}
	defer kept.Release()
	return d.BroadcastTo(kept, input)
}

// chainRule returns [outputGrad * local] and releases local.
func chainRule(outputGrad, local *tensor.RawTensor, err error, d *dispatch.Dispatcher) ([]*tensor.RawTensor, error) {
	if err != nil {
		return nil, err
	}
	defer local.Release()
	grad, err := d.Mul(outputGrad, local)
	if err != nil {
		return nil, err
	}
	return []*tensor.RawTensor{grad}, nil
}
