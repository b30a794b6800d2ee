package ops

import (
	"github.com/strand-ml/strand/internal/dispatch"
	"github.com/strand-ml/strand/internal/tensor"
)

// LogOp represents output = ln(x).
//
// Backward: d(ln x)/dx = 1/x, so grad = outputGrad / x.
type LogOp struct {
	base
}

// NewLogOp creates a new LogOp.
func NewLogOp(x, output *tensor.RawTensor) *LogOp {
	return &LogOp{base{inputs: []*tensor.RawTensor{x}, output: output}}
}

// Name returns "log".
func (op *LogOp) Name() string { return "log" }

// Backward computes the input gradient for log.
func (op *LogOp) Backward(outputGrad *tensor.RawTensor, d *dispatch.Dispatcher) ([]*tensor.RawTensor, error) {
	grad, err := d.Div(outputGrad, op.inputs[0])
	if err != nil {
		return nil, err
	}
	return []*tensor.RawTensor{grad}, nil
}
