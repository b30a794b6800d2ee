package dispatch

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/strand-ml/strand/internal/tensor"
)

// Dispatcher executes operations through a Table.
//
// Pure operations never mutate their inputs and always return a freshly
// allocated contiguous tensor owned by the caller. In-place operations are
// named *InPlace and write through the destination view.
type Dispatcher struct {
	table *Table
}

// New creates a Dispatcher over table.
func New(table *Table) *Dispatcher {
	return &Dispatcher{table: table}
}

// Table returns the kernel table.
func (d *Dispatcher) Table() *Table {
	return d.table
}

// Supports reports whether op has a kernel for dtype on device.
func (d *Dispatcher) Supports(op Op, dtype tensor.DataType, device tensor.Device) bool {
	return d.table.Has(op, dtype, device)
}

func resolve[K any](d *Dispatcher, op Op, x *tensor.RawTensor) (K, error) {
	k, err := lookup[K](d.table, op, x.DType(), x.Device())
	if err != nil {
		log.Trace().Str("op", string(op)).Stringer("dtype", x.DType()).Stringer("device", x.Device()).Msg("kernel lookup failed")
	}
	return k, err
}

// Binary applies an elementwise binary operation with broadcasting.
func (d *Dispatcher) Binary(op Op, a, b *tensor.RawTensor) (*tensor.RawTensor, error) {
	if err := tensor.CheckSameKind(string(op), a, b); err != nil {
		return nil, err
	}
	shape, err := a.Shape().BroadcastWith(b.Shape())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	k, err := resolve[BinaryKernel](d, op, a)
	if err != nil {
		return nil, err
	}

	ea, err := a.Expand(shape)
	if err != nil {
		return nil, err
	}
	defer ea.Release()
	eb, err := b.Expand(shape)
	if err != nil {
		return nil, err
	}
	defer eb.Release()

	out, err := tensor.NewRaw(shape, a.DType(), a.Device())
	if err != nil {
		return nil, err
	}
	k(out, ea, eb)
	return out, nil
}

// Add returns a + b.
func (d *Dispatcher) Add(a, b *tensor.RawTensor) (*tensor.RawTensor, error) {
	return d.Binary(OpAdd, a, b)
}

// Sub returns a - b.
func (d *Dispatcher) Sub(a, b *tensor.RawTensor) (*tensor.RawTensor, error) {
	return d.Binary(OpSub, a, b)
}

// Mul returns a * b elementwise.
func (d *Dispatcher) Mul(a, b *tensor.RawTensor) (*tensor.RawTensor, error) {
	return d.Binary(OpMul, a, b)
}

// Div returns a / b elementwise.
func (d *Dispatcher) Div(a, b *tensor.RawTensor) (*tensor.RawTensor, error) {
	return d.Binary(OpDiv, a, b)
}

// Maximum returns the elementwise maximum.
func (d *Dispatcher) Maximum(a, b *tensor.RawTensor) (*tensor.RawTensor, error) {
	return d.Binary(OpMaximum, a, b)
}

// Minimum returns the elementwise minimum.
func (d *Dispatcher) Minimum(a, b *tensor.RawTensor) (*tensor.RawTensor, error) {
	return d.Binary(OpMinimum, a, b)
}

// Equal returns 1 where a == b and 0 elsewhere, in the operand dtype.
func (d *Dispatcher) Equal(a, b *tensor.RawTensor) (*tensor.RawTensor, error) {
	return d.Binary(OpEqual, a, b)
}

// Unary applies an elementwise unary operation.
func (d *Dispatcher) Unary(op Op, x *tensor.RawTensor) (*tensor.RawTensor, error) {
	k, err := resolve[UnaryKernel](d, op, x)
	if err != nil {
		return nil, err
	}
	out, err := tensor.NewRaw(x.Shape(), x.DType(), x.Device())
	if err != nil {
		return nil, err
	}
	k(out, x)
	return out, nil
}

// Neg returns -x.
func (d *Dispatcher) Neg(x *tensor.RawTensor) (*tensor.RawTensor, error) { return d.Unary(OpNeg, x) }

// Abs returns |x|.
func (d *Dispatcher) Abs(x *tensor.RawTensor) (*tensor.RawTensor, error) { return d.Unary(OpAbs, x) }

// Exp returns e^x.
func (d *Dispatcher) Exp(x *tensor.RawTensor) (*tensor.RawTensor, error) { return d.Unary(OpExp, x) }

// Log returns the natural logarithm.
func (d *Dispatcher) Log(x *tensor.RawTensor) (*tensor.RawTensor, error) { return d.Unary(OpLog, x) }

// Sqrt returns the square root.
func (d *Dispatcher) Sqrt(x *tensor.RawTensor) (*tensor.RawTensor, error) {
	return d.Unary(OpSqrt, x)
}

// Sin returns sin(x).
func (d *Dispatcher) Sin(x *tensor.RawTensor) (*tensor.RawTensor, error) { return d.Unary(OpSin, x) }

// Cos returns cos(x).
func (d *Dispatcher) Cos(x *tensor.RawTensor) (*tensor.RawTensor, error) { return d.Unary(OpCos, x) }

// Tanh returns tanh(x).
func (d *Dispatcher) Tanh(x *tensor.RawTensor) (*tensor.RawTensor, error) {
	return d.Unary(OpTanh, x)
}

// Sigmoid returns 1 / (1 + e^-x).
func (d *Dispatcher) Sigmoid(x *tensor.RawTensor) (*tensor.RawTensor, error) {
	return d.Unary(OpSigmoid, x)
}

// ReLU returns max(x, 0).
func (d *Dispatcher) ReLU(x *tensor.RawTensor) (*tensor.RawTensor, error) {
	return d.Unary(OpReLU, x)
}

// Step returns 1 where x > 0 and 0 elsewhere.
func (d *Dispatcher) Step(x *tensor.RawTensor) (*tensor.RawTensor, error) {
	return d.Unary(OpStep, x)
}

// ScalarOp applies an operation between x and a scalar.
func (d *Dispatcher) ScalarOp(op Op, x *tensor.RawTensor, s float64) (*tensor.RawTensor, error) {
	k, err := resolve[ScalarKernel](d, op, x)
	if err != nil {
		return nil, err
	}
	out, err := tensor.NewRaw(x.Shape(), x.DType(), x.Device())
	if err != nil {
		return nil, err
	}
	k(out, x, s)
	return out, nil
}

// AddScalar returns x + s.
func (d *Dispatcher) AddScalar(x *tensor.RawTensor, s float64) (*tensor.RawTensor, error) {
	return d.ScalarOp(OpAddScalar, x, s)
}

// MulScalar returns x * s.
func (d *Dispatcher) MulScalar(x *tensor.RawTensor, s float64) (*tensor.RawTensor, error) {
	return d.ScalarOp(OpMulScalar, x, s)
}

// PowScalar returns x^s.
func (d *Dispatcher) PowScalar(x *tensor.RawTensor, s float64) (*tensor.RawTensor, error) {
	return d.ScalarOp(OpPowScalar, x, s)
}

// Cast converts x to dtype. Casting to the same dtype returns a copy.
func (d *Dispatcher) Cast(x *tensor.RawTensor, dtype tensor.DataType) (*tensor.RawTensor, error) {
	if x.DType() == dtype {
		return x.Copy()
	}
	k, err := resolve[CastKernel](d, OpCast, x)
	if err != nil {
		return nil, err
	}
	out, err := tensor.NewRaw(x.Shape(), dtype, x.Device())
	if err != nil {
		return nil, err
	}
	k(out, x)
	return out, nil
}

// Contiguous returns a row-major tensor with the values of x. The result
// shares storage with x when x is already contiguous.
func (d *Dispatcher) Contiguous(x *tensor.RawTensor) (*tensor.RawTensor, error) {
	if !x.IsContiguous() {
		log.Trace().Stringer("shape", x.Shape()).Ints("strides", x.Strides()).Msg("materializing strided view")
	}
	return x.Contiguous()
}

// BroadcastTo materializes x broadcast to shape.
func (d *Dispatcher) BroadcastTo(x *tensor.RawTensor, shape tensor.Shape) (*tensor.RawTensor, error) {
	v, err := x.Expand(shape)
	if err != nil {
		return nil, err
	}
	defer v.Release()
	return v.Copy()
}
