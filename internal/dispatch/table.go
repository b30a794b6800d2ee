// Package dispatch resolves tensor operations to kernels.
//
// Kernels are registered in a Table keyed by (operation, element type,
// device). The Dispatcher validates operands, allocates outputs and calls the
// resolved kernel; kernels only compute. A missing entry is reported as
// ErrUnsupported rather than falling back to another type or device.
package dispatch

import (
	"fmt"
	"sort"
	"sync"

	"github.com/strand-ml/strand/internal/tensor"
)

// Op names an operation in the dispatch table.
type Op string

// Operations known to the Dispatcher.
const (
	OpAdd     Op = "add"
	OpSub     Op = "sub"
	OpMul     Op = "mul"
	OpDiv     Op = "div"
	OpMaximum Op = "maximum"
	OpMinimum Op = "minimum"
	OpEqual   Op = "equal"

	OpNeg     Op = "neg"
	OpAbs     Op = "abs"
	OpExp     Op = "exp"
	OpLog     Op = "log"
	OpSqrt    Op = "sqrt"
	OpSin     Op = "sin"
	OpCos     Op = "cos"
	OpTanh    Op = "tanh"
	OpSigmoid Op = "sigmoid"
	OpReLU    Op = "relu"
	OpStep    Op = "step"

	OpAddScalar Op = "add_scalar"
	OpMulScalar Op = "mul_scalar"
	OpPowScalar Op = "pow_scalar"
	OpFill      Op = "fill"

	OpSum  Op = "sum"
	OpMean Op = "mean"
	OpMax  Op = "max"
	OpMin  Op = "min"

	OpMatMul Op = "matmul"
	OpCast   Op = "cast"
)

// Kernel signatures. Kernels receive operands whose shapes already agree:
// binary operands are broadcast views of dst's shape, reduction dst has the
// source shape with reduced axes set to 1. dst may be any writable view.
type (
	BinaryKernel func(dst, a, b *tensor.RawTensor)
	UnaryKernel  func(dst, src *tensor.RawTensor)
	ScalarKernel func(dst, src *tensor.RawTensor, s float64)
	ReduceKernel func(dst, src *tensor.RawTensor)
	MatMulKernel func(dst, a, b *tensor.RawTensor)
	// CastKernel is keyed by the source dtype and handles any destination.
	CastKernel func(dst, src *tensor.RawTensor)
)

// Key identifies a kernel.
type Key struct {
	Op     Op
	DType  tensor.DataType
	Device tensor.Device
}

// String formats the key as op[dtype@device].
func (k Key) String() string {
	return fmt.Sprintf("%s[%s@%s]", k.Op, k.DType, k.Device)
}

// KernelError reports that no kernel is registered for a key.
type KernelError struct {
	Key Key
}

// Error implements the error interface.
func (e *KernelError) Error() string {
	return fmt.Sprintf("no kernel for %s: %s", e.Key, tensor.ErrUnsupported.Error())
}

// Unwrap returns tensor.ErrUnsupported.
func (e *KernelError) Unwrap() error { return tensor.ErrUnsupported }

// Table is a capability-tagged kernel registry. Registration and lookup are
// safe for concurrent use.
type Table struct {
	mu      sync.RWMutex
	kernels map[Key]any
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{kernels: make(map[Key]any)}
}

func (t *Table) register(op Op, dtype tensor.DataType, device tensor.Device, k any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.kernels[Key{Op: op, DType: dtype, Device: device}] = k
}

// RegisterBinary registers an elementwise binary kernel.
func (t *Table) RegisterBinary(op Op, dtype tensor.DataType, device tensor.Device, k BinaryKernel) {
	t.register(op, dtype, device, k)
}

// RegisterUnary registers an elementwise unary kernel.
func (t *Table) RegisterUnary(op Op, dtype tensor.DataType, device tensor.Device, k UnaryKernel) {
	t.register(op, dtype, device, k)
}

// RegisterScalar registers a kernel taking one tensor and a scalar.
func (t *Table) RegisterScalar(op Op, dtype tensor.DataType, device tensor.Device, k ScalarKernel) {
	t.register(op, dtype, device, k)
}

// RegisterReduce registers a reduction kernel.
func (t *Table) RegisterReduce(op Op, dtype tensor.DataType, device tensor.Device, k ReduceKernel) {
	t.register(op, dtype, device, k)
}

// RegisterMatMul registers a matrix multiply kernel.
func (t *Table) RegisterMatMul(dtype tensor.DataType, device tensor.Device, k MatMulKernel) {
	t.register(OpMatMul, dtype, device, k)
}

// RegisterCast registers a conversion kernel for source dtype.
func (t *Table) RegisterCast(dtype tensor.DataType, device tensor.Device, k CastKernel) {
	t.register(OpCast, dtype, device, k)
}

// Has reports whether a kernel is registered for the key.
func (t *Table) Has(op Op, dtype tensor.DataType, device tensor.Device) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.kernels[Key{Op: op, DType: dtype, Device: device}]
	return ok
}

// Lookup returns the raw kernel registered for key.
func (t *Table) Lookup(key Key) (any, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	k, ok := t.kernels[key]
	return k, ok
}

// Len returns the number of registered kernels.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.kernels)
}

// Keys returns all registered keys in a stable order.
func (t *Table) Keys() []Key {
	t.mu.RLock()
	keys := make([]Key, 0, len(t.kernels))
	for k := range t.kernels {
		keys = append(keys, k)
	}
	t.mu.RUnlock()
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].String() < keys[j].String()
	})
	return keys
}

func lookup[K any](t *Table, op Op, dtype tensor.DataType, device tensor.Device) (K, error) {
	key := Key{Op: op, DType: dtype, Device: device}
	t.mu.RLock()
	k, ok := t.kernels[key]
	t.mu.RUnlock()
	var zero K
	if !ok {
		return zero, &KernelError{Key: key}
	}
	typed, ok := k.(K)
	if !ok {
		return zero, fmt.Errorf("kernel for %s has type %T: %w", key, k, tensor.ErrUnsupported)
	}
	return typed, nil
}
