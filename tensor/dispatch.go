// Copyright 2025 Strand ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/strand-ml/strand/internal/dispatch"
)

// Dispatcher routes tensor operations to kernels by (op, dtype, device).
//
// Every operation validates its operands (device, dtype, shapes) before
// looking up a kernel, and returns an error wrapping ErrUnsupported when no
// kernel is registered. Obtain one from backend/cpu.New or build one over a
// custom Table with NewDispatcher.
type Dispatcher = dispatch.Dispatcher

// Table maps kernel keys to implementations. Safe for concurrent use.
type Table = dispatch.Table

// Op names a dispatchable operation.
type Op = dispatch.Op

// Operations known to the Dispatcher.
const (
	OpAdd       = dispatch.OpAdd
	OpSub       = dispatch.OpSub
	OpMul       = dispatch.OpMul
	OpDiv       = dispatch.OpDiv
	OpMaximum   = dispatch.OpMaximum
	OpMinimum   = dispatch.OpMinimum
	OpEqual     = dispatch.OpEqual
	OpNeg       = dispatch.OpNeg
	OpAbs       = dispatch.OpAbs
	OpExp       = dispatch.OpExp
	OpLog       = dispatch.OpLog
	OpSqrt      = dispatch.OpSqrt
	OpSin       = dispatch.OpSin
	OpCos       = dispatch.OpCos
	OpTanh      = dispatch.OpTanh
	OpSigmoid   = dispatch.OpSigmoid
	OpReLU      = dispatch.OpReLU
	OpStep      = dispatch.OpStep
	OpAddScalar = dispatch.OpAddScalar
	OpMulScalar = dispatch.OpMulScalar
	OpPowScalar = dispatch.OpPowScalar
	OpFill      = dispatch.OpFill
	OpSum       = dispatch.OpSum
	OpMean      = dispatch.OpMean
	OpMax       = dispatch.OpMax
	OpMin       = dispatch.OpMin
	OpMatMul    = dispatch.OpMatMul
	OpCast      = dispatch.OpCast
)

// Key identifies a kernel.
type Key = dispatch.Key

// KernelError reports a missing kernel.
type KernelError = dispatch.KernelError

// Kernel signatures.
type (
	BinaryKernel = dispatch.BinaryKernel
	UnaryKernel  = dispatch.UnaryKernel
	ScalarKernel = dispatch.ScalarKernel
	ReduceKernel = dispatch.ReduceKernel
	MatMulKernel = dispatch.MatMulKernel
	CastKernel   = dispatch.CastKernel
)

// NewTable creates an empty kernel table.
func NewTable() *Table {
	return dispatch.NewTable()
}

// NewDispatcher creates a Dispatcher over table.
func NewDispatcher(table *Table) *Dispatcher {
	return dispatch.New(table)
}
