package cpu

import (
	"math"

	"github.com/strand-ml/strand/internal/dispatch"
	"github.com/strand-ml/strand/internal/parallel"
	"github.com/strand-ml/strand/internal/tensor"
)

// registerNumber registers the kernels every numeric dtype supports.
// lo and hi are the identities for Max and Min.
func registerNumber[T number](t *dispatch.Table, dt tensor.DataType, cfg parallel.Config, lo, hi T) {
	binary := map[dispatch.Op]func(a, b T) T{
		dispatch.OpAdd: func(a, b T) T { return a + b },
		dispatch.OpSub: func(a, b T) T { return a - b },
		dispatch.OpMul: func(a, b T) T { return a * b },
		dispatch.OpMaximum: func(a, b T) T {
			if a > b || a != a {
				return a
			}
			return b
		},
		dispatch.OpMinimum: func(a, b T) T {
			if a < b || a != a {
				return a
			}
			return b
		},
		dispatch.OpEqual: func(a, b T) T { return boolTo[T](a == b) },
	}
	for op, fn := range binary {
		t.RegisterBinary(op, dt, tensor.CPU, binaryKernel(cfg, fn))
	}

	t.RegisterUnary(dispatch.OpReLU, dt, tensor.CPU, unaryKernel(cfg, func(x T) T {
		if x > 0 {
			return x
		}
		return 0
	}))
	t.RegisterUnary(dispatch.OpStep, dt, tensor.CPU, unaryKernel(cfg, func(x T) T {
		return boolTo[T](x > 0)
	}))

	t.RegisterScalar(dispatch.OpAddScalar, dt, tensor.CPU, scalarKernel(cfg, func(x, s T) T { return x + s }))
	t.RegisterScalar(dispatch.OpMulScalar, dt, tensor.CPU, scalarKernel(cfg, func(x, s T) T { return x * s }))
	t.RegisterScalar(dispatch.OpFill, dt, tensor.CPU, scalarKernel(cfg, func(_, s T) T { return s }))

	t.RegisterReduce(dispatch.OpSum, dt, tensor.CPU, reduceKernel(cfg, 0, func(acc, x T) T { return acc + x }, nil))
	t.RegisterReduce(dispatch.OpMax, dt, tensor.CPU, reduceKernel(cfg, lo, func(acc, x T) T {
		if x > acc || x != x {
			return x
		}
		return acc
	}, nil))
	t.RegisterReduce(dispatch.OpMin, dt, tensor.CPU, reduceKernel(cfg, hi, func(acc, x T) T {
		if x < acc || x != x {
			return x
		}
		return acc
	}, nil))

	t.RegisterCast(dt, tensor.CPU, castKernel(cfg))
}

// registerSigned adds sign-aware kernels.
func registerSigned[T signed](t *dispatch.Table, dt tensor.DataType, cfg parallel.Config) {
	t.RegisterUnary(dispatch.OpNeg, dt, tensor.CPU, unaryKernel(cfg, func(x T) T { return -x }))
	t.RegisterUnary(dispatch.OpAbs, dt, tensor.CPU, unaryKernel(cfg, func(x T) T {
		if x < 0 {
			return -x
		}
		return x
	}))
}

// registerFloat adds kernels that only make sense for floating point.
func registerFloat[T float](t *dispatch.Table, dt tensor.DataType, cfg parallel.Config) {
	t.RegisterBinary(dispatch.OpDiv, dt, tensor.CPU, binaryKernel(cfg, func(a, b T) T { return a / b }))

	unary := map[dispatch.Op]func(float64) float64{
		dispatch.OpExp:     math.Exp,
		dispatch.OpLog:     math.Log,
		dispatch.OpSqrt:    math.Sqrt,
		dispatch.OpSin:     math.Sin,
		dispatch.OpCos:     math.Cos,
		dispatch.OpTanh:    math.Tanh,
		dispatch.OpSigmoid: sigmoid,
	}
	for op, fn := range unary {
		t.RegisterUnary(op, dt, tensor.CPU, unaryKernel(cfg, func(x T) T { return T(fn(float64(x))) }))
	}

	t.RegisterScalar(dispatch.OpPowScalar, dt, tensor.CPU, floatScalarKernel(cfg, func(x T, s float64) T {
		return T(math.Pow(float64(x), s))
	}))

	t.RegisterReduce(dispatch.OpMean, dt, tensor.CPU, reduceKernel(cfg, 0,
		func(acc, x T) T { return acc + x },
		func(acc T, count int) T { return acc / T(count) }))
}

// sigmoid avoids overflow in exp for large |x|.
func sigmoid(x float64) float64 {
	if x >= 0 {
		return 1 / (1 + math.Exp(-x))
	}
	e := math.Exp(x)
	return e / (1 + e)
}
