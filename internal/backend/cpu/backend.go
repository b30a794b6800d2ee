// Package cpu implements the CPU kernels for the dispatch table.
//
// Float32 and float64 matrix multiplication use gonum BLAS; integer dtypes
// use plain loops. Float16 kernels widen to float32, compute and round back.
// Elementwise and reduction kernels split their output across goroutines
// according to a parallel.Config without changing results.
package cpu

import (
	"math"

	"github.com/rs/zerolog/log"

	"github.com/strand-ml/strand/internal/dispatch"
	"github.com/strand-ml/strand/internal/parallel"
	"github.com/strand-ml/strand/internal/tensor"
)

// Register adds CPU kernels for every supported dtype to t.
func Register(t *dispatch.Table, cfg parallel.Config) {
	registerNumber[float32](t, tensor.Float32, cfg, float32(math.Inf(-1)), float32(math.Inf(1)))
	registerSigned[float32](t, tensor.Float32, cfg)
	registerFloat[float32](t, tensor.Float32, cfg)
	t.RegisterMatMul(tensor.Float32, tensor.CPU, gemmKernel[float32](cfg))

	registerNumber[float64](t, tensor.Float64, cfg, math.Inf(-1), math.Inf(1))
	registerSigned[float64](t, tensor.Float64, cfg)
	registerFloat[float64](t, tensor.Float64, cfg)
	t.RegisterMatMul(tensor.Float64, tensor.CPU, gemmKernel[float64](cfg))

	registerNumber[int32](t, tensor.Int32, cfg, math.MinInt32, math.MaxInt32)
	registerSigned[int32](t, tensor.Int32, cfg)
	t.RegisterMatMul(tensor.Int32, tensor.CPU, naiveMatMul[int32](cfg))

	registerNumber[int64](t, tensor.Int64, cfg, math.MinInt64, math.MaxInt64)
	registerSigned[int64](t, tensor.Int64, cfg)
	t.RegisterMatMul(tensor.Int64, tensor.CPU, naiveMatMul[int64](cfg))

	registerNumber[uint8](t, tensor.Uint8, cfg, 0, math.MaxUint8)
	t.RegisterMatMul(tensor.Uint8, tensor.CPU, naiveMatMul[uint8](cfg))

	registerFloat16(t, cfg)
}

// New returns a Dispatcher with CPU kernels, configured from the environment.
func New() *dispatch.Dispatcher {
	return NewWithConfig(parallel.ConfigFromEnv())
}

// NewWithConfig returns a Dispatcher with CPU kernels using cfg.
func NewWithConfig(cfg parallel.Config) *dispatch.Dispatcher {
	t := dispatch.NewTable()
	Register(t, cfg)
	log.Trace().
		Stringer("features", DetectFeatures()).
		Int("kernels", t.Len()).
		Int("workers", cfg.NumWorkers).
		Bool("parallel", cfg.Enabled).
		Msg("cpu backend ready")
	return dispatch.New(t)
}
