package cpu

import (
	"github.com/rs/zerolog/log"

	"github.com/strand-ml/strand/internal/dispatch"
	"github.com/strand-ml/strand/internal/parallel"
	"github.com/strand-ml/strand/internal/tensor"
)

// registerFloat16 registers a float16 kernel for every float32 CPU kernel in
// t except casts. Each one widens its inputs to float32, runs the float32
// kernel and rounds the result back into dst.
func registerFloat16(t *dispatch.Table, cfg parallel.Config) {
	for _, key := range t.Keys() {
		if key.DType != tensor.Float32 || key.Device != tensor.CPU || key.Op == dispatch.OpCast {
			continue
		}
		k, _ := t.Lookup(key)
		switch k := k.(type) {
		case dispatch.BinaryKernel:
			t.RegisterBinary(key.Op, tensor.Float16, tensor.CPU, bridgeBinary(k, cfg))
		case dispatch.UnaryKernel:
			t.RegisterUnary(key.Op, tensor.Float16, tensor.CPU, bridgeUnary(k, cfg))
		case dispatch.ScalarKernel:
			t.RegisterScalar(key.Op, tensor.Float16, tensor.CPU, bridgeScalar(k, cfg))
		case dispatch.ReduceKernel:
			t.RegisterReduce(key.Op, tensor.Float16, tensor.CPU, bridgeReduce(k, cfg))
		case dispatch.MatMulKernel:
			t.RegisterMatMul(tensor.Float16, tensor.CPU, bridgeMatMul(k, cfg))
		default:
			log.Trace().Stringer("key", key).Msg("no float16 bridge for kernel")
		}
	}
	t.RegisterCast(tensor.Float16, tensor.CPU, castKernel(cfg))
}

func bridgeBinary(k dispatch.BinaryKernel, cfg parallel.Config) dispatch.BinaryKernel {
	return func(dst, a, b *tensor.RawTensor) {
		a32, b32 := widen(a, cfg), widen(b, cfg)
		defer a32.Release()
		defer b32.Release()
		d32 := alloc32(dst.Shape())
		defer d32.Release()
		k(d32, a32, b32)
		narrowInto(dst, d32, cfg)
	}
}

func bridgeUnary(k dispatch.UnaryKernel, cfg parallel.Config) dispatch.UnaryKernel {
	return func(dst, src *tensor.RawTensor) {
		s32 := widen(src, cfg)
		defer s32.Release()
		d32 := alloc32(dst.Shape())
		defer d32.Release()
		k(d32, s32)
		narrowInto(dst, d32, cfg)
	}
}

func bridgeScalar(k dispatch.ScalarKernel, cfg parallel.Config) dispatch.ScalarKernel {
	return func(dst, src *tensor.RawTensor, s float64) {
		s32 := widen(src, cfg)
		defer s32.Release()
		d32 := alloc32(dst.Shape())
		defer d32.Release()
		k(d32, s32, s)
		narrowInto(dst, d32, cfg)
	}
}

func bridgeReduce(k dispatch.ReduceKernel, cfg parallel.Config) dispatch.ReduceKernel {
	return func(dst, src *tensor.RawTensor) {
		s32 := widen(src, cfg)
		defer s32.Release()
		d32 := alloc32(dst.Shape())
		defer d32.Release()
		k(d32, s32)
		narrowInto(dst, d32, cfg)
	}
}

func bridgeMatMul(k dispatch.MatMulKernel, cfg parallel.Config) dispatch.MatMulKernel {
	return func(dst, a, b *tensor.RawTensor) {
		a32, b32 := widen(a, cfg), widen(b, cfg)
		defer a32.Release()
		defer b32.Release()
		d32 := alloc32(dst.Shape())
		defer d32.Release()
		k(d32, a32, b32)
		narrowInto(dst, d32, cfg)
	}
}
