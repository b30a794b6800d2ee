// Copyright 2025 Strand ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package cpu

import (
	internalcpu "github.com/strand-ml/strand/internal/backend/cpu"
	"github.com/strand-ml/strand/internal/parallel"
	"github.com/strand-ml/strand/tensor"
)

// Config controls how CPU kernels split work across goroutines.
type Config = parallel.Config

// Features describes the SIMD extensions of the host CPU.
type Features = internalcpu.Features

// New creates a Dispatcher with CPU kernels for every supported dtype.
// Parallelism is read from STRAND_NUM_THREADS and STRAND_MIN_CHUNK.
//
// Example:
//
//	import (
//	    "github.com/strand-ml/strand/backend/cpu"
//	    "github.com/strand-ml/strand/tensor"
//	)
//
//	func main() {
//	    d := cpu.New()
//	    x, _ := tensor.Ones(tensor.Shape{2, 3}, tensor.Float32, tensor.CPU)
//	    y, _ := d.Exp(x)
//	}
func New() *tensor.Dispatcher {
	return internalcpu.New()
}

// NewWithConfig creates a Dispatcher with CPU kernels using cfg.
func NewWithConfig(cfg Config) *tensor.Dispatcher {
	return internalcpu.NewWithConfig(cfg)
}

// Register adds CPU kernels to t, for example next to kernels for another device.
func Register(t *tensor.Table, cfg Config) {
	internalcpu.Register(t, cfg)
}

// DefaultConfig uses one worker per CPU.
func DefaultConfig() Config {
	return parallel.DefaultConfig()
}

// Sequential disables parallel kernels.
func Sequential() Config {
	return parallel.Sequential()
}

// ConfigFromEnv returns DefaultConfig adjusted by STRAND_NUM_THREADS and
// STRAND_MIN_CHUNK.
func ConfigFromEnv() Config {
	return parallel.ConfigFromEnv()
}

// DetectFeatures probes the host CPU.
func DetectFeatures() Features {
	return internalcpu.DetectFeatures()
}
