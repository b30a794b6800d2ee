// Package parallel splits data-parallel kernel loops across goroutines.
//
// Work is always partitioned into disjoint index ranges, so kernels that
// write each output element from exactly one range produce the same result
// regardless of the worker count.
package parallel

import (
	"os"
	"runtime"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"
)

// Environment variables read by ConfigFromEnv.
const (
	EnvNumThreads = "STRAND_NUM_THREADS"
	EnvMinChunk   = "STRAND_MIN_CHUNK"
)

// Config controls parallel execution behavior.
type Config struct {
	Enabled      bool // Whether parallel execution is enabled.
	NumWorkers   int  // Number of worker goroutines to use.
	MinChunkSize int  // Minimum items per goroutine to avoid overhead.
}

// DefaultConfig returns sensible defaults based on CPU count.
func DefaultConfig() Config {
	n := runtime.NumCPU()
	return Config{
		Enabled:      n > 1,
		NumWorkers:   n,
		MinChunkSize: 4096,
	}
}

// Sequential returns a config that never spawns goroutines.
func Sequential() Config {
	return Config{Enabled: false, NumWorkers: 1, MinChunkSize: 1}
}

// ConfigFromEnv starts from DefaultConfig and applies STRAND_NUM_THREADS and
// STRAND_MIN_CHUNK. A thread count of 0 or 1 disables parallelism. Values
// that do not parse are ignored.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	if n, ok := envInt(EnvNumThreads); ok {
		cfg.NumWorkers = max(n, 1)
		cfg.Enabled = n > 1
	}
	if n, ok := envInt(EnvMinChunk); ok && n > 0 {
		cfg.MinChunkSize = n
	}
	return cfg
}

func envInt(key string) (int, bool) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// For executes f(i) for i in [0, n) with optional parallelism.
// Falls back to sequential execution if parallelism is disabled or n is too small.
func For(n int, f func(i int), cfg Config) {
	ForRange(n, func(start, end int) {
		for i := start; i < end; i++ {
			f(i)
		}
	}, cfg)
}

// ForRange splits [0, n) into contiguous chunks and calls f(start, end) for
// each. Chunks never overlap and together cover the whole range.
func ForRange(n int, f func(start, end int), cfg Config) {
	if n <= 0 {
		return
	}
	if !cfg.Enabled || cfg.NumWorkers <= 1 || n < 2*max(cfg.MinChunkSize, 1) {
		f(0, n)
		return
	}

	chunkSize := max((n+cfg.NumWorkers-1)/cfg.NumWorkers, cfg.MinChunkSize)

	var g errgroup.Group
	g.SetLimit(cfg.NumWorkers)
	for start := 0; start < n; start += chunkSize {
		end := min(start+chunkSize, n)
		g.Go(func() error {
			f(start, end)
			return nil
		})
	}
	_ = g.Wait() // workers never fail
}
