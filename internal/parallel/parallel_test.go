package parallel

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFor(t *testing.T) {
	cfg := Config{Enabled: true, NumWorkers: 4, MinChunkSize: 16}

	var counter int64
	n := 1000

	For(n, func(_ int) {
		atomic.AddInt64(&counter, 1)
	}, cfg)

	assert.Equal(t, int64(n), counter)
}

func TestFor_Sequential(t *testing.T) {
	var counter int64
	For(100, func(_ int) {
		atomic.AddInt64(&counter, 1)
	}, Sequential())

	assert.Equal(t, int64(100), counter)
}

func TestFor_SmallChunk(t *testing.T) {
	// Small work units fall back to a single call.
	cfg := DefaultConfig()

	calls := 0
	ForRange(cfg.MinChunkSize-1, func(start, end int) {
		calls++
		assert.Equal(t, 0, start)
		assert.Equal(t, cfg.MinChunkSize-1, end)
	}, cfg)

	assert.Equal(t, 1, calls)
}

func TestForRange_DisjointCover(t *testing.T) {
	cfg := Config{Enabled: true, NumWorkers: 3, MinChunkSize: 10}
	n := 257

	var mu sync.Mutex
	seen := make([]int, n)
	ForRange(n, func(start, end int) {
		mu.Lock()
		defer mu.Unlock()
		for i := start; i < end; i++ {
			seen[i]++
		}
	}, cfg)

	for i, c := range seen {
		require.Equal(t, 1, c, "index %d visited %d times", i, c)
	}
}

func TestForRange_Empty(t *testing.T) {
	ForRange(0, func(_, _ int) {
		t.Fatal("must not be called")
	}, DefaultConfig())
}

func TestConfigFromEnv(t *testing.T) {
	tests := []struct {
		name        string
		threads     string
		chunk       string
		wantEnabled bool
		wantWorkers int
		wantChunk   int
	}{
		{"single thread disables", "1", "", false, 1, DefaultConfig().MinChunkSize},
		{"zero disables", "0", "", false, 1, DefaultConfig().MinChunkSize},
		{"explicit workers", "6", "128", true, 6, 128},
		{"garbage ignored", "lots", "-5", DefaultConfig().Enabled, DefaultConfig().NumWorkers, DefaultConfig().MinChunkSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvNumThreads, tt.threads)
			t.Setenv(EnvMinChunk, tt.chunk)

			cfg := ConfigFromEnv()
			assert.Equal(t, tt.wantEnabled, cfg.Enabled)
			assert.Equal(t, tt.wantWorkers, cfg.NumWorkers)
			assert.Equal(t, tt.wantChunk, cfg.MinChunkSize)
		})
	}
}

func BenchmarkFor(b *testing.B) {
	cfg := DefaultConfig()
	n := 100000

	b.Run("parallel", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			var sum int64
			For(n, func(i int) {
				atomic.AddInt64(&sum, int64(i))
			}, cfg)
		}
	})

	b.Run("sequential", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			var sum int64
			For(n, func(i int) {
				atomic.AddInt64(&sum, int64(i))
			}, Sequential())
		}
	})
}
