// Package parallel splits independent work items across goroutines.
package parallel

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Config controls parallel execution behavior.
type Config struct {
	Enabled      bool `yaml:"enabled"`      // Whether parallel execution is enabled.
	NumWorkers   int  `yaml:"numWorkers"`   // Maximum number of concurrent goroutines.
	MinChunkSize int  `yaml:"minChunkSize"` // Minimum items per goroutine to avoid overhead.
}

// DefaultConfig returns sensible defaults based on CPU count.
func DefaultConfig() Config {
	n := runtime.NumCPU()
	return Config{
		Enabled:      n > 1,
		NumWorkers:   n,
		MinChunkSize: 16,
	}
}

// For calls f with consecutive chunks [start, end) covering [0, n).
// Falls back to a single sequential call if parallelism is disabled or n is
// smaller than one chunk. Chunks never overlap, so f may write to
// per-index slots of a shared slice without locking.
func For(n int, f func(start, end int), cfg Config) {
	if n <= 0 {
		return
	}
	workers := cfg.NumWorkers
	if !cfg.Enabled || workers < 2 || n < 2*max(cfg.MinChunkSize, 1) {
		f(0, n)
		return
	}

	chunkSize := max((n+workers-1)/workers, cfg.MinChunkSize, 1)

	var g errgroup.Group
	g.SetLimit(workers)
	for start := 0; start < n; start += chunkSize {
		end := min(start+chunkSize, n)
		g.Go(func() error {
			f(start, end)
			return nil
		})
	}
	_ = g.Wait()
}

// ForEach calls f(i) for every i in [0, n) using For.
func ForEach(n int, f func(i int), cfg Config) {
	For(n, func(start, end int) {
		for i := start; i < end; i++ {
			f(i)
		}
	}, cfg)
}
