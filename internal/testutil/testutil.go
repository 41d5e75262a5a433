// Package testutil provides deterministic substitutes for the random and
// noisy parts of the runtime, so tests and golden traces are byte-stable.
package testutil

import (
	"io"
	"log/slog"
	"sync"
)

// Logger returns a logger that discards everything. Engine and transport
// constructors require a logger; tests that assert on behavior, not log
// output, use this one.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Codes returns a sequential code generator starting above base. Each call
// to the returned func yields base+1, base+2, and so on. Thread-safe, so a
// registry under concurrent joins still hands out predictable credentials.
func Codes(base int64) func() int64 {
	var mu sync.Mutex
	next := base
	return func() int64 {
		mu.Lock()
		defer mu.Unlock()
		next++
		return next
	}
}
