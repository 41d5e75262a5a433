package testutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodesAreSequential(t *testing.T) {
	gen := Codes(1000)
	assert.Equal(t, int64(1001), gen())
	assert.Equal(t, int64(1002), gen())
	assert.Equal(t, int64(1003), gen())
}

func TestCodesAreUniqueUnderConcurrency(t *testing.T) {
	gen := Codes(0)
	var mu sync.Mutex
	seen := make(map[int64]bool)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				code := gen()
				mu.Lock()
				assert.False(t, seen[code])
				seen[code] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Len(t, seen, 800)
}

func TestLoggerIsSilent(t *testing.T) {
	log := Logger()
	log.Info("swallowed")
	assert.NotNil(t, log)
}
