package session

import (
	"slices"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClock_Start(t *testing.T) {
	tests := []struct {
		name  string
		clock *Clock
		first int64
	}{
		{"fresh", NewClock(), 1},
		{"restored", NewClockAt(100), 101},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := tt.clock.Current()
			assert.Equal(t, tt.first-1, before)
			assert.Equal(t, tt.first, tt.clock.Next())
			assert.Equal(t, tt.first, tt.clock.Current(), "Current reads without advancing")
			assert.Equal(t, tt.first, tt.clock.Current())
		})
	}
}

func TestClock_ConcurrentNextIsGapFree(t *testing.T) {
	c := NewClock()
	const workers, each = 32, 200

	var (
		mu  sync.Mutex
		all []int64
		wg  sync.WaitGroup
	)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := make([]int64, 0, each)
			for i := 0; i < each; i++ {
				local = append(local, c.Next())
			}
			mu.Lock()
			all = append(all, local...)
			mu.Unlock()
		}()
	}
	wg.Wait()

	require.Len(t, all, workers*each)
	slices.Sort(all)
	for i, seq := range all {
		require.Equal(t, int64(i+1), seq, "every value from 1 to n is handed out exactly once")
	}
	assert.Equal(t, int64(workers*each), c.Current())
}
