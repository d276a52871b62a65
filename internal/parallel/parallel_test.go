package parallel

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFor(t *testing.T) {
	cfg := DefaultConfig()

	var counter int64
	n := 1000

	For(n, func(_ int) {
		atomic.AddInt64(&counter, 1)
	}, cfg)

	assert.Equal(t, int64(n), counter)
}

func TestFor_EveryIndexOnce(t *testing.T) {
	cfg := Config{Enabled: true, NumWorkers: 4, MinChunkSize: 8}

	seen := make([]int32, 257)
	For(len(seen), func(i int) {
		atomic.AddInt32(&seen[i], 1)
	}, cfg)

	for i, v := range seen {
		assert.Equal(t, int32(1), v, "index %d", i)
	}
}

func TestFor_Sequential(t *testing.T) {
	cfg := Config{Enabled: false}

	var order []int
	For(5, func(i int) {
		order = append(order, i)
	}, cfg)

	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestWithWorkers(t *testing.T) {
	cfg := DefaultConfig().WithWorkers(1)
	assert.False(t, cfg.Enabled)

	cfg = cfg.WithWorkers(8)
	assert.True(t, cfg.Enabled)
	assert.Equal(t, 8, cfg.NumWorkers)
}

func TestEach(t *testing.T) {
	bad := errors.New("bad file")
	cfg := Config{Enabled: true, NumWorkers: 3}

	var ran int64
	errs := Each(10, func(i int) error {
		atomic.AddInt64(&ran, 1)
		if i%4 == 0 {
			return bad
		}
		return nil
	}, cfg)

	assert.Equal(t, int64(10), ran, "failures must not stop other jobs")
	for i, err := range errs {
		if i%4 == 0 {
			assert.ErrorIs(t, err, bad, "job %d", i)
		} else {
			assert.NoError(t, err, "job %d", i)
		}
	}
}

func TestEach_BoundedConcurrency(t *testing.T) {
	var inFlight, peak int64
	cfg := Config{Enabled: true, NumWorkers: 2}

	Each(20, func(_ int) error {
		cur := atomic.AddInt64(&inFlight, 1)
		for {
			p := atomic.LoadInt64(&peak)
			if cur <= p || atomic.CompareAndSwapInt64(&peak, p, cur) {
				break
			}
		}
		atomic.AddInt64(&inFlight, -1)
		return nil
	}, cfg)

	assert.LessOrEqual(t, peak, int64(2))
}

func TestEach_Empty(t *testing.T) {
	assert.Empty(t, Each(0, func(int) error { return nil }, DefaultConfig()))
}
