package parallel

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/goscd/pkg/errors"
)

func TestParallelizeCoversAllItems(t *testing.T) {
	for _, items := range []int{0, 1, 7, 100, 1001} {
		for _, workers := range []int{1, 3, 16} {
			hits := make([]int32, items)
			ParallelizeN(items, workers, func(start, end int) {
				for i := start; i < end; i++ {
					atomic.AddInt32(&hits[i], 1)
				}
			})
			for i, h := range hits {
				require.Equal(t, int32(1), h, "items=%d workers=%d index=%d", items, workers, i)
			}
		}
	}
}

func TestParallelizeWithThreshold(t *testing.T) {
	calls := 0
	ParallelizeWithThreshold(10, 100, func(start, end int) {
		calls++
		assert.Equal(t, 0, start)
		assert.Equal(t, 10, end)
	})
	assert.Equal(t, 1, calls)
}

func TestPartitionExhaustive(t *testing.T) {
	for n := 1; n <= 40; n++ {
		for w := 1; w <= n; w++ {
			ranges, err := Partition(n, w)
			require.NoError(t, err)
			require.Len(t, ranges, w)

			next := 0
			for i, r := range ranges {
				assert.Equal(t, next, r.Start, "n=%d w=%d range %d not contiguous", n, w, i)
				assert.Greater(t, r.Len(), 0, "n=%d w=%d range %d empty", n, w, i)
				if i < w-1 {
					assert.Equal(t, n/w, r.Len())
				}
				next = r.End
			}
			assert.Equal(t, n, next)
		}
	}
}

func TestPartitionRejects(t *testing.T) {
	_, err := Partition(3, 4)
	var valErr *errors.ValidationError
	require.True(t, errors.As(err, &valErr))
	assert.Equal(t, "worker count", valErr.ParamName)

	_, err = Partition(3, 0)
	assert.Error(t, err)
}

func TestBarrierRounds(t *testing.T) {
	const parties = 4
	const rounds = 50
	b, err := NewBarrier(parties)
	require.NoError(t, err)

	var counter int64
	var wg sync.WaitGroup
	for p := 0; p < parties; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for r := 0; r < rounds; r++ {
				atomic.AddInt64(&counter, 1)
				assert.NoError(t, b.Wait())
				// Every party has incremented for this round.
				assert.GreaterOrEqual(t, atomic.LoadInt64(&counter), int64((r+1)*parties))
				assert.NoError(t, b.Wait())
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(parties*rounds), counter)
}

func TestBarrierBreakReleasesWaiters(t *testing.T) {
	b, err := NewBarrier(3)
	require.NoError(t, err)

	cause := errors.New("worker failed")
	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() { errs <- b.Wait() }()
	}
	time.Sleep(10 * time.Millisecond)
	b.Break(cause)

	for i := 0; i < 2; i++ {
		assert.ErrorIs(t, <-errs, cause)
	}
	assert.ErrorIs(t, b.Wait(), cause)
	b.Break(errors.New("second"))
	assert.ErrorIs(t, b.Err(), cause)
}

func TestNewBarrierRejectsZero(t *testing.T) {
	_, err := NewBarrier(0)
	assert.Error(t, err)
}

func TestRunSPMDLeaderPhase(t *testing.T) {
	const workers = 4
	const rounds = 20
	shared := 0
	seen := make([][]int, workers)

	err := RunSPMD(context.Background(), SPMDConfig{Workers: workers}, func(w *Worker) error {
		for r := 0; r < rounds; r++ {
			if err := w.LeaderPhase(func() error {
				shared++
				return nil
			}); err != nil {
				return err
			}
			// Leader writes are visible after the phase barrier.
			seen[w.ID()] = append(seen[w.ID()], shared)
			if err := w.Sync(); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	for id := 0; id < workers; id++ {
		require.Len(t, seen[id], rounds)
		for r, v := range seen[id] {
			assert.Equal(t, r+1, v)
		}
	}
}

func TestRunSPMDFailureBreaksBarrier(t *testing.T) {
	cause := errors.New("boom")
	err := RunSPMD(context.Background(), SPMDConfig{Workers: 3}, func(w *Worker) error {
		if w.ID() == 2 {
			return cause
		}
		for {
			if err := w.Sync(); err != nil {
				return err
			}
		}
	})
	assert.ErrorIs(t, err, cause)
}

func TestRunSPMDRecoversPanic(t *testing.T) {
	err := RunSPMD(context.Background(), SPMDConfig{Workers: 2}, func(w *Worker) error {
		if w.IsLeader() {
			panic("leader exploded")
		}
		return w.Sync()
	})
	var panicErr *errors.PanicError
	require.True(t, errors.As(err, &panicErr))
	assert.Equal(t, "worker 0", panicErr.Operation)
}

func TestRunSPMDCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var rounds atomic.Int64

	err := RunSPMD(ctx, SPMDConfig{Workers: 3}, func(w *Worker) error {
		for {
			if err := w.LeaderPhase(func() error {
				if rounds.Add(1) == 5 {
					cancel()
				}
				return nil
			}); err != nil {
				return err
			}
		}
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int64(5), rounds.Load())
}

func TestRunSPMDPinned(t *testing.T) {
	err := RunSPMD(context.Background(), SPMDConfig{Workers: 2, Pin: true}, func(w *Worker) error {
		return w.Sync()
	})
	require.NoError(t, err)
}

func TestRunSPMDWarnsWhenPinnedWorkersShareCPUs(t *testing.T) {
	n, err := AllowedCPUs()
	require.NoError(t, err)
	if n == 0 {
		t.Skip("thread to CPU binding not supported on this platform")
	}

	var mu sync.Mutex
	var warnings []error
	errors.SetZerologWarnFunc(nil)
	errors.SetWarningHandler(func(w error) {
		mu.Lock()
		defer mu.Unlock()
		warnings = append(warnings, w)
	})
	t.Cleanup(func() { errors.SetWarningHandler(func(error) {}) })

	body := func(w *Worker) error { return w.Sync() }

	require.NoError(t, RunSPMD(context.Background(), SPMDConfig{Workers: n, Pin: true}, body))
	mu.Lock()
	assert.Empty(t, warnings)
	mu.Unlock()

	require.NoError(t, RunSPMD(context.Background(), SPMDConfig{Workers: n + 1, Pin: true}, body))
	mu.Lock()
	defer mu.Unlock()
	require.Len(t, warnings, 1)
	var ve *errors.ValueError
	require.True(t, errors.As(warnings[0], &ve))
	assert.Contains(t, ve.Message, "share")
}

func TestRunSPMDRejectsZeroWorkers(t *testing.T) {
	err := RunSPMD(context.Background(), SPMDConfig{Workers: 0}, func(w *Worker) error { return nil })
	assert.Error(t, err)
}
