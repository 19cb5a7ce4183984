package parallel

import (
	"sync"

	"github.com/YuminosukeSato/goscd/pkg/errors"
)

// Barrier blocks each caller of Wait until parties callers have arrived,
// then releases all of them and resets for the next round. Everything a
// party wrote before Wait happens-before every party's return from the
// same Wait.
//
// A barrier can be broken with Break. Once broken, pending and future
// Wait calls return the break error immediately.
type Barrier struct {
	mu         sync.Mutex
	cond       *sync.Cond
	parties    int
	waiting    int
	generation uint64
	err        error
}

// NewBarrier creates a barrier for parties participants.
func NewBarrier(parties int) (*Barrier, error) {
	if parties < 1 {
		return nil, errors.NewValidationError("barrier parties", "must be at least 1", parties)
	}
	b := &Barrier{parties: parties}
	b.cond = sync.NewCond(&b.mu)
	return b, nil
}

// Parties returns the number of participants.
func (b *Barrier) Parties() int { return b.parties }

// Wait blocks until all parties have called Wait or the barrier is broken.
func (b *Barrier) Wait() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.err != nil {
		return b.err
	}

	gen := b.generation
	b.waiting++
	if b.waiting == b.parties {
		b.waiting = 0
		b.generation++
		b.cond.Broadcast()
		return nil
	}

	for gen == b.generation && b.err == nil {
		b.cond.Wait()
	}
	if gen == b.generation {
		return b.err
	}
	return nil
}

// Break releases all waiters with err. The first break wins; later calls
// are ignored. A nil err breaks with ErrBarrierBroken.
func (b *Barrier) Break(err error) {
	if err == nil {
		err = errors.ErrBarrierBroken
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return
	}
	b.err = err
	b.cond.Broadcast()
}

// Err returns the break error, or nil while the barrier is intact.
func (b *Barrier) Err() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.err
}
