package reconcile

import (
	"context"
	"sync"

	"github.com/tablewarden/tablewarden/pkg/constants"
	"github.com/tablewarden/tablewarden/pkg/errors"
)

// lockTable hands out per-source mutual exclusion. Each source gets a
// single-slot channel semaphore, created on first use.
type lockTable struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
}

func newLockTable() *lockTable {
	return &lockTable{slots: make(map[string]chan struct{})}
}

func (l *lockTable) slot(source string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	slot, ok := l.slots[source]
	if !ok {
		slot = make(chan struct{}, 1)
		l.slots[source] = slot
	}
	return slot
}

// acquire takes the source's lock. With wait false a busy source fails
// fast with ErrInProgress; with wait true the caller blocks until the
// holder releases or the context ends, bounded by DefaultLockWait when
// the context carries no deadline. The returned release func must be
// called exactly once.
func (l *lockTable) acquire(ctx context.Context, source string, wait bool) (func(), error) {
	slot := l.slot(source)

	if !wait {
		select {
		case slot <- struct{}{}:
		default:
			return nil, &errors.InProgressError{Source: source}
		}
	} else {
		if _, ok := ctx.Deadline(); !ok {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, constants.DefaultLockWait)
			defer cancel()
		}
		select {
		case slot <- struct{}{}:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	var once sync.Once
	release := func() {
		once.Do(func() { <-slot })
	}
	return release, nil
}
