package git

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// dirLocks serializes work per directory path. Entries are never removed;
// a deployment only ever syncs a handful of directories.
type dirLocks struct {
	mu    sync.Mutex
	locks map[string]*semaphore.Weighted
}

func newDirLocks() *dirLocks {
	return &dirLocks{
		locks: make(map[string]*semaphore.Weighted),
	}
}

// acquire blocks until the lock for dir is held or ctx is done. The returned
// function releases the lock.
func (l *dirLocks) acquire(ctx context.Context, dir string) (func(), error) {
	l.mu.Lock()
	sem, ok := l.locks[dir]
	if !ok {
		sem = semaphore.NewWeighted(1)
		l.locks[dir] = sem
	}
	l.mu.Unlock()

	if err := sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	return func() { sem.Release(1) }, nil
}
