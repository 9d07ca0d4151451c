package organize

import (
	"context"
	"sync"
	"time"

	"github.com/tdelacour/housekeep/pkg/models"
	"github.com/tdelacour/housekeep/pkg/plan"
)

// pathLocks serializes workers that target the same destination path.
// Two source files with the same name and category would otherwise race
// on the exists-check and both attempt the final rename.
type pathLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newPathLocks() *pathLocks {
	return &pathLocks{locks: make(map[string]*sync.Mutex)}
}

// acquire locks the mutex for path and returns its release func
func (p *pathLocks) acquire(path string) func() {
	p.mu.Lock()
	l, ok := p.locks[path]
	if !ok {
		l = &sync.Mutex{}
		p.locks[path] = l
	}
	p.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// processConcurrent fans entries out to a bounded worker pool. The
// producer stops feeding once the deadline passes; in-flight moves
// always complete so no file is left mid-copy. Returns true if the
// budget expired.
func (r *Runner) processConcurrent(ctx context.Context, planner *plan.Planner, entries []models.FileEntry, deadline time.Time, report *models.RunReport) bool {
	workers := r.spec.MaxWorkers
	if workers > len(entries) {
		workers = len(entries)
	}
	if workers < 1 {
		workers = 1
	}

	tasks := make(chan models.FileEntry, workers)
	locks := newPathLocks()

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for entry := range tasks {
				r.processEntryLocked(ctx, planner, entry, report, locks)
			}
		}()
	}

	timedOut := false
	for _, entry := range entries {
		if !deadline.IsZero() && time.Now().After(deadline) {
			timedOut = true
			break
		}
		select {
		case tasks <- entry:
		case <-ctx.Done():
			timedOut = false
			close(tasks)
			wg.Wait()
			return timedOut
		}
	}
	close(tasks)
	wg.Wait()
	return timedOut
}

// processEntryLocked holds the destination lock for the duration of one
// move. Entries without a destination need no lock.
func (r *Runner) processEntryLocked(ctx context.Context, planner *plan.Planner, entry models.FileEntry, report *models.RunReport, locks *pathLocks) {
	cat := r.table.Classify(entry.Ext)
	if cat == models.CategoryUnknown {
		r.processEntry(ctx, planner, entry, report)
		return
	}

	dest, err := planner.Destination(entry, cat)
	if err != nil {
		r.processEntry(ctx, planner, entry, report)
		return
	}

	release := locks.acquire(dest)
	defer release()
	r.processEntry(ctx, planner, entry, report)
}
