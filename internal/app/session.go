package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/blackwell-systems/booklets/internal/cache"
	"github.com/blackwell-systems/booklets/internal/catalog"
)

// session is one run's catalog store plus the acquirer feeding it.
type session struct {
	store   *catalog.Store
	acq     *cache.Acquirer
	waiters *waiters
}

// openSession loads the catalog and wires the acquirer from cfg. observe
// may be nil.
func openSession(log *slog.Logger, observe func(cache.Event)) (*session, error) {
	entries, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return nil, err
	}
	s := &session{
		store:   catalog.NewStore(entries),
		waiters: newWaiters(),
	}
	s.acq = cache.NewAcquirer(
		s.store,
		cacheMgr,
		cache.NewHTTPFetcher(cfg.Download.UserAgent),
		cache.PopplerPreviewer{Command: cfg.Preview.Command},
		cache.WithLogger(log),
		cache.WithPreviewSize(cache.PreviewSize{
			Width:  cfg.Preview.Width,
			Height: cfg.Preview.Height,
			Scale:  cfg.Preview.Scale,
		}),
		cache.WithObserver(func(ev cache.Event) {
			if observe != nil {
				observe(ev)
			}
			s.waiters.observe(ev)
		}),
	)
	return s, nil
}

// acquire starts acquisition of id and blocks until it reaches a
// terminal stage or ctx ends.
func (s *session) acquire(ctx context.Context, id string) (cache.Event, error) {
	if err := ctx.Err(); err != nil {
		return cache.Event{}, err
	}
	done := s.waiters.expect(id)
	s.acq.EnsureAvailable(id)
	select {
	case ev := <-done:
		return ev, nil
	case <-ctx.Done():
		return cache.Event{}, ctx.Err()
	}
}

// close waits for background work and stops the store.
func (s *session) close() {
	s.acq.Wait()
	s.store.Close()
}

// terminal reports whether no further events follow ev for its entry.
func terminal(ev cache.Event) bool {
	switch ev.Stage {
	case cache.StageInvalid, cache.StageTransferFailed, cache.StagePreviewed, cache.StagePreviewFailed:
		return true
	}
	return false
}

// waiters hands each entry's terminal event to whoever asked for it.
type waiters struct {
	mu      sync.Mutex
	pending map[string][]chan cache.Event
}

func newWaiters() *waiters {
	return &waiters{pending: map[string][]chan cache.Event{}}
}

func (w *waiters) expect(id string) <-chan cache.Event {
	ch := make(chan cache.Event, 1)
	w.mu.Lock()
	w.pending[id] = append(w.pending[id], ch)
	w.mu.Unlock()
	return ch
}

func (w *waiters) observe(ev cache.Event) {
	if !terminal(ev) {
		return
	}
	w.mu.Lock()
	chans := w.pending[ev.ID]
	delete(w.pending, ev.ID)
	w.mu.Unlock()
	for _, ch := range chans {
		ch <- ev
	}
}

// entryOrErr returns the entry or a not-found error naming the id.
func entryOrErr(entries []catalog.Entry, id string) (*catalog.Entry, error) {
	e := catalog.ByID(entries, id)
	if e == nil {
		return nil, fmt.Errorf("no booklet with id %q", id)
	}
	return e, nil
}
