package cache

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sync"

	"github.com/blackwell-systems/booklets/internal/catalog"
)

// Stage names the terminal outcome of one EnsureAvailable step.
type Stage string

// Stages reported to observers.
const (
	StageInvalid        Stage = "invalid"
	StageAcquired       Stage = "acquired"
	StageTransferFailed Stage = "transfer_failed"
	StagePreviewed      Stage = "previewed"
	StagePreviewFailed  Stage = "preview_failed"
)

// Event is delivered to observers from background goroutines.
type Event struct {
	ID    string
	Stage Stage
	Path  string
	Err   error
}

// PreviewSize is the fixed preview box in device-independent units.
type PreviewSize struct {
	Width  int
	Height int
	Scale  float64
}

// DefaultPreviewSize matches the catalog card thumbnail.
var DefaultPreviewSize = PreviewSize{Width: 100, Height: 140, Scale: 2}

// Acquirer makes catalog documents available locally and derives their
// previews. Results reach the catalog only through Store.Update.
type Acquirer struct {
	store     *catalog.Store
	cache     *Manager
	fetcher   Fetcher
	previewer Previewer
	size      PreviewSize
	log       *slog.Logger
	observer  func(Event)

	wg sync.WaitGroup
}

// Option configures an Acquirer.
type Option func(*Acquirer)

// WithPreviewSize overrides DefaultPreviewSize.
func WithPreviewSize(s PreviewSize) Option {
	return func(a *Acquirer) { a.size = s }
}

// WithLogger sets the logger for failure and progress events.
func WithLogger(l *slog.Logger) Option {
	return func(a *Acquirer) { a.log = l }
}

// WithObserver registers fn to receive one Event per terminal outcome.
// fn is called from background goroutines.
func WithObserver(fn func(Event)) Option {
	return func(a *Acquirer) { a.observer = fn }
}

// NewAcquirer wires the store, cache and the two external capabilities.
func NewAcquirer(store *catalog.Store, cache *Manager, fetcher Fetcher, previewer Previewer, opts ...Option) *Acquirer {
	a := &Acquirer{
		store:     store,
		cache:     cache,
		fetcher:   fetcher,
		previewer: previewer,
		size:      DefaultPreviewSize,
		log:       slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// EnsureAvailable makes sure the document for entryID is in the cache,
// downloading it if needed, then derives its preview. It never blocks on
// I/O and never returns an error: failures are logged and reported to the
// observer, and leave the entry unchanged.
//
// Two overlapping calls for the same absent file may both download it.
// The second rename replaces the first file with identical content.
func (a *Acquirer) EnsureAvailable(entryID string) {
	log := a.log.With("entry", entryID)

	entry, ok := a.store.Get(entryID)
	if !ok {
		a.invalid(log, entryID, fmt.Errorf("%w: no entry with id %q", ErrInvalidReference, entryID))
		return
	}
	u, err := entry.RemoteLocation()
	if err != nil {
		a.invalid(log, entryID, fmt.Errorf("%w: %v", ErrInvalidReference, err))
		return
	}
	localPath, ok := a.cache.LocalPath(u)
	if !ok {
		a.invalid(log, entryID, fmt.Errorf("%w: %s has no file name", ErrInvalidReference, u))
		return
	}

	if a.cache.Exists(localPath) {
		log.Debug("already cached", "path", localPath)
		a.acquired(entryID, localPath)
		return
	}

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := a.transfer(entry, u, localPath); err != nil {
			log.Warn("download failed", "url", u.String(), "error", err)
			a.emit(Event{ID: entryID, Stage: StageTransferFailed, Path: localPath, Err: err})
			return
		}
		a.acquired(entryID, localPath)
	}()
}

// Wait blocks until every transfer and preview started so far has
// finished and its catalog update has been posted.
func (a *Acquirer) Wait() {
	a.wg.Wait()
}

func (a *Acquirer) invalid(log *slog.Logger, id string, err error) {
	log.Warn("cannot acquire entry", "error", err)
	a.emit(Event{ID: id, Stage: StageInvalid, Err: err})
}

// transfer downloads into the cache unless another call already did.
func (a *Acquirer) transfer(entry catalog.Entry, u *url.URL, localPath string) error {
	if a.cache.Exists(localPath) {
		return nil
	}

	a.log.Info("downloading", "entry", entry.ID, "url", u.String())
	body, err := a.fetcher.Fetch(context.Background(), u)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTransfer, err)
	}
	defer func() { _ = body.Close() }()

	if err := a.cache.Store(localPath, body, entry.Checksum.SHA256); err != nil {
		return fmt.Errorf("%w: %w", ErrTransfer, err)
	}
	return nil
}

// acquired records the local path and starts preview derivation.
func (a *Acquirer) acquired(id, localPath string) {
	a.store.Update(id, func(e catalog.Entry) catalog.Entry {
		e.LocalPath = localPath
		return e
	})
	a.emit(Event{ID: id, Stage: StageAcquired, Path: localPath})

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.derivePreview(id, localPath)
	}()
}

func (a *Acquirer) derivePreview(id, localPath string) {
	req := PreviewRequest{
		Source: localPath,
		Dest:   a.cache.PreviewPath(localPath),
		Width:  a.size.Width,
		Height: a.size.Height,
		Scale:  a.size.Scale,
	}
	preview, err := a.previewer.Preview(context.Background(), req)
	if err == nil && preview == nil {
		err = fmt.Errorf("previewer returned no image")
	}
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrPreview, err)
		a.log.Warn("preview generation failed", "entry", id, "path", localPath, "error", err)
		a.emit(Event{ID: id, Stage: StagePreviewFailed, Path: localPath, Err: err})
		return
	}

	a.store.Update(id, func(e catalog.Entry) catalog.Entry {
		e.LocalPath = localPath
		e.Preview = preview
		return e
	})
	a.log.Debug("preview ready", "entry", id, "preview", preview.Path)
	a.emit(Event{ID: id, Stage: StagePreviewed, Path: preview.Path})
}

func (a *Acquirer) emit(ev Event) {
	if a.observer != nil {
		a.observer(ev)
	}
}
