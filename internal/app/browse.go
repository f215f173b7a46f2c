package app

import (
	"log/slog"
	"sync"

	"github.com/blackwell-systems/booklets/internal/cache"
	"github.com/blackwell-systems/booklets/internal/tui"
	"github.com/spf13/cobra"
)

func newBrowseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse the catalog as a grid and download booklets",
		Long: `Open the interactive grid. Enter or g downloads the selected booklet and
renders its preview in the background; o opens a downloaded booklet.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBrowse()
		},
	}
}

func runBrowse() error {
	// Log output would corrupt the alternate screen.
	quiet := slog.New(slog.DiscardHandler)

	queue := newEventQueue()
	s, err := openSession(quiet, queue.push)
	if err != nil {
		return err
	}
	// In-flight downloads finish before exit so no partial state is left.
	defer s.close()

	done := make(chan struct{})
	go queue.run(done)

	snapshots, cancel := s.store.Subscribe(8)
	res, err := tui.RunGrid(tui.GridOptions{
		Snapshots: snapshots,
		Events:    queue.out,
		Acquire:   s.acq.EnsureAvailable,
		Protocol:  tui.DetectImageProtocol(),
	})
	close(done)
	cancel()
	if err != nil {
		return err
	}
	if res.Action == tui.ActionOpen && res.Entry != nil {
		return openFile(res.Entry.LocalPath, "")
	}
	return nil
}

// eventQueue hands acquisition events to the grid in order. push never
// blocks and never drops; it may be called from the grid's own Update.
type eventQueue struct {
	mu   sync.Mutex
	buf  []cache.Event
	wake chan struct{}
	out  chan cache.Event
}

func newEventQueue() *eventQueue {
	return &eventQueue{
		wake: make(chan struct{}, 1),
		out:  make(chan cache.Event),
	}
}

func (q *eventQueue) push(ev cache.Event) {
	q.mu.Lock()
	q.buf = append(q.buf, ev)
	q.mu.Unlock()
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// run delivers queued events to out until done is closed.
func (q *eventQueue) run(done <-chan struct{}) {
	for {
		q.mu.Lock()
		if len(q.buf) == 0 {
			q.mu.Unlock()
			select {
			case <-q.wake:
				continue
			case <-done:
				return
			}
		}
		ev := q.buf[0]
		q.buf = q.buf[1:]
		q.mu.Unlock()

		select {
		case q.out <- ev:
		case <-done:
			return
		}
	}
}
