package app

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"

	"github.com/blackwell-systems/booklets/internal/cache"
	"github.com/blackwell-systems/booklets/internal/catalog"
	"github.com/blackwell-systems/booklets/internal/util"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newGetCmd() *cobra.Command {
	var (
		all    bool
		copyTo string
	)

	cmd := &cobra.Command{
		Use:   "get <id>... | --all",
		Short: "Download booklets into the cache and render their previews",
		Long: `Download one or more booklets into the scratch cache. Booklets already
cached are not downloaded again; their preview is refreshed.

Examples:
  booklets get 3
  booklets get 1 2 5 --to ~/Desktop
  booklets get --all`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if all == (len(args) > 0) {
				return fmt.Errorf("give one or more ids, or --all")
			}

			s, err := openSession(logger, printEvent)
			if err != nil {
				return err
			}
			defer s.close()

			ids := dedupe(args)
			if all {
				ids = nil
				for _, e := range s.store.Entries() {
					ids = append(ids, e.ID)
				}
			}

			failed, err := getAll(cmd.Context(), s, ids, cfg.Download.EffectiveConcurrency())
			if err != nil {
				return err
			}

			if copyTo != "" {
				if err := copyAcquired(s.store.Entries(), ids, copyTo); err != nil {
					return err
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d booklets failed", failed, len(ids))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Download every catalog entry")
	cmd.Flags().StringVar(&copyTo, "to", "", "Also copy downloaded files into this directory")
	return cmd
}

// getAll acquires ids with at most limit in flight and returns how many
// did not end with a local file.
func getAll(ctx context.Context, s *session, ids []string, limit int) (int, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	var failed atomic.Int32
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for _, id := range ids {
		g.Go(func() error {
			ev, err := s.acquire(ctx, id)
			if err != nil {
				return err
			}
			if ev.Stage == cache.StageInvalid || ev.Stage == cache.StageTransferFailed {
				failed.Add(1)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	return int(failed.Load()), nil
}

// printEvent reports acquisition progress on the terminal. Called from
// acquirer goroutines.
func printEvent(ev cache.Event) {
	switch ev.Stage {
	case cache.StageAcquired:
		ok("%s  %s", color.WhiteString("%s", ev.ID), ev.Path)
	case cache.StagePreviewed:
		ok("%s  preview %s", color.WhiteString("%s", ev.ID), filepath.Base(ev.Path))
	case cache.StageInvalid, cache.StageTransferFailed:
		warn("%s: %v", ev.ID, ev.Err)
	case cache.StagePreviewFailed:
		warn("%s: %v (%s)", ev.ID, ev.Err, cache.PopplerInstallHint())
	}
}

func copyAcquired(entries []catalog.Entry, ids []string, dir string) error {
	dir = util.ExpandHome(dir)
	if err := util.EnsureDir(dir); err != nil {
		return err
	}
	for _, id := range ids {
		e := catalog.ByID(entries, id)
		if e == nil || !e.Acquired() {
			continue
		}
		dst := filepath.Join(dir, filepath.Base(e.LocalPath))
		if err := util.CopyFile(e.LocalPath, dst); err != nil {
			return err
		}
		ok("Copied to %s", dst)
	}
	return nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
