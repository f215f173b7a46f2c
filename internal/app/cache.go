package app

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/blackwell-systems/booklets/internal/cache"
	"github.com/blackwell-systems/booklets/internal/catalog"
	"github.com/blackwell-systems/booklets/internal/util"
	"github.com/spf13/cobra"
)

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the download cache",
		Long:  "Manage the scratch directory holding downloaded booklets and their previews.",
	}
	cmd.AddCommand(
		newCacheInfoCmd(),
		newCacheClearCmd(),
		newCacheIndexCmd(),
		newCacheVerifyCmd(),
	)
	return cmd
}

func newCacheInfoCmd() *cobra.Command {
	var files bool

	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show cache location and disk usage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			count, size, err := cacheMgr.Usage()
			if err != nil {
				return err
			}
			entries, err := catalog.Load(cfg.CatalogPath)
			if err != nil {
				return err
			}
			var missing []catalog.Entry
			for _, e := range cacheMgr.Annotate(entries) {
				if !e.Acquired() {
					missing = append(missing, e)
				}
			}

			header("Cache")
			printField("dir", cacheMgr.Dir())
			printField("documents", fmt.Sprintf("%d", count))
			printField("size", util.HumanBytes(size))
			printField("catalog", fmt.Sprintf("%d of %d downloaded", len(entries)-len(missing), len(entries)))

			if files {
				paths, err := cacheMgr.Files()
				if err != nil {
					return err
				}
				fmt.Println()
				for _, p := range paths {
					rel, _ := filepath.Rel(cacheMgr.Dir(), p)
					fmt.Printf("  %s\n", rel)
				}
			}
			if len(missing) > 0 {
				fmt.Println()
				warn("%d booklets not downloaded:", len(missing))
				for _, e := range missing {
					fmt.Printf("  - %s (%s)\n", e.ID, e.Title)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&files, "files", false, "List every cached file")
	return cmd
}

func newCacheClearCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear [id...]",
		Short: "Remove downloaded booklets and previews",
		Long: `Remove booklets from the cache. With no ids the whole cache is cleared.
They will be downloaded again on the next get or browse.

Examples:
  booklets cache clear 2 3
  booklets cache clear --yes`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return clearEntries(args)
			}
			count, size, err := cacheMgr.Usage()
			if err != nil {
				return err
			}
			if count == 0 {
				ok("Cache is already empty")
				return nil
			}
			if !yes {
				fmt.Printf("This will remove %d cached files (%s). Continue? [y/N] ", count, util.HumanBytes(size))
				if !confirm(os.Stdin) {
					return fmt.Errorf("cancelled")
				}
			}
			if err := cacheMgr.Clear(); err != nil {
				return fmt.Errorf("clearing cache: %w", err)
			}
			ok("Cleared %d files (%s)", count, util.HumanBytes(size))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func clearEntries(ids []string) error {
	entries, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return err
	}
	annotated := cacheMgr.Annotate(entries)
	removed := 0
	for _, id := range ids {
		e, err := entryOrErr(annotated, id)
		if err != nil {
			warn("%v", err)
			continue
		}
		if !e.Acquired() {
			fmt.Printf("%s: not cached\n", id)
			continue
		}
		if err := cacheMgr.Remove(e.LocalPath); err != nil {
			warn("Failed to remove %s: %v", id, err)
			continue
		}
		removed++
	}
	if removed > 0 {
		ok("Removed %d booklets from cache", removed)
	}
	return nil
}

func newCacheIndexCmd() *cobra.Command {
	var open bool

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Write an HTML gallery of downloaded booklets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := catalog.Load(cfg.CatalogPath)
			if err != nil {
				return err
			}
			n, err := cacheMgr.WriteIndex(cacheMgr.Annotate(entries))
			if err != nil {
				return err
			}
			ok("Wrote %s (%d booklets)", cacheMgr.IndexPath(), n)
			if open {
				return openFile(cacheMgr.IndexPath(), "")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&open, "open", false, "Open the gallery in the default browser")
	return cmd
}

func newCacheVerifyCmd() *cobra.Command {
	var remove bool

	cmd := &cobra.Command{
		Use:   "verify [id...]",
		Short: "Check cached booklets against their catalog checksums",
		Long: `Hash every cached booklet that has a sha256 in the catalog and report
mismatches. With --remove, corrupt files are deleted so the next get
downloads them again.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := catalog.Load(cfg.CatalogPath)
			if err != nil {
				return err
			}
			entries = cacheMgr.Annotate(entries)
			if len(args) > 0 {
				var picked []catalog.Entry
				for _, id := range args {
					e, err := entryOrErr(entries, id)
					if err != nil {
						return err
					}
					picked = append(picked, *e)
				}
				entries = picked
			}

			res := verifyEntries(cacheMgr, entries, remove)
			ok("%d verified, %d without checksum, %d not cached", res.verified, res.unchecked, res.missing)
			if len(res.corrupt) > 0 {
				return fmt.Errorf("%d corrupt: %s", len(res.corrupt), strings.Join(res.corrupt, ", "))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&remove, "remove", false, "Delete booklets whose checksum does not match")
	return cmd
}

type verifyResult struct {
	verified  int
	unchecked int
	missing   int
	corrupt   []string
}

func verifyEntries(m *cache.Manager, entries []catalog.Entry, remove bool) verifyResult {
	var res verifyResult
	for _, e := range entries {
		if !e.Acquired() {
			res.missing++
			continue
		}
		if e.Checksum.SHA256 == "" {
			res.unchecked++
			continue
		}
		err := m.Verify(e)
		var ce *cache.ChecksumError
		switch {
		case err == nil:
			res.verified++
		case errors.As(err, &ce):
			warn("%s: %v", e.ID, ce)
			res.corrupt = append(res.corrupt, e.ID)
			if remove {
				if err := m.Remove(e.LocalPath); err != nil {
					warn("Failed to remove %s: %v", e.ID, err)
				}
			}
		default:
			warn("%s: %v", e.ID, err)
		}
	}
	return res
}

// confirm reads one line and accepts y or yes.
func confirm(in io.Reader) bool {
	line, _ := bufio.NewReader(in).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}
