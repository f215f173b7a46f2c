package app

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/blackwell-systems/booklets/internal/cache"
	"github.com/blackwell-systems/booklets/internal/catalog"
	"github.com/blackwell-systems/booklets/internal/pdftext"
	"github.com/blackwell-systems/booklets/internal/util"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

type entryInfo struct {
	catalog.Entry `yaml:",inline"`
	LocalState    string            `json:"-" yaml:"local_path,omitempty"`
	PreviewState  *catalog.Preview  `json:"-" yaml:"preview,omitempty"`
	Size          int64             `json:"size,omitempty" yaml:"size,omitempty"`
	Pages         int               `json:"pages,omitempty" yaml:"pages,omitempty"`
	Verified      *bool             `json:"checksum_ok,omitempty" yaml:"checksum_ok,omitempty"`
	Metadata      *pdftext.Metadata `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	ValidateError string            `json:"validate_error,omitempty" yaml:"validate_error,omitempty"`
}

func newInfoCmd() *cobra.Command {
	var (
		validate bool
		format   string
	)

	cmd := &cobra.Command{
		Use:   "info <id>",
		Short: "Show catalog fields and local file details for a booklet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := catalog.Load(cfg.CatalogPath)
			if err != nil {
				return err
			}
			e, err := entryOrErr(cacheMgr.Annotate(entries), args[0])
			if err != nil {
				return err
			}

			info := inspect(*e, validate)
			if handled, err := writeFormatted(format, info); handled {
				return err
			}
			printInfo(info)
			return nil
		},
	}

	cmd.Flags().BoolVar(&validate, "validate", false, "Also run a structural PDF check")
	cmd.Flags().StringVar(&format, "format", "", "Output format: json or yaml")
	return cmd
}

// inspect gathers what can be learned from the local file, if any.
func inspect(e catalog.Entry, validate bool) entryInfo {
	info := entryInfo{Entry: e, LocalState: e.LocalPath, PreviewState: e.Preview}
	if !e.Acquired() {
		return info
	}
	if st, err := os.Stat(e.LocalPath); err == nil {
		info.Size = st.Size()
	}
	if e.Checksum.SHA256 != "" {
		err := cacheMgr.Verify(e)
		var ce *cache.ChecksumError
		switch {
		case err == nil:
			match := true
			info.Verified = &match
		case errors.As(err, &ce):
			match := false
			info.Verified = &match
		default:
			logger.Debug("checksum failed", "entry", e.ID, "error", err)
		}
	}
	if n, err := pdftext.PageCount(e.LocalPath); err == nil {
		info.Pages = n
	} else {
		logger.Debug("page count failed", "entry", e.ID, "error", err)
	}
	if meta, err := pdftext.ExtractMetadata(e.LocalPath); err == nil && !meta.Empty() {
		info.Metadata = &meta
	}
	if validate {
		if err := pdftext.Validate(e.LocalPath); err != nil {
			info.ValidateError = err.Error()
		}
	}
	return info
}

func printInfo(info entryInfo) {
	e := info.Entry
	header("Booklet: %s", e.ID)
	printField("title", e.Title)
	printField("rating", color.YellowString("%s", e.Stars())+" "+e.RatingString())
	if len(e.Tags) > 0 {
		printField("tags", strings.Join(e.Tags, ", "))
	}
	if e.RemoteURL != "" {
		printField("remote", e.RemoteURL)
	}
	if e.Checksum.SHA256 != "" {
		printField("sha256", e.Checksum.SHA256)
	}

	if !e.Acquired() {
		printField("cache", color.RedString("not downloaded"))
		return
	}
	printField("cache", color.GreenString("downloaded")+"  "+e.LocalPath)
	if info.Size > 0 {
		printField("size", util.HumanBytes(info.Size))
	}
	if info.Pages > 0 {
		printField("pages", fmt.Sprintf("%d", info.Pages))
	}
	if info.Verified != nil {
		if *info.Verified {
			printField("checksum", color.GreenString("ok"))
		} else {
			printField("checksum", color.RedString("mismatch"))
		}
	}
	if e.HasPreview() {
		printField("preview", e.Preview.Path)
	}
	if m := info.Metadata; m != nil {
		if m.Title != "" {
			printField("pdf title", m.Title)
		}
		if m.Author != "" {
			printField("pdf author", m.Author)
		}
		if m.Subject != "" {
			printField("pdf subject", m.Subject)
		}
	}
	if info.ValidateError != "" {
		printField("valid", color.RedString("%s", info.ValidateError))
	}
}
