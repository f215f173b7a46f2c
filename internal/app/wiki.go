package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/blackwell-systems/booklets/internal/wiki"
	"github.com/charmbracelet/x/ansi"
	"github.com/spf13/cobra"
)

func newWikiCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "wiki <topic>...",
		Short: "Look up short encyclopedia summaries",
		Long: `Print the lead paragraph of an encyclopedia page for each topic, for
example a word spotted in a picture book.

Examples:
  booklets wiki "Brown bear"
  booklets wiki apple banana cherry --format json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := wiki.NewClient(cfg.Wiki.APIBase, cfg.Download.UserAgent, cfg.Wiki.RequestsPerSecond)
			summaries, err := lookupAll(cmd.Context(), client, args)
			if err != nil {
				return err
			}
			if handled, err := writeFormatted(format, summaries); handled {
				return err
			}
			for i, s := range summaries {
				if i > 0 {
					fmt.Println()
				}
				printSummary(s)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "", "Output format: json or yaml")
	return cmd
}

func printSummary(s *wiki.Summary) {
	header("%s", s.Title)
	fmt.Println(ansi.Wordwrap(s.Extract, 76, " -"))
	if s.PageURL != "" {
		printField("page", s.PageURL)
	}
	if s.ImageURL != "" {
		printField("image", s.ImageURL)
	}
}

// lookupAll fetches topics in order. Missing pages are warned about and
// skipped; any other failure aborts.
func lookupAll(ctx context.Context, client *wiki.Client, topics []string) ([]*wiki.Summary, error) {
	var out []*wiki.Summary
	for _, t := range topics {
		s, err := client.Summary(ctx, t)
		if errors.Is(err, wiki.ErrNotFound) {
			warn("No page for %q", strings.TrimSpace(t))
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no summaries found")
	}
	return out, nil
}
