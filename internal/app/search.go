package app

import (
	"fmt"
	"strings"

	"github.com/blackwell-systems/booklets/internal/catalog"
	"github.com/blackwell-systems/booklets/internal/pdftext"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newSearchCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "search <id> <query>",
		Short: "Find text inside a downloaded booklet",
		Long: `Search the text of a downloaded booklet, page by page. Matching ignores
case and typographic variants such as ligatures.

Requires poppler's pdftotext.

Examples:
  booklets search 2 beanstalk
  booklets search 6 "apple" --format json`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, query := args[0], strings.Join(args[1:], " ")

			entries, err := catalog.Load(cfg.CatalogPath)
			if err != nil {
				return err
			}
			e, err := entryOrErr(cacheMgr.Annotate(entries), id)
			if err != nil {
				return err
			}
			if !e.Acquired() {
				return fmt.Errorf("booklet %s is not downloaded, run 'booklets get %s' first", id, id)
			}

			matches, err := pdftext.Search(cmd.Context(), pdftext.PopplerExtractor{}, e.LocalPath, query)
			if err != nil {
				return err
			}
			if handled, err := writeFormatted(format, matches); handled {
				return err
			}
			if len(matches) == 0 {
				warn("No matches for %q in %s", query, e.Title)
				return nil
			}
			header("%d matches in %s", len(matches), e.Title)
			for _, m := range matches {
				fmt.Printf("  %s  %s\n", color.CyanString("p%-3d", m.Page), highlight(m.Snippet, query))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "", "Output format: json or yaml")
	return cmd
}

// highlight colors the first case-insensitive occurrence of query.
func highlight(s, query string) string {
	i := strings.Index(strings.ToLower(s), strings.ToLower(query))
	if i < 0 || query == "" {
		return s
	}
	j := i + len(query)
	if j > len(s) || !strings.EqualFold(s[i:j], query) {
		return s
	}
	return s[:i] + color.YellowString("%s", s[i:j]) + s[j:]
}
