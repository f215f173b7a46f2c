package app

import (
	"fmt"
	"strings"

	"github.com/blackwell-systems/booklets/internal/catalog"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	var (
		filter catalog.Filter
		format string
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List catalog entries and their local state",
		Long: `List the catalog with ratings, tags and whether each booklet is
already downloaded.

Examples:
  booklets list
  booklets list --tag stories --min-rating 4
  booklets list --search beanstalk --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := catalog.Load(cfg.CatalogPath)
			if err != nil {
				return err
			}
			entries = filter.Apply(cacheMgr.Annotate(entries))

			if handled, err := writeFormatted(format, entryViews(entries)); handled {
				return err
			}
			if len(entries) == 0 {
				warn("No booklets match")
				return nil
			}
			printEntryTable(entries)
			return nil
		},
	}

	cmd.Flags().StringVar(&filter.Tag, "tag", "", "Only entries with this tag")
	cmd.Flags().StringVar(&filter.Search, "search", "", "Match title or tag substring")
	cmd.Flags().Float64Var(&filter.MinRating, "min-rating", 0, "Only entries rated at least this")
	cmd.Flags().StringVar(&format, "format", "", "Output format: json or yaml")
	return cmd
}

func printEntryTable(entries []catalog.Entry) {
	idW := len("ID")
	for _, e := range entries {
		idW = max(idW, len(e.ID))
	}
	for _, e := range entries {
		state := color.HiBlackString("remote")
		switch {
		case e.HasPreview():
			state = color.GreenString("✓ preview")
		case e.Acquired():
			state = color.GreenString("✓ ready")
		}
		tags := ""
		if len(e.Tags) > 0 {
			tags = color.CyanString("[" + strings.Join(e.Tags, ",") + "]")
		}
		fmt.Printf("%-*s  %s %s  %-32s %s  %s\n",
			idW, e.ID,
			color.YellowString("%s", e.Stars()), e.RatingString(),
			e.Title, tags, state)
	}
}
