package app

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/blackwell-systems/booklets/internal/catalog"
	"github.com/spf13/cobra"
)

func newCatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Write or export the catalog file",
	}
	cmd.AddCommand(newCatalogInitCmd(), newCatalogExportCmd())
	return cmd
}

func newCatalogInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write the built-in catalog to a file for editing",
		Long: `Write the built-in catalog to a YAML file so remote_url and checksum
fields can be filled in for this deployment.

The path defaults to catalog_path, or catalog.yml next to the config file.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := catalogInitPath(args)
			if err := initCatalog(path, force); err != nil {
				return err
			}
			ok("Wrote %s", path)
			if cfg.CatalogPath != path {
				fmt.Printf("Set catalog_path: %s in %s to use it\n", path, configPath())
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	return cmd
}

func newCatalogExportCmd() *cobra.Command {
	var (
		filter catalog.Filter
		out    string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Print the active catalog in catalog file format",
		Long: `Print the active catalog, optionally filtered, as catalog YAML. The
output can be loaded again with catalog_path.

Examples:
  booklets catalog export
  booklets catalog export --tag stories -o stories.yml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := catalog.Load(cfg.CatalogPath)
			if err != nil {
				return err
			}
			entries = filter.Apply(entries)
			if out != "" {
				if err := catalog.Save(out, entries); err != nil {
					return err
				}
				ok("Exported %d booklets to %s", len(entries), out)
				return nil
			}
			return exportCatalog(cmd.OutOrStdout(), entries)
		},
	}

	cmd.Flags().StringVar(&filter.Tag, "tag", "", "Only entries with this tag")
	cmd.Flags().StringVar(&filter.Search, "search", "", "Match title or tag substring")
	cmd.Flags().Float64Var(&filter.MinRating, "min-rating", 0, "Only entries rated at least this")
	cmd.Flags().StringVarP(&out, "output", "o", "", "Write to this file instead of stdout")
	return cmd
}

func catalogInitPath(args []string) string {
	switch {
	case len(args) > 0:
		return args[0]
	case cfg.CatalogPath != "":
		return cfg.CatalogPath
	default:
		return filepath.Join(filepath.Dir(configPath()), "catalog.yml")
	}
}

// initCatalog writes the built-in seed to path.
func initCatalog(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	if err := catalog.Save(path, catalog.Seed()); err != nil {
		return fmt.Errorf("writing catalog: %w", err)
	}
	return nil
}

func exportCatalog(w io.Writer, entries []catalog.Entry) error {
	data, err := catalog.Marshal(entries)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
