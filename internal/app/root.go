package app

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/blackwell-systems/booklets/internal/cache"
	"github.com/blackwell-systems/booklets/internal/config"
	"github.com/blackwell-systems/booklets/internal/tui"
	"github.com/blackwell-systems/booklets/internal/util"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	cfg      *config.Config
	cacheMgr *cache.Manager
	logger   = slog.New(slog.NewTextHandler(os.Stderr, nil))

	flagNoColor       bool
	flagNoInteractive bool
	flagVerbose       bool
	flagConfig        string
)

var rootCmd = &cobra.Command{
	Use:   "booklets",
	Short: "Browse, download and preview a catalog of PDF booklets",
	Long: `booklets keeps a small catalog of PDF booklets, downloads them on demand
into a scratch cache and renders a first-page preview for each.

Run 'booklets' with no arguments in a terminal to open the browser.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if tui.ShouldUseTUI(cmd) {
			return runBrowse()
		}
		return cmd.Help()
	},
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error:"), err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&flagNoInteractive, "no-interactive", false, "Disable interactive TUI mode")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Log progress and failures to stderr")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file path (default: ~/.config/booklets/config.yml)")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		util.InitColor(flagNoColor)
		logger = newLogger(flagVerbose)

		var err error
		cfg, err = config.Load(flagConfig)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		cacheMgr = cache.New(cfg.CacheDir)
		return nil
	}

	rootCmd.AddCommand(
		newListCmd(),
		newGetCmd(),
		newOpenCmd(),
		newInfoCmd(),
		newSearchCmd(),
		newWikiCmd(),
		newBrowseCmd(),
		newCacheCmd(),
		newCatalogCmd(),
		newConfigCmd(),
		newVersionCmd(),
	)
}

// newLogger logs warnings and errors by default and everything with
// --verbose.
func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// ok prints a green success line.
func ok(format string, a ...interface{}) {
	fmt.Println(color.GreenString("✓"), fmt.Sprintf(format, a...))
}

// warn prints a yellow warning line.
func warn(format string, a ...interface{}) {
	fmt.Fprintln(os.Stderr, color.YellowString("!"), fmt.Sprintf(format, a...))
}

// header prints a cyan section heading.
func header(format string, a ...interface{}) {
	fmt.Println(color.CyanString("%s", fmt.Sprintf(format, a...)))
}

func printField(label, value string) {
	fmt.Printf("  %-12s %s\n", color.CyanString("%s:", label), value)
}
