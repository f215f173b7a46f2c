package tui

import (
	"github.com/blackwell-systems/booklets/internal/util"
	"github.com/spf13/cobra"
)

// ShouldUseTUI reports whether cmd should run interactively: stdout is a
// terminal, --no-interactive is unset, and no --format was requested.
func ShouldUseTUI(cmd *cobra.Command) bool {
	if !util.IsTTY() {
		return false
	}
	if noInteractive, _ := cmd.Flags().GetBool("no-interactive"); noInteractive {
		return false
	}
	if format, _ := cmd.Flags().GetString("format"); format != "" {
		return false
	}
	return true
}
