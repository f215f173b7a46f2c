package app

import (
	"fmt"
	"os/exec"
	"runtime"

	"github.com/blackwell-systems/booklets/internal/cache"
	"github.com/spf13/cobra"
)

func newOpenCmd() *cobra.Command {
	var app string

	cmd := &cobra.Command{
		Use:   "open <id>",
		Short: "Open a booklet, downloading it first if needed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(logger, nil)
			if err != nil {
				return err
			}
			defer s.close()

			ev, err := s.acquire(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			switch ev.Stage {
			case cache.StageInvalid, cache.StageTransferFailed:
				return ev.Err
			}

			e, err := entryOrErr(s.store.Entries(), args[0])
			if err != nil {
				return err
			}
			return openFile(e.LocalPath, app)
		},
	}

	cmd.Flags().StringVar(&app, "app", "", "Application to open the file with")
	return cmd
}

// openFile hands path to app, or to the platform's default viewer.
func openFile(path, app string) error {
	name, args := openCommand(runtime.GOOS, path, app)
	c := exec.Command(name, args...)
	if err := c.Start(); err != nil {
		return fmt.Errorf("opening file with %q: %w", name, err)
	}
	return nil
}

func openCommand(goos, path, app string) (string, []string) {
	if app != "" {
		return app, []string{path}
	}
	switch goos {
	case "darwin":
		return "open", []string{path}
	case "windows":
		return "cmd", []string{"/c", "start", "", path}
	default:
		return "xdg-open", []string{path}
	}
}
