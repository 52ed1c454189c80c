package cli

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ariel-frischer/progressdots/internal/dots"
	clierrors "github.com/ariel-frischer/progressdots/internal/errors"
	"github.com/ariel-frischer/progressdots/internal/lifecycle"
	"github.com/ariel-frischer/progressdots/internal/output"
	"github.com/ariel-frischer/progressdots/internal/playbook"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run <playbook.yml>",
	Short: "Run a playbook of simulated tasks with progress dots",
	Long: `Run a playbook of simulated tasks with progress dots.

A playbook is a YAML list of plays. Each task waits for its duration on every
host, at most 'forks' hosts at a time, while a dot is printed every
PROGRESS_TIME seconds. A host that fails a task is skipped for the rest of the
play.

  - name: web servers
    hosts: [web1, web2]
    forks: 2
    tasks:
      - name: install packages
        duration: 5s
      - name: restart nginx
        duration: 1s
        fail: [web2]`,
	Example: `  # Run with the default interval
  progressdots run site.yml

  # Print a dot every 500ms
  progressdots run --interval 0.5 site.yml`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 {
			return clierrors.MissingPlaybookArgument()
		}
		return nil
	},
	RunE: runPlaybook,
}

func init() {
	runCmd.Flags().Float64("interval", 0, "Seconds between progress dots (overrides PROGRESS_TIME)")
	rootCmd.AddCommand(runCmd)
}

func runPlaybook(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	pb, err := loadPlaybook(args[0])
	if err != nil {
		return err
	}

	console, err := output.NewTerminal(output.TerminalConfig{
		Stdout:  cmd.OutOrStdout(),
		Stderr:  cmd.ErrOrStderr(),
		Color:   colorEnabled(cmd),
		Charset: cfg.Charset,
	})
	if err != nil {
		return clierrors.UnknownCharset(cfg.Charset)
	}

	plugin, err := dots.New(console, dots.Options{
		Interval: cfg.Interval(),
		Dot:      cfg.Dot,
		Color:    cfg.Color,
	})
	if err != nil {
		return clierrors.WrapWithMessage(err, clierrors.Configuration, "creating progress callback")
	}

	banner := playbook.NewBanner(plugin, output.GetTerminalWidth())
	dispatcher := lifecycle.NewDispatcher(banner, plugin)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_, runErr := playbook.NewRunner(dispatcher).Run(ctx, pb)
	closeErr := dispatcher.Close()

	switch {
	case errors.Is(runErr, playbook.ErrHostsFailed):
		return &ExitError{Code: ExitTaskFailed, Err: errors.Join(runErr, closeErr), Quiet: closeErr == nil}
	case runErr != nil && ctx.Err() != nil:
		return &ExitError{Code: ExitInterrupted, Err: fmt.Errorf("run interrupted: %w", runErr)}
	case runErr != nil:
		return clierrors.WrapWithMessage(errors.Join(runErr, closeErr), clierrors.Output, "running playbook")
	case closeErr != nil:
		return clierrors.WrapWithMessage(closeErr, clierrors.Output, "stopping progress callback")
	}
	return nil
}

func loadPlaybook(path string) (*playbook.Playbook, error) {
	pb, err := playbook.Load(path)
	if err == nil {
		return pb, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return nil, clierrors.PlaybookNotFound(path)
	}
	return nil, clierrors.InvalidPlaybook(path, err)
}
