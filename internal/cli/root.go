// Package cli implements the progressdots command line: a minimal simulated
// orchestration host that drives the progress-dots callback from a playbook
// file.
package cli

import (
	"context"
	"errors"
	"io"
	"log"
	"os/signal"
	"syscall"

	clierrors "github.com/ariel-frischer/progressdots/internal/errors"
	"github.com/ariel-frischer/progressdots/internal/output"
	"github.com/spf13/cobra"
)

// SourceURL is the project homepage.
const SourceURL = "https://github.com/ariel-frischer/progressdots"

var rootCmd = &cobra.Command{
	Use:   "progressdots",
	Short: "Print progress dots while simulated remote tasks run",
	Long: `progressdots runs a playbook of simulated remote tasks and shows a dot every
few seconds while each task is working, the way the progress_dots callback
does inside an orchestration run.

Configuration is loaded with the following priority (highest to lowest):
  1. Command-line flags
  2. Environment variables (PROGRESS_TIME, PROGRESS_DOT, PROGRESS_COLOR, PROGRESS_CHARSET)
  3. Config file passed with --config
  4. User config (~/.config/progressdots/config.yml)
  5. Built-in defaults`,
	Example: `  # Run a playbook with a dot every 2 seconds
  progressdots run site.yml

  # Dot every half second
  PROGRESS_TIME=0.5 progressdots run site.yml

  # Show the effective configuration
  progressdots config show`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		configureLogging(cmd)
	},
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to a YAML or JSON config file")
	rootCmd.PersistentFlags().Bool("debug", false, "Write debug logs to stderr")
	rootCmd.PersistentFlags().Bool("no-color", false, "Disable colored output")
}

// Execute runs the root command and prints any error to stderr.
func Execute() error {
	// report EPIPE from writes instead of dying on SIGPIPE
	signal.Ignore(syscall.SIGPIPE)

	err := rootCmd.ExecuteContext(context.Background())
	if err != nil {
		printError(rootCmd.ErrOrStderr(), err, colorEnabled(rootCmd))
	}
	return err
}

// configureLogging sends the standard logger to stderr with --debug and
// discards it otherwise.
func configureLogging(cmd *cobra.Command) {
	debug, _ := cmd.Flags().GetBool("debug")
	if debug {
		log.SetOutput(cmd.ErrOrStderr())
		log.SetFlags(log.Ltime | log.Lmicroseconds)
		return
	}
	log.SetOutput(io.Discard)
}

// colorEnabled combines --no-color with terminal detection.
func colorEnabled(cmd *cobra.Command) bool {
	if noColor, _ := cmd.Flags().GetBool("no-color"); noColor {
		return false
	}
	return output.DetectTerminalCapabilities().SupportsColor
}

func printError(w io.Writer, err error, useColors bool) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Quiet {
		return
	}
	clierrors.Fprint(w, err, useColors)
}

// ExitCodeFor maps an error returned by Execute to a process exit code.
func ExitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	if cliErr := clierrors.AsCLIError(err); cliErr != nil {
		switch cliErr.Category {
		case clierrors.Argument:
			return ExitInvalidArguments
		case clierrors.Configuration:
			return ExitConfigError
		case clierrors.Playbook:
			return ExitPlaybookError
		}
	}
	if errors.Is(err, context.Canceled) {
		return ExitInterrupted
	}
	return ExitFailure
}
