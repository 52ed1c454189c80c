package cli

import (
	"fmt"
	"runtime"

	"github.com/ariel-frischer/progressdots/internal/version"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:     "version",
	Aliases: []string{"v"},
	Short:   "Display version information (v)",
	Long:    "Display version, commit, build date, and Go version information for progressdots",
	Example: `  # Show version info
  progressdots version

  # Plain output (for scripts)
  progressdots version --plain`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		plain, _ := cmd.Flags().GetBool("plain")
		if plain || !colorEnabled(cmd) {
			printPlainVersion(cmd)
			return
		}
		printPrettyVersion(cmd)
	},
}

func init() {
	versionCmd.Flags().Bool("plain", false, "Plain output without formatting")
	rootCmd.AddCommand(versionCmd)
}

// printPlainVersion prints a simple version output for scripting
func printPlainVersion(cmd *cobra.Command) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "progressdots %s\n", version.Version)
	fmt.Fprintf(out, "commit: %s\n", version.Commit)
	fmt.Fprintf(out, "built: %s\n", version.BuildDate)
	fmt.Fprintf(out, "go: %s\n", runtime.Version())
	fmt.Fprintf(out, "platform: %s\n", version.Platform())
	fmt.Fprintf(out, "source: %s\n", SourceURL)
}

func printPrettyVersion(cmd *cobra.Command) {
	out := cmd.OutOrStdout()
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()

	fmt.Fprintln(out, cyan("progressdots"), version.Version)
	info := []struct {
		label string
		value string
	}{
		{"Commit", version.ShortCommit()},
		{"Built", version.BuildDate},
		{"Go", runtime.Version()},
		{"Platform", version.Platform()},
		{"Source", SourceURL},
	}
	for _, item := range info {
		fmt.Fprintf(out, "%s  %s\n", yellow(fmt.Sprintf("%10s", item.label)), item.value)
	}
}
