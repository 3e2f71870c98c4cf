package cli

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

// Global flags available to all subcommands
var (
	configFlag  string
	noColorFlag bool
)

// rootCmd is the base "dgx" command.
var rootCmd = &cobra.Command{
	Use:   "dgx",
	Short: "Operator tools for shared multi-GPU machines",
	Long: `dgx bundles the utilities operators reach for on shared GPU servers:
a live per-GPU utilization grapher, a Slurm queue allocation viewer,
and a Docker container GPU inspector.

Examples:
  dgx graph
  dgx queue
  dgx queue --all
  dgx containers --interval 5`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if noColorFlag {
			lipgloss.SetColorProfile(termenv.Ascii)
		}
	},
}

// Execute runs the CLI. The returned error has already been printed;
// main only decides the exit code from it.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "",
		"config file (default: .dgx.yaml, then ~/.config/dgx/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&noColorFlag, "no-color", false,
		"disable colored output")
}
