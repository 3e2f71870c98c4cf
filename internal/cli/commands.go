package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/yvan674/dgx-tools/internal/errors"
)

// Command-specific flags
var (
	graphIntervalFlag      float64
	queueIntervalFlag      float64
	queueAllFlag           bool
	containersIntervalFlag float64
	initForceFlag          bool
)

// graphCmd charts GPU utilization and memory live.
var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Live per-GPU utilization and memory charts",
	Long: `Poll nvidia-smi and draw one panel per GPU: a scrolling utilization
line chart plus a memory gauge. Press q to quit.

Examples:
  dgx graph
  dgx graph --interval 0.5`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return graphCommand(graphIntervalFlag, cmd.Flags().Changed("interval"))
	},
}

// queueCmd shows Slurm GPU allocations.
var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "Slurm queue GPU allocations and remaining resources",
	Long: `Show every RUNNING Slurm job with its CPU, memory, and GPU
allocation, then what's left of the machine's capacity.

With --all, walk every machine in the config over SSH and print one
section per machine. A machine that can't be reached gets a notice; the
rest are still shown.

Examples:
  dgx queue
  dgx queue --all
  dgx queue --interval 10`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return queueCommand(queueAllFlag, queueIntervalFlag)
	},
}

// containersCmd shows Docker container GPU allocations.
var containersCmd = &cobra.Command{
	Use:   "containers",
	Short: "Docker containers and the CPUs/GPUs they hold",
	Long: `Inspect every running container: who started it (from its cluster
mounts), its image, its cpuset, and which GPUs it holds.

Examples:
  dgx containers
  dgx containers --interval 5`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return containersCommand(containersIntervalFlag)
	},
}

// initCmd creates a new .dgx.yaml configuration.
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a .dgx.yaml configuration",
	Long: `Initialize a dgx configuration file with interactive prompts:
machine capacity for the queue summary and the SSH aliases queried by
queue --all.

Examples:
  dgx init
  dgx init --force`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return initCommand(initForceFlag)
	},
}

// completionCmd generates shell completion scripts.
var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `Generate shell completion scripts for dgx.

Examples:
  # Bash
  dgx completion bash > /etc/bash_completion.d/dgx

  # Zsh
  dgx completion zsh > "${fpath[1]}/_dgx"

  # Fish
  dgx completion fish > ~/.config/fish/completions/dgx.fish`,
	ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletion(os.Stdout)
		case "zsh":
			return rootCmd.GenZshCompletion(os.Stdout)
		case "fish":
			return rootCmd.GenFishCompletion(os.Stdout, true)
		case "powershell":
			return rootCmd.GenPowerShellCompletion(os.Stdout)
		default:
			return errors.New(errors.ErrConfig,
				"Unknown shell: "+args[0],
				"Supported shells: bash, zsh, fish, powershell")
		}
	},
}

func init() {
	graphCmd.Flags().Float64VarP(&graphIntervalFlag, "interval", "i", 0,
		"refresh interval in seconds (default from config, usually 1)")

	queueCmd.Flags().BoolVarP(&queueAllFlag, "all", "a", false,
		"query every machine in the config over SSH")
	queueCmd.Flags().Float64VarP(&queueIntervalFlag, "interval", "i", 0,
		"re-run every N seconds (0 = print once)")

	containersCmd.Flags().Float64VarP(&containersIntervalFlag, "interval", "i", 0,
		"re-run every N seconds (0 = print once)")

	initCmd.Flags().BoolVarP(&initForceFlag, "force", "f", false,
		"overwrite existing config")

	rootCmd.AddCommand(graphCmd)
	rootCmd.AddCommand(queueCmd)
	rootCmd.AddCommand(containersCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(completionCmd)
}
