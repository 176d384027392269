package commands

import (
	"github.com/spf13/cobra"

	"github.com/valksor/go-cm/internal/runner"
)

var coreCmd = &cobra.Command{
	Use:   "core [name]",
	Short: "Install the newest pre-release of each core",
	Long: `Install the newest pre-release of each configured core.

With a name only that core is updated. Names are matched case-insensitively.
A core that fails is reported and the rest are still updated.
Words after the core name are ignored.`,
	Args: cobra.ArbitraryArgs,
	RunE: runCore,
}

func init() {
	rootCmd.AddCommand(coreCmd)
}

func runCore(cmd *cobra.Command, args []string) error {
	var only string
	if len(args) > 0 {
		only = args[0]
	}

	return withRunner(cmd, func(r *runner.Runner) {
		r.UpdateCores(cmd.Context(), only)
	})
}
