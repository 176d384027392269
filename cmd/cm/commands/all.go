package commands

import (
	"github.com/spf13/cobra"

	"github.com/valksor/go-cm/internal/runner"
)

var allCmd = &cobra.Command{
	Use:   "all",
	Short: "Update cores, geo files and configs",
	Args:  cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRunner(cmd, func(r *runner.Runner) {
			r.UpdateAll(cmd.Context())
		})
	},
}

func init() {
	rootCmd.AddCommand(allCmd)
}
