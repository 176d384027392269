package commands

import (
	"github.com/spf13/cobra"

	"github.com/valksor/go-cm/internal/runner"
)

var confCmd = &cobra.Command{
	Use:   "conf",
	Short: "Download subscription and config files",
	Long: `Download every config entry that has a URL into conf_save_path.

Entries without a URL are skipped. The folder is created if missing.`,
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRunner(cmd, func(r *runner.Runner) {
			r.UpdateConfigs(cmd.Context())
		})
	},
}

func init() {
	rootCmd.AddCommand(confCmd)
}
