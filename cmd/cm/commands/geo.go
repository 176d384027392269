package commands

import (
	"github.com/spf13/cobra"

	"github.com/valksor/go-cm/internal/runner"
)

var geoCmd = &cobra.Command{
	Use:   "geo",
	Short: "Download the geo data files",
	Args:  cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRunner(cmd, func(r *runner.Runner) {
			r.UpdateGeoFiles(cmd.Context())
		})
	},
}

func init() {
	rootCmd.AddCommand(geoCmd)
}
