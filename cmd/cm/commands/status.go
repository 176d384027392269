package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/valksor/go-cm/internal/display"
	"github.com/valksor/go-cm/internal/runner"
)

// statusCommand still runs right after the config file is first created.
const statusCommand = "status"

var statusCmd = &cobra.Command{
	Use:   statusCommand,
	Short: "Show installed cores, geo files and configured paths",
	Args:  cobra.ArbitraryArgs,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, ok, err := loadConfig(cmd)
	if err != nil || !ok {
		return err
	}

	printStatus(cmd.OutOrStdout(), runner.BuildStatus(cfg, resolvedConfigPath()))

	return nil
}

func printStatus(out io.Writer, rep *runner.StatusReport) {
	p := func(format string, args ...any) {
		_, _ = fmt.Fprintf(out, format, args...)
	}

	p("\n%s\n", display.Banner("Config Manager"))
	p("\n%s %s\n", display.Bold("bin:"), rep.BinPath)

	if rep.BinExists {
		p("\n%s%s\n", display.IndentOne, display.Bold("cores:"))
		for _, c := range rep.Cores {
			p("%s%s %s: %s%s\n", display.IndentOne, display.StatusMark(c.Exists), c.Name, c.Path, fileDetail(c))
		}

		p("\n%s%s\n", display.IndentOne, display.Bold("geofiles:"))
		for _, g := range rep.GeoFiles {
			p("%s%s %s%s\n", display.IndentOne, display.StatusMark(g.Exists), g.Name, fileDetail(g))
		}
	} else {
		p("%s%s\n", display.IndentOne, display.ErrorMsg("directory does not exist"))
	}

	p("\n%s %s\n", display.Bold("conf:"), rep.ConfSavePath)
	p("\n%s %d URL(s) configured\n", display.Bold("configs:"), rep.ConfiguredURLs)
	p("\n%s %s\n", display.Bold("config file:"), display.Muted(rep.ConfigPath))
	p("%s\n", display.SeparatorLine)
}

func fileDetail(ps runner.PathStatus) string {
	if !ps.Exists {
		return ""
	}

	return display.Muted(fmt.Sprintf(" (%s, %s)", display.FormatMB(ps.Size), display.Timestamp(ps.ModTime)))
}
