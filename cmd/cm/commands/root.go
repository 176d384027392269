package commands

import (
	"context"
	"os"
	"strings"
	"syscall"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/valksor/go-cm/internal/display"
	"github.com/valksor/go-cm/internal/log"
)

var (
	// Global flags.
	configPath string
	verbose    bool
	noColor    bool
	logJSON    bool
)

var rootCmd = &cobra.Command{
	Use:   "cm",
	Short: "Update proxy cores, geo data and subscription configs",
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	Long: `cm keeps a v2rayN install current.

It installs the newest pre-release of each configured core, refreshes the
geo data files next to them and downloads subscription configs to a folder.
Everything is configured in one JSON file, created on first run.

Usage:
  cm core            update all cores (pre-release)
  cm core singbox    update only singbox
  cm geo             update geo data files
  cm conf            update subscription/config files
  cm all             cores + geo + conf
  cm status          show current state
  cm version         show version`,
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		log.Configure(log.Options{
			Level:   log.LevelWarn,
			JSON:    logJSON,
			Output:  cmd.ErrOrStderr(),
			Verbose: verbose,
		})
		display.InitColors(noColor)
		log.Debug("initialized", "verbose", verbose, "config", resolvedConfigPath())

		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// A word that is not a command still bootstraps the config file.
		if len(args) > 0 {
			if _, err := ensureConfig(cmd); err != nil {
				return err
			}
		}

		return cmd.Help()
	},
}

// Execute runs the root command. Interrupts cancel the command's context.
func Execute() error {
	rootCmd.SetArgs(normalizeArgs(os.Args[1:]))

	return fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(Version+" ("+Commit+")"),
		fang.WithNotifySignal(os.Interrupt, syscall.SIGTERM),
	)
}

// normalizeArgs lowercases the command word so "cm GEO" works like "cm geo".
// Flag values are left alone.
func normalizeArgs(args []string) []string {
	out := make([]string, len(args))
	copy(out, args)

	for i := 0; i < len(out); i++ {
		a := out[i]
		if a == "--" {
			break
		}
		if strings.HasPrefix(a, "-") {
			if (a == "--config" || a == "-c") && i+1 < len(out) {
				i++
			}

			continue
		}
		out[i] = strings.ToLower(a)

		break
	}

	return out
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: cm_config.json next to the binary)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable color output")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "Write diagnostic logs as JSON")
}
