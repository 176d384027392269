package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/valksor/go-cm/internal/config"
	"github.com/valksor/go-cm/internal/display"
	"github.com/valksor/go-cm/internal/log"
	"github.com/valksor/go-cm/internal/runner"
)

func resolvedConfigPath() string {
	if configPath != "" {
		return configPath
	}

	return config.DefaultPath()
}

// ensureConfig writes the default config on first run and tells the user to
// edit it. It reports whether the file was just created.
func ensureConfig(cmd *cobra.Command) (bool, error) {
	path := resolvedConfigPath()

	created, err := config.EnsureExists(path)
	if err != nil {
		return false, fmt.Errorf("create config: %w", err)
	}
	if created {
		log.Info("config created", "path", path)
		out := cmd.OutOrStdout()
		_, _ = fmt.Fprintln(out, display.SuccessMsg("created: %s", path))
		_, _ = fmt.Fprintln(out, display.WarningMsg("edit the config file to add subscription URLs"))
	}

	return created, nil
}

// loadConfig bootstraps and loads the config. When the file was just
// created only "status" goes on; other commands get ok == false.
func loadConfig(cmd *cobra.Command) (cfg *config.Config, ok bool, err error) {
	created, err := ensureConfig(cmd)
	if err != nil {
		return nil, false, err
	}
	if created && cmd.Name() != statusCommand {
		return nil, false, nil
	}

	cfg, err = config.Load(resolvedConfigPath())
	if err != nil {
		return nil, false, fmt.Errorf("load config: %w", err)
	}

	return cfg, true, nil
}

// newRunner builds a runner writing to the command's output.
func newRunner(cmd *cobra.Command, cfg *config.Config) (*runner.Runner, error) {
	return runner.New(cfg,
		runner.WithOutput(cmd.OutOrStdout()),
		runner.WithUserAgent("cm/"+Version),
	)
}

// withRunner loads the config and runs fn with a ready runner.
func withRunner(cmd *cobra.Command, fn func(r *runner.Runner)) error {
	cfg, ok, err := loadConfig(cmd)
	if err != nil || !ok {
		return err
	}

	r, err := newRunner(cmd, cfg)
	if err != nil {
		return err
	}
	fn(r)

	return nil
}
