// -- cmd/root.go --
package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/xkilldash9x/trackrunner/internal/config"
	"github.com/xkilldash9x/trackrunner/internal/engine"
	"github.com/xkilldash9x/trackrunner/internal/observability"
)

type contextKey string

const configKey contextKey = "config"

// NewRootCommand builds the command tree. Each call returns an independent
// tree, so tests and repeated invocations do not share flag state.
func NewRootCommand() *cobra.Command {
	return newRootCommand(engine.DefaultRegistry())
}

func newRootCommand(registry *engine.Registry) *cobra.Command {
	var cfgFile string
	cmd := &cobra.Command{
		Use:           "trackrunner",
		Short:         "trackrunner drives a cargo tracking portal and captures results as PDF.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			v := viper.New()
			config.SetDefaults(v)

			if err := initializeConfig(cmd, v, cfgFile); err != nil {
				observability.InitializeLogger(config.LoggerConfig{Level: "info", Format: "console", ServiceName: "trackrunner"})
				return fmt.Errorf("failed to initialize configuration: %w", err)
			}

			cfg, err := config.NewConfigFromViper(v)
			if err != nil {
				observability.InitializeLogger(config.LoggerConfig{Level: "info", Format: "console", ServiceName: "trackrunner"})
				return fmt.Errorf("failed to load or validate config: %w", err)
			}

			observability.InitializeLogger(cfg.Logger)
			observability.GetLogger().Debug("Starting trackrunner", zap.String("version", Version))

			cmd.SetContext(context.WithValue(cmd.Context(), configKey, cfg))
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./config.yaml)")
	cmd.SetVersionTemplate(`{{printf "%s version %s\n" .Name .Version}}`)

	cmd.AddCommand(newRunCmd(registry))
	cmd.AddCommand(newScriptsCmd(registry))
	return cmd
}

// Execute runs the command tree with ctx. Errors that already produced a
// payload for the caller are returned as-is so main can pick the exit code.
func Execute(ctx context.Context) error {
	root := NewRootCommand()
	err := root.ExecuteContext(ctx)
	if err == nil {
		return nil
	}

	var reported *reportedError
	if !errors.As(err, &reported) {
		// Cobra argument and flag errors land here.
		writeErrorPayload(root.ErrOrStderr(), err, "")
	}
	observability.GetLogger().Debug("Command execution failed", zap.Error(err))
	return err
}

// initializeConfig reads the config file, environment and bound flags into v.
// An empty cfgFile searches the working directory for config.yaml.
func initializeConfig(cmd *cobra.Command, v *viper.Viper, cfgFile string) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("TRACKRUNNER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	return bindFlags(cmd, v)
}

// flagKeys maps command line flags onto configuration keys.
var flagKeys = map[string]string{
	"headless-mode": "browser.headless_mode",
	"exec-path":     "browser.exec_path",
	"results-dir":   "output.results_dir",
	"log-level":     "logger.level",
	"strict-input":  "input.strict",
}

func bindFlags(cmd *cobra.Command, v *viper.Viper) error {
	for name, key := range flagKeys {
		f := cmd.Flags().Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("failed to bind flag --%s: %w", name, err)
		}
	}
	return nil
}

func configFromContext(ctx context.Context) (*config.Config, error) {
	cfg, ok := ctx.Value(configKey).(*config.Config)
	if !ok || cfg == nil {
		return nil, errors.New("configuration not initialized")
	}
	return cfg, nil
}
