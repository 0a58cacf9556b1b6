// -- cmd/root.go --
package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/halcyondale/deskpilot-cli/internal/config"
	"github.com/halcyondale/deskpilot-cli/internal/observability"
)

// newRootCmd builds the root command and the config slot its subcommands
// read from. The slot is populated by PersistentPreRunE, after flags, the
// config file and the environment have all been merged.
func newRootCmd() (*cobra.Command, *config.Config) {
	var cfgFile string
	appCfg := config.NewDefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "deskpilot",
		Short: "Deskpilot is a natural-language desktop assistant.",
		// Version is dynamically set at build time. See cmd/version.go.
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// This runs before any command, setting up config and logging.
			// A fresh viper instance keeps repeated invocations isolated.
			v := viper.New()
			if err := initializeConfig(v, cfgFile); err != nil {
				return err
			}

			cfg, err := config.NewConfigFromViper(v)
			if err != nil {
				// Initialize a fallback logger so the failure is still reported
				// through the normal channel.
				observability.InitializeLogger(config.LoggerConfig{Level: "info", Format: "console", ServiceName: "deskpilot"})
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			*appCfg = *cfg

			observability.InitializeLogger(appCfg.Logger)
			observability.GetLogger().Info("Starting deskpilot", zap.String("version", Version))
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./config.yaml, then ~/.deskpilot/config.yaml)")
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	rootCmd.AddCommand(newRunCmd(appCfg))
	rootCmd.AddCommand(newDoCmd(appCfg))
	rootCmd.AddCommand(newAnalyzeCmd(appCfg))
	rootCmd.AddCommand(newDoctorCmd(appCfg))

	return rootCmd, appCfg
}

// Execute runs the root command against the signal-aware context from main.
func Execute(ctx context.Context) {
	rootCmd, _ := newRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if logger := observability.GetLogger(); logger != nil {
			logger.Error("Command execution failed", zap.Error(err))
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		observability.Sync()
		os.Exit(1)
	}
	observability.Sync()
}

// initializeConfig layers defaults, the config file and DESKPILOT_* env
// variables into the given viper instance.
func initializeConfig(v *viper.Viper, cfgFile string) error {
	config.SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home + "/.deskpilot")
		}
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("DESKPILOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; proceed with defaults/env vars.
	}
	return nil
}
