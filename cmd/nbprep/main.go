// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the nbprep CLI.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/nbprep/internal/logging"
	"github.com/pdiddy/nbprep/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// logger receives diagnostics; it is replaced in PersistentPreRunE once
// --log-level is known.
var logger = logging.NewNop()

// rootCmd is the base command for the nbprep CLI.
var rootCmd = &cobra.Command{
	Use:   "nbprep",
	Short: "Notebook preprocessing stages for autograded assignments",
	Long: `nbprep runs preprocessing stages over Jupyter notebooks before they are
released to students or collected for grading.

The autograde-text stage replaces solution regions in manually graded
markdown answer cells with a stub and checks that solution regions only
appear in cells marked as solution cells.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("log-level")
		level, err := logging.ParseLevel(name)
		if err != nil {
			return err
		}
		logger = logging.New(level)
		if used := viper.ConfigFileUsed(); used != "" {
			logger.Debug("using config file", "path", used)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./nbprep.yaml or ~/.config/nbprep/nbprep.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "diagnostic log level: debug, info, warn, or error")
}

func initConfig() {
	// A missing .env file is not an error.
	_ = godotenv.Load()

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("nbprep")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "nbprep"))
		}
	}

	viper.SetEnvPrefix("NBPREP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			fmt.Fprintln(os.Stderr, "warning: reading config:", err)
		}
	}
}

// registerDefaults makes every default key known to viper. AutomaticEnv
// only consults the environment for keys viper already has.
func registerDefaults(cfg types.PipelineConfig) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding default configuration: %w", err)
	}
	var defaults map[string]any
	if err := yaml.Unmarshal(data, &defaults); err != nil {
		return fmt.Errorf("decoding default configuration: %w", err)
	}
	for key, value := range defaults {
		viper.SetDefault(key, value)
	}
	return nil
}

// loadPipelineConfig layers config file, environment, and bound flags over
// the built-in defaults.
func loadPipelineConfig() (types.PipelineConfig, error) {
	cfg := types.DefaultPipelineConfig()
	if err := registerDefaults(cfg); err != nil {
		return types.PipelineConfig{}, err
	}
	if err := viper.Unmarshal(&cfg); err != nil {
		return types.PipelineConfig{}, fmt.Errorf("decoding configuration: %w", err)
	}
	return cfg, nil
}

// bindFlags maps command flags onto configuration keys.
func bindFlags(cmd *cobra.Command, keys map[string]string) error {
	for flag, key := range keys {
		if err := viper.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return fmt.Errorf("binding --%s: %w", flag, err)
		}
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
