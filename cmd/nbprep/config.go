// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as YAML",
	Long: `Config prints the configuration nbprep would use after applying the
config file and NBPREP_* environment variables to the built-in defaults.
The output is a valid nbprep.yaml and can be used as a starting point.`,
	RunE: runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg, err := loadPipelineConfig()
	if err != nil {
		return err
	}
	if err := cfg.AutogradeText.Validate(); err != nil {
		return fmt.Errorf("invalid autograde_text config: %w", err)
	}

	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(&cfg)
}
