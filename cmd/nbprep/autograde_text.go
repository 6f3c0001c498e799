// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/nbprep/internal/autograde"
	"github.com/pdiddy/nbprep/internal/batch"
)

var autogradeTextCmd = &cobra.Command{
	Use:   "autograde-text [notebooks or directories...]",
	Short: "Replace solution regions in graded markdown answers with stubs",
	Long: `Autograde-text scans every cell of each notebook. In markdown cells marked
as both solution and graded, each region between the begin and end solution
delimiters (e.g. "### BEGIN SOLUTION" / "### END SOLUTION") is replaced by
the stub registered for the notebook language. The celltoolbar metadata key
is removed from every notebook.

A solution region in a graded markdown cell that is not marked as a solution
cell aborts the run unless --enforce-metadata=false is given. Disabling the
check is only safe when no later grading stage reads the output.

Outputs are written to --output-dir with the same relative path. Outputs
newer than their input are skipped unless --force is given.`,
	RunE: runAutogradeText,
}

func init() {
	autogradeTextCmd.Flags().Bool("enforce-metadata", true, "fail when a solution region appears outside a solution cell")
	autogradeTextCmd.Flags().String("fallback", "generic", "stub policy for languages without a registered stub: generic or passthrough")
	autogradeTextCmd.Flags().String("output-dir", "release", "directory for processed notebooks")
	autogradeTextCmd.Flags().Bool("validate-schema", true, "check notebooks against the nbformat 4 schema before processing")
	autogradeTextCmd.Flags().Bool("force", false, "rewrite outputs even when they are up to date")
	autogradeTextCmd.Flags().Bool("dry-run", false, "process notebooks without writing outputs")

	rootCmd.AddCommand(autogradeTextCmd)
}

func runAutogradeText(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide one or more notebooks or directories")
	}

	if err := bindFlags(cmd, map[string]string{
		"enforce-metadata": "autograde_text.enforce_metadata",
		"fallback":         "autograde_text.fallback",
		"output-dir":       "notebook.output_dir",
		"validate-schema":  "notebook.validate_schema",
		"force":            "notebook.force",
		"dry-run":          "notebook.dry_run",
	}); err != nil {
		return err
	}

	cfg, err := loadPipelineConfig()
	if err != nil {
		return err
	}

	p, err := autograde.New(cfg.AutogradeText, logger)
	if err != nil {
		return err
	}
	if !cfg.AutogradeText.EnforceMetadata {
		logger.Warn("metadata enforcement disabled; outputs may break later grading stages")
	}

	targets, err := batch.Collect(args)
	if err != nil {
		return err
	}
	if len(targets) == 0 {
		return fmt.Errorf("no notebooks found in %v", args)
	}

	result, err := batch.ProcessBatch(p, targets, cfg.Notebook, os.Stdout)
	if err != nil {
		return err
	}
	if result.HasFailures() {
		return fmt.Errorf("%d notebook(s) failed", result.Failed)
	}
	return nil
}
