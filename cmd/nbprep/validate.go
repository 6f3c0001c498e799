// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/nbprep/internal/autograde"
	"github.com/pdiddy/nbprep/internal/batch"
	"github.com/pdiddy/nbprep/internal/notebook"
)

var validateCmd = &cobra.Command{
	Use:   "validate [notebooks or directories...]",
	Short: "Check notebooks against the nbformat 4 schema",
	Long: `Validate loads each notebook, checks it against the nbformat 4 schema, and
reports how many cells are marked as solution and graded cells. Notebooks
are not modified.`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide one or more notebooks or directories")
	}
	targets, err := batch.Collect(args)
	if err != nil {
		return err
	}

	failed := 0
	for _, t := range targets {
		nb, err := notebook.Load(t.Path, true)
		if err != nil {
			fmt.Fprintf(os.Stdout, "invalid: %s (%v)\n", t.Path, err)
			failed++
			continue
		}
		solutions, graded := 0, 0
		for _, c := range nb.Cells {
			if autograde.IsSolution(c) {
				solutions++
			}
			if autograde.IsGrade(c) {
				graded++
			}
		}
		fmt.Fprintf(os.Stdout, "ok:      %s (%d cells, %d solution, %d graded, language %s)\n",
			t.Path, len(nb.Cells), solutions, graded, nb.Language())
	}

	if failed > 0 {
		return fmt.Errorf("%d notebook(s) failed validation", failed)
	}
	return nil
}
