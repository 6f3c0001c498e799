// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package autograde implements the autograde text stage: solution regions in
// manually graded markdown solution cells are replaced with a language stub,
// and solution regions outside solution cells are reported as metadata
// inconsistencies.
package autograde

import (
	"errors"
	"fmt"

	"github.com/pdiddy/nbprep/internal/logging"
	"github.com/pdiddy/nbprep/pkg/types"
)

// ErrSolutionOutsideSolutionCell is the sentinel wrapped by ConsistencyError.
var ErrSolutionOutsideSolutionCell = errors.New("solution region detected in a non-solution cell")

// ConsistencyError reports a solution region found in a cell that is not
// marked as a solution cell. Later grading stages need such cells to carry
// solution metadata, so the run cannot continue.
type ConsistencyError struct {
	Index   int
	CellID  string
	GradeID string
}

func (e *ConsistencyError) Error() string {
	where := fmt.Sprintf("cell %d", e.Index)
	if e.CellID != "" {
		where += fmt.Sprintf(" (id %q)", e.CellID)
	}
	if e.GradeID != "" {
		where += fmt.Sprintf(" (grade_id %q)", e.GradeID)
	}
	return fmt.Sprintf("%s: %s; please make sure all solution regions are within solution cells",
		ErrSolutionOutsideSolutionCell, where)
}

func (e *ConsistencyError) Unwrap() error {
	return ErrSolutionOutsideSolutionCell
}

// Logger receives diagnostics. *slog.Logger satisfies it.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

// Preprocessor runs the autograde text stage over notebooks. It holds no
// per-notebook state and may be reused across notebooks.
type Preprocessor struct {
	cfg types.AutogradeTextConfig
	log Logger
}

// New validates cfg and returns a Preprocessor. A nil logger discards
// diagnostics.
func New(cfg types.AutogradeTextConfig, log Logger) (*Preprocessor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid autograde text config: %w", err)
	}
	if log == nil {
		log = logging.NewNop()
	}
	return &Preprocessor{cfg: cfg, log: log}, nil
}

// Preprocess resolves the notebook language, records it in resources, visits
// every cell in order, and removes the celltoolbar key from the notebook
// metadata. The notebook is modified in place and returned with resources.
// A ConsistencyError aborts the run before later cells are visited.
func (p *Preprocessor) Preprocess(nb *types.Notebook, resources types.Resources) (*types.Notebook, types.Resources, error) {
	if resources == nil {
		resources = types.Resources{}
	}
	language := nb.Language()
	resources[types.ResourceLanguage] = language

	stubbed := []int{}
	for i, cell := range nb.Cells {
		replaced, err := p.PreprocessCell(cell, resources, i)
		if err != nil {
			return nb, resources, err
		}
		if replaced {
			stubbed = append(stubbed, i)
		}
	}
	resources[types.ResourceStubbedCells] = stubbed

	delete(nb.Metadata, types.MetaCellToolbar)
	return nb, resources, nil
}

// PreprocessCell classifies one cell and replaces its solution regions when
// it is a graded markdown solution cell. It reports whether the cell source
// was rewritten.
//
// A graded markdown cell that is not marked as a solution cell is scanned on
// a scratch copy. If the scan finds a region, the metadata is inconsistent:
// with EnforceMetadata a ConsistencyError is returned and the cell is left
// untouched, otherwise the stubbed source is kept.
func (p *Preprocessor) PreprocessCell(cell *types.Cell, resources types.Resources, index int) (bool, error) {
	language := resources.Language()

	meta, err := GradeMetadataOf(cell)
	if err != nil {
		p.log.Warn("ignoring unreadable cell metadata", "cell", index, "error", err)
	}
	isSolution := meta.Solution
	isGrade := meta.Grade
	isMarkdown := IsMarkdown(cell)

	var replaced bool
	var scratch types.Cell
	switch {
	case isSolution && isGrade && isMarkdown:
		p.log.Debug("autograding text", "cell", index, "grade_id", meta.GradeID)
		replaced = p.ExtractAndReplace(cell, language)
	case isGrade && isMarkdown:
		scratch = *cell
		replaced = p.ExtractAndReplace(&scratch, language)
	}

	if replaced && !isSolution {
		if p.cfg.EnforceMetadata {
			return false, &ConsistencyError{Index: index, CellID: cell.ID, GradeID: meta.GradeID}
		}
		p.log.Debug("solution region in a non-solution cell, metadata enforcement is off",
			"cell", index, "grade_id", meta.GradeID)
		cell.Source = scratch.Source
	}

	return replaced, nil
}
