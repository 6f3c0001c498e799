// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package batch runs a preprocessing stage over notebook files and writes
// the results to an output directory.
package batch

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/nbprep/internal/autograde"
	"github.com/pdiddy/nbprep/internal/notebook"
	"github.com/pdiddy/nbprep/pkg/types"
)

const (
	notebookExt    = ".ipynb"
	checkpointsDir = ".ipynb_checkpoints"
)

// ErrDuplicateOutput is returned by Collect when two inputs share an output path.
var ErrDuplicateOutput = errors.New("duplicate output path")

// Processor transforms one notebook in place. *autograde.Preprocessor
// implements it.
type Processor interface {
	Preprocess(nb *types.Notebook, resources types.Resources) (*types.Notebook, types.Resources, error)
}

// Status is the outcome for a single notebook.
type Status string

const (
	StatusStubbed   Status = "stubbed"
	StatusUnchanged Status = "unchanged"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
)

// Target is a notebook to process. Rel is the output path relative to the
// output directory.
type Target struct {
	Path string
	Rel  string
}

// BatchResult holds the outcome of a batch run.
type BatchResult struct {
	Stubbed   int
	Unchanged int
	Skipped   int
	Failed    int
}

// Total returns the number of notebooks processed.
func (r BatchResult) Total() int {
	return r.Stubbed + r.Unchanged + r.Skipped + r.Failed
}

// HasFailures reports whether any notebook failed.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// Collect expands paths into notebook targets. Directories are walked for
// *.ipynb files (checkpoint directories are ignored) and keep their layout
// under the output directory; files map to their base name. Two inputs that
// map to the same output path are an error.
func Collect(paths []string) ([]Target, error) {
	var targets []Target
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", p, err)
		}
		if !info.IsDir() {
			targets = append(targets, Target{Path: p, Rel: filepath.Base(p)})
			continue
		}

		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if d.Name() == checkpointsDir {
					return filepath.SkipDir
				}
				return nil
			}
			if !strings.HasSuffix(d.Name(), notebookExt) {
				return nil
			}
			rel, err := filepath.Rel(p, path)
			if err != nil {
				return err
			}
			targets = append(targets, Target{Path: path, Rel: rel})
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking %s: %w", p, err)
		}
	}

	seen := make(map[string]string, len(targets))
	for _, t := range targets {
		if prev, ok := seen[t.Rel]; ok {
			return nil, fmt.Errorf("%w: %s and %s both write %s", ErrDuplicateOutput, prev, t.Path, t.Rel)
		}
		seen[t.Rel] = t.Path
	}
	return targets, nil
}

// ProcessNotebook loads one notebook, runs p over it, and writes the result
// to cfg.OutputDir/t.Rel. An output newer than its input is skipped unless
// cfg.Force is set. Outputs are not written in dry-run mode.
func ProcessNotebook(p Processor, t Target, cfg types.NotebookConfig, w io.Writer) (Status, error) {
	outPath := filepath.Join(cfg.OutputDir, t.Rel)
	name := t.Rel

	if !cfg.Force && !samePath(t.Path, outPath) {
		changed, err := hasChanged(t.Path, outPath)
		if err != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", name, err)
			return StatusFailed, err
		}
		if !changed {
			fmt.Fprintf(w, "skipped: %s (output is up to date)\n", name)
			return StatusSkipped, nil
		}
	}

	nb, err := notebook.Load(t.Path, cfg.ValidateSchema)
	if err != nil {
		fmt.Fprintf(w, "failed:  %s (%v)\n", name, err)
		return StatusFailed, err
	}

	_, res, err := p.Preprocess(nb, types.Resources{})
	if err != nil {
		fmt.Fprintf(w, "failed:  %s (%v)\n", name, err)
		return StatusFailed, err
	}

	if !cfg.DryRun {
		if err := notebook.Save(outPath, nb); err != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", name, err)
			return StatusFailed, err
		}
	}

	stubbed := len(res.StubbedCells())
	if stubbed == 0 {
		fmt.Fprintf(w, "unchanged: %s\n", name)
		return StatusUnchanged, nil
	}
	fmt.Fprintf(w, "stubbed: %s (%d cells, language %s)\n", name, stubbed, res.Language())
	return StatusStubbed, nil
}

// ProcessBatch runs ProcessNotebook over every target, printing per-file
// status to w and returning a summary. Per-file errors are counted and the
// batch continues, except for metadata consistency errors, which abort the
// batch and are returned.
func ProcessBatch(p Processor, targets []Target, cfg types.NotebookConfig, w io.Writer) (BatchResult, error) {
	var result BatchResult
	var fatal error
	for _, t := range targets {
		status, err := ProcessNotebook(p, t, cfg, w)
		switch status {
		case StatusStubbed:
			result.Stubbed++
		case StatusUnchanged:
			result.Unchanged++
		case StatusSkipped:
			result.Skipped++
		case StatusFailed:
			result.Failed++
		}
		if errors.Is(err, autograde.ErrSolutionOutsideSolutionCell) {
			fatal = fmt.Errorf("%s: %w", t.Path, err)
			break
		}
	}
	fmt.Fprintf(w, "\nBatch summary: %d stubbed, %d unchanged, %d skipped, %d failed (total: %d)\n",
		result.Stubbed, result.Unchanged, result.Skipped, result.Failed, result.Total())
	return result, fatal
}

// hasChanged reports whether the input is newer than the output. Returns
// true if the output does not exist.
func hasChanged(inPath, outPath string) (bool, error) {
	inInfo, err := os.Stat(inPath)
	if err != nil {
		return false, fmt.Errorf("stat notebook %s: %w", inPath, err)
	}

	outInfo, err := os.Stat(outPath)
	if err != nil {
		if os.IsNotExist(err) {
			return true, nil
		}
		return false, fmt.Errorf("stat output %s: %w", outPath, err)
	}

	return inInfo.ModTime().After(outInfo.ModTime()), nil
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	return errA == nil && errB == nil && absA == absB
}
