// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "encoding/json"

// CellType identifies the kind of notebook cell.
type CellType string

const (
	CellCode     CellType = "code"
	CellMarkdown CellType = "markdown"
	CellRaw      CellType = "raw"
)

// Notebook metadata keys read or written by preprocessing stages.
const (
	MetaKernelspec  = "kernelspec"
	MetaLanguage    = "language"
	MetaCellToolbar = "celltoolbar"
	MetaNbgrader    = "nbgrader"
)

// DefaultLanguage is used when the notebook kernelspec does not name a language.
const DefaultLanguage = "python"

// Notebook is an in-memory nbformat 4 notebook. Cells are rewritten in place
// by preprocessing stages; the notebook itself is owned by the caller.
type Notebook struct {
	// Cells holds the notebook cells in document order.
	Cells []*Cell `json:"cells"`

	// Metadata is the notebook-level metadata mapping.
	Metadata map[string]any `json:"metadata"`

	// NBFormat is the nbformat major version (always 4 for supported notebooks).
	NBFormat int `json:"nbformat"`

	// NBFormatMinor is the nbformat minor version.
	NBFormatMinor int `json:"nbformat_minor"`
}

// Language returns kernelspec.language from the notebook metadata, or
// DefaultLanguage when it is absent or empty.
func (nb *Notebook) Language() string {
	spec, ok := nb.Metadata[MetaKernelspec].(map[string]any)
	if !ok {
		return DefaultLanguage
	}
	lang, ok := spec[MetaLanguage].(string)
	if !ok || lang == "" {
		return DefaultLanguage
	}
	return lang
}

// Cell is a single notebook cell. Fields that preprocessing never inspects
// are carried as raw JSON so a load/save round trip does not lose them.
type Cell struct {
	// ID is the nbformat 4.5 cell id; empty for older notebooks.
	ID string `json:"id,omitempty"`

	// CellType is code, markdown, or raw.
	CellType CellType `json:"cell_type"`

	// Source is the cell text with lines joined by "\n".
	Source string `json:"source"`

	// Metadata is the cell-level metadata mapping.
	Metadata map[string]any `json:"metadata"`

	Outputs        json.RawMessage `json:"outputs,omitempty"`
	ExecutionCount json.RawMessage `json:"execution_count,omitempty"`
	Attachments    json.RawMessage `json:"attachments,omitempty"`
}

// Resources is the per-run context threaded through a preprocessing stage.
type Resources map[string]any

// Resource keys set by the autograde text stage.
const (
	ResourceLanguage     = "language"
	ResourceStubbedCells = "autograde_text_stubbed"
)

// Language returns the resolved language stored under ResourceLanguage.
func (r Resources) Language() string {
	lang, _ := r[ResourceLanguage].(string)
	return lang
}

// StubbedCells returns the cell indices recorded under ResourceStubbedCells.
func (r Resources) StubbedCells() []int {
	cells, _ := r[ResourceStubbedCells].([]int)
	return cells
}
