// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package notebook reads and writes Jupyter notebooks in nbformat 4 JSON.
// Cell sources are exposed as a single string; on disk they are written in
// nbformat's list-of-lines form.
package notebook

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/nbprep/pkg/types"
)

// SupportedMajor is the only nbformat major version this package handles.
const SupportedMajor = 4

// ErrUnsupportedFormat is returned for notebooks that are not nbformat 4.
var ErrUnsupportedFormat = errors.New("unsupported nbformat version")

// fileNotebook and fileCell mirror the on-disk layout. Cell fields are in
// key order so encoded cells match nbformat's sorted output.
type fileNotebook struct {
	Cells         []fileCell     `json:"cells"`
	Metadata      map[string]any `json:"metadata"`
	NBFormat      int            `json:"nbformat"`
	NBFormatMinor int            `json:"nbformat_minor"`
}

type fileCell struct {
	Attachments    json.RawMessage `json:"attachments,omitempty"`
	CellType       types.CellType  `json:"cell_type"`
	ExecutionCount json.RawMessage `json:"execution_count,omitempty"`
	ID             string          `json:"id,omitempty"`
	Metadata       map[string]any  `json:"metadata"`
	Outputs        json.RawMessage `json:"outputs,omitempty"`
	Source         json.RawMessage `json:"source"`
}

// Read decodes a notebook from r.
func Read(r io.Reader) (*types.Notebook, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading notebook: %w", err)
	}
	return decode(data)
}

// Load reads the notebook at path. When validate is set the document is
// checked against the nbformat 4 schema before decoding.
func Load(path string, validate bool) (*types.Notebook, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading notebook %s: %w", path, err)
	}
	if validate {
		if err := Validate(data); err != nil {
			return nil, fmt.Errorf("validating %s: %w", path, err)
		}
	}
	nb, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return nb, nil
}

func decode(data []byte) (*types.Notebook, error) {
	var raw fileNotebook
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing notebook JSON: %w", err)
	}
	if raw.NBFormat != SupportedMajor {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedFormat, raw.NBFormat)
	}

	nb := &types.Notebook{
		Metadata:      raw.Metadata,
		NBFormat:      raw.NBFormat,
		NBFormatMinor: raw.NBFormatMinor,
		Cells:         make([]*types.Cell, len(raw.Cells)),
	}
	if nb.Metadata == nil {
		nb.Metadata = map[string]any{}
	}

	for i, fc := range raw.Cells {
		source, err := decodeSource(fc.Source)
		if err != nil {
			return nil, fmt.Errorf("cell %d: %w", i, err)
		}
		meta := fc.Metadata
		if meta == nil {
			meta = map[string]any{}
		}
		nb.Cells[i] = &types.Cell{
			ID:             fc.ID,
			CellType:       fc.CellType,
			Source:         source,
			Metadata:       meta,
			Outputs:        fc.Outputs,
			ExecutionCount: fc.ExecutionCount,
			Attachments:    fc.Attachments,
		}
	}
	return nb, nil
}

// decodeSource accepts either a single string or a list of line strings.
func decodeSource(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var lines []string
	if err := json.Unmarshal(raw, &lines); err != nil {
		return "", fmt.Errorf("source must be a string or a list of strings: %w", err)
	}
	return strings.Join(lines, ""), nil
}

// SplitLines splits source into nbformat's list-of-lines form: every line
// keeps its trailing newline except possibly the last.
func SplitLines(source string) []string {
	if source == "" {
		return []string{}
	}
	lines := strings.SplitAfter(source, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// encodeSource renders source in list-of-lines form. HTML characters are
// kept literal: a pre-encoded RawMessage bypasses the outer encoder's
// SetEscapeHTML setting.
func encodeSource(source string) (json.RawMessage, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(SplitLines(source)); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// Write encodes nb to w with one-space indentation and a trailing newline.
func Write(w io.Writer, nb *types.Notebook) error {
	out := fileNotebook{
		Metadata:      nb.Metadata,
		NBFormat:      nb.NBFormat,
		NBFormatMinor: nb.NBFormatMinor,
		Cells:         make([]fileCell, len(nb.Cells)),
	}
	if out.Metadata == nil {
		out.Metadata = map[string]any{}
	}

	for i, c := range nb.Cells {
		source, err := encodeSource(c.Source)
		if err != nil {
			return fmt.Errorf("encoding cell %d source: %w", i, err)
		}
		fc := fileCell{
			Attachments:    c.Attachments,
			CellType:       c.CellType,
			ExecutionCount: c.ExecutionCount,
			ID:             c.ID,
			Metadata:       c.Metadata,
			Outputs:        c.Outputs,
			Source:         source,
		}
		if fc.Metadata == nil {
			fc.Metadata = map[string]any{}
		}
		if c.CellType == types.CellCode {
			if len(fc.ExecutionCount) == 0 {
				fc.ExecutionCount = json.RawMessage("null")
			}
			if len(fc.Outputs) == 0 {
				fc.Outputs = json.RawMessage("[]")
			}
		}
		out.Cells[i] = fc
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", " ")
	if err := enc.Encode(&out); err != nil {
		return fmt.Errorf("encoding notebook: %w", err)
	}
	return nil
}

// Save writes nb to path, creating parent directories as needed.
func Save(path string, nb *types.Notebook) error {
	var buf bytes.Buffer
	if err := Write(&buf, nb); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing notebook %s: %w", path, err)
	}
	return nil
}
