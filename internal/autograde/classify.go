// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package autograde

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"

	"github.com/pdiddy/nbprep/pkg/types"
)

// GradeMetadataOf decodes the "nbgrader" entry of the cell metadata. A cell
// without the entry yields the zero GradeMetadata and no error.
func GradeMetadataOf(cell *types.Cell) (types.GradeMetadata, error) {
	var meta types.GradeMetadata
	raw, ok := cell.Metadata[types.MetaNbgrader]
	if !ok || raw == nil {
		return meta, nil
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &meta,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return types.GradeMetadata{}, fmt.Errorf("building metadata decoder: %w", err)
	}
	if err := dec.Decode(raw); err != nil {
		return types.GradeMetadata{}, fmt.Errorf("decoding %s metadata: %w", types.MetaNbgrader, err)
	}
	return meta, nil
}

// IsSolution reports whether the cell is marked as an instructor solution cell.
// Undecodable metadata counts as unmarked.
func IsSolution(cell *types.Cell) bool {
	meta, err := GradeMetadataOf(cell)
	return err == nil && meta.Solution
}

// IsGrade reports whether the cell is marked for grading.
// Undecodable metadata counts as unmarked.
func IsGrade(cell *types.Cell) bool {
	meta, err := GradeMetadataOf(cell)
	return err == nil && meta.Grade
}

// IsMarkdown reports whether the cell is a markdown cell.
func IsMarkdown(cell *types.Cell) bool {
	return cell.CellType == types.CellMarkdown
}
