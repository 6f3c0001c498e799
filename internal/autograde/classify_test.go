// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package autograde

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/nbprep/pkg/types"
)

func TestGradeMetadataOf(t *testing.T) {
	cell := &types.Cell{Metadata: map[string]any{
		"nbgrader": map[string]any{
			"solution":       true,
			"grade":          true,
			"locked":         false,
			"grade_id":       "cell-8f2a",
			"points":         float64(3),
			"schema_version": float64(3),
		},
		"tags": []any{"essay"},
	}}

	meta, err := GradeMetadataOf(cell)

	require.NoError(t, err)
	assert.Equal(t, types.GradeMetadata{
		Solution:      true,
		Grade:         true,
		GradeID:       "cell-8f2a",
		Points:        3,
		SchemaVersion: 3,
	}, meta)
}

func TestGradeMetadataOf_Missing(t *testing.T) {
	for _, cell := range []*types.Cell{
		{},
		{Metadata: map[string]any{}},
		{Metadata: map[string]any{"nbgrader": nil}},
	} {
		meta, err := GradeMetadataOf(cell)
		require.NoError(t, err)
		assert.Equal(t, types.GradeMetadata{}, meta)
	}
}

func TestGradeMetadataOf_WeakTypes(t *testing.T) {
	cell := &types.Cell{Metadata: map[string]any{
		"nbgrader": map[string]any{"solution": "true", "grade": 1},
	}}

	assert.True(t, IsSolution(cell))
	assert.True(t, IsGrade(cell))
}

func TestClassifiers(t *testing.T) {
	tests := []struct {
		name         string
		cell         *types.Cell
		wantSolution bool
		wantGrade    bool
		wantMarkdown bool
	}{
		{
			name:         "manually graded answer",
			cell:         &types.Cell{CellType: types.CellMarkdown, Metadata: gradeMeta(true, true)},
			wantSolution: true, wantGrade: true, wantMarkdown: true,
		},
		{
			name:      "autograder test",
			cell:      &types.Cell{CellType: types.CellCode, Metadata: gradeMeta(false, true)},
			wantGrade: true,
		},
		{
			name:         "plain markdown",
			cell:         &types.Cell{CellType: types.CellMarkdown},
			wantMarkdown: true,
		},
		{
			name: "bad metadata",
			cell: &types.Cell{CellType: types.CellCode, Metadata: map[string]any{"nbgrader": []any{1}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantSolution, IsSolution(tt.cell))
			assert.Equal(t, tt.wantGrade, IsGrade(tt.cell))
			assert.Equal(t, tt.wantMarkdown, IsMarkdown(tt.cell))
		})
	}
}
