// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package autograde

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/nbprep/pkg/types"
)

func newTestPreprocessor(t *testing.T, mutate func(*types.AutogradeTextConfig)) *Preprocessor {
	t.Helper()
	cfg := types.DefaultAutogradeTextConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	p, err := New(cfg, nil)
	require.NoError(t, err)
	return p
}

func TestExtractAndReplace(t *testing.T) {
	tests := []struct {
		name         string
		source       string
		language     string
		want         string
		wantReplaced bool
	}{
		{
			name:         "single region",
			source:       "intro\n### BEGIN SOLUTION\nsecret answer\n### END SOLUTION\noutro",
			language:     "python",
			want:         "intro\nYOUR ANSWER HERE\noutro",
			wantReplaced: true,
		},
		{
			name:         "two regions keep surrounding lines in order",
			source:       "a\nBEGIN SOLUTION\nx\nEND SOLUTION\nb\nBEGIN SOLUTION\ny\nz\nEND SOLUTION\nc",
			language:     "python",
			want:         "a\nYOUR ANSWER HERE\nb\nYOUR ANSWER HERE\nc",
			wantReplaced: true,
		},
		{
			name:         "stub takes begin marker indentation",
			source:       "list:\n    <!-- BEGIN SOLUTION -->\n    answer\n    <!-- END SOLUTION -->",
			language:     "python",
			want:         "list:\n    YOUR ANSWER HERE",
			wantReplaced: true,
		},
		{
			name:         "empty region still gets a stub",
			source:       "### BEGIN SOLUTION\n### END SOLUTION",
			language:     "python",
			want:         "YOUR ANSWER HERE",
			wantReplaced: true,
		},
		{
			name:         "no markers",
			source:       "just some prose\nover two lines",
			language:     "python",
			want:         "just some prose\nover two lines",
			wantReplaced: false,
		},
		{
			name:         "unmatched begin keeps lines verbatim",
			source:       "intro\n### BEGIN SOLUTION\nsecret answer",
			language:     "python",
			want:         "intro\n### BEGIN SOLUTION\nsecret answer",
			wantReplaced: false,
		},
		{
			name:         "well-formed region survives a later unmatched begin",
			source:       "BEGIN SOLUTION\nx\nEND SOLUTION\nmid\nBEGIN SOLUTION\ny",
			language:     "python",
			want:         "YOUR ANSWER HERE\nmid\nBEGIN SOLUTION\ny",
			wantReplaced: true,
		},
		{
			name:         "end marker outside a region is text",
			source:       "### END SOLUTION\nprose",
			language:     "python",
			want:         "### END SOLUTION\nprose",
			wantReplaced: false,
		},
		{
			name:         "nested begin is region content",
			source:       "BEGIN SOLUTION\nBEGIN SOLUTION\nx\nEND SOLUTION\ntail",
			language:     "python",
			want:         "YOUR ANSWER HERE\ntail",
			wantReplaced: true,
		},
		{
			name:         "unknown language uses generic stub",
			source:       "BEGIN SOLUTION\nx\nEND SOLUTION",
			language:     "cobol",
			want:         "YOUR ANSWER HERE",
			wantReplaced: true,
		},
	}

	p := newTestPreprocessor(t, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cell := &types.Cell{CellType: types.CellMarkdown, Source: tt.source}

			replaced := p.ExtractAndReplace(cell, tt.language)

			assert.Equal(t, tt.wantReplaced, replaced)
			assert.Equal(t, tt.want, cell.Source)
		})
	}
}

func TestExtractAndReplace_Idempotent(t *testing.T) {
	p := newTestPreprocessor(t, nil)
	cell := &types.Cell{Source: "intro\n### BEGIN SOLUTION\nsecret\n### END SOLUTION\noutro"}

	require.True(t, p.ExtractAndReplace(cell, "python"))
	once := cell.Source

	assert.False(t, p.ExtractAndReplace(cell, "python"))
	assert.Equal(t, once, cell.Source)
}

func TestExtractAndReplace_LanguageStub(t *testing.T) {
	p := newTestPreprocessor(t, func(c *types.AutogradeTextConfig) {
		c.Stubs["julia"] = "# answer below"
	})
	cell := &types.Cell{Source: "BEGIN SOLUTION\nx\nEND SOLUTION"}

	require.True(t, p.ExtractAndReplace(cell, "julia"))
	assert.Equal(t, "# answer below", cell.Source)
}

func TestExtractAndReplace_LanguageDelimiters(t *testing.T) {
	p := newTestPreprocessor(t, func(c *types.AutogradeTextConfig) {
		c.Delimiters = map[string]types.DelimiterPair{
			"matlab": {Begin: "%% START ANSWER", End: "%% STOP ANSWER"},
		}
	})

	cell := &types.Cell{Source: "q\n%% START ANSWER\nx\n%% STOP ANSWER"}
	require.True(t, p.ExtractAndReplace(cell, "matlab"))
	assert.Equal(t, "q\nYOUR ANSWER HERE", cell.Source)

	// Default markers do not apply to a language with an override.
	cell = &types.Cell{Source: "BEGIN SOLUTION\nx\nEND SOLUTION"}
	assert.False(t, p.ExtractAndReplace(cell, "matlab"))
	assert.Equal(t, "BEGIN SOLUTION\nx\nEND SOLUTION", cell.Source)
}

func TestExtractAndReplace_PassthroughFallback(t *testing.T) {
	p := newTestPreprocessor(t, func(c *types.AutogradeTextConfig) {
		c.Fallback = types.FallbackPassthrough
	})
	source := "BEGIN SOLUTION\nx\nEND SOLUTION"

	cell := &types.Cell{Source: source}
	assert.False(t, p.ExtractAndReplace(cell, "cobol"))
	assert.Equal(t, source, cell.Source)

	cell = &types.Cell{Source: source}
	assert.True(t, p.ExtractAndReplace(cell, "python"))
}

func TestExtractAndReplace_OnlyTouchesSource(t *testing.T) {
	p := newTestPreprocessor(t, nil)
	meta := map[string]any{"nbgrader": map[string]any{"solution": true}}
	cell := &types.Cell{
		ID:       "c1",
		CellType: types.CellMarkdown,
		Source:   "BEGIN SOLUTION\nx\nEND SOLUTION",
		Metadata: meta,
	}

	p.ExtractAndReplace(cell, "python")

	assert.Equal(t, "c1", cell.ID)
	assert.Equal(t, types.CellMarkdown, cell.CellType)
	assert.Equal(t, map[string]any{"nbgrader": map[string]any{"solution": true}}, cell.Metadata)
}
