// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// GradeMetadata is the typed form of a cell's "nbgrader" metadata mapping.
type GradeMetadata struct {
	// Solution marks an instructor solution cell.
	Solution bool `json:"solution" yaml:"solution" mapstructure:"solution"`

	// Grade marks a cell that receives a score (manual or automatic).
	Grade bool `json:"grade" yaml:"grade" mapstructure:"grade"`

	// Locked marks a read-only cell.
	Locked bool `json:"locked" yaml:"locked" mapstructure:"locked"`

	// Task marks a free-form task cell.
	Task bool `json:"task" yaml:"task" mapstructure:"task"`

	// GradeID is the unique cell identifier used by later grading stages.
	GradeID string `json:"grade_id" yaml:"grade_id" mapstructure:"grade_id"`

	// Points is the score available for a graded cell.
	Points float64 `json:"points" yaml:"points" mapstructure:"points"`

	// SchemaVersion is the nbgrader metadata schema version.
	SchemaVersion int `json:"schema_version" yaml:"schema_version" mapstructure:"schema_version"`
}
