package types

import (
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// FallbackPolicy decides what happens to a solution region when no stub is
// registered for the notebook language.
type FallbackPolicy string

const (
	// FallbackGeneric replaces the region with AutogradeTextConfig.GenericStub.
	FallbackGeneric FallbackPolicy = "generic"
	// FallbackPassthrough leaves the cell untouched.
	FallbackPassthrough FallbackPolicy = "passthrough"
)

const (
	DefaultBeginDelimiter = "BEGIN SOLUTION"
	DefaultEndDelimiter   = "END SOLUTION"
	DefaultTextStub       = "YOUR ANSWER HERE"
)

// DelimiterPair overrides the solution region markers for one language.
type DelimiterPair struct {
	Begin string `json:"begin" yaml:"begin" mapstructure:"begin"`
	End   string `json:"end" yaml:"end" mapstructure:"end"`
}

// Validate requires both markers and that they differ.
func (d DelimiterPair) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.Begin, validation.Required, validation.By(singleLine)),
		validation.Field(&d.End, validation.Required, validation.By(singleLine), validation.By(differsFrom(d.Begin))),
	)
}

// AutogradeTextConfig holds settings for the autograde text stage.
type AutogradeTextConfig struct {
	// EnforceMetadata aborts the run when a solution region is found in a
	// cell that is not marked as a solution cell (default true). Disabling
	// it is only safe when the release stage is the last stage run.
	EnforceMetadata bool `json:"enforce_metadata" yaml:"enforce_metadata" mapstructure:"enforce_metadata"`

	// BeginDelimiter opens a solution region (default "BEGIN SOLUTION").
	BeginDelimiter string `json:"begin_delimiter" yaml:"begin_delimiter" mapstructure:"begin_delimiter"`

	// EndDelimiter closes a solution region (default "END SOLUTION").
	EndDelimiter string `json:"end_delimiter" yaml:"end_delimiter" mapstructure:"end_delimiter"`

	// Delimiters overrides the begin/end markers per language.
	Delimiters map[string]DelimiterPair `json:"delimiters,omitempty" yaml:"delimiters,omitempty" mapstructure:"delimiters"`

	// Stubs maps a notebook language to the single-line stub that replaces
	// a solution region.
	Stubs map[string]string `json:"stubs" yaml:"stubs" mapstructure:"stubs"`

	// GenericStub is used for unregistered languages under FallbackGeneric.
	GenericStub string `json:"generic_stub" yaml:"generic_stub" mapstructure:"generic_stub"`

	// Fallback selects the policy for unregistered languages (default generic).
	Fallback FallbackPolicy `json:"fallback" yaml:"fallback" mapstructure:"fallback"`
}

// DefaultAutogradeTextConfig returns the stage defaults.
func DefaultAutogradeTextConfig() AutogradeTextConfig {
	return AutogradeTextConfig{
		EnforceMetadata: true,
		BeginDelimiter:  DefaultBeginDelimiter,
		EndDelimiter:    DefaultEndDelimiter,
		Stubs: map[string]string{
			"python": DefaultTextStub,
			"R":      DefaultTextStub,
			"r":      DefaultTextStub,
			"julia":  DefaultTextStub,
			"matlab": DefaultTextStub,
			"octave": DefaultTextStub,
			"java":   DefaultTextStub,
			"scala":  DefaultTextStub,
			"sas":    DefaultTextStub,
		},
		GenericStub: DefaultTextStub,
		Fallback:    FallbackGeneric,
	}
}

// Validate checks the stage configuration.
func (c AutogradeTextConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.BeginDelimiter, validation.Required, validation.By(singleLine)),
		validation.Field(&c.EndDelimiter, validation.Required, validation.By(singleLine), validation.By(differsFrom(c.BeginDelimiter))),
		validation.Field(&c.Delimiters),
		validation.Field(&c.Stubs, validation.Each(validation.By(singleLine))),
		validation.Field(&c.GenericStub, validation.By(singleLine), validation.When(c.Fallback == FallbackGeneric, validation.Required)),
		validation.Field(&c.Fallback, validation.Required, validation.In(FallbackGeneric, FallbackPassthrough)),
	)
}

// NotebookConfig holds settings for reading and writing notebooks.
type NotebookConfig struct {
	// OutputDir is the directory processed notebooks are written to.
	OutputDir string `json:"output_dir" yaml:"output_dir" mapstructure:"output_dir"`

	// ValidateSchema checks each loaded notebook against the nbformat 4 schema.
	ValidateSchema bool `json:"validate_schema" yaml:"validate_schema" mapstructure:"validate_schema"`

	// Force rewrites outputs even when they are newer than their inputs.
	Force bool `json:"force" yaml:"force" mapstructure:"force"`

	// DryRun processes notebooks without writing outputs.
	DryRun bool `json:"dry_run" yaml:"dry_run" mapstructure:"dry_run"`
}

// DefaultNotebookConfig returns the notebook IO defaults.
func DefaultNotebookConfig() NotebookConfig {
	return NotebookConfig{
		OutputDir:      "release",
		ValidateSchema: true,
	}
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	AutogradeText AutogradeTextConfig `json:"autograde_text" yaml:"autograde_text" mapstructure:"autograde_text"`
	Notebook      NotebookConfig      `json:"notebook" yaml:"notebook" mapstructure:"notebook"`
}

// DefaultPipelineConfig returns the defaults for every stage.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		AutogradeText: DefaultAutogradeTextConfig(),
		Notebook:      DefaultNotebookConfig(),
	}
}

func singleLine(value any) error {
	s, _ := value.(string)
	if strings.ContainsAny(s, "\r\n") {
		return errors.New("must be a single line")
	}
	return nil
}

func differsFrom(other string) validation.RuleFunc {
	return func(value any) error {
		s, _ := value.(string)
		if s != "" && s == other {
			return errors.New("must differ from the begin delimiter")
		}
		return nil
	}
}
