// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package notebook

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

const schemaURL = "nbformat.v4.schema.json"

//go:embed schema/nbformat.v4.schema.json
var schemaJSON []byte

var (
	compileOnce    sync.Once
	compiledSchema *jsonschema.Schema
	compileErr     error
)

// ErrSchemaValidation is wrapped by every SchemaError.
var ErrSchemaValidation = errors.New("notebook does not match the nbformat 4 schema")

// SchemaIssue is a single schema violation.
type SchemaIssue struct {
	Location string
	Message  string
}

// SchemaError lists the schema violations found in a notebook document.
type SchemaError struct {
	Issues []SchemaIssue
}

func (e *SchemaError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		loc := issue.Location
		if loc == "" {
			loc = "#"
		} else if !strings.HasPrefix(loc, "#") {
			loc = "#" + loc
		}
		parts = append(parts, fmt.Sprintf("%s: %s", loc, issue.Message))
	}
	if len(parts) == 0 {
		return ErrSchemaValidation.Error()
	}
	return fmt.Sprintf("%s: %s", ErrSchemaValidation, strings.Join(parts, "; "))
}

func (e *SchemaError) Unwrap() error {
	return ErrSchemaValidation
}

func schema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft7
		if err := compiler.AddResource(schemaURL, bytes.NewReader(schemaJSON)); err != nil {
			compileErr = fmt.Errorf("loading notebook schema: %w", err)
			return
		}
		compiledSchema, compileErr = compiler.Compile(schemaURL)
	})
	return compiledSchema, compileErr
}

// Validate checks raw notebook JSON against the embedded nbformat 4 schema.
// Violations are returned as a *SchemaError.
func Validate(data []byte) error {
	s, err := schema()
	if err != nil {
		return err
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("parsing notebook JSON: %w", err)
	}

	if err := s.Validate(doc); err != nil {
		var verr *jsonschema.ValidationError
		if errors.As(err, &verr) {
			return &SchemaError{Issues: collectIssues(verr)}
		}
		return fmt.Errorf("%w: %v", ErrSchemaValidation, err)
	}
	return nil
}

// collectIssues flattens the validation error tree into its leaves.
func collectIssues(err *jsonschema.ValidationError) []SchemaIssue {
	var issues []SchemaIssue
	var walk func(*jsonschema.ValidationError)
	walk = func(node *jsonschema.ValidationError) {
		if len(node.Causes) == 0 {
			issues = append(issues, SchemaIssue{Location: node.InstanceLocation, Message: node.Message})
			return
		}
		for _, cause := range node.Causes {
			walk(cause)
		}
	}
	walk(err)
	return issues
}
