// Package schema checks a stored planning document against the JSON Schema of
// the current layout and against the back-reference rules the schema cannot
// express.
package schema

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

const schemaURL = "https://waypoint.local/schema/document.schema.json"

//go:embed document.schema.json
var documentSchema []byte

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

// Source returns the raw JSON Schema.
func Source() []byte {
	return append([]byte(nil), documentSchema...)
}

// ValidationError is one problem found in a document.
type ValidationError struct {
	Path string // dotted path to the offending value
	Err  error
}

func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ValidationResult contains validation results.
type ValidationResult struct {
	Valid  bool
	Errors []error
}

func compile() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		compiler.AssertFormat = true
		if err := compiler.AddResource(schemaURL, bytes.NewReader(documentSchema)); err != nil {
			compileErr = fmt.Errorf("load schema: %w", err)
			return
		}
		compiled, compileErr = compiler.Compile(schemaURL)
	})
	return compiled, compileErr
}

// Validate checks data, a JSON encoded document. It returns an error only
// when data is not JSON or the embedded schema cannot be compiled; problems
// with the document itself are reported in the result.
func Validate(data []byte) (*ValidationResult, error) {
	s, err := compile()
	if err != nil {
		return nil, err
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	result := &ValidationResult{Valid: true, Errors: make([]error, 0)}
	if err := s.Validate(doc); err != nil {
		appendSchemaErrors(result, err)
	}
	checkReferences(result, doc)

	result.Valid = len(result.Errors) == 0
	return result, nil
}

func appendSchemaErrors(result *ValidationResult, err error) {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		result.Errors = append(result.Errors, err)
		return
	}
	collectSchemaErrors(result, ve)
}

func collectSchemaErrors(result *ValidationResult, err *jsonschema.ValidationError) {
	if err == nil {
		return
	}

	if len(err.Causes) == 0 {
		result.Errors = append(result.Errors, &ValidationError{
			Path: jsonPointerToPath(err.InstanceLocation),
			Err:  fmt.Errorf("%s", err.Message),
		})
		return
	}

	for _, cause := range err.Causes {
		collectSchemaErrors(result, cause)
	}
}

// checkReferences reports milestones and tasks whose projectId or
// milestoneId does not name their owner.
func checkReferences(result *ValidationResult, doc any) {
	root, _ := doc.(map[string]any)
	projects, _ := root["projects"].([]any)
	for i, p := range projects {
		project, _ := p.(map[string]any)
		projectID, _ := project["id"].(string)
		milestones, _ := project["milestones"].([]any)

		for j, m := range milestones {
			milestone, _ := m.(map[string]any)
			milestoneID, _ := milestone["id"].(string)
			path := fmt.Sprintf("projects[%d].milestones[%d]", i, j)
			mismatch(result, path+".projectId", milestone["projectId"], projectID)

			tasks, _ := milestone["tasks"].([]any)
			for k, t := range tasks {
				task, _ := t.(map[string]any)
				tpath := fmt.Sprintf("%s.tasks[%d]", path, k)
				mismatch(result, tpath+".projectId", task["projectId"], projectID)
				mismatch(result, tpath+".milestoneId", task["milestoneId"], milestoneID)
			}
		}
	}
}

func mismatch(result *ValidationResult, path string, got any, want string) {
	s, ok := got.(string)
	if !ok || s == want {
		return
	}
	result.Errors = append(result.Errors, &ValidationError{
		Path: path,
		Err:  fmt.Errorf("is %q, owner is %q", s, want),
	})
}

func jsonPointerToPath(ptr string) string {
	ptr = strings.TrimPrefix(ptr, "#")
	ptr = strings.TrimPrefix(ptr, "/")
	if ptr == "" {
		return ""
	}

	path := ""
	for _, part := range strings.Split(ptr, "/") {
		part = strings.ReplaceAll(part, "~1", "/")
		part = strings.ReplaceAll(part, "~0", "~")
		if part == "" {
			continue
		}
		if idx, err := strconv.Atoi(part); err == nil {
			path += fmt.Sprintf("[%d]", idx)
			continue
		}
		if path == "" {
			path = part
		} else {
			path += "." + part
		}
	}
	return path
}
