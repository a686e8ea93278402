package curriculum

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/nibzard/curriculum/internal/utils"
)

//go:embed curriculum.schema.json
var bundledSchema string

// bundledSchemaURL names the embedded schema inside the compiler.
const bundledSchemaURL = "curriculum.schema.json"

// ValidationError represents a validation error with context.
type ValidationError struct {
	Path string // location of the error, e.g. "[0].residents[1].dueDate"
	Err  error
}

func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Err)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ValidationOptions controls validation behavior.
type ValidationOptions struct {
	// SchemaPath points at a JSON Schema file. When empty the bundled schema
	// is used. When set but unreadable, only minimal checks run.
	SchemaPath string
}

// ValidationResult contains validation results.
type ValidationResult struct {
	Valid      bool
	Errors     []error
	Warnings   []string
	UsedSchema bool
}

// Validate checks the document against the schema and the cross-reference
// invariants the schema cannot express: unique topic ids and resident
// subtopics that exist on their topic.
func Validate(d Document, opts ValidationOptions) *ValidationResult {
	result := &ValidationResult{
		Valid:    true,
		Errors:   make([]error, 0),
		Warnings: make([]string, 0),
	}

	schema, err := compileSchema(opts.SchemaPath)
	if err != nil {
		result.Warnings = append(result.Warnings, err.Error())
		result.Warnings = append(result.Warnings, "JSON Schema validation not available, using minimal checks")
		validateMinimal(d, result)
	} else {
		result.UsedSchema = true
		validateWithSchema(d, schema, result)
	}

	validateReferences(d, result)
	return result
}

func compileSchema(schemaPath string) (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true

	if schemaPath == "" {
		if err := compiler.AddResource(bundledSchemaURL, strings.NewReader(bundledSchema)); err != nil {
			return nil, fmt.Errorf("invalid bundled schema: %w", err)
		}
		return compiler.Compile(bundledSchemaURL)
	}

	absPath, err := filepath.Abs(schemaPath)
	if err != nil {
		return nil, fmt.Errorf("invalid schema path: %w", err)
	}
	if _, err := os.Stat(absPath); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("schema file not found: %s", absPath)
		}
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}
	schema, err := compiler.Compile(absPath)
	if err != nil {
		return nil, fmt.Errorf("invalid schema file: %w", err)
	}
	return schema, nil
}

func validateWithSchema(d Document, schema *jsonschema.Schema, result *ValidationResult) {
	data, err := Encode(d)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, &ValidationError{Err: err})
		return
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var instance any
	if err := dec.Decode(&instance); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, &ValidationError{
			Err: fmt.Errorf("failed to decode document for validation: %w", err),
		})
		return
	}

	if err := schema.Validate(instance); err != nil {
		result.Valid = false
		appendSchemaErrors(result, err)
	}
}

func appendSchemaErrors(result *ValidationResult, err error) {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		result.Errors = append(result.Errors, err)
		return
	}
	collectSchemaErrors(result, ve)
}

func collectSchemaErrors(result *ValidationResult, err *jsonschema.ValidationError) {
	if len(err.Causes) == 0 {
		result.Errors = append(result.Errors, &ValidationError{
			Path: utils.JSONPointerToPath(err.InstanceLocation),
			Err:  errors.New(err.Message),
		})
		return
	}
	for _, cause := range err.Causes {
		collectSchemaErrors(result, cause)
	}
}

// validateMinimal performs the structural checks the schema would make.
func validateMinimal(d Document, result *ValidationResult) {
	for i, t := range d {
		path := fmt.Sprintf("[%d]", i)
		if t.ID == "" {
			addError(result, path+".id", errors.New("missing required field"))
		}
		if t.Title == "" {
			addError(result, path+".title", errors.New("missing required field"))
		}
	}
}

// validateReferences checks invariants that span fields.
func validateReferences(d Document, result *ValidationResult) {
	seen := make(map[string]int, len(d))
	for i, t := range d {
		path := fmt.Sprintf("[%d]", i)
		if t.ID != "" {
			if first, dup := seen[t.ID]; dup {
				addError(result, path+".id", fmt.Errorf("duplicate topic id %q (first used by [%d])", t.ID, first))
			} else {
				seen[t.ID] = i
			}
		}

		for j, r := range t.Residents {
			rpath := fmt.Sprintf("%s.residents[%d]", path, j)
			for k, sub := range r.Subtopics {
				if !slices.Contains(t.Subtopics, sub) {
					addError(result, fmt.Sprintf("%s.subtopics[%d]", rpath, k),
						fmt.Errorf("%q is not a subtopic of topic %q", sub, t.ID))
				}
			}
			if strings.TrimSpace(r.Name) == "" {
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("%s: resident has no name and is left out of the coverage summary", rpath))
			}
		}
	}
}

func addError(result *ValidationResult, path string, err error) {
	result.Valid = false
	result.Errors = append(result.Errors, &ValidationError{Path: path, Err: err})
}
