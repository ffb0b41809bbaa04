package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

var (
	ErrUnknownTypeTag       = errors.New("validation: unknown field type tag")
	ErrParametersValidation = errors.New("validation: field parameters invalid")
)

// ValidationIssue captures a single validation failure.
type ValidationIssue struct {
	Location string
	Message  string
}

// ParametersValidationError surfaces parameter bag issues for one field type.
type ParametersValidationError struct {
	TypeTag string
	Issues  []ValidationIssue
	Cause   error
}

func (e *ParametersValidationError) Error() string {
	if len(e.Issues) == 0 {
		if e.Cause != nil {
			return fmt.Sprintf("%s parameters: %s", e.TypeTag, e.Cause.Error())
		}
		return ErrParametersValidation.Error()
	}
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		location := strings.TrimSpace(issue.Location)
		if location == "" {
			location = "#"
		} else if !strings.HasPrefix(location, "#") {
			location = "#" + location
		}
		if issue.Message == "" {
			parts = append(parts, location)
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", location, issue.Message))
	}
	return fmt.Sprintf("%s parameters: %s", e.TypeTag, strings.Join(parts, "; "))
}

func (e *ParametersValidationError) Unwrap() error {
	return ErrParametersValidation
}

// Issues extracts validation issues from an error.
func Issues(err error) []ValidationIssue {
	if err == nil {
		return nil
	}
	var paramsErr *ParametersValidationError
	if errors.As(err, &paramsErr) && paramsErr != nil {
		return paramsErr.Issues
	}
	var validationErr *jsonschema.ValidationError
	if errors.As(err, &validationErr) && validationErr != nil {
		return collectValidationIssues(validationErr)
	}
	return []ValidationIssue{{Message: err.Error()}}
}

var parameterSchemas = map[string]string{
	"title": `{
		"type": "object",
		"properties": {
			"tags": {"type": "array", "items": {"type": "string", "minLength": 1}}
		},
		"additionalProperties": false
	}`,
	"text": `{
		"type": "object",
		"properties": {
			"subtype": {"enum": ["", "string", "integer", "number", "date"]}
		},
		"additionalProperties": false
	}`,
	"textarea": `{
		"type": "object",
		"properties": {"isWysiwyg": {"type": "boolean"}},
		"additionalProperties": false
	}`,
	"image": `{
		"type": "object",
		"properties": {"isRequired": {"type": "boolean"}},
		"additionalProperties": false
	}`,
	"file": `{
		"type": "object",
		"properties": {"isRequired": {"type": "boolean"}},
		"additionalProperties": false
	}`,
	"movie": `{
		"type": "object",
		"properties": {"isIframe": {"type": "boolean"}},
		"additionalProperties": false
	}`,
	"choice": `{
		"type": "object",
		"properties": {
			"choices": {
				"oneOf": [
					{
						"type": "array",
						"items": {
							"type": "object",
							"properties": {
								"value": {"type": "string", "minLength": 1},
								"label": {"type": "string"}
							},
							"required": ["value"],
							"additionalProperties": false
						}
					},
					{"type": "object", "additionalProperties": {"type": "string"}}
				]
			}
		},
		"additionalProperties": false
	}`,
	"list": `{
		"type": "object",
		"properties": {
			"min": {"type": "integer", "minimum": 0},
			"max": {"type": "integer", "minimum": 0}
		},
		"additionalProperties": false
	}`,
	"object": `{
		"type": "object",
		"properties": {"entityClass": {"type": "string", "minLength": 1}},
		"required": ["entityClass"],
		"additionalProperties": false
	}`,
	"button":    `{"type": "object", "additionalProperties": false}`,
	"group":     `{"type": "object", "additionalProperties": false}`,
	"switch":    `{"type": "object", "additionalProperties": false}`,
	"separator": `{"type": "object", "additionalProperties": false}`,
	"container": `{"type": "object", "additionalProperties": false}`,
}

var (
	compiledMu sync.Mutex
	compiled   = map[string]*jsonschema.Schema{}
)

// ValidateParameters checks a raw parameter bag against the schema registered
// for the given field type tag.
func ValidateParameters(typeTag string, params map[string]any) error {
	tag := strings.ToLower(strings.TrimSpace(typeTag))
	schema, err := schemaFor(tag)
	if err != nil {
		return err
	}
	if params == nil {
		params = map[string]any{}
	}

	encoded, err := json.Marshal(params)
	if err != nil {
		return &ParametersValidationError{TypeTag: tag, Cause: err}
	}
	var doc any
	if err := json.Unmarshal(encoded, &doc); err != nil {
		return &ParametersValidationError{TypeTag: tag, Cause: err}
	}
	if err := schema.Validate(doc); err != nil {
		return &ParametersValidationError{
			TypeTag: tag,
			Issues:  Issues(err),
			Cause:   err,
		}
	}
	return nil
}

func schemaFor(tag string) (*jsonschema.Schema, error) {
	compiledMu.Lock()
	defer compiledMu.Unlock()

	if schema, ok := compiled[tag]; ok {
		return schema, nil
	}
	source, ok := parameterSchemas[tag]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTypeTag, tag)
	}

	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	url := tag + ".parameters.json"
	if err := compiler.AddResource(url, strings.NewReader(source)); err != nil {
		return nil, err
	}
	schema, err := compiler.Compile(url)
	if err != nil {
		return nil, err
	}
	compiled[tag] = schema
	return schema, nil
}

func collectValidationIssues(err *jsonschema.ValidationError) []ValidationIssue {
	if err == nil {
		return nil
	}
	issues := []ValidationIssue{}
	var walk func(*jsonschema.ValidationError)
	walk = func(node *jsonschema.ValidationError) {
		if node == nil {
			return
		}
		if len(node.Causes) == 0 {
			issues = append(issues, ValidationIssue{
				Location: strings.TrimSpace(node.InstanceLocation),
				Message:  strings.TrimSpace(node.Message),
			})
			return
		}
		for _, cause := range node.Causes {
			walk(cause)
		}
	}
	walk(err)
	return issues
}
