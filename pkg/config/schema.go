package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ErrInvalidDocument is returned for documents that cannot be decoded or do
// not satisfy the stub document schema.
var ErrInvalidDocument = errors.New("invalid stub document")

// documentSchema describes a stub document: a list of entries or a single
// entry. Status and latency accept strings so that bad values surface per
// request.
const documentSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "oneOf": [
    {"type": "array", "items": {"$ref": "#/$defs/entry"}},
    {"$ref": "#/$defs/entry"}
  ],
  "$defs": {
    "scalar": {"type": ["string", "number", "boolean"]},
    "scalarMap": {"type": "object", "additionalProperties": {"$ref": "#/$defs/scalar"}},
    "entry": {
      "type": "object",
      "required": ["request", "response"],
      "additionalProperties": false,
      "properties": {
        "description": {"type": "string"},
        "uuid": {"type": "string", "minLength": 1},
        "request": {"$ref": "#/$defs/request"},
        "response": {
          "oneOf": [
            {"$ref": "#/$defs/response"},
            {"type": "array", "minItems": 1, "items": {"$ref": "#/$defs/response"}}
          ]
        }
      }
    },
    "request": {
      "type": "object",
      "required": ["method", "url"],
      "additionalProperties": false,
      "properties": {
        "method": {
          "oneOf": [
            {"type": "string", "minLength": 1},
            {"type": "array", "minItems": 1, "items": {"type": "string", "minLength": 1}}
          ]
        },
        "url": {"type": "string", "minLength": 1},
        "query": {"$ref": "#/$defs/scalarMap"},
        "headers": {"$ref": "#/$defs/scalarMap"},
        "post": {"type": "string"},
        "file": {"type": "string"},
        "jsonpath": {"type": "object"},
        "require_authorization": {"type": "boolean"}
      }
    },
    "response": {
      "type": "object",
      "additionalProperties": false,
      "not": {"required": ["body", "file"]},
      "properties": {
        "status": {"type": ["string", "integer"]},
        "headers": {"$ref": "#/$defs/scalarMap"},
        "body": {"type": "string"},
        "file": {"type": "string"},
        "latency": {"type": ["string", "integer"]}
      }
    }
  }
}`

var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource("stubs.json", strings.NewReader(documentSchema)); err != nil {
		return nil, err
	}
	return compiler.Compile("stubs.json")
})

// validateDocument checks a decoded YAML document against the schema.
func validateDocument(doc any) error {
	schema, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("compiling stub document schema: %w", err)
	}

	// Round-trip through JSON so the validator sees plain JSON values.
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	var instance any
	if err := json.Unmarshal(data, &instance); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	if err := schema.Validate(instance); err != nil {
		var verr *jsonschema.ValidationError
		if errors.As(err, &verr) {
			return fmt.Errorf("%w: %s", ErrInvalidDocument, strings.Join(schemaErrors(verr, nil), "; "))
		}
		return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return nil
}

// schemaErrors flattens the leaf causes of a validation error.
func schemaErrors(err *jsonschema.ValidationError, out []string) []string {
	if len(err.Causes) == 0 {
		return append(out, fieldFromPointer(err.InstanceLocation)+": "+err.Message)
	}
	for _, cause := range err.Causes {
		out = schemaErrors(cause, out)
	}
	return out
}

// fieldFromPointer converts a JSON Pointer to dot notation.
func fieldFromPointer(ptr string) string {
	ptr = strings.TrimPrefix(ptr, "/")
	if ptr == "" {
		return "(root)"
	}
	return strings.ReplaceAll(ptr, "/", ".")
}
