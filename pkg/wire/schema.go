package wire

import (
	"bytes"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// schemaDocument is the JSON Schema for the JSON projection of ParseResult
// (the same shape the CBOR codec encodes, field for field). It is kept
// alongside the Go structs rather than generated, since the wire shape is
// small and stable.
const schemaDocument = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "$id": "https://sandboxshell.example/schema/parse-result.json",
  "title": "ParseResult",
  "type": "object",
  "required": ["elements", "substitutions"],
  "properties": {
    "elements": {"type": "array", "items": {"$ref": "#/definitions/element"}},
    "substitutions": {"type": "array", "items": {"$ref": "#/definitions/substitution"}}
  },
  "definitions": {
    "element": {
      "type": "object",
      "required": ["connector", "pipeline"],
      "properties": {
        "connector": {"enum": ["none", "and", "or"]},
        "pipeline": {"$ref": "#/definitions/pipeline"}
      }
    },
    "pipeline": {
      "type": "object",
      "required": ["commands"],
      "properties": {
        "commands": {"type": "array", "items": {"$ref": "#/definitions/command"}}
      }
    },
    "command": {
      "type": "object",
      "required": ["args"],
      "properties": {
        "args": {"type": "array", "items": {"$ref": "#/definitions/word"}},
        "redirect": {"type": "array", "items": {"$ref": "#/definitions/redirect"}}
      }
    },
    "redirect": {
      "type": "object",
      "required": ["kind", "target"],
      "properties": {
        "kind": {"enum": ["stdin", "stdout", "stdout-append"]},
        "target": {"$ref": "#/definitions/word"}
      }
    },
    "word": {
      "type": "object",
      "required": ["segments"],
      "properties": {
        "segments": {"type": "array", "items": {"$ref": "#/definitions/segment"}}
      }
    },
    "segment": {
      "type": "object",
      "required": ["kind"],
      "properties": {
        "kind": {"enum": ["literal", "env-var", "command-subst"]},
        "text": {"type": "string"},
        "name": {"type": "string"},
        "default": {"type": "string"},
        "subst_id": {"type": "integer", "minimum": 0}
      }
    },
    "substitution": {
      "type": "object",
      "required": ["id", "input"],
      "properties": {
        "id": {"type": "integer", "minimum": 0},
        "input": {"type": "string"}
      }
    }
  }
}`

const schemaURL = "https://sandboxshell.example/schema/parse-result.json"

// compileSchema parses and compiles schemaDocument once per call; callers
// that validate many documents should hold onto the returned *jsonschema.Schema.
func compileSchema() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, bytes.NewReader([]byte(schemaDocument))); err != nil {
		return nil, errors.Wrap(err, "add schema resource")
	}
	schema, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, errors.Wrap(err, "compile schema")
	}
	return schema, nil
}

// ValidateJSON checks that data is a JSON document conforming to the
// ParseResult wire schema. It is independent of the CBOR codec: a
// consumer that received the JSON projection (e.g. via `shparse parse
// --format json`) can validate it without decoding CBOR first.
func ValidateJSON(data []byte) error {
	schema, err := compileSchema()
	if err != nil {
		return err
	}
	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return errors.Wrap(err, "unmarshal json")
	}
	if err := schema.Validate(doc); err != nil {
		return errors.Wrap(err, "schema validation")
	}
	return nil
}

// Schema returns the raw JSON Schema document text, for callers that want
// to publish or embed it directly.
func Schema() string {
	return schemaDocument
}
