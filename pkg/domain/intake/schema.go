package intake

import (
	"encoding/json"
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// SchemaJSON describes the payload produced by the spec extraction step.
// Only dataClassification is mandatory; collections may be absent or null.
const SchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["dataClassification"],
  "definitions": {
    "strings": { "type": ["array", "null"], "items": { "type": "string" } },
    "priority": { "type": "string" }
  },
  "properties": {
    "problemStatement": { "type": "string" },
    "currentProcess": { "type": "string" },
    "painPoints": { "$ref": "#/definitions/strings" },
    "goals": { "$ref": "#/definitions/strings" },
    "constraints": { "$ref": "#/definitions/strings" },
    "users": {
      "type": ["array", "null"],
      "items": {
        "type": "object",
        "properties": {
          "persona": { "type": "string" },
          "count": { "type": "string" },
          "techLevel": { "type": "string" }
        }
      }
    },
    "frequency": { "type": "string" },
    "volumes": { "type": "string" },
    "environments": { "$ref": "#/definitions/strings" },
    "dataTypes": { "$ref": "#/definitions/strings" },
    "dataClassification": { "type": "string", "minLength": 1 },
    "retentionPeriod": { "type": "string" },
    "privacyRequirements": { "$ref": "#/definitions/strings" },
    "integrations": {
      "type": ["array", "null"],
      "items": {
        "type": "object",
        "properties": {
          "system": { "type": "string" },
          "type": { "type": "string" },
          "priority": { "$ref": "#/definitions/priority" }
        }
      }
    },
    "uxNeeds": {
      "type": ["array", "null"],
      "items": {
        "type": "object",
        "properties": {
          "type": { "type": "string" },
          "description": { "type": "string" },
          "priority": { "$ref": "#/definitions/priority" }
        }
      }
    },
    "nfrs": {
      "type": ["object", "null"],
      "properties": {
        "availability": { "type": "string" },
        "responseTime": { "type": "string" },
        "throughput": { "type": "string" },
        "auditability": { "type": "boolean" },
        "supportHours": { "type": "string" },
        "dataRetention": { "type": "string" }
      }
    },
    "acceptanceCriteria": { "type": ["array", "null"], "items": { "type": "object" } },
    "testSuggestions": { "type": ["array", "null"], "items": { "type": "object" } },
    "risks": {
      "type": ["array", "null"],
      "items": {
        "type": "object",
        "properties": {
          "description": { "type": "string" },
          "probability": { "type": "string" },
          "impact": { "type": "string" }
        }
      }
    },
    "assumptions": { "$ref": "#/definitions/strings" },
    "openQuestions": { "$ref": "#/definitions/strings" },
    "timeToMarket": { "type": "integer", "minimum": 0, "maximum": 100 }
  }
}`

var schemaLoader = gojsonschema.NewStringLoader(SchemaJSON)

// ValidateJSON checks a raw payload against SchemaJSON and reports every
// violation in a single InvalidSpecError.
func ValidateJSON(data []byte) error {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return &InvalidSpecError{Reason: fmt.Sprintf("is not valid JSON: %v", err)}
	}
	if result.Valid() {
		return nil
	}
	violations := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		violations = append(violations, desc.String())
	}
	return &InvalidSpecError{Reason: "failed schema validation", Violations: violations}
}

// DecodeJSON validates and decodes a spec payload.
func DecodeJSON(data []byte) (*StructuredSpec, error) {
	if err := ValidateJSON(data); err != nil {
		return nil, err
	}
	var s StructuredSpec
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, &InvalidSpecError{Reason: fmt.Sprintf("could not be decoded: %v", err)}
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}
