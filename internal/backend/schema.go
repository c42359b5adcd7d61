package backend

import (
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// The schemas only pin what opz reads; the CLI adds many more properties.
const itemListSchema = `{
  "type": "array",
  "items": {
    "type": "object",
    "required": ["id", "title"],
    "properties": {
      "id": {"type": "string", "minLength": 1},
      "title": {"type": "string"},
      "vault": {"$ref": "#/definitions/vault"}
    }
  },
  "definitions": {
    "vault": {
      "type": ["object", "null"],
      "properties": {
        "id": {"type": "string"},
        "name": {"type": "string"}
      }
    }
  }
}`

const itemGetSchema = `{
  "type": "object",
  "properties": {
    "fields": {
      "type": ["array", "null"],
      "items": {
        "type": "object",
        "properties": {
          "label": {"type": ["string", "null"]}
        }
      }
    },
    "vault": {
      "type": ["object", "null"],
      "properties": {
        "id": {"type": "string"},
        "name": {"type": "string"}
      }
    }
  }
}`

var (
	listSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
		return gojsonschema.NewSchema(gojsonschema.NewStringLoader(itemListSchema))
	})
	getSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
		return gojsonschema.NewSchema(gojsonschema.NewStringLoader(itemGetSchema))
	})
)

// validate checks raw backend output against a compiled schema.
func validate(compiled func() (*gojsonschema.Schema, error), data []byte) error {
	schema, err := compiled()
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if !result.Valid() {
		var messages []string
		for _, desc := range result.Errors() {
			messages = append(messages, desc.String())
		}
		return fmt.Errorf("unexpected output shape:\n  - %s", strings.Join(messages, "\n  - "))
	}
	return nil
}
