package catalog

import (
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const catalogSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["films"],
  "additionalProperties": false,
  "properties": {
    "offset": {"type": "integer", "minimum": 0},
    "films": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["label"],
        "additionalProperties": false,
        "properties": {
          "id": {"type": "integer", "minimum": 1},
          "label": {"type": "string", "minLength": 1},
          "file": {"type": "string"}
        }
      }
    }
  }
}`

var (
	schemaOnce     sync.Once
	schemaCompiled *jsonschema.Schema
)

func catalogSchema() *jsonschema.Schema {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("films.schema.json", strings.NewReader(catalogSchemaJSON)); err != nil {
			panic(err)
		}
		schemaCompiled = compiler.MustCompile("films.schema.json")
	})
	return schemaCompiled
}
