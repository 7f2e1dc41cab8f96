package config

import (
	"encoding/json"
	"fmt"
	"reflect"
	"time"

	"github.com/invopop/jsonschema"

	"github.com/marmos91/shapeview/internal/bytesize"
)

// JSONSchema returns the JSON schema of the configuration file, for editor
// completion and external validation.
func JSONSchema() ([]byte, error) {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
		FieldNameTag:              "yaml",
		Mapper:                    schemaMapper,
	}

	schema := reflector.Reflect(&Config{})
	schema.Version = "https://json-schema.org/draft/2020-12/schema"
	schema.Title = "shapeview configuration"
	schema.Description = "Configuration schema for the shapeview server and CLI"

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to generate schema: %w", err)
	}
	return data, nil
}

// schemaMapper describes types that are written as strings in YAML.
func schemaMapper(t reflect.Type) *jsonschema.Schema {
	switch t {
	case reflect.TypeOf(time.Duration(0)):
		return &jsonschema.Schema{
			Type:        "string",
			Pattern:     `^([0-9]+(\.[0-9]+)?(ns|us|µs|ms|s|m|h))+$`,
			Description: "Duration such as 30s, 5m or 1h30m",
		}
	case reflect.TypeOf(bytesize.ByteSize(0)):
		return &jsonschema.Schema{
			Type:        "string",
			Pattern:     `^[0-9]+(\.[0-9]+)?\s*([kKmMgG]i?[bB]?|[bB])?$`,
			Description: "Byte size such as 4096, 64Ki, 16Mi or 1GB",
		}
	}
	return nil
}
