// Package utils holds helpers shared by the command line and config packages.
package utils

import (
	"encoding/json"
	"reflect"
	"time"

	"github.com/invopop/jsonschema"
)

// SchemaMapper overrides the schema of a Go type. It returns nil to fall back
// to reflection.
type SchemaMapper func(t reflect.Type) *jsonschema.Schema

var durationType = reflect.TypeOf(time.Duration(0))

// GetSchemaFromConfig returns the indented JSON schema of config.
//
// Fields are inlined, properties come from yaml tags, and additional
// properties are rejected. time.Duration fields are documented as duration
// strings. mappers run before that default mapping.
func GetSchemaFromConfig(config any, mappers ...SchemaMapper) (string, error) {
	reflector := jsonschema.Reflector{
		ExpandedStruct:            true,
		DoNotReference:            true,
		AllowAdditionalProperties: false,
		FieldNameTag:              "yaml",
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			for _, mapper := range mappers {
				if schema := mapper(t); schema != nil {
					return schema
				}
			}

			if t == durationType {
				return &jsonschema.Schema{
					Type:        "string",
					Pattern:     `^([0-9]+(\.[0-9]+)?(ns|us|µs|ms|s|m|h))+$`,
					Description: "A Go duration such as 30s or 1m30s",
				}
			}

			return nil
		},
	}

	schema := reflector.Reflect(config)

	schemaBytes, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", err
	}

	return string(schemaBytes), nil
}

// EnumMapper maps every type named typeName (as printed by reflect) to a
// string enum.
func EnumMapper(typeName string, values []any) SchemaMapper {
	return func(t reflect.Type) *jsonschema.Schema {
		if t.String() != typeName {
			return nil
		}

		return &jsonschema.Schema{
			Type: "string",
			Enum: values,
		}
	}
}
