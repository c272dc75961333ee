/*
Copyright 2025 CareSignal, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package schema derives the JSON schemas that constrain judge output.
package schema

import "github.com/invopop/jsonschema"

// Generator wraps jsonschema.Reflector with project defaults.
type Generator struct {
	reflector jsonschema.Reflector
}

// NewGenerator constructs a generator wired for structured-output schemas.
// Structured output is a closed contract: no $refs, no additional properties,
// required fields taken from struct tags.
func NewGenerator() *Generator {
	return &Generator{
		reflector: jsonschema.Reflector{
			RequiredFromJSONSchemaTags: true,
			ExpandedStruct:             true,
			AllowAdditionalProperties:  false,
			DoNotReference:             true,
		},
	}
}

// Reflect returns the JSON schema for the provided value.
func (g *Generator) Reflect(v any) *jsonschema.Schema {
	return g.reflector.Reflect(v)
}

// Reflect derives the JSON schema for the provided value using a default generator.
func Reflect(v any) *jsonschema.Schema {
	return NewGenerator().Reflect(v)
}

// ReflectType allocates a zero value of T and reflects it to a schema.
func ReflectType[T any]() *jsonschema.Schema {
	var zero T
	return Reflect(&zero)
}

// Descriptor names a schema for a provider's structured-output mode.
type Descriptor struct {
	// Name identifies the schema in provider requests.
	Name string

	// Description tells the model what the schema represents.
	Description string

	// Schema is the JSON schema the response must conform to.
	Schema *jsonschema.Schema
}

// DescribeType builds a Descriptor for T with the given name and description.
func DescribeType[T any](name, description string) *Descriptor {
	return &Descriptor{
		Name:        name,
		Description: description,
		Schema:      ReflectType[T](),
	}
}
