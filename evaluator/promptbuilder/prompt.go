/*
Copyright 2025 CareSignal, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package promptbuilder

import (
	"fmt"
	"maps"
)

// Prompt represents a template with bindable placeholders
type Prompt struct {
	template string
	bindings map[string]binding
}

// NewPrompt creates a new prompt from a template and parses placeholders.
// Templates may come from configuration, so no literal-string restriction
// applies; Build still refuses to render while placeholders are unbound.
func NewPrompt(template string) (*Prompt, error) {
	bindings := make(map[string]binding)

	// Walk through the template and collect all placeholders.
	// The walk output is discarded; we only want the names here.
	if _, err := walkTemplate(template, func(name string) (string, error) {
		if _, exists := bindings[name]; !exists {
			bindings[name] = &unboundBinding{name: name}
		}
		return fmt.Sprintf("{%s}", name), nil
	}); err != nil {
		return nil, err
	}

	return &Prompt{
		template: template,
		bindings: bindings,
	}, nil
}

// Placeholders returns the names of all placeholders found in the template as a set
func (p *Prompt) Placeholders() map[string]struct{} {
	names := make(map[string]struct{}, len(p.bindings))
	for name := range p.bindings {
		names[name] = struct{}{}
	}
	return names
}

// Has reports whether the template contains the named placeholder
func (p *Prompt) Has(name string) bool {
	_, ok := p.bindings[name]
	return ok
}

// BindLiteral binds a plain string value to a placeholder.
// Returns a new Prompt with the binding applied.
func (p *Prompt) BindLiteral(name, value string) (*Prompt, error) {
	if err := existsAndUnbound(p.bindings, name); err != nil {
		return nil, err
	}
	newPrompt := &Prompt{
		template: p.template,
		bindings: maps.Clone(p.bindings),
	}
	newPrompt.bindings[name] = &literalBinding{val: value}
	return newPrompt, nil
}

// BindJSON binds structured data to a placeholder by marshaling it as JSON.
// Returns a new Prompt with the binding applied.
func (p *Prompt) BindJSON(name string, data any) (*Prompt, error) {
	if err := existsAndUnbound(p.bindings, name); err != nil {
		return nil, err
	}
	newPrompt := &Prompt{
		template: p.template,
		bindings: maps.Clone(p.bindings),
	}
	newPrompt.bindings[name] = &jsonBinding{data: data}
	return newPrompt, nil
}

// BindYAML binds structured data to a placeholder by marshaling it as YAML.
// Returns a new Prompt with the binding applied.
func (p *Prompt) BindYAML(name string, data any) (*Prompt, error) {
	if err := existsAndUnbound(p.bindings, name); err != nil {
		return nil, err
	}
	newPrompt := &Prompt{
		template: p.template,
		bindings: maps.Clone(p.bindings),
	}
	newPrompt.bindings[name] = &yamlBinding{data: data}
	return newPrompt, nil
}

// Build constructs the final prompt, returning an error if any placeholders are unbound
func (p *Prompt) Build() (string, error) {
	// Pre-compute all binding values to check for errors and avoid recomputation
	values := make(map[string]string, len(p.bindings))
	for name, binding := range p.bindings {
		val, err := binding.value()
		if err != nil {
			return "", err
		}
		values[name] = val
	}

	return walkTemplate(p.template, func(name string) (string, error) {
		if val, exists := values[name]; exists {
			return val, nil
		}
		// Unreachable: NewPrompt and Build share the same tokenizer
		return "", fmt.Errorf("internal error: placeholder %q not found in values map", name)
	})
}
