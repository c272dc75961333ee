/*
Copyright 2025 CareSignal, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package evalconfig loads evaluator settings from named blocks in a YAML
// document. Each block names the judge model, its response mode, and the
// system-prompt template carrying the {kb} placeholder.
package evalconfig

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ResponseType selects how the judge model is asked to answer.
type ResponseType string

const (
	// ResponseStructured asks the provider for output conforming to a JSON schema.
	ResponseStructured ResponseType = "structured_output"
	// ResponseFreeText asks the provider for unconstrained text.
	ResponseFreeText ResponseType = "free_text"
)

// Evaluation is one named configuration block for the evaluator.
type Evaluation struct {
	// ResponseType is structured_output or free_text.
	ResponseType ResponseType `yaml:"response_type"`

	// SystemPrompt is a template with a {kb} placeholder for the
	// serialized knowledge base.
	SystemPrompt string `yaml:"system_prompt"`

	// ModelName is the provider model identifier, e.g. gpt-4o or claude-sonnet-4.
	ModelName string `yaml:"model_name"`
}

// Validate reports every missing or invalid key at once, so a broken config
// file is fixed in one round trip rather than key by key.
func (e *Evaluation) Validate() error {
	var problems []string
	switch e.ResponseType {
	case ResponseStructured, ResponseFreeText:
	case "":
		problems = append(problems, "response_type is required")
	default:
		problems = append(problems, fmt.Sprintf("response_type %q is not one of %q or %q",
			e.ResponseType, ResponseStructured, ResponseFreeText))
	}
	if e.SystemPrompt == "" {
		problems = append(problems, "system_prompt is required")
	}
	if e.ModelName == "" {
		problems = append(problems, "model_name is required")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid evaluation config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// File is a parsed configuration document holding named blocks.
type File struct {
	path   string
	blocks map[string]yaml.Node
}

// Load reads and parses the YAML configuration document at path.
// Blocks are decoded lazily by Block, so unrelated blocks with other shapes
// do not break loading.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	blocks := make(map[string]yaml.Node)
	if err := yaml.Unmarshal(data, &blocks); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return &File{path: path, blocks: blocks}, nil
}

// Block decodes and validates the named evaluation block.
func (f *File) Block(name string) (*Evaluation, error) {
	node, ok := f.blocks[name]
	if !ok {
		return nil, fmt.Errorf("config block %q not found in %s", name, f.path)
	}

	var eval Evaluation
	if err := node.Decode(&eval); err != nil {
		return nil, fmt.Errorf("decoding config block %q: %w", name, err)
	}
	if err := eval.Validate(); err != nil {
		return nil, fmt.Errorf("config block %q: %w", name, err)
	}
	return &eval, nil
}
