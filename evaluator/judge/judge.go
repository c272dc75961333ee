/*
Copyright 2025 CareSignal, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package judge invokes a large language model as an evaluation judge.
//
// Two response modes are supported. Structured mode constrains the provider
// with a JSON schema and returns the raw JSON document. Free-text mode returns
// the model's prose as-is; callers extract and validate any embedded JSON
// themselves.
//
// Backend selection is by model name: claude-* models route to the Anthropic
// API, everything else to an OpenAI-compatible chat-completions endpoint
// (optionally redirected with WithBaseURL).
package judge

import (
	"fmt"
	"strings"
)

const meterName = "caresignal.turneval.judge"

// New constructs the judge backend for the given model name.
func New(modelName string, opts ...Option) (Interface, error) {
	if modelName == "" {
		return nil, fmt.Errorf("model name cannot be empty")
	}

	s := defaultSettings()
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if strings.HasPrefix(modelName, "claude-") {
		return newClaude(modelName, s), nil
	}
	return newOpenAI(modelName, s), nil
}
