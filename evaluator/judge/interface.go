/*
Copyright 2025 CareSignal, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package judge

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/caresignal/turneval/evaluator/schema"
)

// Interface is the single point of contact with a judge model provider.
// Implementations never retry internally; retry policy, if any, belongs to
// the caller.
type Interface interface {
	// Structured asks the provider for a response conforming exactly to the
	// schema descriptor and returns the raw JSON value. A response that is
	// not valid JSON is a provider failure, not a value.
	Structured(ctx context.Context, systemPrompt, userPayload string, desc *schema.Descriptor) (json.RawMessage, error)

	// FreeText asks the provider for unconstrained text and returns it
	// trimmed of surrounding whitespace.
	FreeText(ctx context.Context, systemPrompt, userPayload string) (string, error)
}

// InvocationError wraps any transport, authentication, rate-limit, or
// schema-conformance failure from the provider with the model that failed.
type InvocationError struct {
	Model string
	Cause error
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("judge invocation failed for model %s: %v", e.Model, e.Cause)
}

func (e *InvocationError) Unwrap() error {
	return e.Cause
}

// invocationErr is shorthand for wrapping a cause in an InvocationError.
func invocationErr(model string, format string, args ...any) *InvocationError {
	return &InvocationError{Model: model, Cause: fmt.Errorf(format, args...)}
}
