/*
Copyright 2025 CareSignal, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package evaluator

import (
	"errors"
	"fmt"
)

// ErrKnowledgeBaseUnavailable marks evaluation attempts against a service
// whose knowledge base never loaded. The service still answers health checks
// in this state; it just cannot evaluate.
var ErrKnowledgeBaseUnavailable = errors.New("knowledge base unavailable")

// PreparationError reports a failure assembling the judge invocation before
// any provider was contacted, such as a system prompt template that cannot
// be bound. These are configuration problems, not provider problems.
type PreparationError struct {
	Err error
}

func (e *PreparationError) Error() string {
	return fmt.Sprintf("preparing evaluation: %v", e.Err)
}

func (e *PreparationError) Unwrap() error {
	return e.Err
}

// MalformedTurnError identifies which turn of a batch failed validation and
// why. The batch produced no results.
type MalformedTurnError struct {
	Index int
	Err   error
}

func (e *MalformedTurnError) Error() string {
	return fmt.Sprintf("turn %d is malformed: %v", e.Index, e.Err)
}

func (e *MalformedTurnError) Unwrap() error {
	return e.Err
}

// BatchInvocationError identifies which turn of a batch the judge failed on.
// Evaluations completed for earlier turns are discarded.
type BatchInvocationError struct {
	Index int
	Err   error
}

func (e *BatchInvocationError) Error() string {
	return fmt.Sprintf("evaluating turn %d: %v", e.Index, e.Err)
}

func (e *BatchInvocationError) Unwrap() error {
	return e.Err
}
