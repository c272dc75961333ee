/*
Copyright 2025 CareSignal, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package evaluator scores conversational turns between a user and a health
// support agent. Each turn is judged by a language model against a fixed
// knowledge base on three axes: groundedness, medical safety, and empathy.
package evaluator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/caresignal/turneval/evalconfig"
	"github.com/caresignal/turneval/evaluator/judge"
	"github.com/caresignal/turneval/evaluator/promptbuilder"
	"github.com/caresignal/turneval/evaluator/result"
	"github.com/caresignal/turneval/evaluator/schema"
	"github.com/caresignal/turneval/knowledgebase"
)

// kbPlaceholder is the placeholder the system prompt template must carry;
// the knowledge base is substituted for it on every invocation.
const kbPlaceholder = "kb"

// Evaluator orchestrates single-turn evaluations: it assembles the system
// prompt around the knowledge base, invokes the judge in the configured
// response mode, and validates the verdict that comes back.
type Evaluator struct {
	kb    *knowledgebase.Collection
	cfg   *evalconfig.Evaluation
	judge judge.Interface
	desc  *schema.Descriptor
}

// New wires an evaluator from its dependencies. A missing or empty knowledge
// base fails construction with ErrKnowledgeBaseUnavailable rather than
// letting evaluations run against silent emptiness.
func New(kb *knowledgebase.Collection, cfg *evalconfig.Evaluation, j judge.Interface) (*Evaluator, error) {
	if cfg == nil {
		return nil, errors.New("evaluation config cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if j == nil {
		return nil, errors.New("judge cannot be nil")
	}
	if kb == nil || kb.Len() == 0 {
		return nil, ErrKnowledgeBaseUnavailable
	}

	return &Evaluator{
		kb:    kb,
		cfg:   cfg,
		judge: j,
		desc:  schema.DescribeType[Evaluation]("evaluation", "The verdict on one conversational turn."),
	}, nil
}

// KnowledgeBaseSize returns the number of loaded knowledge base items.
func (e *Evaluator) KnowledgeBaseSize() int {
	return e.kb.Len()
}

// EvaluateTurn judges a single turn. The system prompt is rebuilt from the
// template for every call, so each invocation carries the full knowledge
// base regardless of what earlier calls did.
func (e *Evaluator) EvaluateTurn(ctx context.Context, turn *Turn) (*Evaluation, error) {
	systemPrompt, err := e.buildSystemPrompt()
	if err != nil {
		return nil, &PreparationError{Err: err}
	}

	payload, err := json.Marshal(turn)
	if err != nil {
		return nil, &PreparationError{Err: fmt.Errorf("serializing turn: %w", err)}
	}

	var eval Evaluation
	switch e.cfg.ResponseType {
	case evalconfig.ResponseStructured:
		raw, err := e.judge.Structured(ctx, systemPrompt, string(payload), e.desc)
		if err != nil {
			return nil, err
		}
		eval, err = result.ExtractStrict[Evaluation](string(raw))
		if err != nil {
			return nil, e.conformanceError(err)
		}

	case evalconfig.ResponseFreeText:
		text, err := e.judge.FreeText(ctx, systemPrompt, string(payload))
		if err != nil {
			return nil, err
		}
		eval, err = result.ExtractStrict[Evaluation](text)
		if err != nil {
			return nil, e.conformanceError(err)
		}

	default:
		return nil, &PreparationError{Err: fmt.Errorf("unsupported response type %q", e.cfg.ResponseType)}
	}

	if err := eval.Validate(); err != nil {
		return nil, e.conformanceError(err)
	}
	return &eval, nil
}

// conformanceError classifies a schema-violating response as a provider
// failure: the judge was constrained to the evaluation contract and did not
// honor it.
func (e *Evaluator) conformanceError(err error) error {
	return &judge.InvocationError{
		Model: e.cfg.ModelName,
		Cause: fmt.Errorf("response violates evaluation contract: %w", err),
	}
}

func (e *Evaluator) buildSystemPrompt() (string, error) {
	prompt, err := promptbuilder.NewPrompt(e.cfg.SystemPrompt)
	if err != nil {
		return "", fmt.Errorf("parsing system prompt template: %w", err)
	}
	if !prompt.Has(kbPlaceholder) {
		return "", fmt.Errorf("system prompt template has no {%s} placeholder", kbPlaceholder)
	}

	bound, err := prompt.BindJSON(kbPlaceholder, e.kb)
	if err != nil {
		return "", fmt.Errorf("binding knowledge base: %w", err)
	}
	return bound.Build()
}
