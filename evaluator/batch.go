/*
Copyright 2025 CareSignal, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package evaluator

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/chainguard-dev/clog"
)

// ResultRow pairs a verdict with the messages it judged, in the same
// position as the turn that produced it.
type ResultRow struct {
	Evaluation
	UserMessage string `json:"user_message"`
	Agent       string `json:"agent"`
}

// BatchResponse is the complete, order-preserving result of a batch.
type BatchResponse struct {
	Results []ResultRow `json:"results"`
}

// Service runs batch evaluations. A batch is all-or-nothing: turns are
// evaluated sequentially in input order, and the first failure of any kind
// discards the batch.
//
// A Service constructed with a nil evaluator is degraded: it reports zero
// knowledge base items and refuses every batch, but the process stays up to
// answer health checks.
type Service struct {
	eval *Evaluator
}

// NewService wraps an evaluator, which may be nil for a degraded service.
func NewService(eval *Evaluator) *Service {
	return &Service{eval: eval}
}

// Ready reports whether the service can evaluate at all.
func (s *Service) Ready() bool {
	return s.eval != nil
}

// KnowledgeBaseItems returns the loaded knowledge base size, zero when
// degraded.
func (s *Service) KnowledgeBaseItems() int {
	if s.eval == nil {
		return 0
	}
	return s.eval.KnowledgeBaseSize()
}

// EvaluateBatch judges every turn in order and returns one result row per
// turn. Failures carry the index of the offending turn; no partial results
// survive a failure.
func (s *Service) EvaluateBatch(ctx context.Context, turns []json.RawMessage) (*BatchResponse, error) {
	if s.eval == nil {
		return nil, ErrKnowledgeBaseUnavailable
	}
	log := clog.FromContext(ctx)

	rows := make([]ResultRow, 0, len(turns))
	for i, rawTurn := range turns {
		turn, err := ParseTurn(rawTurn)
		if err != nil {
			return nil, &MalformedTurnError{Index: i, Err: err}
		}

		eval, err := s.eval.EvaluateTurn(ctx, turn)
		if err != nil {
			var prep *PreparationError
			if errors.As(err, &prep) {
				return nil, err
			}
			return nil, &BatchInvocationError{Index: i, Err: err}
		}

		rows = append(rows, ResultRow{
			Evaluation:  *eval,
			UserMessage: turn.User.Content,
			Agent:       turn.Agent.Content,
		})
	}

	log.With("turns", len(turns)).Info("Batch evaluation completed")
	return &BatchResponse{Results: rows}, nil
}
