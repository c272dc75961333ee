/*
Copyright 2025 CareSignal, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package judgetrace records diagnostic traces of judge invocations: the
// prompt that was sent and the response that came back. Recording is
// best-effort; with no tracer provider installed the spans are no-ops, and
// nothing here can fail an evaluation.
package judgetrace

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/chainguard-dev/clog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
)

const tracerName = "caresignal.turneval.judgetrace"

// Record captures a single judge invocation from prompt to response.
type Record struct {
	ID           string    `json:"id"`
	Model        string    `json:"model"`
	SystemPrompt string    `json:"system_prompt"`
	UserPayload  string    `json:"user_payload"`
	Response     string    `json:"response,omitempty"`
	Error        error     `json:"error,omitempty"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`

	ctx  context.Context
	span oteltrace.Span
}

// Start opens a trace record for a judge invocation.
func Start(ctx context.Context, model, systemPrompt, userPayload string) *Record {
	tr := otel.Tracer(tracerName, oteltrace.WithInstrumentationVersion("1.0.0"))
	ctx, span := tr.Start(ctx, "judge.invoke", oteltrace.WithAttributes(
		attribute.String("judge.model", model),
		attribute.String("judge.system_prompt", systemPrompt),
		attribute.String("judge.user_payload", userPayload),
	))

	return &Record{
		ID:           generateID(),
		Model:        model,
		SystemPrompt: systemPrompt,
		UserPayload:  userPayload,
		StartTime:    time.Now(),
		ctx:          ctx,
		span:         span,
	}
}

// RecordTokenUsage attaches token counts to the span so consumption is
// visible without cross-referencing metrics.
func (r *Record) RecordTokenUsage(promptTokens, completionTokens int64) {
	if r == nil || r.span == nil {
		return
	}
	r.span.SetAttributes(
		attribute.Int64("judge.tokens.prompt", promptTokens),
		attribute.Int64("judge.tokens.completion", completionTokens),
	)
}

// Complete closes the record with the provider's response or error and logs
// a diagnostic line.
func (r *Record) Complete(response string, err error) {
	if r == nil {
		return
	}
	r.Response = response
	r.Error = err
	r.EndTime = time.Now()

	log := clog.FromContext(r.ctx)
	if err != nil {
		r.span.RecordError(err)
		r.span.SetStatus(codes.Error, err.Error())
		log.With("trace_id", r.ID).
			With("model", r.Model).
			With("error", err).
			Warn("Judge invocation failed")
	} else {
		r.span.SetAttributes(attribute.String("judge.response", response))
		r.span.SetStatus(codes.Ok, "")
		log.With("trace_id", r.ID).
			With("model", r.Model).
			With("response_length", len(response)).
			Debug("Judge invocation completed")
	}
	r.span.End()
}

// generateID returns a random 16-hex-character identifier.
func generateID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "unknown"
	}
	return hex.EncodeToString(b)
}
