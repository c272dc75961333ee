/*
Copyright 2025 CareSignal, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package metrics provides OpenTelemetry counters for judge invocations.
package metrics

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// GenAI provides OpenTelemetry metrics for judge model operations: token
// usage counters and an invocation counter dimensioned by outcome. Metric
// creation degrades gracefully to no-op counters so observability failures
// never block evaluation.
type GenAI struct {
	meter            metric.Meter
	promptTokens     metric.Int64Counter
	completionTokens metric.Int64Counter
	invocations      metric.Int64Counter
}

// NewGenAI creates a new GenAI metrics instance with the specified meter name.
// The meterName should be unified across all judge backends (e.g.
// "caresignal.turneval.judge") with the model name serving as a dimension on
// the recorded metrics.
func NewGenAI(meterName string) *GenAI {
	meter := otel.Meter(meterName, metric.WithInstrumentationVersion("1.0.0"))

	promptTokens, err := meter.Int64Counter("genai.token.prompt",
		metric.WithDescription("The number of prompt tokens used"),
		metric.WithUnit("{tokens}"))
	if err != nil {
		slog.Warn("Failed to create prompt tokens counter, metrics will be disabled", "error", err, "meter", meterName)
		promptTokens = noop.Int64Counter{}
	}

	completionTokens, err := meter.Int64Counter("genai.token.completion",
		metric.WithDescription("The number of completion tokens used"),
		metric.WithUnit("{tokens}"))
	if err != nil {
		slog.Warn("Failed to create completion tokens counter, metrics will be disabled", "error", err, "meter", meterName)
		completionTokens = noop.Int64Counter{}
	}

	invocations, err := meter.Int64Counter("genai.judge.invocations",
		metric.WithDescription("The number of judge invocations"),
		metric.WithUnit("{calls}"))
	if err != nil {
		slog.Warn("Failed to create invocation counter, metrics will be disabled", "error", err, "meter", meterName)
		invocations = noop.Int64Counter{}
	}

	return &GenAI{
		meter:            meter,
		promptTokens:     promptTokens,
		completionTokens: completionTokens,
		invocations:      invocations,
	}
}

// RecordTokens records prompt and completion token usage for a model call.
func (m *GenAI) RecordTokens(ctx context.Context, model string, promptTokens, completionTokens int64) {
	attrs := metric.WithAttributes(attribute.String("model", model))
	m.promptTokens.Add(ctx, promptTokens, attrs)
	m.completionTokens.Add(ctx, completionTokens, attrs)
}

// RecordInvocation records one judge invocation with its outcome
// ("ok" or "error"), dimensioned by model and response mode.
func (m *GenAI) RecordInvocation(ctx context.Context, model, mode string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.invocations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("model", model),
		attribute.String("mode", mode),
		attribute.String("outcome", outcome),
	))
}
