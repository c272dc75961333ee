/*
Copyright 2025 CareSignal, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package judge

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	anthropicopt "github.com/anthropics/anthropic-sdk-go/option"
	"github.com/caresignal/turneval/evaluator/judgetrace"
	"github.com/caresignal/turneval/evaluator/metrics"
	"github.com/caresignal/turneval/evaluator/result"
	"github.com/caresignal/turneval/evaluator/schema"
)

// claudeJudge talks to the Anthropic Messages API. Claude has no native JSON
// schema response format on this surface, so structured mode embeds the schema
// in the system prompt and extracts the JSON document from the reply.
type claudeJudge struct {
	client       anthropic.Client
	modelName    string
	maxTokens    int64
	temperature  float64
	genaiMetrics *metrics.GenAI
}

func newClaude(modelName string, s *settings) *claudeJudge {
	var clientOpts []anthropicopt.RequestOption
	if s.apiKey != "" {
		clientOpts = append(clientOpts, anthropicopt.WithAPIKey(s.apiKey))
	}
	if s.baseURL != "" {
		clientOpts = append(clientOpts, anthropicopt.WithBaseURL(s.baseURL))
	}

	return &claudeJudge{
		client:       anthropic.NewClient(clientOpts...),
		modelName:    modelName,
		maxTokens:    s.maxTokens,
		temperature:  s.temperature,
		genaiMetrics: metrics.NewGenAI(meterName),
	}
}

// Structured appends the schema contract to the system prompt and returns the
// JSON document extracted from Claude's reply.
func (j *claudeJudge) Structured(ctx context.Context, systemPrompt, userPayload string, desc *schema.Descriptor) (raw json.RawMessage, err error) {
	if desc == nil {
		return nil, invocationErr(j.modelName, "structured mode requires a schema descriptor")
	}

	schemaJSON, err := json.Marshal(desc.Schema)
	if err != nil {
		return nil, invocationErr(j.modelName, "marshaling response schema: %w", err)
	}
	system := fmt.Sprintf("%s\n\nRespond with a single JSON object named %q conforming to this JSON schema, and nothing else:\n%s",
		systemPrompt, desc.Name, schemaJSON)

	trace := judgetrace.Start(ctx, j.modelName, system, userPayload)
	defer func() {
		trace.Complete(string(raw), err)
		j.genaiMetrics.RecordInvocation(ctx, j.modelName, "structured", err)
	}()

	text, err := j.stream(ctx, trace, system, userPayload)
	if err != nil {
		return nil, err
	}

	extracted := result.ExtractJSON(text)
	if !json.Valid([]byte(extracted)) {
		return nil, invocationErr(j.modelName, "structured response is not valid JSON: %.200s", text)
	}
	return json.RawMessage(extracted), nil
}

// FreeText returns Claude's reply as-is.
func (j *claudeJudge) FreeText(ctx context.Context, systemPrompt, userPayload string) (text string, err error) {
	trace := judgetrace.Start(ctx, j.modelName, systemPrompt, userPayload)
	defer func() {
		trace.Complete(text, err)
		j.genaiMetrics.RecordInvocation(ctx, j.modelName, "free_text", err)
	}()

	reply, err := j.stream(ctx, trace, systemPrompt, userPayload)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(reply), nil
}

// stream performs a single streaming Messages call and accumulates the text
// content. A single call per evaluation: failures propagate without retry.
func (j *claudeJudge) stream(ctx context.Context, trace *judgetrace.Record, systemPrompt, userPayload string) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(j.modelName),
		MaxTokens: j.maxTokens,
		Messages: []anthropic.MessageParam{{
			Role: anthropic.MessageParamRoleUser,
			Content: []anthropic.ContentBlockParamUnion{
				anthropic.NewTextBlock(userPayload),
			},
		}},
		System: []anthropic.TextBlockParam{{Text: systemPrompt}},
	}
	params.Temperature = anthropic.Float(j.temperature)

	stream := j.client.Messages.NewStreaming(ctx, params)
	var msg anthropic.Message
	for stream.Next() {
		event := stream.Current()
		if err := msg.Accumulate(event); err != nil {
			return "", invocationErr(j.modelName, "failed to accumulate event: %w", err)
		}
	}
	if err := stream.Err(); err != nil {
		return "", &InvocationError{Model: j.modelName, Cause: err}
	}

	if msg.Usage.InputTokens > 0 || msg.Usage.OutputTokens > 0 {
		j.genaiMetrics.RecordTokens(ctx, j.modelName, msg.Usage.InputTokens, msg.Usage.OutputTokens)
		trace.RecordTokenUsage(msg.Usage.InputTokens, msg.Usage.OutputTokens)
	}

	var text strings.Builder
	for _, content := range msg.Content {
		if content.Type == "text" {
			text.WriteString(content.Text)
		}
	}
	if text.Len() == 0 {
		return "", invocationErr(j.modelName, "response contained no text content")
	}
	return text.String(), nil
}
