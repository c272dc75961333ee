/*
Copyright 2025 CareSignal, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package judge

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/caresignal/turneval/evaluator/judgetrace"
	"github.com/caresignal/turneval/evaluator/metrics"
	"github.com/caresignal/turneval/evaluator/schema"
	"github.com/openai/openai-go"
	openaiopt "github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

// openAIJudge talks to an OpenAI-compatible chat-completions endpoint.
type openAIJudge struct {
	client       openai.Client
	modelName    string
	maxTokens    int64
	temperature  float64
	genaiMetrics *metrics.GenAI
}

func newOpenAI(modelName string, s *settings) *openAIJudge {
	var clientOpts []openaiopt.RequestOption
	if s.apiKey != "" {
		clientOpts = append(clientOpts, openaiopt.WithAPIKey(s.apiKey))
	}
	if s.baseURL != "" {
		clientOpts = append(clientOpts, openaiopt.WithBaseURL(s.baseURL))
	}

	return &openAIJudge{
		client:       openai.NewClient(clientOpts...),
		modelName:    modelName,
		maxTokens:    s.maxTokens,
		temperature:  s.temperature,
		genaiMetrics: metrics.NewGenAI(meterName),
	}
}

// Structured requests a completion constrained by the schema descriptor and
// returns the raw JSON content of the first choice.
func (j *openAIJudge) Structured(ctx context.Context, systemPrompt, userPayload string, desc *schema.Descriptor) (raw json.RawMessage, err error) {
	if desc == nil {
		return nil, invocationErr(j.modelName, "structured mode requires a schema descriptor")
	}

	trace := judgetrace.Start(ctx, j.modelName, systemPrompt, userPayload)
	defer func() {
		trace.Complete(string(raw), err)
		j.genaiMetrics.RecordInvocation(ctx, j.modelName, "structured", err)
	}()

	params := j.newParams(systemPrompt, userPayload)
	params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
		OfJSONSchema: &shared.ResponseFormatJSONSchemaParam{
			JSONSchema: shared.ResponseFormatJSONSchemaJSONSchemaParam{
				Name:        desc.Name,
				Schema:      desc.Schema,
				Strict:      openai.Bool(true),
				Description: openai.String(desc.Description),
			},
		},
	}

	content, err := j.complete(ctx, trace, params)
	if err != nil {
		return nil, err
	}
	if !json.Valid([]byte(content)) {
		return nil, invocationErr(j.modelName, "structured response is not valid JSON: %.200s", content)
	}
	return json.RawMessage(content), nil
}

// FreeText requests an unconstrained completion.
func (j *openAIJudge) FreeText(ctx context.Context, systemPrompt, userPayload string) (text string, err error) {
	trace := judgetrace.Start(ctx, j.modelName, systemPrompt, userPayload)
	defer func() {
		trace.Complete(text, err)
		j.genaiMetrics.RecordInvocation(ctx, j.modelName, "free_text", err)
	}()

	content, err := j.complete(ctx, trace, j.newParams(systemPrompt, userPayload))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(content), nil
}

func (j *openAIJudge) newParams(systemPrompt, userPayload string) openai.ChatCompletionNewParams {
	return openai.ChatCompletionNewParams{
		Model: shared.ChatModel(j.modelName),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPayload),
		},
		MaxCompletionTokens: openai.Int(j.maxTokens),
		Temperature:         openai.Float(j.temperature),
	}
}

// complete performs a single chat-completions call. No retries: a failed call
// is the caller's to surface.
func (j *openAIJudge) complete(ctx context.Context, trace *judgetrace.Record, params openai.ChatCompletionNewParams) (string, error) {
	completion, err := j.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", &InvocationError{Model: j.modelName, Cause: err}
	}

	if completion.Usage.PromptTokens > 0 || completion.Usage.CompletionTokens > 0 {
		j.genaiMetrics.RecordTokens(ctx, j.modelName, completion.Usage.PromptTokens, completion.Usage.CompletionTokens)
		trace.RecordTokenUsage(completion.Usage.PromptTokens, completion.Usage.CompletionTokens)
	}

	if len(completion.Choices) == 0 {
		return "", invocationErr(j.modelName, "response contained no choices")
	}
	content := completion.Choices[0].Message.Content
	if content == "" {
		return "", invocationErr(j.modelName, "response contained no content")
	}
	return content, nil
}
