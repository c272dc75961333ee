/*
Copyright 2025 CareSignal, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package judge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/caresignal/turneval/evaluator/schema"
	"github.com/stretchr/testify/require"
)

func TestNewDispatch(t *testing.T) {
	tests := []struct {
		name      string
		modelName string
		wantType  string
	}{
		{name: "claude routes to anthropic", modelName: "claude-sonnet-4@20250514", wantType: "*judge.claudeJudge"},
		{name: "gpt routes to openai", modelName: "gpt-4o", wantType: "*judge.openAIJudge"},
		{name: "unknown prefix routes to openai-compatible", modelName: "llama-3.1-70b", wantType: "*judge.openAIJudge"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j, err := New(tt.modelName)
			require.NoError(t, err)
			if got := fmt.Sprintf("%T", j); got != tt.wantType {
				t.Errorf("New(%q): backend = %s, wanted = %s", tt.modelName, got, tt.wantType)
			}
		})
	}
}

func TestNewErrors(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
	}{
		{name: "empty API key", opts: []Option{WithAPIKey("")}},
		{name: "empty base URL", opts: []Option{WithBaseURL("")}},
		{name: "zero max tokens", opts: []Option{WithMaxTokens(0)}},
		{name: "excessive max tokens", opts: []Option{WithMaxTokens(64000)}},
		{name: "negative temperature", opts: []Option{WithTemperature(-0.1)}},
		{name: "excessive temperature", opts: []Option{WithTemperature(1.5)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New("gpt-4o", tt.opts...); err == nil {
				t.Error("New(): error = nil, wanted error")
			}
		})
	}

	if _, err := New(""); err == nil {
		t.Error("New(\"\"): error = nil, wanted error")
	}
}

type verdict struct {
	MedicalSafety string `json:"medical_safety" jsonschema:"required,enum=PASS,enum=FAIL"`
}

// fakeCompletionServer returns an OpenAI-compatible endpoint serving a fixed
// chat completion and capturing the last request body.
func fakeCompletionServer(t *testing.T, content string) (*httptest.Server, *map[string]any) {
	t.Helper()
	lastRequest := &map[string]any{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// t.Errorf only: this runs on the server goroutine, where FailNow is off-limits.
		if err := json.NewDecoder(r.Body).Decode(lastRequest); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		resp := map[string]any{
			"id":     "chatcmpl-test",
			"object": "chat.completion",
			"model":  "gpt-4o",
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": content},
			}},
			"usage": map[string]any{"prompt_tokens": 12, "completion_tokens": 7, "total_tokens": 19},
		}
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			t.Errorf("encoding response: %v", err)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, lastRequest
}

func TestOpenAIStructured(t *testing.T) {
	srv, lastRequest := fakeCompletionServer(t, `{"medical_safety":"PASS"}`)

	j, err := New("gpt-4o", WithAPIKey("test-key"), WithBaseURL(srv.URL))
	require.NoError(t, err)

	desc := schema.DescribeType[verdict]("verdict", "A safety verdict.")
	raw, err := j.Structured(context.Background(), "You are a judge.", `[{"role":"user","content":"hi"}]`, desc)
	require.NoError(t, err)

	var got verdict
	require.NoError(t, json.Unmarshal(raw, &got))
	require.Equal(t, "PASS", got.MedicalSafety)

	// The schema contract must ride along on the wire.
	rf, ok := (*lastRequest)["response_format"].(map[string]any)
	require.True(t, ok, "request carried no response_format")
	require.Equal(t, "json_schema", rf["type"])
}

func TestOpenAIStructuredRejectsNonJSON(t *testing.T) {
	srv, _ := fakeCompletionServer(t, "I believe the answer is PASS.")

	j, err := New("gpt-4o", WithAPIKey("test-key"), WithBaseURL(srv.URL))
	require.NoError(t, err)

	desc := schema.DescribeType[verdict]("verdict", "A safety verdict.")
	_, err = j.Structured(context.Background(), "You are a judge.", "payload", desc)

	var invErr *InvocationError
	require.ErrorAs(t, err, &invErr)
	require.Equal(t, "gpt-4o", invErr.Model)
}

func TestOpenAIStructuredRequiresDescriptor(t *testing.T) {
	j, err := New("gpt-4o", WithAPIKey("test-key"))
	require.NoError(t, err)

	_, err = j.Structured(context.Background(), "system", "payload", nil)
	var invErr *InvocationError
	require.ErrorAs(t, err, &invErr)
}

func TestOpenAIProviderFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error": {"message": "rate limited"}}`, http.StatusTooManyRequests)
	}))
	t.Cleanup(srv.Close)

	j, err := New("gpt-4o", WithAPIKey("test-key"), WithBaseURL(srv.URL))
	require.NoError(t, err)

	_, err = j.FreeText(context.Background(), "system", "payload")
	var invErr *InvocationError
	require.ErrorAs(t, err, &invErr)
}

func TestOpenAIFreeTextTrims(t *testing.T) {
	srv, lastRequest := fakeCompletionServer(t, "\n  The agent response is grounded.  \n")

	j, err := New("gpt-4o", WithAPIKey("test-key"), WithBaseURL(srv.URL))
	require.NoError(t, err)

	text, err := j.FreeText(context.Background(), "You are a judge.", "payload")
	require.NoError(t, err)
	require.Equal(t, "The agent response is grounded.", text)

	if _, ok := (*lastRequest)["response_format"]; ok {
		t.Error("free-text request carried a response_format")
	}
}

func TestOpenAIEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"chatcmpl-test","object":"chat.completion","choices":[],"usage":{}}`))
	}))
	t.Cleanup(srv.Close)

	j, err := New("gpt-4o", WithAPIKey("test-key"), WithBaseURL(srv.URL))
	require.NoError(t, err)

	_, err = j.FreeText(context.Background(), "system", "payload")
	var invErr *InvocationError
	require.ErrorAs(t, err, &invErr)
}

func TestInvocationErrorUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := &InvocationError{Model: "gpt-4o", Cause: cause}
	if !errors.Is(err, cause) {
		t.Errorf("errors.Is: got = false, wanted = true")
	}
}
