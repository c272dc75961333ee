/*
Copyright 2025 CareSignal, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package evaluator

import (
	"encoding/json"
	"fmt"
)

// Message is one side of a conversational turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Turn is a user message paired with the agent message that answered it.
// On the wire a turn is a two-element array: the user message first, the
// agent message second.
type Turn struct {
	User  Message
	Agent Message
}

// ParseTurn decodes a wire-format turn, reporting exactly what is malformed
// about it.
func ParseTurn(raw json.RawMessage) (*Turn, error) {
	var t Turn
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// UnmarshalJSON decodes the two-element wire form. Anything other than two
// message objects, each with non-empty content, is rejected.
func (t *Turn) UnmarshalJSON(data []byte) error {
	var pair []struct {
		Role    string  `json:"role"`
		Content *string `json:"content"`
	}
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("turn must be an array of two message objects: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("turn must contain exactly two messages, got %d", len(pair))
	}
	for i, m := range pair {
		if m.Content == nil || *m.Content == "" {
			return fmt.Errorf("message %d has no content", i)
		}
	}

	t.User = Message{Role: pair[0].Role, Content: *pair[0].Content}
	t.Agent = Message{Role: pair[1].Role, Content: *pair[1].Content}
	return nil
}

// MarshalJSON re-serializes the turn in its wire form, which is also the
// payload handed to the judge.
func (t Turn) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]Message{t.User, t.Agent})
}
