/*
Copyright 2025 CareSignal, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package promptbuilder_test

import (
	"strings"
	"testing"

	"github.com/caresignal/turneval/evaluator/promptbuilder"
)

func TestNewPrompt(t *testing.T) {
	t.Run("no placeholders", func(t *testing.T) {
		p, err := promptbuilder.NewPrompt("This is a simple prompt with no placeholders")
		if err != nil {
			t.Fatalf("NewPrompt() error = %v", err)
		}
		if got := len(p.Placeholders()); got != 0 {
			t.Errorf("placeholder count: got = %d, wanted = 0", got)
		}
	})

	t.Run("single placeholder", func(t *testing.T) {
		p, err := promptbuilder.NewPrompt("Ground your judgment in: {kb}")
		if err != nil {
			t.Fatalf("NewPrompt() error = %v", err)
		}
		if !p.Has("kb") {
			t.Errorf("placeholder %q: got = absent, wanted = present", "kb")
		}
		if got := len(p.Placeholders()); got != 1 {
			t.Errorf("placeholder count: got = %d, wanted = 1", got)
		}
	})

	t.Run("repeated placeholder counted once", func(t *testing.T) {
		p, err := promptbuilder.NewPrompt("First {kb}, then {kb} again")
		if err != nil {
			t.Fatalf("NewPrompt() error = %v", err)
		}
		if got := len(p.Placeholders()); got != 1 {
			t.Errorf("placeholder count: got = %d, wanted = 1", got)
		}
	})

	t.Run("placeholders with underscores", func(t *testing.T) {
		p, err := promptbuilder.NewPrompt("Process {user_message} and {agent_reply}")
		if err != nil {
			t.Fatalf("NewPrompt() error = %v", err)
		}
		for _, name := range []string{"user_message", "agent_reply"} {
			if !p.Has(name) {
				t.Errorf("placeholder %q: got = absent, wanted = present", name)
			}
		}
	})

	t.Run("JSON braces are not placeholders", func(t *testing.T) {
		p, err := promptbuilder.NewPrompt(`Respond with {"groundedness": "PASS"} given {kb}`)
		if err != nil {
			t.Fatalf("NewPrompt() error = %v", err)
		}
		if got := len(p.Placeholders()); got != 1 {
			t.Errorf("placeholder count: got = %d, wanted = 1", got)
		}
	})
}

func TestBuild(t *testing.T) {
	t.Run("literal binding", func(t *testing.T) {
		p, err := promptbuilder.NewPrompt("Hello {name}")
		if err != nil {
			t.Fatalf("NewPrompt() error = %v", err)
		}
		p, err = p.BindLiteral("name", "reviewer")
		if err != nil {
			t.Fatalf("BindLiteral() error = %v", err)
		}
		got, err := p.Build()
		if err != nil {
			t.Fatalf("Build() error = %v", err)
		}
		if got != "Hello reviewer" {
			t.Errorf("Build(): got = %q, wanted = %q", got, "Hello reviewer")
		}
	})

	t.Run("JSON binding escapes content", func(t *testing.T) {
		p := promptbuilder.MustNewPrompt("Knowledge base:\n{kb}")
		p, err := p.BindJSON("kb", []map[string]string{{"id": "kb_001", "text": "hydration"}})
		if err != nil {
			t.Fatalf("BindJSON() error = %v", err)
		}
		got, err := p.Build()
		if err != nil {
			t.Fatalf("Build() error = %v", err)
		}
		if !strings.Contains(got, `"id": "kb_001"`) {
			t.Errorf("Build(): got = %q, wanted JSON-encoded entry", got)
		}
	})

	t.Run("YAML binding", func(t *testing.T) {
		p := promptbuilder.MustNewPrompt("Config:\n{settings}")
		p, err := p.BindYAML("settings", map[string]int{"max_turns": 3})
		if err != nil {
			t.Fatalf("BindYAML() error = %v", err)
		}
		got, err := p.Build()
		if err != nil {
			t.Fatalf("Build() error = %v", err)
		}
		if !strings.Contains(got, "max_turns: 3") {
			t.Errorf("Build(): got = %q, wanted YAML-encoded value", got)
		}
	})

	t.Run("unbound placeholder fails", func(t *testing.T) {
		p := promptbuilder.MustNewPrompt("Ground in {kb}")
		if _, err := p.Build(); err == nil {
			t.Error("Build() with unbound placeholder: got = nil error, wanted error")
		}
	})

	t.Run("repeated placeholder substituted everywhere", func(t *testing.T) {
		p := promptbuilder.MustNewPrompt("{kb} and {kb}")
		p, err := p.BindLiteral("kb", "X")
		if err != nil {
			t.Fatalf("BindLiteral() error = %v", err)
		}
		got, err := p.Build()
		if err != nil {
			t.Fatalf("Build() error = %v", err)
		}
		if got != "X and X" {
			t.Errorf("Build(): got = %q, wanted = %q", got, "X and X")
		}
	})
}

func TestBindErrors(t *testing.T) {
	t.Run("unknown placeholder", func(t *testing.T) {
		p := promptbuilder.MustNewPrompt("Hello {name}")
		if _, err := p.BindLiteral("missing", "x"); err == nil {
			t.Error("BindLiteral(unknown): got = nil error, wanted error")
		}
	})

	t.Run("double bind", func(t *testing.T) {
		p := promptbuilder.MustNewPrompt("Hello {name}")
		p, err := p.BindLiteral("name", "first")
		if err != nil {
			t.Fatalf("BindLiteral() error = %v", err)
		}
		if _, err := p.BindLiteral("name", "second"); err == nil {
			t.Error("BindLiteral(double): got = nil error, wanted error")
		}
	})

	t.Run("binding does not mutate original", func(t *testing.T) {
		p := promptbuilder.MustNewPrompt("Hello {name}")
		if _, err := p.BindLiteral("name", "bound"); err != nil {
			t.Fatalf("BindLiteral() error = %v", err)
		}
		// Original should still be unbound and rebindable
		if _, err := p.BindLiteral("name", "again"); err != nil {
			t.Errorf("BindLiteral() on original after prior bind: error = %v", err)
		}
	})
}
