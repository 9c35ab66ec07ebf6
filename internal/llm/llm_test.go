package llm

import (
	"context"
	"testing"

	"github.com/hpungsan/orden/internal/config"
	"github.com/hpungsan/orden/internal/errors"
)

func TestNew_Unconfigured(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	cfg := config.DefaultConfig()

	m := New(cfg)
	if IsConfigured(m) {
		t.Fatal("IsConfigured() = true without credential")
	}

	_, err := m.Complete(context.Background(), &Request{})
	if !errors.Is(err, errors.ErrNotConfigured) {
		t.Fatalf("error = %v, want NOT_CONFIGURED", err)
	}
	if err.(*errors.OrdenError).Details["env"] != "ANTHROPIC_API_KEY" {
		t.Errorf("details = %v", err.(*errors.OrdenError).Details)
	}
}

func TestNew_SelectsProvider(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "a-key")
	t.Setenv("OPENAI_API_KEY", "o-key")

	cfg := config.DefaultConfig()
	if _, ok := New(cfg).(*Anthropic); !ok {
		t.Error("default provider is not Anthropic")
	}

	cfg.Provider = config.ProviderOpenAI
	m := New(cfg)
	o, ok := m.(*OpenAI)
	if !ok {
		t.Fatalf("openai provider built %T", m)
	}
	if o.model != DefaultOpenAIModel {
		t.Errorf("model = %q, want default for a claude model name", o.model)
	}
	if !IsConfigured(m) {
		t.Error("IsConfigured() = false with credential")
	}
}

func TestNew_WithAPIKeyOverridesEnv(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")

	if m := New(config.DefaultConfig(), WithAPIKey("explicit")); !IsConfigured(m) {
		t.Error("explicit key ignored")
	}
}

func TestResponseText(t *testing.T) {
	r := &Response{Content: []ContentBlock{
		TextBlock("a"),
		ToolUseBlock("1", "x", nil),
		TextBlock("b"),
	}}
	if r.Text() != "ab" {
		t.Errorf("Text() = %q", r.Text())
	}
	if len(r.ToolUses()) != 1 {
		t.Errorf("ToolUses() = %d", len(r.ToolUses()))
	}
}
