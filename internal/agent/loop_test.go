package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/hpungsan/orden/internal/llm"
	"github.com/hpungsan/orden/internal/tools"
)

func TestLoop_TerminalAnswer(t *testing.T) {
	model := &scriptedModel{responses: []*llm.Response{
		toolCall("t1", "search_notes", `{ "query": "mitochondria" }`, "Searching."),
		answer("Found it in Cell Biology."),
	}}
	loop := NewLoop(model, testExecutor(t), LoopConfig{})

	resp := loop.Process(context.Background(), "where did I write about mitochondria?", testUser, nil)

	if !resp.Success {
		t.Fatalf("Success = false, message %q", resp.Message)
	}
	if resp.Message != "Found it in Cell Biology." {
		t.Errorf("Message = %q", resp.Message)
	}
	if diff := cmp.Diff([]string{`search_notes: {"query":"mitochondria"}`}, resp.Actions); diff != "" {
		t.Errorf("Actions mismatch (-want +got):\n%s", diff)
	}
	if model.calls() != 2 {
		t.Fatalf("model calls = %d, want 2", model.calls())
	}

	second := model.requests[1].Messages
	if len(second) != 3 {
		t.Fatalf("second request has %d messages, want 3", len(second))
	}
	if second[1].Role != llm.RoleAssistant || len(second[1].Content) != 2 {
		t.Errorf("assistant turn not appended verbatim: %+v", second[1])
	}
	result := second[2].Content[0]
	if second[2].Role != llm.RoleUser || result.Type != llm.BlockToolResult || result.ToolUseID != "t1" {
		t.Fatalf("tool result turn = %+v", second[2])
	}
	if result.IsError || !strings.Contains(result.Content, `"noteId":"cell-biology"`) {
		t.Errorf("tool result = %+v", result)
	}
}

func TestLoop_RoundLimit(t *testing.T) {
	model := &scriptedModel{responses: []*llm.Response{
		toolCall("t", "list_folders", `{}`),
	}}
	loop := NewLoop(model, testExecutor(t), LoopConfig{})

	resp := loop.Process(context.Background(), "keep going", testUser, nil)

	if !resp.Success {
		t.Fatalf("Success = false, message %q", resp.Message)
	}
	if model.calls() != DefaultMaxRounds {
		t.Errorf("model calls = %d, want %d", model.calls(), DefaultMaxRounds)
	}
	if len(resp.Actions) != DefaultMaxRounds {
		t.Errorf("actions = %d, want %d", len(resp.Actions), DefaultMaxRounds)
	}
	if resp.Message != fallbackMessage {
		t.Errorf("Message = %q, want fallback", resp.Message)
	}
}

func TestLoop_RoundLimitKeepsText(t *testing.T) {
	model := &scriptedModel{responses: []*llm.Response{
		toolCall("t1", "list_folders", `{}`, "Looking at folders."),
		toolCall("t2", "list_notes", `{"folderId":"biology"}`, "Looking at notes."),
	}}
	loop := NewLoop(model, testExecutor(t), LoopConfig{MaxRounds: 2})

	resp := loop.Process(context.Background(), "tidy up", testUser, nil)

	if resp.Message != "Looking at folders.\n\nLooking at notes." {
		t.Errorf("Message = %q", resp.Message)
	}
	if model.calls() != 2 {
		t.Errorf("model calls = %d, want 2", model.calls())
	}
}

func TestLoop_ToolErrorsDoNotAbort(t *testing.T) {
	model := &scriptedModel{responses: []*llm.Response{
		{StopReason: llm.StopToolUse, Content: []llm.ContentBlock{
			llm.ToolUseBlock("a", "read_note", json.RawMessage(`{"noteId":"missing","folderId":"biology"}`)),
			llm.ToolUseBlock("b", "make_coffee", json.RawMessage(`{}`)),
			llm.ToolUseBlock("c", "create_note", json.RawMessage(`{"folderId":"biology"}`)),
			llm.ToolUseBlock("d", "list_notes", json.RawMessage(`{"folderId":"biology"}`)),
		}},
		answer("Some of that failed."),
	}}
	loop := NewLoop(model, testExecutor(t), LoopConfig{})

	resp := loop.Process(context.Background(), "do several things", testUser, nil)

	if !resp.Success || resp.Message != "Some of that failed." {
		t.Fatalf("resp = %+v", resp)
	}
	if len(resp.Actions) != 4 {
		t.Errorf("actions = %v", resp.Actions)
	}

	results := model.requests[1].Messages[2].Content
	if len(results) != 4 {
		t.Fatalf("tool results = %d, want 4", len(results))
	}
	wantCodes := []string{"NOT_FOUND", "UNKNOWN_TOOL", "INVALID_ARGUMENTS", ""}
	for i, r := range results {
		if r.ToolUseID != []string{"a", "b", "c", "d"}[i] {
			t.Errorf("result %d ToolUseID = %q", i, r.ToolUseID)
		}
		if want := wantCodes[i]; want == "" {
			if r.IsError {
				t.Errorf("result %d unexpectedly failed: %s", i, r.Content)
			}
		} else if !r.IsError || !strings.Contains(r.Content, want) {
			t.Errorf("result %d = %s, want %s error", i, r.Content, want)
		}
		if !json.Valid([]byte(r.Content)) {
			t.Errorf("result %d is not JSON: %s", i, r.Content)
		}
	}
}

func TestLoop_NotConfigured(t *testing.T) {
	loop := NewLoop(llm.Unconfigured{EnvVar: "ANTHROPIC_API_KEY"}, testExecutor(t), LoopConfig{})

	resp := loop.Process(context.Background(), "make me a note", testUser, nil)

	if resp.Success {
		t.Fatal("Success = true without a model credential")
	}
	want := "The notes agent is not configured. Please set the ANTHROPIC_API_KEY environment variable."
	if resp.Message != want {
		t.Errorf("Message = %q, want %q", resp.Message, want)
	}
}

func TestLoop_ModelFailureKeepsActions(t *testing.T) {
	model := &scriptedModel{
		responses: []*llm.Response{toolCall("t1", "list_folders", `{}`)},
		err:       fmt.Errorf("connection refused"),
	}
	loop := NewLoop(model, testExecutor(t), LoopConfig{})

	resp := loop.Process(context.Background(), "list my stuff please", testUser, nil)

	if resp.Success {
		t.Fatal("Success = true after model failure")
	}
	if resp.Message != "Failed to process command: connection refused" {
		t.Errorf("Message = %q", resp.Message)
	}
	if diff := cmp.Diff([]string{"list_folders: {}"}, resp.Actions); diff != "" {
		t.Errorf("Actions mismatch (-want +got):\n%s", diff)
	}
}

func TestLoop_EmptyAnswerFallsBack(t *testing.T) {
	model := &scriptedModel{responses: []*llm.Response{{StopReason: llm.StopEndTurn}}}
	loop := NewLoop(model, testExecutor(t), LoopConfig{})

	resp := loop.Process(context.Background(), "hello", testUser, nil)

	if !resp.Success || resp.Message != fallbackMessage {
		t.Errorf("resp = %+v", resp)
	}
}

func TestLoop_SeedsHistory(t *testing.T) {
	model := &scriptedModel{responses: []*llm.Response{answer("ok")}}
	loop := NewLoop(model, testExecutor(t), LoopConfig{})

	history := []HistoryMessage{
		{Role: "user", Content: "make a biology note"},
		{Role: "assistant", Content: "Done."},
		{Role: "system", Content: "ignored"},
		{Role: "user", Content: "  "},
	}
	loop.Process(context.Background(), "now rename it", testUser, history)

	var got []string
	for _, m := range model.requests[0].Messages {
		got = append(got, string(m.Role)+": "+m.Content[0].Text)
	}
	want := []string{"user: make a biology note", "assistant: Done.", "user: now rename it"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("messages mismatch (-want +got):\n%s", diff)
	}
}

func TestLoop_AdvertisesEnabledTools(t *testing.T) {
	model := &scriptedModel{responses: []*llm.Response{answer("ok")}}
	loop := NewLoop(model, testExecutor(t), LoopConfig{MaxTokens: 123})

	loop.Process(context.Background(), "hi", testUser, nil)

	req := model.requests[0]
	if req.MaxTokens != 123 {
		t.Errorf("MaxTokens = %d", req.MaxTokens)
	}
	if req.System == "" {
		t.Error("System prompt is empty")
	}

	var names []string
	for _, tool := range req.Tools {
		names = append(names, tool.Name)
		if tool.InputSchema["type"] != "object" {
			t.Errorf("%s schema type = %v", tool.Name, tool.InputSchema["type"])
		}
		if tool.Name == "read_note" {
			if diff := cmp.Diff([]string{"noteId", "folderId"}, tool.InputSchema["required"]); diff != "" {
				t.Errorf("read_note required mismatch (-want +got):\n%s", diff)
			}
		}
	}
	if diff := cmp.Diff(tools.AllToolNames(), names); diff != "" {
		t.Errorf("tool names mismatch (-want +got):\n%s", diff)
	}
}

func TestAction(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{`{ "folderId" : "biology" }`, `list_notes: {"folderId":"biology"}`},
		{``, `list_notes: {}`},
		{`not json`, `list_notes: not json`},
	}
	for _, tt := range tests {
		if got := action("list_notes", json.RawMessage(tt.input)); got != tt.want {
			t.Errorf("action(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
