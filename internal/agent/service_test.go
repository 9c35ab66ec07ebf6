package agent

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/hpungsan/orden/internal/llm"
	"github.com/hpungsan/orden/internal/ops"
)

func TestParse(t *testing.T) {
	tests := []struct {
		command string
		want    Match
		ok      bool
	}{
		{"list folders", Match{Tool: "list_folders", Args: map[string]string{}}, true},
		{"  Show Folders ", Match{Tool: "list_folders", Args: map[string]string{}}, true},
		{"list notes in biology", Match{Tool: "list_notes", Args: map[string]string{"folderId": "biology"}}, true},
		{"SHOW NOTES IN World_History", Match{Tool: "list_notes", Args: map[string]string{"folderId": "world_history"}}, true},
		{"list notes in cell-bio", Match{Tool: "list_notes", Args: map[string]string{"folderId": "cell-bio"}}, true},
		{"list folders please", Match{}, false},
		{"list notes in", Match{}, false},
		{"list notes in two words", Match{}, false},
		{"create a note about cells", Match{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			got, ok := Parse(tt.command)
			if ok != tt.ok {
				t.Fatalf("Parse() ok = %v, want %v", ok, tt.ok)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestHandle_FastPathFolders(t *testing.T) {
	svc := NewService(panicModel{t}, testExecutor(t), LoopConfig{})

	resp := svc.Handle(context.Background(), Request{Command: "List Folders", UserID: testUser})

	if !resp.Success {
		t.Fatalf("Success = false, message %q", resp.Message)
	}
	want := "Available folders:\n- Biology 101 (biology): 1 notes\n- World History (history): 1 notes"
	if resp.Message != want {
		t.Errorf("Message = %q, want %q", resp.Message, want)
	}
	if _, ok := resp.Data.(*ops.ListFoldersOutput); !ok {
		t.Errorf("Data = %T, want *ops.ListFoldersOutput", resp.Data)
	}
	if len(resp.Actions) != 0 {
		t.Errorf("Actions = %v, want none", resp.Actions)
	}
}

func TestHandle_FastPathNotes(t *testing.T) {
	svc := NewService(panicModel{t}, testExecutor(t), LoopConfig{})

	resp := svc.Handle(context.Background(), Request{Command: "show notes in history", UserID: testUser})

	want := "Notes found (1):\n- The Great War (ww1): tasks"
	if !resp.Success || resp.Message != want {
		t.Errorf("resp = %+v, want message %q", resp, want)
	}
}

func TestHandle_FastPathToolError(t *testing.T) {
	svc := NewService(panicModel{t}, testExecutor(t), LoopConfig{})

	resp := svc.Handle(context.Background(), Request{Command: "list folders"})

	if resp.Success {
		t.Fatal("Success = true without a user")
	}
	if resp.Message != "user id is required" {
		t.Errorf("Message = %q", resp.Message)
	}
}

func TestHandle_FastPathWithoutCredential(t *testing.T) {
	svc := NewService(llm.Unconfigured{EnvVar: "ANTHROPIC_API_KEY"}, testExecutor(t), LoopConfig{})

	resp := svc.Handle(context.Background(), Request{Command: "list notes in biology", UserID: testUser})

	if !resp.Success {
		t.Errorf("fast path failed without credential: %q", resp.Message)
	}
}

func TestHandle_UsesModelOtherwise(t *testing.T) {
	model := &scriptedModel{responses: []*llm.Response{answer("Created.")}}
	svc := NewService(model, testExecutor(t), LoopConfig{})

	resp := svc.Handle(context.Background(), Request{Command: "create a note on cells", UserID: testUser})

	if !resp.Success || resp.Message != "Created." {
		t.Errorf("resp = %+v", resp)
	}
	if model.calls() != 1 {
		t.Errorf("model calls = %d, want 1", model.calls())
	}
}

func TestHandle_EmptyCommand(t *testing.T) {
	svc := NewService(panicModel{t}, testExecutor(t), LoopConfig{})

	resp := svc.Handle(context.Background(), Request{Command: "   ", UserID: testUser})

	if resp.Success || resp.Message != "Command is required" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestStatus(t *testing.T) {
	exec := testExecutor(t)

	ready := NewService(&scriptedModel{}, exec, LoopConfig{}).Status()
	if ready.Status != StatusReady {
		t.Errorf("Status = %q, want %q", ready.Status, StatusReady)
	}
	if len(ready.Tools) != 9 {
		t.Errorf("Tools = %v", ready.Tools)
	}

	missing := NewService(llm.Unconfigured{EnvVar: "OPENAI_API_KEY"}, exec, LoopConfig{}).Status()
	want := Status{Status: StatusNotConfigured, Message: "OPENAI_API_KEY is not configured", Tools: ready.Tools}
	if diff := cmp.Diff(want, missing); diff != "" {
		t.Errorf("Status mismatch (-want +got):\n%s", diff)
	}
}
