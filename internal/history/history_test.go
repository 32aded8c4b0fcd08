package history

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestAppendAndRemoveLast(t *testing.T) {
	h := New()
	h.Append(RoleUser, "Hello")
	h.Append(RoleModel, "Hi there")
	h.Append(RoleUser, "How are you?")

	last, ok := h.RemoveLast()
	if !ok {
		t.Fatalf("expected a turn to be removed")
	}
	if last.Content != "How are you?" {
		t.Fatalf("removed wrong turn: %+v", last)
	}

	want := []Turn{
		{Role: RoleUser, Content: "Hello"},
		{Role: RoleModel, Content: "Hi there"},
	}
	if diff := cmp.Diff(want, h.Turns()); diff != "" {
		t.Fatalf("turns mismatch (-want +got):\n%s", diff)
	}
}

func TestRemoveLastOnEmpty(t *testing.T) {
	h := New()
	if _, ok := h.RemoveLast(); ok {
		t.Fatalf("expected no removal on empty history")
	}
	if h.Len() != 0 {
		t.Fatalf("expected empty history, got %d", h.Len())
	}
}

func TestTurnsReturnsCopy(t *testing.T) {
	h := New()
	h.Append(RoleUser, "Hello")

	snapshot := h.Turns()
	h.Append(RoleModel, "Hi")
	snapshot[0].Content = "mutated"

	if len(snapshot) != 1 {
		t.Fatalf("snapshot grew with history: %d", len(snapshot))
	}
	if first, _ := h.Last(); first.Content != "Hi" {
		t.Fatalf("unexpected last turn: %+v", first)
	}
	if h.Turns()[0].Content != "Hello" {
		t.Fatalf("history was changed through snapshot")
	}
}

func TestAlternates(t *testing.T) {
	tests := []struct {
		name  string
		turns []Turn
		want  bool
	}{
		{name: "empty", turns: nil, want: true},
		{name: "single user", turns: []Turn{{RoleUser, "a"}}, want: true},
		{name: "user model", turns: []Turn{{RoleUser, "a"}, {RoleModel, "b"}}, want: true},
		{name: "starts with model", turns: []Turn{{RoleModel, "a"}}, want: false},
		{name: "two users", turns: []Turn{{RoleUser, "a"}, {RoleUser, "b"}}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := New()
			for _, turn := range tt.turns {
				h.Append(turn.Role, turn.Content)
			}
			if got := h.Alternates(); got != tt.want {
				t.Fatalf("Alternates() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResetAndWireShape(t *testing.T) {
	h := New()
	h.Append(RoleUser, "Hello")

	data, err := json.Marshal(h.Turns())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `[{"role":"user","content":"Hello"}]` {
		t.Fatalf("unexpected wire shape: %s", data)
	}

	h.Reset()
	if h.Len() != 0 {
		t.Fatalf("expected empty history after reset")
	}
}
