package chat

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"gemini-chat-cli/internal/history"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type bubble struct {
	sender  Sender
	content string
}

type fakeRenderer struct {
	bubbles   map[Handle]*bubble
	order     []Handle
	dismissed int
}

func newFakeRenderer() *fakeRenderer {
	return &fakeRenderer{bubbles: map[Handle]*bubble{}}
}

func (r *fakeRenderer) Append(sender Sender, text string) Handle {
	h := Handle(fmt.Sprintf("b%d", len(r.order)))
	r.bubbles[h] = &bubble{sender: sender, content: text}
	r.order = append(r.order, h)
	return h
}

func (r *fakeRenderer) Replace(h Handle, content string) {
	if b, ok := r.bubbles[h]; ok {
		b.content = content
	}
}

func (r *fakeRenderer) DismissWelcome() { r.dismissed++ }

func (r *fakeRenderer) last() *bubble {
	if len(r.order) == 0 {
		return nil
	}
	return r.bubbles[r.order[len(r.order)-1]]
}

type fakeTransport struct {
	reply string
	err   error
	calls [][]history.Turn
}

func (f *fakeTransport) Send(_ context.Context, turns []history.Turn) (string, error) {
	f.calls = append(f.calls, turns)
	return f.reply, f.err
}

func TestSendSuccess(t *testing.T) {
	r := newFakeRenderer()
	tr := &fakeTransport{reply: "Hi there"}
	c := NewController(nil, r, tr)

	res, err := c.Send(context.Background(), "Hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.State != StateSucceeded {
		t.Fatalf("expected succeeded, got %v", res.State)
	}

	want := []history.Turn{
		{Role: history.RoleUser, Content: "Hello"},
		{Role: history.RoleModel, Content: "Hi there"},
	}
	if diff := cmp.Diff(want, c.History().Turns()); diff != "" {
		t.Fatalf("history mismatch (-want +got):\n%s", diff)
	}
	if got := r.last(); got.sender != SenderBot || got.content != "Hi there" {
		t.Fatalf("placeholder not replaced with reply: %+v", got)
	}
	if len(r.order) != 2 {
		t.Fatalf("expected user bubble and bot bubble, got %d", len(r.order))
	}
	if c.State() != StateIdle || c.Busy() {
		t.Fatalf("controller did not return to idle")
	}
}

func TestSendCarriesFullHistory(t *testing.T) {
	tr := &fakeTransport{reply: "ok"}
	c := NewController(nil, newFakeRenderer(), tr)

	for _, in := range []string{"one", "two"} {
		if _, err := c.Send(context.Background(), in); err != nil {
			t.Fatalf("send %q: %v", in, err)
		}
	}

	want := []history.Turn{
		{Role: history.RoleUser, Content: "one"},
		{Role: history.RoleModel, Content: "ok"},
		{Role: history.RoleUser, Content: "two"},
	}
	if diff := cmp.Diff(want, tr.calls[1]); diff != "" {
		t.Fatalf("second payload mismatch (-want +got):\n%s", diff)
	}
	if c.History().Len() != 4 {
		t.Fatalf("expected 4 turns, got %d", c.History().Len())
	}
}

func TestSendFailures(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantText string
	}{
		{
			name:     "server error with message",
			err:      &StatusError{Code: 500, Message: "rate limited", Structured: true},
			wantText: "rate limited",
		},
		{
			name:     "structured error without message",
			err:      &StatusError{Code: 503, Structured: true},
			wantText: "Failed to get response from server.",
		},
		{
			name:     "unstructured error body",
			err:      &StatusError{Code: 502},
			wantText: "Failed to get response from server. Status: 502",
		},
		{
			name:     "network failure",
			err:      errors.New("dial tcp: connection refused"),
			wantText: "Failed to get response from server.",
		},
		{
			name:     "wrapped status error",
			err:      fmt.Errorf("send: %w", &StatusError{Code: 429, Message: "slow down"}),
			wantText: "slow down",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newFakeRenderer()
			c := NewController(nil, r, &fakeTransport{err: tt.err})

			res, err := c.Send(context.Background(), "Hello")
			if err != nil {
				t.Fatalf("unexpected submit error: %v", err)
			}
			if res.State != StateFailed {
				t.Fatalf("expected failed, got %v", res.State)
			}
			if res.Text != tt.wantText {
				t.Fatalf("text = %q, want %q", res.Text, tt.wantText)
			}
			if r.last().content != tt.wantText {
				t.Fatalf("bubble = %q, want %q", r.last().content, tt.wantText)
			}
			if c.History().Len() != 0 {
				t.Fatalf("history should be rolled back, got %+v", c.History().Turns())
			}
			if c.State() != StateIdle {
				t.Fatalf("expected idle after failure, got %v", c.State())
			}
		})
	}
}

func TestFailureLeavesEarlierHistoryIntact(t *testing.T) {
	tr := &fakeTransport{reply: "Hi"}
	c := NewController(nil, newFakeRenderer(), tr)
	if _, err := c.Send(context.Background(), "Hello"); err != nil {
		t.Fatalf("send: %v", err)
	}
	before := c.History().Turns()

	tr.reply, tr.err = "", errors.New("boom")
	if _, err := c.Send(context.Background(), "Again"); err != nil {
		t.Fatalf("send: %v", err)
	}

	if diff := cmp.Diff(before, c.History().Turns()); diff != "" {
		t.Fatalf("history changed after failure (-before +after):\n%s", diff)
	}
	if !c.History().Alternates() {
		t.Fatalf("alternation broken after rollback")
	}
}

func TestSendEmptyReply(t *testing.T) {
	r := newFakeRenderer()
	c := NewController(nil, r, &fakeTransport{reply: ""})

	res, err := c.Send(context.Background(), "Hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Empty || res.Text != "Sorry, no response received." {
		t.Fatalf("unexpected result: %+v", res)
	}
	if r.last().content != "Sorry, no response received." {
		t.Fatalf("placeholder not replaced: %q", r.last().content)
	}
	// The user turn stays; no model turn is recorded.
	want := []history.Turn{{Role: history.RoleUser, Content: "Hello"}}
	if diff := cmp.Diff(want, c.History().Turns()); diff != "" {
		t.Fatalf("history mismatch (-want +got):\n%s", diff)
	}
}

func TestSubmitEmptyInput(t *testing.T) {
	for _, in := range []string{"", "   ", "\n\t"} {
		r := newFakeRenderer()
		tr := &fakeTransport{}
		c := NewController(nil, r, tr)

		if _, err := c.Submit(in); !errors.Is(err, ErrEmptyInput) {
			t.Fatalf("Submit(%q) err = %v, want ErrEmptyInput", in, err)
		}
		if len(r.order) != 0 || r.dismissed != 0 {
			t.Fatalf("Submit(%q) rendered something", in)
		}
		if c.History().Len() != 0 || len(tr.calls) != 0 {
			t.Fatalf("Submit(%q) mutated history or sent a request", in)
		}
	}
}

func TestSubmitAppendsUserTurnBeforeResolution(t *testing.T) {
	r := newFakeRenderer()
	c := NewController(nil, r, &fakeTransport{reply: "ok"})

	x, err := c.Submit("  Hello  ")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if c.State() != StateSending {
		t.Fatalf("expected sending, got %v", c.State())
	}
	if c.History().Len() != 1 {
		t.Fatalf("expected one user turn before resolution, got %d", c.History().Len())
	}
	if got := x.Payload(); len(got) != 1 || got[0].Content != "Hello" {
		t.Fatalf("payload not trimmed snapshot: %+v", got)
	}
	if r.last().content != Placeholder || r.last().sender != SenderBot {
		t.Fatalf("expected placeholder bubble, got %+v", r.last())
	}
	if r.dismissed != 1 {
		t.Fatalf("expected welcome dismissed once, got %d", r.dismissed)
	}
}

func TestSubmitWhileBusy(t *testing.T) {
	r := newFakeRenderer()
	c := NewController(nil, r, &fakeTransport{reply: "ok"})

	x, err := c.Submit("first")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := c.Submit("second"); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
	if err := c.Reset(); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected reset to refuse while busy, got %v", err)
	}

	c.Resolve(x, x.Run(context.Background()))
	if c.History().Len() != 2 {
		t.Fatalf("expected 2 turns, got %d", c.History().Len())
	}
	if _, err := c.Submit("second"); err != nil {
		t.Fatalf("submit after resolve: %v", err)
	}
}

func TestResolveIgnoresStaleExchange(t *testing.T) {
	c := NewController(nil, newFakeRenderer(), &fakeTransport{reply: "ok"})
	x, err := c.Submit("Hello")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	c.Resolve(x, Outcome{Reply: "ok"})

	res := c.Resolve(x, Outcome{Err: errors.New("late")})
	if res.State != StateIdle {
		t.Fatalf("expected stale resolve to be ignored, got %v", res.State)
	}
	if c.History().Len() != 2 {
		t.Fatalf("stale resolve mutated history: %+v", c.History().Turns())
	}
}

func TestWelcomeDismissedOnlyOnce(t *testing.T) {
	r := newFakeRenderer()
	c := NewController(nil, r, &fakeTransport{reply: "ok"})
	for i := 0; i < 3; i++ {
		if _, err := c.Send(context.Background(), "hi"); err != nil {
			t.Fatalf("send: %v", err)
		}
	}
	if r.dismissed != 1 {
		t.Fatalf("expected one dismissal, got %d", r.dismissed)
	}
}

func TestResetShowsWelcomeUntilNextMessage(t *testing.T) {
	r := newFakeRenderer()
	c := NewController(nil, r, &fakeTransport{reply: "ok"})
	if _, err := c.Send(context.Background(), "hi"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if err := c.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if _, err := c.Send(context.Background(), "again"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if r.dismissed != 2 {
		t.Fatalf("expected a dismissal per conversation, got %d", r.dismissed)
	}
}

func TestStatusErrorMessage(t *testing.T) {
	if got := (&StatusError{Code: 500, Message: "boom"}).Error(); got != "server returned error 500: boom" {
		t.Fatalf("unexpected error string: %q", got)
	}
	if got := (&StatusError{Code: 404}).Error(); got != "server returned error 404" {
		t.Fatalf("unexpected error string: %q", got)
	}
}
