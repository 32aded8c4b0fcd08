// Package chat drives a single conversation: it records turns, renders bubbles
// through a Renderer and forwards the history to a Transport.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gemini-chat-cli/internal/history"
)

// Placeholder is the bubble text that renderers draw as a loading animation.
const Placeholder = "thinking"

const (
	genericFailure = "Failed to get response from server."
	noResponse     = "Sorry, no response received."
)

var (
	// ErrEmptyInput is returned by Submit for blank input. Nothing is rendered or recorded.
	ErrEmptyInput = errors.New("empty message")
	// ErrBusy is returned by Submit while an earlier submission is still outstanding.
	ErrBusy = errors.New("a message is already being sent")
)

// Sender tags a bubble with who wrote it.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Handle refers to a rendered bubble so it can be replaced in place later.
type Handle string

// Renderer draws the conversation. Append must render Placeholder as a loading
// indicator when it is the text of a bot bubble.
type Renderer interface {
	Append(sender Sender, text string) Handle
	Replace(h Handle, content string)
}

// welcomeDismisser is implemented by renderers that show a banner until the first message.
type welcomeDismisser interface {
	DismissWelcome()
}

// Transport delivers the whole conversation to the chat endpoint and returns the reply.
// A non-success HTTP status must be reported as a *StatusError.
type Transport interface {
	Send(ctx context.Context, turns []history.Turn) (string, error)
}

// StatusError is a server-signaled failure.
type StatusError struct {
	Code int
	// Message is the server's "error" field, if any.
	Message string
	// Structured is true when the error body was valid JSON.
	Structured bool
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server returned error %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("server returned error %d", e.Code)
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger routes controller debug lines to fn.
func WithLogger(fn func(string)) Option {
	return func(c *Controller) { c.logf = fn }
}

// Controller owns one conversation history and the per-submission state machine.
// All methods except Exchange.Run must be called from the same goroutine.
type Controller struct {
	history   *history.History
	renderer  Renderer
	transport Transport
	state     State
	pending   *Exchange
	welcomed  bool
	logf      func(string)
}

// NewController wires a history, renderer and transport together. A nil history
// starts a fresh conversation.
func NewController(h *history.History, r Renderer, t Transport, opts ...Option) *Controller {
	if h == nil {
		h = history.New()
	}
	c := &Controller{
		history:   h,
		renderer:  r,
		transport: t,
		state:     StateIdle,
		logf:      func(string) {},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// History exposes the conversation owned by this controller.
func (c *Controller) History() *history.History { return c.history }

// State reports where the current submission is in its lifecycle.
func (c *Controller) State() State { return c.state }

// Busy reports whether a submission is outstanding.
func (c *Controller) Busy() bool { return c.pending != nil }

// Exchange is one outstanding request. Its payload is captured at submit time.
type Exchange struct {
	transport   Transport
	placeholder Handle
	payload     []history.Turn
	input       string
}

// Payload returns the turns sent with this exchange.
func (x *Exchange) Payload() []history.Turn { return x.payload }

// Outcome is what the transport produced for an exchange.
type Outcome struct {
	Reply string
	Err   error
}

// Run performs the single outbound request. It touches no controller state and
// may run on any goroutine.
func (x *Exchange) Run(ctx context.Context) Outcome {
	reply, err := x.transport.Send(ctx, x.payload)
	return Outcome{Reply: reply, Err: err}
}

// Result describes how a submission ended.
type Result struct {
	State State
	// Text is what replaced the placeholder bubble.
	Text string
	// Empty is true when the server succeeded without a reply.
	Empty bool
	Err   error
}

// Submit records the user turn, draws the user bubble and a placeholder, and
// returns the exchange to run.
func (c *Controller) Submit(input string) (*Exchange, error) {
	msg := strings.TrimSpace(input)
	if msg == "" {
		return nil, ErrEmptyInput
	}
	if c.pending != nil {
		return nil, ErrBusy
	}

	if !c.welcomed {
		if d, ok := c.renderer.(welcomeDismisser); ok {
			d.DismissWelcome()
		}
		c.welcomed = true
	}

	c.renderer.Append(SenderUser, msg)
	c.history.Append(history.RoleUser, msg)
	placeholder := c.renderer.Append(SenderBot, Placeholder)

	x := &Exchange{
		transport:   c.transport,
		placeholder: placeholder,
		payload:     c.history.Turns(),
		input:       msg,
	}
	c.pending = x
	c.state = StateSending
	c.logf(fmt.Sprintf("chat: sending %d turns", len(x.payload)))
	return x, nil
}

// Resolve applies an outcome to the transcript and history and returns to Idle.
func (c *Controller) Resolve(x *Exchange, out Outcome) Result {
	if x == nil || x != c.pending {
		c.logf("chat: ignoring outcome for stale exchange")
		return Result{State: c.state}
	}
	c.pending = nil

	var res Result
	switch {
	case out.Err != nil:
		res = Result{State: StateFailed, Text: failureText(out.Err), Err: out.Err}
		c.renderer.Replace(x.placeholder, res.Text)
		c.rollback(x)
		c.logf(fmt.Sprintf("chat: request failed: %v", out.Err))
	case strings.TrimSpace(out.Reply) == "":
		res = Result{State: StateSucceeded, Text: noResponse, Empty: true}
		c.renderer.Replace(x.placeholder, res.Text)
		c.logf("chat: empty reply")
	default:
		res = Result{State: StateSucceeded, Text: out.Reply}
		c.renderer.Replace(x.placeholder, out.Reply)
		c.history.Append(history.RoleModel, out.Reply)
		c.logf(fmt.Sprintf("chat: reply of %d bytes", len(out.Reply)))
	}

	c.state = StateIdle
	return res
}

// Send is Submit, Run and Resolve in one blocking call.
func (c *Controller) Send(ctx context.Context, input string) (Result, error) {
	x, err := c.Submit(input)
	if err != nil {
		return Result{State: c.state}, err
	}
	return c.Resolve(x, x.Run(ctx)), nil
}

// Reset forgets the conversation. It refuses while a request is outstanding.
func (c *Controller) Reset() error {
	if c.pending != nil {
		return ErrBusy
	}
	c.history.Reset()
	c.state = StateIdle
	c.welcomed = false
	return nil
}

// rollback removes the user turn this exchange appended.
func (c *Controller) rollback(x *Exchange) {
	last, ok := c.history.Last()
	if !ok || last.Role != history.RoleUser || last.Content != x.input {
		c.logf("chat: rollback skipped, last turn is not the pending user turn")
		return
	}
	c.history.RemoveLast()
}

func failureText(err error) string {
	var se *StatusError
	if errors.As(err, &se) {
		if se.Message != "" {
			return se.Message
		}
		if !se.Structured {
			return fmt.Sprintf("%s Status: %d", genericFailure, se.Code)
		}
	}
	return genericFailure
}
