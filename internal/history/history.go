// Package history holds the in-memory conversation that is sent to the chat endpoint
// on every request.
package history

// Role identifies who produced a turn. The chat backend speaks Gemini's vocabulary.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Turn is one message exchanged in the conversation.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// History is the ordered sequence of turns for a single chat session.
// Insertion order is conversation order. It is not safe for concurrent use;
// the owning controller mutates it from one goroutine.
type History struct {
	turns []Turn
}

// New returns an empty history.
func New() *History {
	return &History{}
}

// Append adds a turn at the end of the conversation.
func (h *History) Append(role Role, content string) {
	h.turns = append(h.turns, Turn{Role: role, Content: content})
}

// RemoveLast drops the most recently appended turn and returns it.
func (h *History) RemoveLast() (Turn, bool) {
	if len(h.turns) == 0 {
		return Turn{}, false
	}
	last := h.turns[len(h.turns)-1]
	h.turns = h.turns[:len(h.turns)-1]
	return last, true
}

// Last returns the most recent turn without removing it.
func (h *History) Last() (Turn, bool) {
	if len(h.turns) == 0 {
		return Turn{}, false
	}
	return h.turns[len(h.turns)-1], true
}

func (h *History) Len() int {
	return len(h.turns)
}

// Turns returns a copy of the conversation that callers may keep or marshal
// while the history continues to change.
func (h *History) Turns() []Turn {
	out := make([]Turn, len(h.turns))
	copy(out, h.turns)
	return out
}

// Reset forgets the whole conversation.
func (h *History) Reset() {
	h.turns = nil
}

// Alternates reports whether the conversation starts with a user turn and
// strictly alternates user/model afterwards.
func (h *History) Alternates() bool {
	for i, t := range h.turns {
		want := RoleUser
		if i%2 == 1 {
			want = RoleModel
		}
		if t.Role != want {
			return false
		}
	}
	return true
}
