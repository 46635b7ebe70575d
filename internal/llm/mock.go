package llm

import (
	"context"
	"errors"
	"sync"
)

// ErrScriptExhausted is returned by Mock when no reply is left and no
// Responder is set.
var ErrScriptExhausted = errors.New("mock llm: no scripted reply left")

// Reply is one scripted answer.
type Reply struct {
	Text string
	Err  error
}

// Call records a request made to the Mock.
type Call struct {
	Prompt Prompt
	Schema *Schema
}

// Mock is a Client that replays scripted replies in order, then falls back to
// Responder. Structured replies go through the same decoding as real ones.
type Mock struct {
	mu        sync.Mutex
	replies   []Reply
	calls     []Call
	Responder func(prompt Prompt, schema *Schema) (string, error)
}

func NewMock(replies ...Reply) *Mock {
	return &Mock{replies: replies}
}

// Push appends scripted replies.
func (m *Mock) Push(replies ...Reply) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replies = append(m.replies, replies...)
}

func (m *Mock) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Call, len(m.calls))
	copy(out, m.calls)
	return out
}

func (m *Mock) next(ctx context.Context, prompt Prompt, schema *Schema) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	m.mu.Lock()
	m.calls = append(m.calls, Call{Prompt: prompt, Schema: schema})
	if len(m.replies) > 0 {
		r := m.replies[0]
		m.replies = m.replies[1:]
		m.mu.Unlock()
		return r.Text, r.Err
	}
	responder := m.Responder
	m.mu.Unlock()

	if responder == nil {
		return "", ErrScriptExhausted
	}
	return responder(prompt, schema)
}

func (m *Mock) Complete(ctx context.Context, prompt Prompt) (string, error) {
	return m.next(ctx, prompt, nil)
}

func (m *Mock) Structured(ctx context.Context, prompt Prompt, schema Schema, out any) error {
	text, err := m.next(ctx, prompt, &schema)
	if err != nil {
		return err
	}
	return decodeStructured(text, schema, out)
}
