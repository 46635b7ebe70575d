package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Action is the classified purpose of the latest user message.
type Action string

const (
	ActionGenerate Action = "generate"
	ActionUpdate   Action = "update"
	ActionSave     Action = "save"
	ActionChat     Action = "chat"
	ActionError    Action = "error"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry of a session's conversation history
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Session is a conversation's full state: history plus the draft under construction
type Session struct {
	ID            string    `json:"session_id"`
	UserID        string    `json:"user_id,omitempty"`
	Username      string    `json:"username,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	Messages      []Message `json:"messages"`
	Draft         *Draft    `json:"draft,omitempty"`
	CurrentAction Action    `json:"current_action,omitempty"`
	PendingSave   bool      `json:"pending_save"`
}

func NewSession(id, userID, username string, now time.Time) *Session {
	return &Session{
		ID:        id,
		UserID:    userID,
		Username:  username,
		CreatedAt: now,
		UpdatedAt: now,
		Messages:  []Message{},
	}
}

// Touch refreshes UpdatedAt. Every mutation goes through it.
func (s *Session) Touch(now time.Time) {
	s.UpdatedAt = now
}

func (s *Session) AppendMessage(role Role, content string, now time.Time) {
	s.Messages = append(s.Messages, Message{
		Role:      role,
		Content:   content,
		Timestamp: now,
	})
	s.Touch(now)
}

// LastMessage returns the most recent message with the given role.
func (s *Session) LastMessage(role Role) (Message, bool) {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Role == role {
			return s.Messages[i], true
		}
	}
	return Message{}, false
}

// Title returns the draft title, or "" when there is no draft.
func (s *Session) Title() string {
	if s.Draft == nil {
		return ""
	}
	return s.Draft.Title
}

// ResetDraft drops the draft and the save/intent markers but keeps history.
func (s *Session) ResetDraft(now time.Time) {
	s.Draft = nil
	s.PendingSave = false
	s.CurrentAction = ""
	s.Touch(now)
}

// Clone returns a deep copy of the session.
func (s *Session) Clone() (*Session, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal session: %w", err)
	}
	var out Session
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &out, nil
}
