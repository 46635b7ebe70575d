package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/xaenox/blog-assistant/internal/models"
)

// MemoryStorage keeps sessions in process as JSON snapshots.
type MemoryStorage struct {
	mu       sync.RWMutex
	sessions map[string][]byte
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		sessions: make(map[string][]byte),
	}
}

func (s *MemoryStorage) Get(ctx context.Context, id string) (*models.Session, error) {
	s.mu.RLock()
	data, exists := s.sessions[id]
	s.mu.RUnlock()

	if !exists {
		return nil, ErrNotFound
	}
	return decodeSession(data)
}

func (s *MemoryStorage) Put(ctx context.Context, session *models.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", session.ID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = data
	return nil
}

func (s *MemoryStorage) ClearDraft(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, exists := s.sessions[id]
	if !exists {
		return nil
	}
	session, err := decodeSession(data)
	if err != nil {
		return err
	}
	session.ResetDraft(time.Now())

	data, err = json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", id, err)
	}
	s.sessions[id] = data
	return nil
}

func (s *MemoryStorage) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, id)
	return nil
}

func (s *MemoryStorage) DeleteIdle(ctx context.Context, ttl time.Duration) (int64, error) {
	threshold := time.Now().Add(-ttl)

	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for id, data := range s.sessions {
		session, err := decodeSession(data)
		if err != nil {
			return n, err
		}
		if session.UpdatedAt.Before(threshold) {
			delete(s.sessions, id)
			n++
		}
	}
	return n, nil
}

// Len reports how many sessions are held.
func (s *MemoryStorage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *MemoryStorage) Close() error {
	// Nothing to close for in-memory storage
	return nil
}

func decodeSession(data []byte) (*models.Session, error) {
	var session models.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &session, nil
}
