package blogstore

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xaenox/blog-assistant/internal/models"
)

// MemoryBlogStore keeps blogs in process. It backs the assistant when no
// database is configured.
type MemoryBlogStore struct {
	mu      sync.RWMutex
	records map[string]Record
	slugs   map[string]string
	opts    Options
	logger  *zap.Logger
}

func NewMemoryBlogStore(opts Options, logger *zap.Logger) *MemoryBlogStore {
	return &MemoryBlogStore{
		records: make(map[string]Record),
		slugs:   make(map[string]string),
		opts:    opts,
		logger:  logger,
	}
}

func (s *MemoryBlogStore) SaveBlog(ctx context.Context, author models.Author, draft models.Draft) (string, error) {
	authorID, err := s.opts.authorID(author)
	if err != nil {
		return "", err
	}
	draft.EnsureSlug()
	draft.Tags = models.NormalizeTags(draft.Tags)
	embedding := s.opts.embed(ctx, draft, s.logger)

	s.mu.Lock()
	defer s.mu.Unlock()

	slug, _ := uniqueSlug(draft.Slug, func(slug string) (bool, error) {
		_, used := s.slugs[slug]
		return used, nil
	})
	draft.Slug = slug
	rec := Record{
		ID:        uuid.New().String(),
		AuthorID:  authorID,
		Slug:      slug,
		Draft:     draft,
		Embedding: embedding,
		CreatedAt: time.Now(),
	}
	s.records[rec.ID] = rec
	s.slugs[slug] = rec.ID

	s.logger.Info("Blog stored",
		zap.String("id", rec.ID),
		zap.String("slug", slug),
		zap.String("author_id", authorID))
	return rec.ID, nil
}

func (s *MemoryBlogStore) Get(_ context.Context, id string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	if !ok {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

func (s *MemoryBlogStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
