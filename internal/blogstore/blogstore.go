// Package blogstore keeps finished drafts as durable blog records, optionally
// with a vector embedding of their summary text for later retrieval.
package blogstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/xaenox/blog-assistant/internal/models"
)

var (
	ErrNoAuthor = errors.New("blog has no author")
	ErrNotFound = errors.New("blog not found")
)

// Record is a stored blog.
type Record struct {
	ID        string       `json:"id"`
	AuthorID  string       `json:"author_id"`
	Slug      string       `json:"slug"`
	Draft     models.Draft `json:"draft"`
	Embedding []float64    `json:"embedding,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}

// Embedder turns text into a vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

type Options struct {
	// Embedder is optional. Without it records are stored unembedded.
	Embedder Embedder
	// DefaultAuthor is used for drafts whose session carries no user id.
	DefaultAuthor string
}

// EmbeddingText is the summary text a blog is embedded by.
func EmbeddingText(d models.Draft) string {
	return strings.TrimSpace(strings.Join([]string{d.Title, d.Subtitle, d.Excerpt}, " "))
}

func (o Options) authorID(a models.Author) (string, error) {
	if a.UserID != "" {
		return a.UserID, nil
	}
	if o.DefaultAuthor != "" {
		return o.DefaultAuthor, nil
	}
	return "", ErrNoAuthor
}

// uniqueSlug appends -1, -2, ... to base until taken reports it free.
func uniqueSlug(base string, taken func(string) (bool, error)) (string, error) {
	if base == "" {
		base = "blog"
	}
	slug := base
	for i := 1; ; i++ {
		used, err := taken(slug)
		if err != nil {
			return "", err
		}
		if !used {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
}

// embed computes the embedding when an Embedder is configured. A failure is
// logged and the blog is stored without one.
func (o Options) embed(ctx context.Context, d models.Draft, logger *zap.Logger) []float64 {
	if o.Embedder == nil {
		return nil
	}
	vec, err := o.Embedder.Embed(ctx, EmbeddingText(d))
	if err != nil {
		logger.Warn("Failed to embed blog, storing without embedding",
			zap.Error(err),
			zap.String("slug", d.Slug))
		return nil
	}
	return vec
}
