package blogstore

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/xaenox/blog-assistant/internal/models"
)

//go:embed schema.sql
var schema string

const (
	uniqueViolation = pq.ErrorCode("23505")
	maxSlugAttempts = 5
)

// PostgresBlogStore writes blogs to the blogs table.
type PostgresBlogStore struct {
	db     *sql.DB
	opts   Options
	logger *zap.Logger
}

// NewPostgresBlogStore uses an open pool, typically the one the session
// store already holds, and makes sure the blogs table exists.
func NewPostgresBlogStore(db *sql.DB, opts Options, logger *zap.Logger) (*PostgresBlogStore, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("error initializing blogs schema: %w", err)
	}
	return &PostgresBlogStore{db: db, opts: opts, logger: logger}, nil
}

func (s *PostgresBlogStore) SaveBlog(ctx context.Context, author models.Author, draft models.Draft) (string, error) {
	authorID, err := s.opts.authorID(author)
	if err != nil {
		return "", err
	}
	draft.EnsureSlug()
	embedding := s.opts.embed(ctx, draft, s.logger)

	var content models.Content
	if draft.Content != nil {
		content = *draft.Content
	}
	if content.Sections == nil {
		content.Sections = []models.Section{}
	}
	sections, err := json.Marshal(content.Sections)
	if err != nil {
		return "", fmt.Errorf("error encoding sections: %w", err)
	}

	var vector any
	if embedding != nil {
		vector = pq.Float64Array(embedding)
	}

	id := uuid.New().String()
	var slug string
	for attempt := 1; ; attempt++ {
		slug, err = s.insert(ctx, id, authorID, draft, content, sections, vector)
		if err == nil {
			break
		}
		if !isUniqueViolation(err) || attempt == maxSlugAttempts {
			return "", err
		}
		s.logger.Debug("Slug taken concurrently, retrying",
			zap.String("slug", draft.Slug),
			zap.Int("attempt", attempt))
	}

	s.logger.Info("Blog stored",
		zap.String("id", id),
		zap.String("slug", slug),
		zap.String("author_id", authorID),
		zap.Bool("embedded", embedding != nil))
	return id, nil
}

// insert picks a free slug and writes the row in one transaction. Another
// writer can still claim the slug before commit; that surfaces as a unique
// violation.
func (s *PostgresBlogStore) insert(ctx context.Context, id, authorID string, draft models.Draft,
	content models.Content, sections []byte, vector any) (string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	slug, err := uniqueSlug(draft.Slug, func(slug string) (bool, error) {
		var used bool
		err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM blogs WHERE slug = $1)`, slug).Scan(&used)
		return used, err
	})
	if err != nil {
		return "", fmt.Errorf("error checking slug: %w", err)
	}

	query := `
		INSERT INTO blogs (id, author_id, slug, title, subtitle, excerpt, image, category,
			featured, tags, introduction, sections, conclusion, embedding, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	_, err = tx.ExecContext(ctx, query,
		id,
		authorID,
		slug,
		draft.Title,
		draft.Subtitle,
		draft.Excerpt,
		draft.Image,
		draft.Category,
		draft.Featured,
		pq.Array(models.NormalizeTags(draft.Tags)),
		content.Introduction,
		sections,
		content.Conclusion,
		vector,
		time.Now(),
	)
	if err != nil {
		return "", fmt.Errorf("error inserting blog: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("error committing blog: %w", err)
	}
	return slug, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

func (s *PostgresBlogStore) Get(ctx context.Context, id string) (Record, error) {
	query := `
		SELECT author_id, slug, title, subtitle, excerpt, image, category, featured,
			tags, introduction, sections, conclusion, embedding, created_at
		FROM blogs WHERE id = $1`

	var (
		rec       = Record{ID: id}
		d         = &rec.Draft
		subtitle  sql.NullString
		excerpt   sql.NullString
		image     sql.NullString
		category  sql.NullString
		intro     sql.NullString
		concl     sql.NullString
		tags      pq.StringArray
		sections  []byte
		embedding pq.Float64Array
	)
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&rec.AuthorID, &rec.Slug, &d.Title, &subtitle, &excerpt, &image, &category, &d.Featured,
		&tags, &intro, &sections, &concl, &embedding, &rec.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("error querying blog: %w", err)
	}

	d.Slug = rec.Slug
	d.Subtitle = subtitle.String
	d.Excerpt = excerpt.String
	d.Image = image.String
	d.Category = category.String
	d.Tags = []string(tags)
	d.Content = &models.Content{Introduction: intro.String, Conclusion: concl.String}
	if err := json.Unmarshal(sections, &d.Content.Sections); err != nil {
		return Record{}, fmt.Errorf("error decoding sections: %w", err)
	}
	if len(embedding) > 0 {
		rec.Embedding = []float64(embedding)
	}
	return rec, nil
}
