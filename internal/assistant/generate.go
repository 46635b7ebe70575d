package assistant

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/xaenox/blog-assistant/internal/llm"
	"github.com/xaenox/blog-assistant/internal/models"
)

// generatedBlog is the flat shape the model is asked to produce.
type generatedBlog struct {
	Title        string           `json:"title"`
	Subtitle     string           `json:"subtitle"`
	Slug         string           `json:"slug"`
	Excerpt      string           `json:"excerpt"`
	Image        string           `json:"image"`
	Category     string           `json:"category"`
	Tags         []string         `json:"tags"`
	Introduction string           `json:"introduction"`
	Sections     []models.Section `json:"sections"`
	Conclusion   string           `json:"conclusion"`
}

// draft folds the flat body fields into Content.
func (g generatedBlog) draft() (*models.Draft, error) {
	title := strings.TrimSpace(g.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: blank title", llm.ErrSchemaViolation)
	}

	sections := g.Sections
	if sections == nil {
		sections = []models.Section{}
	}
	d := &models.Draft{
		Slug:     strings.TrimSpace(g.Slug),
		Title:    title,
		Subtitle: g.Subtitle,
		Excerpt:  g.Excerpt,
		Image:    g.Image,
		Category: g.Category,
		Tags:     models.NormalizeTags(g.Tags),
		Content: &models.Content{
			Introduction: g.Introduction,
			Sections:     sections,
			Conclusion:   g.Conclusion,
		},
	}
	d.EnsureSlug()
	return d, nil
}

func (s *Service) generatePrompt(session *models.Session, message string) llm.Prompt {
	user := fmt.Sprintf(generationPrompt, extractTopic(message))
	if d := session.Draft; d != nil && wantsReference(message) {
		sections := 0
		if d.Content != nil {
			sections = len(d.Content.Sections)
		}
		user += fmt.Sprintf(referencePrompt, d.Title, d.Category, sections)
	}
	return llm.Prompt{System: systemPrompt, User: user}
}

func (s *Service) generate(ctx context.Context, session *models.Session, message string) {
	prompt := s.generatePrompt(session, message)

	llmCtx, cancel := s.llmContext(ctx)
	defer cancel()

	var out generatedBlog
	err := s.llm.Structured(llmCtx, prompt, blogSchema, &out)
	var draft *models.Draft
	if err == nil {
		draft, err = out.draft()
	}
	if err != nil {
		s.logger.Error("Failed to generate blog",
			zap.Error(err),
			zap.String("handler", "generate"),
			zap.String("session_id", session.ID))
		s.reply(session, fmt.Sprintf("Sorry, I couldn't generate the blog: %s.", describeError(err)))
		return
	}

	session.Draft = draft
	session.PendingSave = true
	s.logger.Info("Blog generated",
		zap.String("session_id", session.ID),
		zap.String("title", draft.Title),
		zap.Int("sections", len(draft.Content.Sections)))
	s.reply(session, fmt.Sprintf(
		"I've generated a blog post titled '%s'. Would you like to make any changes or save it?", draft.Title))
}
