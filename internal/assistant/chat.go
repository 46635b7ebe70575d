package assistant

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/xaenox/blog-assistant/internal/llm"
	"github.com/xaenox/blog-assistant/internal/models"
)

const chatFallback = "I'm here to help you create and manage blog posts. You can ask me to generate a blog, update specific parts, or save your work."

func (s *Service) chat(ctx context.Context, session *models.Session, message string) {
	system := chatPrompt
	if d := session.Draft; d != nil && d.Title != "" {
		system += fmt.Sprintf(draftContextPrompt, d.Title, d.Category)
	}

	llmCtx, cancel := s.llmContext(ctx)
	defer cancel()

	text, err := s.llm.Complete(llmCtx, llm.Prompt{System: system, User: message})
	if err == nil {
		text = llm.PlainText(text)
	}
	if err != nil || text == "" {
		if err != nil {
			s.logger.Error("Chat reply failed",
				zap.Error(err),
				zap.String("handler", "chat"),
				zap.String("session_id", session.ID))
		}
		text = chatFallback
	}
	s.reply(session, text)
}
