package assistant

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/xaenox/blog-assistant/internal/models"
)

// prepareSave only marks the draft for saving. Writing it out is CommitSave's job.
func (s *Service) prepareSave(_ context.Context, session *models.Session, _ string) {
	if strings.TrimSpace(session.Title()) == "" {
		s.reply(session, "There's no blog to save yet. Please generate a blog first.")
		return
	}
	if !session.Draft.Complete() {
		s.reply(session, fmt.Sprintf(
			"Your blog '%s' has no body yet. Ask me to write the introduction, sections and conclusion before saving.",
			session.Draft.Title))
		return
	}

	session.PendingSave = true
	session.CurrentAction = models.ActionSave
	s.logger.Info("Blog marked for saving",
		zap.String("session_id", session.ID),
		zap.String("title", session.Draft.Title))
	s.reply(session, fmt.Sprintf(
		"Great! Your blog '%s' is ready to be saved. Confirm to save it to your collection.", session.Draft.Title))
}
