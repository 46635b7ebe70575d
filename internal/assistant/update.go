package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/xaenox/blog-assistant/internal/llm"
	"github.com/xaenox/blog-assistant/internal/models"
)

func (s *Service) update(ctx context.Context, session *models.Session, instruction string) {
	logger := s.logger.With(
		zap.String("handler", "update"),
		zap.String("session_id", session.ID))

	var current models.Draft
	if session.Draft != nil {
		current = *session.Draft
	}
	state, err := json.MarshalIndent(current, "", "  ")
	if err != nil {
		logger.Error("Failed to encode draft", zap.Error(err))
		s.reply(session, fmt.Sprintf("Sorry, I couldn't update the blog: %s.", describeError(err)))
		return
	}

	llmCtx, cancel := s.llmContext(ctx)
	defer cancel()

	text, err := s.llm.Complete(llmCtx, llm.Prompt{
		System: systemPrompt,
		User:   fmt.Sprintf(updatePrompt, state, instruction),
	})
	if err != nil {
		logger.Error("Failed to update blog", zap.Error(err))
		s.reply(session, fmt.Sprintf("Sorry, I couldn't update the blog: %s.", describeError(err)))
		return
	}

	patch, outcome := decodePatch(text)
	switch outcome {
	case llm.Failed:
		logger.Warn("Could not parse update reply, using placeholder")
		patch = fallbackPatch(instruction)
	case llm.Degraded:
		logger.Warn("Update reply needed coercion")
	}

	// Work on a copy so a nil draft stays nil when nothing changes.
	changed := patch.applyTo(&current)
	if len(changed) > 0 {
		session.Draft = &current
	}

	logger.Info("Blog updated",
		zap.Strings("changed", changed),
		zap.Stringer("outcome", outcome))

	what := "blog"
	if len(changed) > 0 {
		what = strings.Join(changed, ", ")
	}
	s.reply(session, fmt.Sprintf(
		"I've updated the %s. Would you like to make any other changes or save this blog?", what))
}
