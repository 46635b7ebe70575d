package assistant

import (
	"context"
	"fmt"

	"github.com/xaenox/blog-assistant/internal/render"
)

// Preview renders the session's draft.
func (s *Service) Preview(ctx context.Context, id string) (render.Preview, error) {
	session, err := s.store.Get(ctx, id)
	if err != nil {
		return render.Preview{}, err
	}
	if session.Draft == nil {
		return render.Preview{}, fmt.Errorf("session %s: %w", id, ErrNoDraft)
	}
	return render.Render(*session.Draft)
}
