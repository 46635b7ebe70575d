// Package assistant runs the conversational blog-drafting workflow: each
// incoming message is classified and handled by exactly one of the generate,
// update, save or chat handlers against the session's draft.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xaenox/blog-assistant/internal/classifier"
	"github.com/xaenox/blog-assistant/internal/llm"
	"github.com/xaenox/blog-assistant/internal/models"
	"github.com/xaenox/blog-assistant/internal/storage"
)

const (
	defaultLLMTimeout = 60 * time.Second
	defaultReply      = "How can I help you with your blog?"
)

var (
	ErrNothingToSave   = errors.New("no draft is waiting to be saved")
	ErrDraftIncomplete = errors.New("draft is not complete enough to save")
	ErrNoDraft         = errors.New("session has no draft")
)

// Request is one incoming user message.
type Request struct {
	SessionID string
	Message   string
	UserID    string
	Username  string
}

// Response summarises the session after a message was handled.
type Response struct {
	SessionID   string           `json:"session_id"`
	Message     string           `json:"message"`
	Action      models.Action    `json:"action"`
	BlogState   models.Draft     `json:"blog_state"`
	PendingSave bool             `json:"pending_save"`
	Messages    []models.Message `json:"messages"`
}

// Persister durably stores a finished draft and returns a reference to the
// stored record.
type Persister interface {
	SaveBlog(ctx context.Context, author models.Author, draft models.Draft) (string, error)
}

type Options struct {
	// LLMTimeout bounds every model call. Zero means one minute.
	LLMTimeout time.Duration
	Classifier classifier.Classifier
	Now        func() time.Time
	NewID      func() string
}

type handler func(ctx context.Context, session *models.Session, text string)

type Service struct {
	store      storage.SessionStore
	llm        llm.Client
	classifier classifier.Classifier
	logger     *zap.Logger
	locks      *keyedMutex
	handlers   map[models.Action]handler
	llmTimeout time.Duration
	now        func() time.Time
	newID      func() string
}

func New(store storage.SessionStore, client llm.Client, logger *zap.Logger, opts Options) *Service {
	s := &Service{
		store:      store,
		llm:        client,
		classifier: opts.Classifier,
		logger:     logger,
		locks:      newKeyedMutex(),
		llmTimeout: opts.LLMTimeout,
		now:        opts.Now,
		newID:      opts.NewID,
	}
	if s.classifier == nil {
		s.classifier = classifier.NewKeywordClassifier()
	}
	if s.llmTimeout <= 0 {
		s.llmTimeout = defaultLLMTimeout
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = func() string { return uuid.New().String() }
	}
	s.handlers = map[models.Action]handler{
		models.ActionGenerate: s.generate,
		models.ActionUpdate:   s.update,
		models.ActionSave:     s.prepareSave,
		models.ActionChat:     s.chat,
	}
	return s
}

// Process handles one user message. It never returns an error: failures are
// logged and reported as a response with Action "error".
func (s *Service) Process(ctx context.Context, req Request) (resp Response) {
	if req.SessionID == "" {
		req.SessionID = s.newID()
	}
	logger := s.logger.With(zap.String("session_id", req.SessionID))

	defer func() {
		if r := recover(); r != nil {
			logger.Error("Panic while processing message", zap.Any("panic", r), zap.Stack("stack"))
			resp = errorResponse(req.SessionID, fmt.Errorf("internal error: %v", r))
		}
	}()

	unlock, err := s.locks.Lock(ctx, req.SessionID)
	if err != nil {
		logger.Error("Failed to acquire session", zap.Error(err))
		return errorResponse(req.SessionID, err)
	}
	defer unlock()

	resp, err = s.process(ctx, req)
	if err != nil {
		logger.Error("Error processing message", zap.Error(err))
		return errorResponse(req.SessionID, err)
	}
	return resp
}

func (s *Service) process(ctx context.Context, req Request) (Response, error) {
	session, err := s.loadOrCreate(ctx, req)
	if err != nil {
		return Response{}, err
	}

	session.AppendMessage(models.RoleUser, req.Message, s.now())

	action := s.classifier.Classify(req.Message)
	session.CurrentAction = action
	s.logger.Info("Intent detected",
		zap.String("session_id", session.ID),
		zap.String("action", string(action)))

	handle, ok := s.handlers[action]
	if !ok {
		handle = s.handlers[models.ActionChat]
	}
	handle(ctx, session, req.Message)

	if err := s.store.Put(ctx, session); err != nil {
		return Response{}, fmt.Errorf("save session: %w", err)
	}
	return buildResponse(session), nil
}

func (s *Service) loadOrCreate(ctx context.Context, req Request) (*models.Session, error) {
	session, err := s.store.Get(ctx, req.SessionID)
	if errors.Is(err, storage.ErrNotFound) {
		s.logger.Info("Creating session",
			zap.String("session_id", req.SessionID),
			zap.String("user_id", req.UserID))
		return models.NewSession(req.SessionID, req.UserID, req.Username, s.now()), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if session.UserID == "" && req.UserID != "" {
		session.UserID = req.UserID
		session.Username = req.Username
	}
	return session, nil
}

func buildResponse(session *models.Session) Response {
	reply := defaultReply
	if m, ok := session.LastMessage(models.RoleAssistant); ok {
		reply = llm.PlainText(m.Content)
	}

	resp := Response{
		SessionID:   session.ID,
		Message:     reply,
		Action:      session.CurrentAction,
		PendingSave: session.PendingSave,
		Messages:    append([]models.Message(nil), session.Messages...),
	}
	if session.Draft != nil {
		resp.BlogState = *session.Draft
	}
	return resp
}

func errorResponse(sessionID string, err error) Response {
	return Response{
		SessionID: sessionID,
		Message:   fmt.Sprintf("Sorry, I encountered an error: %v", err),
		Action:    models.ActionError,
		Messages:  []models.Message{},
	}
}

// llmContext bounds a single model call.
func (s *Service) llmContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.llmTimeout)
}

func (s *Service) reply(session *models.Session, content string) {
	session.AppendMessage(models.RoleAssistant, content, s.now())
}

// describeError turns a handler failure into text fit for the user.
func describeError(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "the language model took too long to respond, please try again"
	case errors.Is(err, llm.ErrSchemaViolation):
		return "the generated blog did not have the expected structure, please try again"
	case errors.Is(err, llm.ErrEmptyResponse):
		return "the language model returned an empty response, please try again"
	default:
		return err.Error()
	}
}

// Session returns the stored state of a session.
func (s *Service) Session(ctx context.Context, id string) (*models.Session, error) {
	return s.store.Get(ctx, id)
}

// ClearDraft drops the draft of a session but keeps its conversation.
func (s *Service) ClearDraft(ctx context.Context, id string) error {
	unlock, err := s.locks.Lock(ctx, id)
	if err != nil {
		return err
	}
	defer unlock()

	if err := s.store.ClearDraft(ctx, id); err != nil {
		return fmt.Errorf("clear draft: %w", err)
	}
	s.logger.Info("Blog state cleared", zap.String("session_id", id))
	return nil
}

func (s *Service) DeleteSession(ctx context.Context, id string) error {
	unlock, err := s.locks.Lock(ctx, id)
	if err != nil {
		return err
	}
	defer unlock()

	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	s.logger.Info("Session deleted", zap.String("session_id", id))
	return nil
}

// CommitSave hands a draft that is marked pending to p. On success the
// pending flag is cleared; on failure it stays set so the caller can retry.
func (s *Service) CommitSave(ctx context.Context, id string, p Persister) (string, error) {
	unlock, err := s.locks.Lock(ctx, id)
	if err != nil {
		return "", err
	}
	defer unlock()

	session, err := s.store.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if !session.PendingSave {
		return "", ErrNothingToSave
	}
	if !session.Draft.Complete() {
		return "", ErrDraftIncomplete
	}

	author := models.Author{UserID: session.UserID, Username: session.Username}
	ref, err := p.SaveBlog(ctx, author, *session.Draft)
	if err != nil {
		s.logger.Error("Failed to persist blog",
			zap.Error(err),
			zap.String("session_id", id),
			zap.String("title", session.Draft.Title))
		return "", fmt.Errorf("persist blog: %w", err)
	}

	session.PendingSave = false
	s.reply(session, fmt.Sprintf("Your blog '%s' has been saved to your collection.", session.Draft.Title))
	if err := s.store.Put(ctx, session); err != nil {
		return ref, fmt.Errorf("save session: %w", err)
	}
	s.logger.Info("Blog saved",
		zap.String("session_id", id),
		zap.String("ref", ref))
	return ref, nil
}
