// Package api exposes the blog assistant over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/xaenox/blog-assistant/internal/assistant"
	"github.com/xaenox/blog-assistant/internal/blogstore"
	"github.com/xaenox/blog-assistant/internal/storage"
)

const maxRequestBodySize = 64 << 10

// Handler serves the chat and session endpoints.
type Handler struct {
	svc       *assistant.Service
	persister assistant.Persister
	logger    *zap.Logger
}

// NewHandler wires the endpoints. persister may be nil, in which case saving
// is reported as unavailable.
func NewHandler(svc *assistant.Service, persister assistant.Persister, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, persister: persister, logger: logger}
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Post("/chat", h.HandleChat)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", h.GetSession)
			r.Delete("/", h.DeleteSession)
			r.Post("/clear", h.ClearDraft)
			r.Post("/save", h.SaveDraft)
			r.Get("/preview", h.Preview)
		})
	})
}

type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
}

func (h *Handler) HandleChat(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			Error(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		Error(w, http.StatusBadRequest, "message is required")
		return
	}

	resp := h.svc.Process(r.Context(), assistant.Request{
		SessionID: req.SessionID,
		Message:   req.Message,
		UserID:    r.Header.Get("X-User-ID"),
		Username:  r.Header.Get("X-Username"),
	})
	JSON(w, http.StatusOK, resp)
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.svc.Session(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, err)
		return
	}
	JSON(w, http.StatusOK, session)
}

func (h *Handler) ClearDraft(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.ClearDraft(r.Context(), id); err != nil {
		h.fail(w, err)
		return
	}
	JSON(w, http.StatusOK, map[string]string{"session_id": id, "status": "cleared"})
}

func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteSession(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) SaveDraft(w http.ResponseWriter, r *http.Request) {
	if h.persister == nil {
		Error(w, http.StatusServiceUnavailable, "blog storage is not configured")
		return
	}
	id := chi.URLParam(r, "id")
	blogID, err := h.svc.CommitSave(r.Context(), id, h.persister)
	if err != nil {
		h.fail(w, err)
		return
	}
	JSON(w, http.StatusCreated, map[string]string{"session_id": id, "blog_id": blogID})
}

func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	preview, err := h.svc.Preview(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, err)
		return
	}

	switch r.URL.Query().Get("format") {
	case "json":
		JSON(w, http.StatusOK, preview)
	case "markdown", "md":
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		_, _ = w.Write([]byte(preview.Markdown))
	default:
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(preview.HTML))
	}
}

// fail maps service errors onto status codes.
func (h *Handler) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		Error(w, http.StatusNotFound, "session not found")
	case errors.Is(err, assistant.ErrNoDraft):
		Error(w, http.StatusNotFound, "session has no draft")
	case errors.Is(err, assistant.ErrNothingToSave):
		Error(w, http.StatusConflict, err.Error())
	case errors.Is(err, assistant.ErrDraftIncomplete):
		Error(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, blogstore.ErrNoAuthor):
		Error(w, http.StatusUnprocessableEntity, "saving needs an author: send X-User-ID or configure blogstore.author_id")
	default:
		h.logger.Error("Request failed", zap.Error(err))
		Error(w, http.StatusInternalServerError, "internal error")
	}
}
