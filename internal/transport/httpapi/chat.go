package httpapi

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sandevgo/rizza/internal/service/chat"
	"github.com/sandevgo/rizza/pkg/log"
)

const maxUploadBytes = 32 << 20

type ChatHandler struct {
	svc *chat.Service
}

func (h *ChatHandler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.handleSendMessage)
	r.Get("/chat/history", h.handleHistory)
	r.Delete("/chat", h.handleClear)
}

func (h *ChatHandler) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	req := chat.SendRequest{
		Text:      r.FormValue("message"),
		SessionID: r.FormValue("session_id"),
		IsVoice:   r.FormValue("is_voice") == "true",
	}

	file, header, err := r.FormFile("image")
	if err == nil {
		defer file.Close()

		if !strings.HasPrefix(header.Header.Get("Content-Type"), "image/") {
			respondError(w, http.StatusBadRequest, "attachment must be an image")
			return
		}

		req.Image, err = io.ReadAll(file)
		if err != nil {
			respondError(w, http.StatusBadRequest, "failed to read image")
			return
		}
	} else if !errors.Is(err, http.ErrMissingFile) {
		respondError(w, http.StatusBadRequest, "invalid image attachment")
		return
	}

	result, err := h.svc.SendMessage(r.Context(), req)
	if errors.Is(err, chat.ErrEmptyMessage) {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		log.FromCtx(r.Context()).Error().Err(err).Msg("send message failed")
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, result)
}

type historyMessage struct {
	ID        int64     `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	IsVoice   bool      `json:"is_voice"`
	CreatedAt time.Time `json:"created_at"`
}

func (h *ChatHandler) handleHistory(w http.ResponseWriter, r *http.Request) {
	turns, err := h.svc.History(r.Context())
	if err != nil {
		log.FromCtx(r.Context()).Error().Err(err).Msg("history load failed")
		respondError(w, http.StatusInternalServerError, "failed to load history")
		return
	}

	messages := make([]historyMessage, 0, len(turns))
	for _, t := range turns {
		messages = append(messages, historyMessage{
			ID:        t.ID,
			Role:      t.Role,
			Content:   t.Content,
			IsVoice:   t.IsVoice,
			CreatedAt: t.CreatedAt,
		})
	}

	respondJSON(w, http.StatusOK, map[string]any{"messages": messages})
}

func (h *ChatHandler) handleClear(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Clear(r.Context()); err != nil {
		log.FromCtx(r.Context()).Error().Err(err).Msg("clear history failed")
		respondError(w, http.StatusInternalServerError, "failed to clear history")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Chat history cleared"})
}
