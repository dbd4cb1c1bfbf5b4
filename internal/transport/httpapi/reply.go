package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sandevgo/rizza/internal/service/reply"
	"github.com/sandevgo/rizza/internal/service/vision"
	"github.com/sandevgo/rizza/pkg/log"
)

type ReplyHandler struct {
	svc *reply.Service
}

func (h *ReplyHandler) RegisterRoutes(r chi.Router) {
	r.Post("/reply", h.handleGenerate)
}

// conversationContext is the client-supplied analogue of a vision analysis.
type conversationContext struct {
	Conversation    []vision.AnalyzedMessage `json:"conversation"`
	Summary         string                   `json:"summary"`
	OverallMood     string                   `json:"overall_mood"`
	ParticipantName string                   `json:"participant_name"`
}

func (h *ReplyHandler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var payload conversationContext
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	replies, err := h.svc.Generate(r.Context(), payload)
	if err != nil {
		log.FromCtx(r.Context()).Error().Err(err).Msg("reply generation failed")
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"replies": replies})
}
