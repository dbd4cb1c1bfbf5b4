package httpapi

import (
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sandevgo/rizza/internal/service/speech"
	"github.com/sandevgo/rizza/pkg/log"
)

type TranscribeHandler struct {
	svc *speech.Service
}

func (h *TranscribeHandler) RegisterRoutes(r chi.Router) {
	r.Post("/transcribe", h.handleTranscribe)
}

func (h *TranscribeHandler) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !speech.IsSupportedContentType(contentType) {
		respondError(w, http.StatusBadRequest,
			fmt.Sprintf("unsupported audio format: %s. Use webm, mp3, m4a, wav, or ogg.", contentType))
		return
	}

	audio, err := io.ReadAll(file)
	if err != nil {
		respondError(w, http.StatusBadRequest, "failed to read file")
		return
	}

	text, err := h.svc.Transcribe(r.Context(), audio, header.Filename)
	if err != nil {
		log.FromCtx(r.Context()).Error().Err(err).Msg("transcription failed")
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"text": text})
}
