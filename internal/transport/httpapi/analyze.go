package httpapi

import (
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/sandevgo/rizza/internal/service/reply"
	"github.com/sandevgo/rizza/internal/service/vision"
	"github.com/sandevgo/rizza/pkg/log"
)

type AnalyzeHandler struct {
	vision *vision.Service
	reply  *reply.Service
}

func (h *AnalyzeHandler) RegisterRoutes(r chi.Router) {
	r.Post("/analyze", h.handleAnalyze)
}

type analyzeResponse struct {
	vision.Analysis
	Replies []reply.Option `json:"replies"`
}

func (h *AnalyzeHandler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	image, ok := readImageUpload(w, r)
	if !ok {
		return
	}

	analysis, err := h.vision.AnalyzeScreenshot(r.Context(), image)
	if err != nil {
		log.FromCtx(r.Context()).Error().Err(err).Msg("screenshot analysis failed")
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := analyzeResponse{Analysis: analysis, Replies: []reply.Option{}}

	// The analysis is still useful on its own; degrade to empty replies
	// instead of failing the whole request.
	replies, err := h.reply.Generate(r.Context(), analysis)
	if err != nil {
		log.FromCtx(r.Context()).Warn().Err(err).Msg("reply generation failed")
	} else if len(replies) > 0 {
		resp.Replies = replies
	}

	respondJSON(w, http.StatusOK, resp)
}

func readImageUpload(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondError(w, http.StatusBadRequest, "invalid multipart form")
		return nil, false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "file is required")
		return nil, false
	}
	defer file.Close()

	if !strings.HasPrefix(header.Header.Get("Content-Type"), "image/") {
		respondError(w, http.StatusBadRequest, "file must be an image")
		return nil, false
	}

	image, err := io.ReadAll(file)
	if err != nil {
		respondError(w, http.StatusBadRequest, "failed to read file")
		return nil, false
	}
	return image, true
}
