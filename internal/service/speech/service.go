package speech

import (
	"context"
	"fmt"

	"github.com/sandevgo/rizza/internal/core"
)

const defaultFilename = "audio.webm"

// allowedContentTypes mirrors the voice-note formats browsers produce.
var allowedContentTypes = map[string]struct{}{
	"audio/webm": {},
	"audio/mp3":  {},
	"audio/mpeg": {},
	"audio/mp4":  {},
	"audio/m4a":  {},
	"audio/wav":  {},
	"audio/ogg":  {},
	"video/webm": {},
}

func IsSupportedContentType(contentType string) bool {
	_, ok := allowedContentTypes[contentType]
	return ok
}

// Service turns voice notes into text. Stateless pass-through to the
// transcription model.
type Service struct {
	ai    core.ModelClient
	model string
}

func NewService(ai core.ModelClient, model string) *Service {
	return &Service{ai: ai, model: model}
}

func (s *Service) Transcribe(ctx context.Context, audio []byte, filename string) (string, error) {
	if filename == "" {
		filename = defaultFilename
	}

	text, err := s.ai.Transcribe(ctx, s.model, audio, filename)
	if err != nil {
		return "", fmt.Errorf("transcription failed: %w", err)
	}
	return text, nil
}
