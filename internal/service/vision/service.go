package vision

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sandevgo/rizza/internal/core"
	"github.com/sandevgo/rizza/pkg/log"
)

const analysisPrompt = `Analyze this chat screenshot. Extract the following in JSON format:
1. "conversation": A list of message objects with "sender" (string, use 'User' or 'Partner'), "text" (string), and "emotion" (string, e.g., happy, angry, neutral).
2. "summary": A brief summary of the conversation context.
3. "overall_mood": The overall emotional tone of the conversation (e.g., Flirty, Tense, Casual).
4. "participant_name": The name of the other person if visible, else "Partner".

Ensure the JSON is raw and valid.`

type AnalyzedMessage struct {
	Sender  string `json:"sender"`
	Text    string `json:"text"`
	Emotion string `json:"emotion"`
}

// Analysis is the structured read of a chat screenshot.
type Analysis struct {
	Conversation    []AnalyzedMessage `json:"conversation"`
	Summary         string            `json:"summary"`
	OverallMood     string            `json:"overall_mood"`
	ParticipantName string            `json:"participant_name"`
}

// Service extracts conversation structure and emotional tone from chat
// screenshots. Stateless pass-through to the vision model.
type Service struct {
	ai    core.ModelClient
	model string
}

func NewService(ai core.ModelClient, model string) *Service {
	return &Service{ai: ai, model: model}
}

func (s *Service) AnalyzeScreenshot(ctx context.Context, image []byte) (Analysis, error) {
	msgs := []core.Message{{
		Role: core.RoleUser,
		Parts: []core.ContentPart{
			core.TextPart(analysisPrompt),
			core.ImagePart(core.ImageDataURI(image)),
		},
	}}

	raw, err := s.ai.CompleteJSON(ctx, s.model, msgs)
	if err != nil {
		return Analysis{}, fmt.Errorf("screenshot analysis failed: %w", err)
	}

	var analysis Analysis
	if err := json.Unmarshal(raw, &analysis); err != nil {
		return Analysis{}, fmt.Errorf("decode analysis: %w", err)
	}

	log.FromCtx(ctx).Debug().
		Int("messages", len(analysis.Conversation)).
		Str("mood", analysis.OverallMood).
		Msg("analyzed screenshot")

	return analysis, nil
}
