package reply

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sandevgo/rizza/internal/core"
)

// Option is one suggested reply with the strategy behind it.
type Option struct {
	Tone      string `json:"tone"`
	Text      string `json:"text"`
	Reasoning string `json:"reasoning"`
}

// Service generates tone-differentiated reply suggestions from an analyzed
// conversation. Stateless pass-through to the text model.
type Service struct {
	ai    core.ModelClient
	model string
}

func NewService(ai core.ModelClient, model string) *Service {
	return &Service{ai: ai, model: model}
}

// Generate accepts any JSON-serializable conversation context (the vision
// analysis, or the client's own) and returns three reply options.
func (s *Service) Generate(ctx context.Context, conversationContext any) ([]Option, error) {
	contextJSON, err := json.MarshalIndent(conversationContext, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal context: %w", err)
	}

	prompt := buildReplyPrompt(string(contextJSON))

	raw, err := s.ai.CompleteJSON(ctx, s.model, []core.Message{
		{Role: core.RoleUser, Content: prompt},
	})
	if err != nil {
		return nil, fmt.Errorf("reply generation failed: %w", err)
	}

	var result struct {
		Replies []Option `json:"replies"`
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("decode replies: %w", err)
	}
	return result.Replies, nil
}

func buildReplyPrompt(contextJSON string) string {
	return fmt.Sprintf(`You are an expert relationship strategist.

Context:
%s

Task:
Generate 3 distinct reply options for the USER to send back.
1. Warm / Supportive
2. Playful / Light
3. Direct / Confident

Output JSON format:
{
    "replies": [
        { "tone": "Warm & Supportive", "text": "...", "reasoning": "..." },
        { "tone": "Playful & Light", "text": "...", "reasoning": "..." },
        { "tone": "Direct & Confident", "text": "...", "reasoning": "..." }
    ]
}`, contextJSON)
}
