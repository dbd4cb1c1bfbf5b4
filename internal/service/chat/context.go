package chat

import (
	"context"
	"fmt"
	"sync"

	"github.com/pkoukk/tiktoken-go"
	"github.com/sandevgo/rizza/internal/core"
	"github.com/sandevgo/rizza/pkg/log"
)

var (
	tk     *tiktoken.Tiktoken
	tkOnce sync.Once
)

// assembledContext is the complete outbound payload for one turn: the
// ordered role/content entries plus the model chosen for them.
type assembledContext struct {
	Messages []core.Message
	Model    string
	Tokens   int
}

// assemble composes: persona system prompt (+ memory digest when facts
// exist), the most recent history window in ascending time order, and the
// new user turn last.
func (s *Service) assemble(ctx context.Context, sessionID, text string, image []byte) (assembledContext, error) {
	facts, err := s.facts.AllFacts(ctx)
	if err != nil {
		return assembledContext{}, fmt.Errorf("failed to load facts: %w", err)
	}

	messages := []core.Message{{
		Role:    core.RoleSystem,
		Content: systemPrompt + buildMemoryDigest(facts),
	}}

	turns, err := s.sessions.TurnsForSession(ctx, sessionID)
	if err != nil {
		return assembledContext{}, fmt.Errorf("failed to load history: %w", err)
	}

	// Hard truncation to the window suffix; anything older is dropped.
	window := s.cfg.GetHistoryWindowSize()
	if len(turns) > window {
		turns = turns[len(turns)-window:]
	}
	for _, t := range turns {
		messages = append(messages, core.Message{Role: t.Role, Content: t.Content})
	}

	messages = append(messages, newUserEntry(text, image))

	model := s.textModel
	if len(image) > 0 {
		model = s.visionModel
	}

	// A zero ceiling disables token accounting entirely.
	tokens := 0
	if max := s.cfg.GetMaxPromptTokens(); max > 0 {
		tokens = s.promptTokens(messages)
		if tokens > max {
			return assembledContext{}, fmt.Errorf("assembled prompt is %d tokens, limit is %d", tokens, max)
		}
	}

	log.FromCtx(ctx).Debug().
		Str("model", model).
		Int("entries", len(messages)).
		Int("tokens", tokens).
		Msg("assembled context")

	return assembledContext{Messages: messages, Model: model, Tokens: tokens}, nil
}

// newUserEntry builds the final entry of the payload. With an image the
// content is a part array: text part only when non-empty, then the image as
// an inline data URI. Without one it is plain text.
func newUserEntry(text string, image []byte) core.Message {
	if len(image) == 0 {
		return core.Message{Role: core.RoleUser, Content: text}
	}

	var parts []core.ContentPart
	if text != "" {
		parts = append(parts, core.TextPart(text))
	}
	parts = append(parts, core.ImagePart(core.ImageDataURI(image)))

	return core.Message{Role: core.RoleUser, Parts: parts}
}

func (s *Service) promptTokens(messages []core.Message) int {
	count := s.countTokens
	if count == nil {
		count = countTokensCl100k
	}

	total := 0
	for _, m := range messages {
		total += count(m.Content)
		for _, p := range m.Parts {
			total += count(p.Text)
		}
	}
	return total
}

func countTokensCl100k(text string) int {
	if text == "" {
		return 0
	}
	tkOnce.Do(func() {
		var err error
		tk, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			panic("failed to load tiktoken: " + err.Error())
		}
	})
	return len(tk.Encode(text, nil, nil))
}
