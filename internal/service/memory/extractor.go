package memory

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sandevgo/rizza/internal/core"
	"github.com/sandevgo/rizza/pkg/log"
)

// Candidate is one fact proposed by the model for a named contact.
type Candidate struct {
	ContactName string `json:"contact_name"`
	Fact        string `json:"fact"`
	Category    string `json:"category"`
}

// Result is the outcome of one extraction pass. Exactly one of Saved/Err is
// meaningful: a failed pass carries the reason, a successful one the facts
// that were actually inserted (duplicates excluded). The caller always
// proceeds with its primary result either way.
type Result struct {
	Saved []Candidate
	Err   error
}

func (r Result) Failed() bool {
	return r.Err != nil
}

// Extractor derives contact facts from a completed exchange, best-effort.
type Extractor struct {
	repo  core.FactsRepository
	ai    core.ModelClient
	model string
}

func NewExtractor(repo core.FactsRepository, ai core.ModelClient, model string) *Extractor {
	return &Extractor{
		repo:  repo,
		ai:    ai,
		model: model,
	}
}

// Run asks the model for new facts about named contacts and stores whatever
// passes the dedup check. It never fails its caller: every error ends up in
// the Result.
func (e *Extractor) Run(ctx context.Context, userMessage, assistantMessage string) Result {
	logger := log.FromCtx(ctx)

	prompt := buildExtractionPrompt(userMessage, assistantMessage)

	raw, err := e.ai.CompleteJSON(ctx, e.model, []core.Message{
		{Role: core.RoleUser, Content: prompt},
	})
	if err != nil {
		return Result{Err: fmt.Errorf("extraction call: %w", err)}
	}

	candidates, err := parseExtractionResponse(raw)
	if err != nil {
		return Result{Err: err}
	}

	var saved []Candidate
	for _, c := range candidates {
		if c.ContactName == "" || c.Fact == "" {
			continue
		}
		c.Category = core.NormalizeCategory(c.Category)

		inserted, err := e.repo.AddFact(ctx, c.ContactName, c.Fact, c.Category)
		if err != nil {
			return Result{Err: fmt.Errorf("save fact: %w", err)}
		}
		if !inserted {
			continue
		}

		logger.Info().
			Str("contact", c.ContactName).
			Str("category", c.Category).
			Msg("contact fact extracted")
		saved = append(saved, c)
	}

	return Result{Saved: saved}
}

func buildExtractionPrompt(userMessage, assistantMessage string) string {
	return fmt.Sprintf(`From this conversation exchange, extract any new facts about specific people (contacts) being discussed.
Only extract if there are concrete, memorable facts about a named person.

User said: %s
AI responded: %s

If there are facts to extract, return JSON:
{"memories": [{"contact_name": "...", "fact": "...", "category": "personality|pattern|preference|history"}]}

If there's nothing to extract, return:
{"memories": []}`, userMessage, assistantMessage)
}

// parseExtractionResponse accepts the structured reply. An empty list is a
// valid, expected outcome, not an error.
func parseExtractionResponse(raw []byte) ([]Candidate, error) {
	var result struct {
		Memories []Candidate `json:"memories"`
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("unmarshal extraction response: %w", err)
	}
	return result.Memories, nil
}
