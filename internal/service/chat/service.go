package chat

import (
	"context"
	"errors"
	"fmt"

	"github.com/sandevgo/rizza/internal/config"
	"github.com/sandevgo/rizza/internal/core"
	"github.com/sandevgo/rizza/internal/service/memory"
	"github.com/sandevgo/rizza/pkg/log"
)

var ErrEmptyMessage = errors.New("must provide a message or an image")

// Placeholder persisted in place of empty text when a turn carried only an
// image; the live model call gets the image itself, never this string.
const imagePlaceholder = "[Sent an image]"

type Extractor interface {
	Run(ctx context.Context, userMessage, assistantMessage string) memory.Result
}

// Service orchestrates one conversation turn end to end: session
// resolution, context assembly, the model call, transcript persistence and
// best-effort fact extraction.
type Service struct {
	cfg       *config.AppConfig
	sessions  core.SessionsRepository
	facts     core.FactsRepository
	model     core.ModelClient
	extractor Extractor

	textModel   string
	visionModel string

	// countTokens overrides the tiktoken counter; nil means cl100k_base.
	countTokens func(string) int
}

func NewService(
	cfg *config.AppConfig,
	sessions core.SessionsRepository,
	facts core.FactsRepository,
	model core.ModelClient,
	extractor Extractor,
	textModel, visionModel string,
) *Service {
	return &Service{
		cfg:         cfg,
		sessions:    sessions,
		facts:       facts,
		model:       model,
		extractor:   extractor,
		textModel:   textModel,
		visionModel: visionModel,
	}
}

type SendRequest struct {
	// SessionID pins the turn to a known session. Empty means resolve the
	// active session, creating one if the store is empty.
	SessionID string
	Text      string
	Image     []byte
	IsVoice   bool
}

type SendResult struct {
	Response  string `json:"response"`
	SessionID string `json:"session_id"`
}

func (s *Service) SendMessage(ctx context.Context, req SendRequest) (SendResult, error) {
	if req.Text == "" && len(req.Image) == 0 {
		return SendResult{}, ErrEmptyMessage
	}

	sessionID := req.SessionID
	if sessionID == "" {
		session, err := s.resolveSession(ctx)
		if err != nil {
			return SendResult{}, err
		}
		sessionID = session.ID
	}

	asm, err := s.assemble(ctx, sessionID, req.Text, req.Image)
	if err != nil {
		return SendResult{}, err
	}

	// Terminal on failure: nothing is persisted for a failed call.
	reply, err := s.model.Complete(ctx, asm.Model, asm.Messages)
	if err != nil {
		return SendResult{}, fmt.Errorf("model call failed: %w", err)
	}

	userContent := req.Text
	if userContent == "" {
		userContent = imagePlaceholder
	}

	userTurn := core.Turn{
		Role:          core.RoleUser,
		Content:       userContent,
		ImageAttached: len(req.Image) > 0,
		IsVoice:       req.IsVoice,
	}
	assistantTurn := core.Turn{
		Role:    core.RoleAssistant,
		Content: reply,
	}

	if err := s.sessions.SaveExchange(ctx, sessionID, userTurn, assistantTurn); err != nil {
		return SendResult{}, fmt.Errorf("failed to persist turn: %w", err)
	}

	// Enrichment is fully decoupled: the turn is already durable, so
	// whatever the extractor reports we still return the reply.
	res := s.extractor.Run(ctx, req.Text, reply)
	if res.Failed() {
		log.FromCtx(ctx).Warn().Err(res.Err).Msg("memory extraction failed")
	} else if len(res.Saved) > 0 {
		log.FromCtx(ctx).Info().Int("facts", len(res.Saved)).Msg("memory extraction saved facts")
	}

	return SendResult{Response: reply, SessionID: sessionID}, nil
}

// History returns the active session's transcript in ascending time order,
// or nothing when no session exists.
func (s *Service) History(ctx context.Context) ([]core.Turn, error) {
	session, err := s.sessions.ActiveSession(ctx)
	if errors.Is(err, core.ErrNoActiveSession) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s.sessions.TurnsForSession(ctx, session.ID)
}

// Clear wipes every session and turn. Contact facts survive by design.
func (s *Service) Clear(ctx context.Context) error {
	return s.sessions.ClearAll(ctx)
}

func (s *Service) resolveSession(ctx context.Context) (core.Session, error) {
	session, err := s.sessions.ActiveSession(ctx)
	if errors.Is(err, core.ErrNoActiveSession) {
		return s.sessions.CreateSession(ctx)
	}
	if err != nil {
		return core.Session{}, fmt.Errorf("failed to resolve session: %w", err)
	}
	return session, nil
}
