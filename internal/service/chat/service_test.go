package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/sandevgo/rizza/internal/config"
	"github.com/sandevgo/rizza/internal/core"
	"github.com/sandevgo/rizza/internal/service/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSessions struct {
	sessions []core.Session
	turns    map[string][]core.Turn
	nextID   int64

	saveExchangeErr error
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{turns: make(map[string][]core.Turn)}
}

func (f *fakeSessions) ActiveSession(_ context.Context) (core.Session, error) {
	if len(f.sessions) == 0 {
		return core.Session{}, core.ErrNoActiveSession
	}
	active := f.sessions[0]
	for _, s := range f.sessions[1:] {
		if s.UpdatedAt.After(active.UpdatedAt) {
			active = s
		}
	}
	return active, nil
}

func (f *fakeSessions) CreateSession(_ context.Context) (core.Session, error) {
	now := time.Now().UTC()
	s := core.Session{ID: fmt.Sprintf("session-%d", len(f.sessions)+1), CreatedAt: now, UpdatedAt: now}
	f.sessions = append(f.sessions, s)
	return s, nil
}

func (f *fakeSessions) AppendTurn(_ context.Context, turn core.Turn) error {
	f.nextID++
	turn.ID = f.nextID
	if turn.CreatedAt.IsZero() {
		turn.CreatedAt = time.Now().UTC()
	}
	f.turns[turn.SessionID] = append(f.turns[turn.SessionID], turn)
	return nil
}

func (f *fakeSessions) SaveExchange(ctx context.Context, sessionID string, userTurn, assistantTurn core.Turn) error {
	if f.saveExchangeErr != nil {
		return f.saveExchangeErr
	}
	userTurn.SessionID = sessionID
	assistantTurn.SessionID = sessionID
	if err := f.AppendTurn(ctx, userTurn); err != nil {
		return err
	}
	if err := f.AppendTurn(ctx, assistantTurn); err != nil {
		return err
	}
	return f.TouchSession(ctx, sessionID)
}

func (f *fakeSessions) TouchSession(_ context.Context, sessionID string) error {
	for i := range f.sessions {
		if f.sessions[i].ID == sessionID {
			f.sessions[i].UpdatedAt = time.Now().UTC()
		}
	}
	return nil
}

func (f *fakeSessions) TurnsForSession(_ context.Context, sessionID string) ([]core.Turn, error) {
	return f.turns[sessionID], nil
}

func (f *fakeSessions) ClearAll(_ context.Context) error {
	f.sessions = nil
	f.turns = make(map[string][]core.Turn)
	return nil
}

type fakeFacts struct {
	facts []core.Fact
}

func (f *fakeFacts) AddFact(_ context.Context, contactName, fact, category string) (bool, error) {
	for _, existing := range f.facts {
		if existing.ContactName == contactName && existing.Fact == fact {
			return false, nil
		}
	}
	f.facts = append(f.facts, core.Fact{
		ID:          int64(len(f.facts) + 1),
		ContactName: contactName,
		Fact:        fact,
		Category:    category,
		CreatedAt:   time.Now().UTC(),
	})
	return true, nil
}

func (f *fakeFacts) AllFacts(_ context.Context) ([]core.Fact, error) {
	return f.facts, nil
}

type fakeModel struct {
	reply    string
	err      error
	gotModel string
	gotMsgs  []core.Message
	calls    int
}

func (f *fakeModel) Complete(_ context.Context, model string, msgs []core.Message) (string, error) {
	f.calls++
	f.gotModel = model
	f.gotMsgs = msgs
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeModel) CompleteJSON(_ context.Context, _ string, _ []core.Message) ([]byte, error) {
	return []byte(`{}`), nil
}

func (f *fakeModel) Transcribe(_ context.Context, _ string, _ []byte, _ string) (string, error) {
	return "", nil
}

type stubExtractor struct {
	result memory.Result
	calls  int
}

func (s *stubExtractor) Run(_ context.Context, _, _ string) memory.Result {
	s.calls++
	return s.result
}

type testEnv struct {
	svc       *Service
	sessions  *fakeSessions
	facts     *fakeFacts
	model     *fakeModel
	extractor *stubExtractor
}

func newTestEnv() *testEnv {
	env := &testEnv{
		sessions:  newFakeSessions(),
		facts:     &fakeFacts{},
		model:     &fakeModel{reply: "sounds like a plan"},
		extractor: &stubExtractor{},
	}
	cfg := &config.AppConfig{HistoryWindowSize: 20}
	env.svc = NewService(cfg, env.sessions, env.facts, env.model, env.extractor, "text-model", "vision-model")
	env.svc.countTokens = func(s string) int { return len(s) }
	return env
}

func TestSendMessage_SessionAffinity(t *testing.T) {
	t.Parallel()
	env := newTestEnv()
	ctx := context.Background()

	first, err := env.svc.SendMessage(ctx, SendRequest{Text: "hello"})
	require.NoError(t, err)
	require.Len(t, env.sessions.sessions, 1)

	second, err := env.svc.SendMessage(ctx, SendRequest{Text: "still me"})
	require.NoError(t, err)

	assert.Equal(t, first.SessionID, second.SessionID)
	assert.Len(t, env.sessions.sessions, 1)
	assert.Len(t, env.sessions.turns[first.SessionID], 4)
}

func TestSendMessage_ExplicitSessionID(t *testing.T) {
	t.Parallel()
	env := newTestEnv()
	ctx := context.Background()

	session, err := env.sessions.CreateSession(ctx)
	require.NoError(t, err)

	result, err := env.svc.SendMessage(ctx, SendRequest{SessionID: session.ID, Text: "pinned"})
	require.NoError(t, err)
	assert.Equal(t, session.ID, result.SessionID)
	assert.Len(t, env.sessions.sessions, 1)
}

func TestSendMessage_RejectsEmptyInput(t *testing.T) {
	t.Parallel()
	env := newTestEnv()

	_, err := env.svc.SendMessage(context.Background(), SendRequest{})
	assert.ErrorIs(t, err, ErrEmptyMessage)
	assert.Zero(t, env.model.calls)
}

func TestSendMessage_ModelFailureLeavesNoTurns(t *testing.T) {
	t.Parallel()
	env := newTestEnv()
	env.model.err = errors.New("upstream unavailable")

	_, err := env.svc.SendMessage(context.Background(), SendRequest{Text: "hello"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upstream unavailable")

	// A failed call must not leave a partial turn behind.
	for _, turns := range env.sessions.turns {
		assert.Empty(t, turns)
	}
	assert.Zero(t, env.extractor.calls)
}

func TestSendMessage_ExtractionFailureIsAbsorbed(t *testing.T) {
	t.Parallel()
	env := newTestEnv()
	env.extractor.result = memory.Result{Err: errors.New("extraction exploded")}

	result, err := env.svc.SendMessage(context.Background(), SendRequest{Text: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "sounds like a plan", result.Response)
	assert.NotEmpty(t, result.SessionID)
	assert.Equal(t, 1, env.extractor.calls)
}

func TestSendMessage_PersistsBothSides(t *testing.T) {
	t.Parallel()
	env := newTestEnv()

	result, err := env.svc.SendMessage(context.Background(), SendRequest{Text: "what do I say", IsVoice: true})
	require.NoError(t, err)

	turns := env.sessions.turns[result.SessionID]
	require.Len(t, turns, 2)
	assert.Equal(t, core.RoleUser, turns[0].Role)
	assert.Equal(t, "what do I say", turns[0].Content)
	assert.True(t, turns[0].IsVoice)
	assert.Equal(t, core.RoleAssistant, turns[1].Role)
	assert.Equal(t, "sounds like a plan", turns[1].Content)
}

func TestSendMessage_ImageOnlyPersistsPlaceholder(t *testing.T) {
	t.Parallel()
	env := newTestEnv()

	result, err := env.svc.SendMessage(context.Background(), SendRequest{Image: []byte{0x89, 0x50}})
	require.NoError(t, err)

	turns := env.sessions.turns[result.SessionID]
	require.Len(t, turns, 2)
	assert.Equal(t, imagePlaceholder, turns[0].Content)
	assert.True(t, turns[0].ImageAttached)

	// The live call got the image itself, not the placeholder.
	last := env.model.gotMsgs[len(env.model.gotMsgs)-1]
	require.Len(t, last.Parts, 1)
	assert.Equal(t, "image_url", last.Parts[0].Type)
}

func TestSendMessage_PersistFailureSurfaces(t *testing.T) {
	t.Parallel()
	env := newTestEnv()
	env.sessions.saveExchangeErr = errors.New("disk full")

	_, err := env.svc.SendMessage(context.Background(), SendRequest{Text: "hello"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Zero(t, env.extractor.calls)
}

func TestHistory(t *testing.T) {
	t.Parallel()
	env := newTestEnv()
	ctx := context.Background()

	// No session yet: empty history, no error.
	turns, err := env.svc.History(ctx)
	require.NoError(t, err)
	assert.Empty(t, turns)

	result, err := env.svc.SendMessage(ctx, SendRequest{Text: "hello"})
	require.NoError(t, err)

	turns, err = env.svc.History(ctx)
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, result.SessionID, turns[0].SessionID)
}

func TestClear(t *testing.T) {
	t.Parallel()
	env := newTestEnv()
	ctx := context.Background()

	_, err := env.svc.SendMessage(ctx, SendRequest{Text: "hello"})
	require.NoError(t, err)
	_, err = env.facts.AddFact(ctx, "Sarah", "Night owl", core.CategoryPattern)
	require.NoError(t, err)

	require.NoError(t, env.svc.Clear(ctx))

	turns, err := env.svc.History(ctx)
	require.NoError(t, err)
	assert.Empty(t, turns)

	// Facts survive a history reset.
	facts, err := env.facts.AllFacts(ctx)
	require.NoError(t, err)
	assert.Len(t, facts, 1)
}

func TestBuildMemoryDigest(t *testing.T) {
	t.Parallel()

	t.Run("empty", func(t *testing.T) {
		t.Parallel()
		assert.Empty(t, buildMemoryDigest(nil))
	})

	t.Run("grouped by contact", func(t *testing.T) {
		t.Parallel()
		digest := buildMemoryDigest([]core.Fact{
			{ContactName: "Sarah", Fact: "Night owl"},
			{ContactName: "Mike", Fact: "Dry sense of humor"},
			{ContactName: "Sarah", Fact: "Prefers calls"},
		})

		assert.Contains(t, digest, memoryDigestHeader)
		assert.Contains(t, digest, "Sarah:\n  - Night owl\n  - Prefers calls")
		assert.Contains(t, digest, "Mike:\n  - Dry sense of humor")
		// Contacts appear in first-appearance order.
		assert.Less(t, strings.Index(digest, "Sarah:"), strings.Index(digest, "Mike:"))
	})
}
