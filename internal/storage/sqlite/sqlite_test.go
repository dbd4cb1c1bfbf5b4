package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/sandevgo/rizza/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := NewDB(context.Background(), filepath.Join(t.TempDir(), "rizza.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return db
}

func TestFactsRepo_AddFactDedup(t *testing.T) {
	t.Parallel()
	repo := NewFactsRepo(newTestDB(t))
	ctx := context.Background()

	inserted, err := repo.AddFact(ctx, "Sarah", "Gets anxious when left on read", core.CategoryPattern)
	require.NoError(t, err)
	assert.True(t, inserted)

	// Identical pair must be silently skipped.
	inserted, err = repo.AddFact(ctx, "Sarah", "Gets anxious when left on read", core.CategoryPattern)
	require.NoError(t, err)
	assert.False(t, inserted)

	// Same fact text about a different contact is a different pair.
	inserted, err = repo.AddFact(ctx, "Mike", "Gets anxious when left on read", core.CategoryPattern)
	require.NoError(t, err)
	assert.True(t, inserted)

	facts, err := repo.AllFacts(ctx)
	require.NoError(t, err)
	assert.Len(t, facts, 2)
}

func TestFactsRepo_ContactNameIsCaseSensitive(t *testing.T) {
	t.Parallel()
	repo := NewFactsRepo(newTestDB(t))
	ctx := context.Background()

	inserted, err := repo.AddFact(ctx, "sarah", "Loves hiking", core.CategoryPreference)
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = repo.AddFact(ctx, "Sarah", "Loves hiking", core.CategoryPreference)
	require.NoError(t, err)
	assert.True(t, inserted)
}

func TestSessionsRepo_ActiveSession(t *testing.T) {
	t.Parallel()
	repo := NewSessionsRepo(newTestDB(t))
	ctx := context.Background()

	_, err := repo.ActiveSession(ctx)
	assert.ErrorIs(t, err, core.ErrNoActiveSession)

	first, err := repo.CreateSession(ctx)
	require.NoError(t, err)

	time.Sleep(2 * time.Millisecond)
	second, err := repo.CreateSession(ctx)
	require.NoError(t, err)

	active, err := repo.ActiveSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.ID, active.ID)

	// Touching the older session makes it active again.
	time.Sleep(2 * time.Millisecond)
	require.NoError(t, repo.TouchSession(ctx, first.ID))

	active, err = repo.ActiveSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.ID, active.ID)
}

func TestSessionsRepo_SaveExchange(t *testing.T) {
	t.Parallel()
	repo := NewSessionsRepo(newTestDB(t))
	ctx := context.Background()

	session, err := repo.CreateSession(ctx)
	require.NoError(t, err)

	userTurn := core.Turn{Role: core.RoleUser, Content: "hey, Sarah texted me", IsVoice: true}
	assistantTurn := core.Turn{Role: core.RoleAssistant, Content: "Tell me more."}

	time.Sleep(2 * time.Millisecond)
	require.NoError(t, repo.SaveExchange(ctx, session.ID, userTurn, assistantTurn))

	turns, err := repo.TurnsForSession(ctx, session.ID)
	require.NoError(t, err)
	require.Len(t, turns, 2)

	assert.Equal(t, core.RoleUser, turns[0].Role)
	assert.Equal(t, "hey, Sarah texted me", turns[0].Content)
	assert.True(t, turns[0].IsVoice)
	assert.Equal(t, core.RoleAssistant, turns[1].Role)
	assert.True(t, turns[1].CreatedAt.After(turns[0].CreatedAt))

	// The exchange bumps the session's updated_at.
	active, err := repo.ActiveSession(ctx)
	require.NoError(t, err)
	assert.True(t, active.UpdatedAt.After(session.UpdatedAt))
}

func TestSessionsRepo_TurnsAreOrderedAscending(t *testing.T) {
	t.Parallel()
	repo := NewSessionsRepo(newTestDB(t))
	ctx := context.Background()

	session, err := repo.CreateSession(ctx)
	require.NoError(t, err)

	base := time.Now().UTC()
	for i := 0; i < 5; i++ {
		err := repo.AppendTurn(ctx, core.Turn{
			SessionID: session.ID,
			Role:      core.RoleUser,
			Content:   string(rune('a' + i)),
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		})
		require.NoError(t, err)
	}

	turns, err := repo.TurnsForSession(ctx, session.ID)
	require.NoError(t, err)
	require.Len(t, turns, 5)
	for i := 1; i < len(turns); i++ {
		assert.True(t, turns[i].CreatedAt.After(turns[i-1].CreatedAt))
	}
}

func TestSessionsRepo_ClearAllLeavesFacts(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	sessions := NewSessionsRepo(db)
	facts := NewFactsRepo(db)
	ctx := context.Background()

	session, err := sessions.CreateSession(ctx)
	require.NoError(t, err)
	require.NoError(t, sessions.AppendTurn(ctx, core.Turn{SessionID: session.ID, Role: core.RoleUser, Content: "hi"}))

	_, err = facts.AddFact(ctx, "Sarah", "Prefers calls over texts", core.CategoryPreference)
	require.NoError(t, err)

	require.NoError(t, sessions.ClearAll(ctx))

	_, err = sessions.ActiveSession(ctx)
	assert.ErrorIs(t, err, core.ErrNoActiveSession)

	turns, err := sessions.TurnsForSession(ctx, session.ID)
	require.NoError(t, err)
	assert.Empty(t, turns)

	remaining, err := facts.AllFacts(ctx)
	require.NoError(t, err)
	assert.Len(t, remaining, 1)
}

func TestContactsRepo_CRUD(t *testing.T) {
	t.Parallel()
	repo := NewContactsRepo(newTestDB(t))
	ctx := context.Background()

	created, err := repo.CreateContact(ctx, core.Contact{
		Name:             "Sarah",
		Nickname:         "Sar",
		RelationshipType: "Dating",
		Notes:            "met at a concert",
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, 50, created.ResponsivenessScore)
	assert.False(t, created.FirstInteractionDate.IsZero())

	got, err := repo.GetContact(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Sarah", got.Name)
	assert.Equal(t, "Sar", got.Nickname)
	assert.Equal(t, "Dating", got.RelationshipType)

	_, err = repo.GetContact(ctx, created.ID+100)
	assert.ErrorIs(t, err, core.ErrContactNotFound)

	list, err := repo.ListContacts(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)

	list, err = repo.ListContacts(ctx, 1, 10)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestNewDB_MigratesIdempotently(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "rizza.db")
	ctx := context.Background()

	db, err := NewDB(ctx, path)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	// Opening again must not re-run applied migrations.
	db, err = NewDB(ctx, path)
	require.NoError(t, err)
	require.NoError(t, db.Close())
}

func TestGetContactUnknownError(t *testing.T) {
	t.Parallel()
	repo := NewContactsRepo(newTestDB(t))

	_, err := repo.GetContact(context.Background(), 1)
	assert.True(t, errors.Is(err, core.ErrContactNotFound))
}
