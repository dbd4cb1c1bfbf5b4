package core

import (
	"context"
	"errors"
)

var (
	ErrNoActiveSession = errors.New("no active session")
	ErrContactNotFound = errors.New("contact not found")
)

type SessionsRepository interface {
	// ActiveSession returns the most recently updated session or
	// ErrNoActiveSession when the store is empty.
	ActiveSession(ctx context.Context) (Session, error)
	CreateSession(ctx context.Context) (Session, error)
	// AppendTurn inserts an immutable turn row. It does not touch the
	// session's updated_at; the orchestrator owns that.
	AppendTurn(ctx context.Context, turn Turn) error
	// SaveExchange persists both sides of a completed turn and bumps the
	// session's updated_at in a single transaction.
	SaveExchange(ctx context.Context, sessionID string, userTurn, assistantTurn Turn) error
	TouchSession(ctx context.Context, sessionID string) error
	TurnsForSession(ctx context.Context, sessionID string) ([]Turn, error)
	// ClearAll deletes every turn and every session. Facts are untouched.
	ClearAll(ctx context.Context) error
}

type FactsRepository interface {
	// AddFact inserts only if no row matches (contactName, fact) exactly
	// and reports whether an insert happened. Duplicates are not an error.
	AddFact(ctx context.Context, contactName, fact, category string) (bool, error)
	AllFacts(ctx context.Context) ([]Fact, error)
}

type ContactsRepository interface {
	CreateContact(ctx context.Context, contact Contact) (Contact, error)
	ListContacts(ctx context.Context, offset, limit int) ([]Contact, error)
	GetContact(ctx context.Context, id int64) (Contact, error)
}
