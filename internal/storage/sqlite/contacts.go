package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sandevgo/rizza/internal/core"
)

type ContactsRepo struct {
	db *sql.DB
}

func NewContactsRepo(db *sql.DB) *ContactsRepo {
	return &ContactsRepo{db: db}
}

func (r *ContactsRepo) CreateContact(ctx context.Context, contact core.Contact) (core.Contact, error) {
	if contact.FirstInteractionDate.IsZero() {
		contact.FirstInteractionDate = time.Now().UTC()
	}
	if contact.ResponsivenessScore == 0 {
		contact.ResponsivenessScore = 50
	}

	query := `INSERT INTO contacts
		(name, nickname, relationship_type, first_interaction_date, notes, emotional_volatility, responsiveness_score)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	res, err := r.db.ExecContext(ctx, query,
		contact.Name,
		nullable(contact.Nickname),
		nullable(contact.RelationshipType),
		contact.FirstInteractionDate,
		nullable(contact.Notes),
		contact.EmotionalVolatility,
		contact.ResponsivenessScore,
	)
	if err != nil {
		return core.Contact{}, fmt.Errorf("failed to insert contact: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return core.Contact{}, err
	}
	contact.ID = id
	return contact, nil
}

func (r *ContactsRepo) ListContacts(ctx context.Context, offset, limit int) ([]core.Contact, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `SELECT id, name, nickname, relationship_type, first_interaction_date, notes,
		emotional_volatility, responsiveness_score
		FROM contacts ORDER BY id ASC LIMIT ? OFFSET ?`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query contacts: %w", err)
	}
	defer rows.Close()

	var contacts []core.Contact
	for rows.Next() {
		c, err := scanContact(rows.Scan)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}

func (r *ContactsRepo) GetContact(ctx context.Context, id int64) (core.Contact, error) {
	query := `SELECT id, name, nickname, relationship_type, first_interaction_date, notes,
		emotional_volatility, responsiveness_score
		FROM contacts WHERE id = ?`

	c, err := scanContact(r.db.QueryRowContext(ctx, query, id).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Contact{}, core.ErrContactNotFound
	}
	if err != nil {
		return core.Contact{}, err
	}
	return c, nil
}

func scanContact(scan func(dest ...any) error) (core.Contact, error) {
	var c core.Contact
	var nickname, relType, notes sql.NullString

	err := scan(&c.ID, &c.Name, &nickname, &relType, &c.FirstInteractionDate, &notes,
		&c.EmotionalVolatility, &c.ResponsivenessScore)
	if err != nil {
		return core.Contact{}, err
	}

	c.Nickname = nickname.String
	c.RelationshipType = relType.String
	c.Notes = notes.String
	return c, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
