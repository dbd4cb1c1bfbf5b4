package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sandevgo/rizza/internal/core"
)

type FactsRepo struct {
	db *sql.DB
}

func NewFactsRepo(db *sql.DB) *FactsRepo {
	return &FactsRepo{db: db}
}

// AddFact relies on the unique (contact_name, fact) index: a duplicate is
// silently ignored and reported through the bool, never as an error.
func (r *FactsRepo) AddFact(ctx context.Context, contactName, fact, category string) (bool, error) {
	query := `INSERT OR IGNORE INTO facts (contact_name, fact, category, created_at) VALUES (?, ?, ?, ?)`

	res, err := r.db.ExecContext(ctx, query, contactName, fact, category, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("failed to insert fact: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *FactsRepo) AllFacts(ctx context.Context) ([]core.Fact, error) {
	query := `SELECT id, contact_name, fact, category, created_at FROM facts ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query facts: %w", err)
	}
	defer rows.Close()

	var facts []core.Fact
	for rows.Next() {
		var f core.Fact
		if err := rows.Scan(&f.ID, &f.ContactName, &f.Fact, &f.Category, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan fact: %w", err)
		}
		facts = append(facts, f)
	}
	return facts, rows.Err()
}
