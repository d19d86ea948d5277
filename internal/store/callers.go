package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// UnknownCallerName is the sentinel stored when a caller is created before
// they have given a usable name. The name-merge rules treat it the same as
// an empty name: it never survives once a real name arrives, and it never
// overwrites one.
const UnknownCallerName = "Unknown"

// Caller is the person on the line, identified by phone number.
type Caller struct {
	ID        uuid.UUID
	Name      string
	Phone     string
	Email     string
	Zipcode   string
	CreatedAt time.Time
}

// UpsertCallerByPhone finds or creates the caller for the given phone
// number in one statement. The unique key on phone makes the operation
// idempotent under concurrent requests: the loser of a racing insert lands
// on the DO UPDATE arm instead of creating a second row. A supplied name
// only replaces an empty or sentinel name, never a real one.
func (s *Store) UpsertCallerByPhone(ctx context.Context, q Querier, phone, name string) (*Caller, error) {
	query := `
		INSERT INTO callers (id, phone, name)
		VALUES ($1, $2, COALESCE(NULLIF($3, ''), 'Unknown'))
		ON CONFLICT (phone) DO UPDATE
		SET name = CASE
			WHEN callers.name IS NULL OR callers.name = '' OR callers.name = 'Unknown'
				THEN EXCLUDED.name
			ELSE callers.name
		END
		RETURNING id, name, phone, COALESCE(email, ''), COALESCE(zipcode, ''), created_at
	`
	var c Caller
	err := s.querier(q).QueryRow(ctx, query, uuid.New(), phone, name).Scan(
		&c.ID, &c.Name, &c.Phone, &c.Email, &c.Zipcode, &c.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("store: upsert caller: %w", err)
	}
	return &c, nil
}

// RefineCallerZipcode fills in the caller's postal code if it is not
// already known. A known value is never overwritten or unset.
func (s *Store) RefineCallerZipcode(ctx context.Context, q Querier, id uuid.UUID, zipcode string) error {
	query := `
		UPDATE callers
		SET zipcode = COALESCE(NULLIF(zipcode, ''), NULLIF($2, ''))
		WHERE id = $1
	`
	if _, err := s.querier(q).Exec(ctx, query, id, zipcode); err != nil {
		return fmt.Errorf("store: refine caller zipcode: %w", err)
	}
	return nil
}

// GetCallerByPhone performs an exact-match lookup by phone number.
func (s *Store) GetCallerByPhone(ctx context.Context, q Querier, phone string) (*Caller, error) {
	query := `
		SELECT id, COALESCE(name, ''), phone, COALESCE(email, ''), COALESCE(zipcode, ''), created_at
		FROM callers
		WHERE phone = $1
	`
	var c Caller
	err := s.querier(q).QueryRow(ctx, query, phone).Scan(
		&c.ID, &c.Name, &c.Phone, &c.Email, &c.Zipcode, &c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("store: get caller by phone: %w", err)
	}
	return &c, nil
}
