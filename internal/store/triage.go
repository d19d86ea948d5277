package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Triage review statuses. NEW is assigned on ingestion; REVIEWED is the
// only mutation after creation, made by staff through the dashboard.
const (
	TriageStatusNew      = "NEW"
	TriageStatusReviewed = "REVIEWED"
)

// TriageRecord is the structured summary of one intake call.
type TriageRecord struct {
	ID           uuid.UUID
	CallerID     uuid.UUID // Nil after a caller deletion cascades to null
	CallID       string    // external call identifier, unique when present
	Specialty    string
	Summary      string
	Symptoms     string
	Quotes       []string // verbatim patient quotes, order preserved
	Keywords     []string
	Transcript   string
	UrgencyScore int // 1..10, default 5
	Status       string
	CreatedAt    time.Time
}

// TriageExistsByCallID reports whether a record already carries the given
// external call id.
func (s *Store) TriageExistsByCallID(ctx context.Context, q Querier, callID string) (bool, error) {
	var one int
	err := s.querier(q).QueryRow(ctx,
		`SELECT 1 FROM triage_records WHERE call_id = $1`, callID).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("store: triage exists by call id: %w", err)
	}
	return true, nil
}

// InsertTriageRecord files a new triage record. Quote and keyword lists
// are stored as JSON arrays, never null; an empty call id is stored as
// NULL so the unique constraint only binds when an id is present. A
// racing duplicate call id surfaces as ErrDuplicateCallID.
func (s *Store) InsertTriageRecord(ctx context.Context, q Querier, rec *TriageRecord) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.Status == "" {
		rec.Status = TriageStatusNew
	}
	quotes, err := jsonList(rec.Quotes)
	if err != nil {
		return fmt.Errorf("store: encode quotes: %w", err)
	}
	keywords, err := jsonList(rec.Keywords)
	if err != nil {
		return fmt.Errorf("store: encode keywords: %w", err)
	}

	query := `
		INSERT INTO triage_records (id, caller_id, call_id, specialty, summary, symptoms,
			quotes, keywords, transcript, urgency_score, status)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7::jsonb, $8::jsonb, $9, $10, $11)
		RETURNING created_at
	`
	err = s.querier(q).QueryRow(ctx, query,
		rec.ID, rec.CallerID, rec.CallID, rec.Specialty, rec.Summary, rec.Symptoms,
		quotes, keywords, rec.Transcript, rec.UrgencyScore, rec.Status,
	).Scan(&rec.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateCallID
		}
		return fmt.Errorf("store: insert triage record: %w", err)
	}
	return nil
}

// TriageWithCaller joins a triage record with its caller for the staff
// dashboard. Caller fields fall back to defaults when the caller row was
// deleted (the record itself is kept for audit history).
type TriageWithCaller struct {
	TriageRecord
	CallerName    string
	CallerPhone   string
	CallerZipcode string
}

// ListTriageWithCallers returns all triage records joined with their
// callers, newest first.
func (s *Store) ListTriageWithCallers(ctx context.Context, q Querier) ([]TriageWithCaller, error) {
	query := `
		SELECT t.id, COALESCE(t.caller_id, '00000000-0000-0000-0000-000000000000'),
			COALESCE(t.call_id, ''), COALESCE(t.specialty, ''), COALESCE(t.summary, ''),
			COALESCE(t.symptoms, ''), t.quotes, t.keywords, COALESCE(t.transcript, ''),
			t.urgency_score, t.status, t.created_at,
			COALESCE(c.name, 'Unknown'), COALESCE(c.phone, ''), COALESCE(c.zipcode, '')
		FROM triage_records t
		LEFT JOIN callers c ON c.id = t.caller_id
		ORDER BY t.created_at DESC
	`
	rows, err := s.querier(q).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("store: list triage with callers: %w", err)
	}
	defer rows.Close()

	var out []TriageWithCaller
	for rows.Next() {
		var t TriageWithCaller
		if err := rows.Scan(
			&t.ID, &t.CallerID, &t.CallID, &t.Specialty, &t.Summary,
			&t.Symptoms, &t.Quotes, &t.Keywords, &t.Transcript,
			&t.UrgencyScore, &t.Status, &t.CreatedAt,
			&t.CallerName, &t.CallerPhone, &t.CallerZipcode,
		); err != nil {
			return nil, fmt.Errorf("store: scan triage row: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate triage rows: %w", err)
	}
	return out, nil
}

// MarkTriageReviewed transitions a record from NEW to REVIEWED.
func (s *Store) MarkTriageReviewed(ctx context.Context, q Querier, id uuid.UUID) error {
	tag, err := s.querier(q).Exec(ctx,
		`UPDATE triage_records SET status = $2 WHERE id = $1`, id, TriageStatusReviewed)
	if err != nil {
		return fmt.Errorf("store: mark triage reviewed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// jsonList marshals a string list, mapping nil to the empty JSON array so
// stored lists are never null.
func jsonList(items []string) (string, error) {
	if items == nil {
		items = []string{}
	}
	buf, err := json.Marshal(items)
	if err != nil {
		return "", err
	}
	return string(buf), nil
}
