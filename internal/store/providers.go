package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Provider is a bookable medical professional. Rows are seeded at
// administration time and never written by the booking flow.
type Provider struct {
	ID               uuid.UUID
	Name             string
	Specialty        string
	Facility         string
	City             string
	Zipcode          string
	Languages        []string
	Insurance        []string
	Availability     map[string]string // weekday name -> "HH:MM-HH:MM"
	ConsultationType string
	CreatedAt        time.Time
}

const providerColumns = `id, name, COALESCE(specialty, ''), COALESCE(facility, ''),
	COALESCE(city, ''), COALESCE(zipcode, ''),
	COALESCE(languages, '{}'), COALESCE(insurance, '{}'),
	COALESCE(availability, '{}'::jsonb), COALESCE(consultation_type, ''), created_at`

// SearchProvidersByName returns providers whose display name contains the
// fragment, case-insensitively, in stable name order.
func (s *Store) SearchProvidersByName(ctx context.Context, q Querier, fragment string, limit int) ([]Provider, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM providers
		WHERE name ILIKE '%%' || $1 || '%%'
		ORDER BY name
		LIMIT $2
	`, providerColumns)
	rows, err := s.querier(q).Query(ctx, query, fragment, limit)
	if err != nil {
		return nil, fmt.Errorf("store: search providers by name: %w", err)
	}
	defer rows.Close()
	return scanProviders(rows)
}

// ProviderFilter narrows a provider discovery scan. Zero-value fields are
// skipped. Zipcode filters by exact equality; Location is matched as a
// substring of either city or facility.
type ProviderFilter struct {
	Specialty string
	Zipcode   string
	Location  string
	Limit     int
}

// SearchProviders returns providers matching every supplied discriminator.
// An empty result set is a normal outcome, not an error.
func (s *Store) SearchProviders(ctx context.Context, q Querier, filter ProviderFilter) ([]Provider, error) {
	clauses := make([]string, 0, 3)
	args := make([]any, 0, 4)

	if filter.Specialty != "" {
		args = append(args, filter.Specialty)
		clauses = append(clauses, fmt.Sprintf("specialty ILIKE '%%' || $%d || '%%'", len(args)))
	}
	if filter.Zipcode != "" {
		args = append(args, filter.Zipcode)
		clauses = append(clauses, fmt.Sprintf("zipcode = $%d", len(args)))
	}
	if filter.Location != "" {
		args = append(args, filter.Location)
		clauses = append(clauses, fmt.Sprintf(
			"(city ILIKE '%%' || $%d || '%%' OR facility ILIKE '%%' || $%d || '%%')", len(args), len(args)))
	}

	query := fmt.Sprintf("SELECT %s FROM providers", providerColumns)
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 3
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY name LIMIT $%d", len(args))

	rows, err := s.querier(q).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: search providers: %w", err)
	}
	defer rows.Close()
	return scanProviders(rows)
}

// InsertProvider seeds one provider row. Used by the seed command only.
func (s *Store) InsertProvider(ctx context.Context, q Querier, p *Provider) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	query := `
		INSERT INTO providers (id, name, specialty, facility, city, zipcode,
			languages, insurance, availability, consultation_type)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (name) DO NOTHING
	`
	_, err := s.querier(q).Exec(ctx, query,
		p.ID, p.Name, p.Specialty, p.Facility, p.City, p.Zipcode,
		p.Languages, p.Insurance, p.Availability, p.ConsultationType,
	)
	if err != nil {
		return fmt.Errorf("store: insert provider: %w", err)
	}
	return nil
}

func scanProviders(rows pgx.Rows) ([]Provider, error) {
	var out []Provider
	for rows.Next() {
		var p Provider
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Specialty, &p.Facility,
			&p.City, &p.Zipcode,
			&p.Languages, &p.Insurance,
			&p.Availability, &p.ConsultationType, &p.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("store: scan provider: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate providers: %w", err)
	}
	return out, nil
}
