// Package store persists the shop's entities in SQLite and hands the
// pricing engine read-only snapshots of them.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Simplici0/cotiza3d/internal/pricing"
)

// ErrNotFound is returned when a keyed entity does not exist.
var ErrNotFound = errors.New("not found")

const timeLayout = "2006-01-02T15:04:05.000000Z"

// Store is the keyed entity store.
type Store struct {
	db    *sql.DB
	now   func() time.Time
	newID func() string
}

func New(db *sql.DB) *Store {
	return &Store{db: db, now: time.Now, newID: uuid.NewString}
}

// Catalog loads the materials, machines and settings a calculation needs.
func (s *Store) Catalog(ctx context.Context) (Catalog, error) {
	materials, err := s.ListMaterials(ctx)
	if err != nil {
		return Catalog{}, err
	}
	machines, err := s.ListMachines(ctx)
	if err != nil {
		return Catalog{}, err
	}
	settings, err := s.Settings(ctx)
	if err != nil {
		return Catalog{}, err
	}
	return Catalog{Materials: materials, Machines: machines, Settings: settings}, nil
}

func (s *Store) timestamp() string {
	return s.now().UTC().Format(timeLayout)
}

func parseTime(raw string) time.Time {
	t, err := time.Parse(timeLayout, raw)
	if err != nil {
		t, _ = time.Parse(time.RFC3339Nano, raw)
	}
	return t
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func encodeJob(job pricing.JobSpec) (string, error) {
	raw, err := json.Marshal(job)
	if err != nil {
		return "", fmt.Errorf("encode job spec: %w", err)
	}
	return string(raw), nil
}

func decodeJob(raw string) (pricing.JobSpec, error) {
	var job pricing.JobSpec
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		return pricing.JobSpec{}, fmt.Errorf("decode job spec: %w", err)
	}
	return job, nil
}

// affected maps an UPDATE/DELETE that touched no rows to ErrNotFound.
func affected(result sql.Result, what string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", what, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func floatPtr(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}
