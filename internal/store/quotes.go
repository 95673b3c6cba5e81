package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// QuoteFilter narrows ListQuotes. Zero values match everything.
type QuoteFilter struct {
	Query    string
	ClientID string
	Status   QuoteStatus
}

const quoteColumns = `
	id,
	name,
	COALESCE(client_id, ''),
	COALESCE(design_id, ''),
	status,
	quantity,
	job_json,
	width,
	height,
	depth,
	notes,
	delivery_date,
	final_price_override_local,
	created_at
`

// ListQuotes returns quotes newest first. Query matches name or notes.
func (s *Store) ListQuotes(ctx context.Context, f QuoteFilter) ([]Quote, error) {
	query := strings.TrimSpace(f.Query)
	search := "%" + query + "%"
	rows, err := s.db.QueryContext(ctx, `
		SELECT`+quoteColumns+`
		FROM quotes
		WHERE (? = '' OR name LIKE ? OR notes LIKE ?)
			AND (? = '' OR client_id = ?)
			AND (? = '' OR status = ?)
		ORDER BY created_at DESC, id DESC
	`, query, search, search, f.ClientID, f.ClientID, string(f.Status), string(f.Status))
	if err != nil {
		return nil, fmt.Errorf("query quotes: %w", err)
	}
	defer rows.Close()

	quotes := make([]Quote, 0)
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, err
		}
		quotes = append(quotes, q)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate quotes: %w", err)
	}

	return quotes, nil
}

func (s *Store) GetQuote(ctx context.Context, id string) (Quote, error) {
	row := s.db.QueryRowContext(ctx, `SELECT`+quoteColumns+`FROM quotes WHERE id = ?`, id)
	q, err := scanQuote(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Quote{}, fmt.Errorf("quote %s: %w", id, ErrNotFound)
	}
	return q, err
}

func (s *Store) CreateQuote(ctx context.Context, q Quote) (Quote, error) {
	job, err := encodeJob(q.Job)
	if err != nil {
		return Quote{}, err
	}
	if q.Status == "" {
		q.Status = StatusDraft
	}
	if q.Quantity < 1 {
		q.Quantity = 1
	}
	q.ID = s.newID()
	q.CreatedAt = parseTime(s.timestamp())

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO quotes (
			id, name, client_id, design_id, status, quantity, job_json,
			width, height, depth, notes, delivery_date, final_price_override_local, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		q.ID, q.Name, nullString(q.ClientID), nullString(q.DesignID), string(q.Status), q.Quantity, job,
		q.Width, q.Height, q.Depth, q.Notes, q.DeliveryDate, nullFloat(q.FinalPriceOverrideLocal),
		formatTime(q.CreatedAt),
	)
	if err != nil {
		return Quote{}, fmt.Errorf("insert quote: %w", err)
	}
	return q, nil
}

func (s *Store) UpdateQuote(ctx context.Context, q Quote) error {
	job, err := encodeJob(q.Job)
	if err != nil {
		return err
	}
	if q.Quantity < 1 {
		q.Quantity = 1
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE quotes
		SET
			name = ?,
			client_id = ?,
			design_id = ?,
			status = ?,
			quantity = ?,
			job_json = ?,
			width = ?,
			height = ?,
			depth = ?,
			notes = ?,
			delivery_date = ?,
			final_price_override_local = ?
		WHERE id = ?
	`,
		q.Name, nullString(q.ClientID), nullString(q.DesignID), string(q.Status), q.Quantity, job,
		q.Width, q.Height, q.Depth, q.Notes, q.DeliveryDate, nullFloat(q.FinalPriceOverrideLocal),
		q.ID,
	)
	if err != nil {
		return fmt.Errorf("update quote: %w", err)
	}
	return affected(result, "update quote "+q.ID)
}

func (s *Store) UpdateQuoteStatus(ctx context.Context, id string, status QuoteStatus) error {
	result, err := s.db.ExecContext(ctx, `UPDATE quotes SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return fmt.Errorf("update quote status: %w", err)
	}
	return affected(result, "update quote status "+id)
}

func (s *Store) DeleteQuote(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM quotes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete quote: %w", err)
	}
	return affected(result, "delete quote "+id)
}

func scanQuote(row scanner) (Quote, error) {
	var (
		q        Quote
		status   string
		job      string
		override sql.NullFloat64
		created  string
	)
	err := row.Scan(
		&q.ID, &q.Name, &q.ClientID, &q.DesignID, &status, &q.Quantity, &job,
		&q.Width, &q.Height, &q.Depth, &q.Notes, &q.DeliveryDate, &override, &created,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Quote{}, err
	}
	if err != nil {
		return Quote{}, fmt.Errorf("scan quote: %w", err)
	}

	q.Job, err = decodeJob(job)
	if err != nil {
		return Quote{}, fmt.Errorf("quote %s: %w", q.ID, err)
	}
	q.Status = QuoteStatus(status)
	q.FinalPriceOverrideLocal = floatPtr(override)
	q.CreatedAt = parseTime(created)
	return q, nil
}

const designColumns = `
	id,
	name,
	job_json,
	width,
	height,
	depth,
	notes,
	mercado_libre_link,
	instagram_link,
	link,
	created_at
`

func (s *Store) ListDesigns(ctx context.Context) ([]Design, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT`+designColumns+`
		FROM designs
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query designs: %w", err)
	}
	defer rows.Close()

	designs := make([]Design, 0)
	for rows.Next() {
		d, err := scanDesign(rows)
		if err != nil {
			return nil, err
		}
		designs = append(designs, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate designs: %w", err)
	}

	return designs, nil
}

func (s *Store) GetDesign(ctx context.Context, id string) (Design, error) {
	row := s.db.QueryRowContext(ctx, `SELECT`+designColumns+`FROM designs WHERE id = ?`, id)
	d, err := scanDesign(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Design{}, fmt.Errorf("design %s: %w", id, ErrNotFound)
	}
	return d, err
}

func (s *Store) CreateDesign(ctx context.Context, d Design) (Design, error) {
	job, err := encodeJob(d.Job)
	if err != nil {
		return Design{}, err
	}
	d.ID = s.newID()
	d.CreatedAt = parseTime(s.timestamp())

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO designs (
			id, name, job_json, width, height, depth, notes,
			mercado_libre_link, instagram_link, link, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		d.ID, d.Name, job, d.Width, d.Height, d.Depth, d.Notes,
		d.MercadoLibreLink, d.InstagramLink, d.Link, formatTime(d.CreatedAt),
	)
	if err != nil {
		return Design{}, fmt.Errorf("insert design: %w", err)
	}
	return d, nil
}

func (s *Store) UpdateDesign(ctx context.Context, d Design) error {
	job, err := encodeJob(d.Job)
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE designs
		SET
			name = ?,
			job_json = ?,
			width = ?,
			height = ?,
			depth = ?,
			notes = ?,
			mercado_libre_link = ?,
			instagram_link = ?,
			link = ?
		WHERE id = ?
	`,
		d.Name, job, d.Width, d.Height, d.Depth, d.Notes,
		d.MercadoLibreLink, d.InstagramLink, d.Link, d.ID,
	)
	if err != nil {
		return fmt.Errorf("update design: %w", err)
	}
	return affected(result, "update design "+d.ID)
}

// DeleteDesign removes a design; quotes created from it keep their own job.
func (s *Store) DeleteDesign(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM designs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete design: %w", err)
	}
	return affected(result, "delete design "+id)
}

func scanDesign(row scanner) (Design, error) {
	var (
		d       Design
		job     string
		created string
	)
	err := row.Scan(
		&d.ID, &d.Name, &job, &d.Width, &d.Height, &d.Depth, &d.Notes,
		&d.MercadoLibreLink, &d.InstagramLink, &d.Link, &created,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Design{}, err
	}
	if err != nil {
		return Design{}, fmt.Errorf("scan design: %w", err)
	}

	d.Job, err = decodeJob(job)
	if err != nil {
		return Design{}, fmt.Errorf("design %s: %w", d.ID, err)
	}
	d.CreatedAt = parseTime(created)
	return d, nil
}
