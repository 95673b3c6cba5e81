package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

func (s *Store) ListClients(ctx context.Context) ([]Client, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, instagram, facebook, phone, created_at
		FROM clients
		ORDER BY name COLLATE NOCASE, id
	`)
	if err != nil {
		return nil, fmt.Errorf("query clients: %w", err)
	}
	defer rows.Close()

	clients := make([]Client, 0)
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate clients: %w", err)
	}

	return clients, nil
}

func (s *Store) GetClient(ctx context.Context, id string) (Client, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, instagram, facebook, phone, created_at
		FROM clients
		WHERE id = ?
	`, id)
	c, err := scanClient(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Client{}, fmt.Errorf("client %s: %w", id, ErrNotFound)
	}
	return c, err
}

func (s *Store) CreateClient(ctx context.Context, c Client) (Client, error) {
	c.ID = s.newID()
	c.CreatedAt = parseTime(s.timestamp())
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO clients (id, name, instagram, facebook, phone, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, c.ID, c.Name, c.Instagram, c.Facebook, c.Phone, formatTime(c.CreatedAt))
	if err != nil {
		return Client{}, fmt.Errorf("insert client: %w", err)
	}
	return c, nil
}

func (s *Store) UpdateClient(ctx context.Context, c Client) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE clients
		SET name = ?, instagram = ?, facebook = ?, phone = ?
		WHERE id = ?
	`, c.Name, c.Instagram, c.Facebook, c.Phone, c.ID)
	if err != nil {
		return fmt.Errorf("update client: %w", err)
	}
	return affected(result, "update client "+c.ID)
}

// DeleteClient removes a client and unlinks its quotes. The quotes survive
// without a client.
func (s *Store) DeleteClient(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete client: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `UPDATE quotes SET client_id = NULL WHERE client_id = ?`, id); err != nil {
		return fmt.Errorf("unlink client quotes: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM clients WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	if err := affected(result, "delete client "+id); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete client: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanClient(row scanner) (Client, error) {
	var (
		c       Client
		created string
	)
	if err := row.Scan(&c.ID, &c.Name, &c.Instagram, &c.Facebook, &c.Phone, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Client{}, err
		}
		return Client{}, fmt.Errorf("scan client: %w", err)
	}
	c.CreatedAt = parseTime(created)
	return c, nil
}
