package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

func (s *Store) ListInvestments(ctx context.Context) ([]Investment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, amount, created_at
		FROM investments
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query investments: %w", err)
	}
	defer rows.Close()

	investments := make([]Investment, 0)
	for rows.Next() {
		var (
			i       Investment
			created string
		)
		if err := rows.Scan(&i.ID, &i.Name, &i.Amount, &created); err != nil {
			return nil, fmt.Errorf("scan investment: %w", err)
		}
		i.CreatedAt = parseTime(created)
		investments = append(investments, i)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate investments: %w", err)
	}

	return investments, nil
}

func (s *Store) CreateInvestment(ctx context.Context, i Investment) (Investment, error) {
	return s.insertInvestment(ctx, s.db, i)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) insertInvestment(ctx context.Context, db execer, i Investment) (Investment, error) {
	i.ID = s.newID()
	i.CreatedAt = parseTime(s.timestamp())
	_, err := db.ExecContext(ctx, `
		INSERT INTO investments (id, name, amount, created_at)
		VALUES (?, ?, ?, ?)
	`, i.ID, i.Name, i.Amount, formatTime(i.CreatedAt))
	if err != nil {
		return Investment{}, fmt.Errorf("insert investment: %w", err)
	}
	return i, nil
}

func (s *Store) UpdateInvestment(ctx context.Context, i Investment) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE investments SET name = ?, amount = ? WHERE id = ?
	`, i.Name, i.Amount, i.ID)
	if err != nil {
		return fmt.Errorf("update investment: %w", err)
	}
	return affected(result, "update investment "+i.ID)
}

func (s *Store) DeleteInvestment(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM investments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete investment: %w", err)
	}
	return affected(result, "delete investment "+id)
}

func (s *Store) ListPurchases(ctx context.Context) ([]FuturePurchase, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description, link, price_usd, status, created_at
		FROM future_purchases
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query purchases: %w", err)
	}
	defer rows.Close()

	purchases := make([]FuturePurchase, 0)
	for rows.Next() {
		p, err := scanPurchase(rows)
		if err != nil {
			return nil, err
		}
		purchases = append(purchases, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate purchases: %w", err)
	}

	return purchases, nil
}

func (s *Store) GetPurchase(ctx context.Context, id string) (FuturePurchase, error) {
	return s.getPurchase(ctx, s.db, id)
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Store) getPurchase(ctx context.Context, db queryRower, id string) (FuturePurchase, error) {
	row := db.QueryRowContext(ctx, `
		SELECT id, name, description, link, price_usd, status, created_at
		FROM future_purchases
		WHERE id = ?
	`, id)
	p, err := scanPurchase(row)
	if errors.Is(err, sql.ErrNoRows) {
		return FuturePurchase{}, fmt.Errorf("purchase %s: %w", id, ErrNotFound)
	}
	return p, err
}

func (s *Store) CreatePurchase(ctx context.Context, p FuturePurchase) (FuturePurchase, error) {
	if p.Status == "" {
		p.Status = PurchasePending
	}
	p.ID = s.newID()
	p.CreatedAt = parseTime(s.timestamp())
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO future_purchases (id, name, description, link, price_usd, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.Name, p.Description, p.Link, p.PriceUSD, string(p.Status), formatTime(p.CreatedAt))
	if err != nil {
		return FuturePurchase{}, fmt.Errorf("insert purchase: %w", err)
	}
	return p, nil
}

func (s *Store) UpdatePurchase(ctx context.Context, p FuturePurchase) error {
	if p.Status == "" {
		p.Status = PurchasePending
	}
	result, err := s.db.ExecContext(ctx, `
		UPDATE future_purchases
		SET name = ?, description = ?, link = ?, price_usd = ?, status = ?
		WHERE id = ?
	`, p.Name, p.Description, p.Link, p.PriceUSD, string(p.Status), p.ID)
	if err != nil {
		return fmt.Errorf("update purchase: %w", err)
	}
	return affected(result, "update purchase "+p.ID)
}

func (s *Store) DeletePurchase(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM future_purchases WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete purchase: %w", err)
	}
	return affected(result, "delete purchase "+id)
}

// ConvertPurchase records a bought item as an investment priced at its USD
// price and removes it from the wishlist.
func (s *Store) ConvertPurchase(ctx context.Context, id string) (Investment, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Investment{}, fmt.Errorf("begin convert purchase: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	p, err := s.getPurchase(ctx, tx, id)
	if err != nil {
		return Investment{}, err
	}

	inv, err := s.insertInvestment(ctx, tx, Investment{Name: p.Name, Amount: p.PriceUSD})
	if err != nil {
		return Investment{}, err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM future_purchases WHERE id = ?`, id); err != nil {
		return Investment{}, fmt.Errorf("delete converted purchase: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Investment{}, fmt.Errorf("commit convert purchase: %w", err)
	}
	return inv, nil
}

func scanPurchase(row scanner) (FuturePurchase, error) {
	var (
		p       FuturePurchase
		status  string
		created string
	)
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Link, &p.PriceUSD, &status, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return FuturePurchase{}, err
	}
	if err != nil {
		return FuturePurchase{}, fmt.Errorf("scan purchase: %w", err)
	}
	p.Status = PurchaseStatus(status)
	p.CreatedAt = parseTime(created)
	return p, nil
}

func (s *Store) ListLinks(ctx context.Context) ([]Link, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description, link, created_at
		FROM links
		ORDER BY name COLLATE NOCASE, id
	`)
	if err != nil {
		return nil, fmt.Errorf("query links: %w", err)
	}
	defer rows.Close()

	links := make([]Link, 0)
	for rows.Next() {
		var (
			l       Link
			created string
		)
		if err := rows.Scan(&l.ID, &l.Name, &l.Description, &l.URL, &created); err != nil {
			return nil, fmt.Errorf("scan link: %w", err)
		}
		l.CreatedAt = parseTime(created)
		links = append(links, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate links: %w", err)
	}

	return links, nil
}

func (s *Store) CreateLink(ctx context.Context, l Link) (Link, error) {
	l.ID = s.newID()
	l.CreatedAt = parseTime(s.timestamp())
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO links (id, name, description, link, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, l.ID, l.Name, l.Description, l.URL, formatTime(l.CreatedAt))
	if err != nil {
		return Link{}, fmt.Errorf("insert link: %w", err)
	}
	return l, nil
}

func (s *Store) UpdateLink(ctx context.Context, l Link) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE links SET name = ?, description = ?, link = ? WHERE id = ?
	`, l.Name, l.Description, l.URL, l.ID)
	if err != nil {
		return fmt.Errorf("update link: %w", err)
	}
	return affected(result, "update link "+l.ID)
}

func (s *Store) DeleteLink(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM links WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete link: %w", err)
	}
	return affected(result, "delete link "+id)
}
