package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Simplici0/printshop/internal/models"
)

// CreatePrint stores a new print snapshot. ID and timestamps are generated
// when unset.
func (s *SQLiteStore) CreatePrint(ctx context.Context, rec *models.PrintRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now()
	}
	rec.UpdatedAt = rec.CreatedAt

	cols, err := encodeSnapshot(rec)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO prints (id, name, markup_percent, request_json, input_json, breakdown_json, pricing_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.Name, rec.MarkupPercent, cols.request, cols.input, cols.breakdown, cols.pricing,
		rec.CreatedAt.UnixMilli(), rec.UpdatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("insert print: %w", err)
	}
	return nil
}

// UpdatePrint overwrites the snapshot of an existing print. The last write wins.
func (s *SQLiteStore) UpdatePrint(ctx context.Context, rec *models.PrintRecord) error {
	rec.UpdatedAt = now()

	cols, err := encodeSnapshot(rec)
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE prints
		SET
			name = ?,
			markup_percent = ?,
			request_json = ?,
			input_json = ?,
			breakdown_json = ?,
			pricing_json = ?,
			updated_at = ?
		WHERE id = ?
	`, rec.Name, rec.MarkupPercent, cols.request, cols.input, cols.breakdown, cols.pricing,
		rec.UpdatedAt.UnixMilli(), rec.ID)
	if err != nil {
		return fmt.Errorf("update print: %w", err)
	}
	return checkAffected(result, "update print")
}

// GetPrint returns the stored snapshot of a print exactly as saved.
func (s *SQLiteStore) GetPrint(ctx context.Context, id string) (*models.PrintRecord, error) {
	rec, err := scanPrint(s.db.QueryRowContext(ctx, `SELECT `+printColumns+` FROM prints WHERE id = ?`, id))
	if err != nil {
		return nil, notFound(err, "print")
	}
	return rec, nil
}

// ListPrints returns saved prints newest first, optionally filtered by name.
func (s *SQLiteStore) ListPrints(ctx context.Context, query string) ([]*models.PrintRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+printColumns+`
		FROM prints
		WHERE (? = '' OR name LIKE ?)
		ORDER BY created_at DESC, rowid DESC
	`, query, "%"+query+"%")
	if err != nil {
		return nil, fmt.Errorf("query prints: %w", err)
	}
	defer rows.Close()

	prints := make([]*models.PrintRecord, 0)
	for rows.Next() {
		rec, err := scanPrint(rows)
		if err != nil {
			return nil, fmt.Errorf("scan print: %w", err)
		}
		prints = append(prints, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate prints: %w", err)
	}

	return prints, nil
}

// CreateProduct stores a storefront product.
func (s *SQLiteStore) CreateProduct(ctx context.Context, p *models.Product) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO products (id, print_id, name, price, currency, vat_included, cost_per_unit, total_cost, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.PrintID, p.Name, p.Price, p.Currency, p.VATIncluded, p.CostPerUnit, p.TotalCost, p.CreatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// ListProducts returns every product, newest first.
func (s *SQLiteStore) ListProducts(ctx context.Context) ([]models.Product, error) {
	return list(ctx, s.db, `
		SELECT id, print_id, name, price, currency, vat_included, cost_per_unit, total_cost, created_at
		FROM products
		ORDER BY created_at DESC, rowid DESC
	`, "products", func(row interface{ Scan(...any) error }) (models.Product, error) {
		var p models.Product
		var createdAt int64
		err := row.Scan(&p.ID, &p.PrintID, &p.Name, &p.Price, &p.Currency, &p.VATIncluded, &p.CostPerUnit, &p.TotalCost, &createdAt)
		p.CreatedAt = time.UnixMilli(createdAt).UTC()
		return p, err
	})
}

// now is truncated to the millisecond precision timestamps are stored with.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

const printColumns = `id, name, markup_percent, request_json, input_json, breakdown_json, pricing_json, created_at, updated_at`

type snapshotColumns struct {
	request   string
	input     string
	breakdown string
	pricing   string
}

func encodeSnapshot(rec *models.PrintRecord) (snapshotColumns, error) {
	var cols snapshotColumns
	for _, field := range []struct {
		dst  *string
		v    any
		name string
	}{
		{&cols.request, rec.Request, "request"},
		{&cols.input, rec.Input, "input"},
		{&cols.breakdown, rec.Breakdown, "breakdown"},
		{&cols.pricing, rec.Pricing, "pricing"},
	} {
		raw, err := json.Marshal(field.v)
		if err != nil {
			return snapshotColumns{}, fmt.Errorf("encode print %s: %w", field.name, err)
		}
		*field.dst = string(raw)
	}
	return cols, nil
}

func scanPrint(row interface{ Scan(...any) error }) (*models.PrintRecord, error) {
	rec := &models.PrintRecord{}
	var cols snapshotColumns
	var createdAt, updatedAt int64
	if err := row.Scan(&rec.ID, &rec.Name, &rec.MarkupPercent, &cols.request, &cols.input, &cols.breakdown, &cols.pricing, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(cols.request), &rec.Request); err != nil {
		return nil, fmt.Errorf("decode print request: %w", err)
	}
	if err := json.Unmarshal([]byte(cols.input), &rec.Input); err != nil {
		return nil, fmt.Errorf("decode print input: %w", err)
	}
	if err := json.Unmarshal([]byte(cols.breakdown), &rec.Breakdown); err != nil {
		return nil, fmt.Errorf("decode print breakdown: %w", err)
	}
	if err := json.Unmarshal([]byte(cols.pricing), &rec.Pricing); err != nil {
		return nil, fmt.Errorf("decode print pricing: %w", err)
	}

	rec.CreatedAt = time.UnixMilli(createdAt).UTC()
	rec.UpdatedAt = time.UnixMilli(updatedAt).UTC()
	return rec, nil
}
