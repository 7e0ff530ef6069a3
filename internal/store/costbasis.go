package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Simplici0/printshop/internal/costbasis"
)

// Settings returns the settings singleton.
func (s *SQLiteStore) Settings(ctx context.Context) (costbasis.Settings, error) {
	var st costbasis.Settings
	err := s.db.QueryRowContext(ctx, `
		SELECT hourly_labor_rate, default_markup_percent, vat_enabled, vat_percent, currency, prints_per_month, printing_hours_per_year
		FROM settings
		WHERE id = 1
	`).Scan(
		&st.HourlyLaborRate,
		&st.DefaultMarkupPercent,
		&st.VATEnabled,
		&st.VATPercent,
		&st.Currency,
		&st.PrintsPerMonth,
		&st.PrintingHoursPerYear,
	)
	if err != nil {
		return costbasis.Settings{}, notFound(err, "settings")
	}
	return st, nil
}

// UpdateSettings creates or replaces the settings singleton.
func (s *SQLiteStore) UpdateSettings(ctx context.Context, st costbasis.Settings) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (
			id,
			hourly_labor_rate,
			default_markup_percent,
			vat_enabled,
			vat_percent,
			currency,
			prints_per_month,
			printing_hours_per_year
		) VALUES (1, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			hourly_labor_rate = excluded.hourly_labor_rate,
			default_markup_percent = excluded.default_markup_percent,
			vat_enabled = excluded.vat_enabled,
			vat_percent = excluded.vat_percent,
			currency = excluded.currency,
			prints_per_month = excluded.prints_per_month,
			printing_hours_per_year = excluded.printing_hours_per_year,
			updated_at = CURRENT_TIMESTAMP
	`,
		st.HourlyLaborRate,
		st.DefaultMarkupPercent,
		st.VATEnabled,
		st.VATPercent,
		st.Currency,
		st.PrintsPerMonth,
		st.PrintingHoursPerYear,
	)
	if err != nil {
		return fmt.Errorf("upsert settings: %w", err)
	}
	return nil
}

const printerColumns = `id, name, power_watts, purchase_cost, depreciation_hours, maintenance_cost_per_year, printing_hours_per_year, active`

func scanPrinter(row interface{ Scan(...any) error }) (costbasis.Printer, error) {
	var p costbasis.Printer
	err := row.Scan(&p.ID, &p.Name, &p.PowerWatts, &p.PurchaseCost, &p.DepreciationHours, &p.MaintenanceCostPerYear, &p.PrintingHoursPerYear, &p.Active)
	return p, err
}

// Printer returns the printer with the given id.
func (s *SQLiteStore) Printer(ctx context.Context, id int64) (costbasis.Printer, error) {
	p, err := scanPrinter(s.db.QueryRowContext(ctx, `SELECT `+printerColumns+` FROM printers WHERE id = ?`, id))
	if err != nil {
		return costbasis.Printer{}, notFound(err, "printer")
	}
	return p, nil
}

// ListPrinters returns every printer, newest first.
func (s *SQLiteStore) ListPrinters(ctx context.Context) ([]costbasis.Printer, error) {
	return list(ctx, s.db, `SELECT `+printerColumns+` FROM printers ORDER BY id DESC`, "printers", scanPrinter)
}

// CreatePrinter inserts p and sets its ID.
func (s *SQLiteStore) CreatePrinter(ctx context.Context, p *costbasis.Printer) error {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO printers (name, power_watts, purchase_cost, depreciation_hours, maintenance_cost_per_year, printing_hours_per_year, active)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, p.Name, p.PowerWatts, p.PurchaseCost, p.DepreciationHours, p.MaintenanceCostPerYear, p.PrintingHoursPerYear, p.Active)
	if err != nil {
		return fmt.Errorf("insert printer: %w", err)
	}
	p.ID, err = result.LastInsertId()
	return err
}

// UpdatePrinter replaces the stored printer with the same ID.
func (s *SQLiteStore) UpdatePrinter(ctx context.Context, p costbasis.Printer) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE printers
		SET
			name = ?,
			power_watts = ?,
			purchase_cost = ?,
			depreciation_hours = ?,
			maintenance_cost_per_year = ?,
			printing_hours_per_year = ?,
			active = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, p.Name, p.PowerWatts, p.PurchaseCost, p.DepreciationHours, p.MaintenanceCostPerYear, p.PrintingHoursPerYear, p.Active, p.ID)
	if err != nil {
		return fmt.Errorf("update printer: %w", err)
	}
	return checkAffected(result, "update printer")
}

const filamentColumns = `id, name, material, color, spool_cost, spool_weight_grams, active`

func scanFilament(row interface{ Scan(...any) error }) (costbasis.Filament, error) {
	var f costbasis.Filament
	err := row.Scan(&f.ID, &f.Name, &f.Material, &f.Color, &f.SpoolCost, &f.SpoolWeightGrams, &f.Active)
	return f, err
}

// Filament returns the filament with the given id.
func (s *SQLiteStore) Filament(ctx context.Context, id int64) (costbasis.Filament, error) {
	f, err := scanFilament(s.db.QueryRowContext(ctx, `SELECT `+filamentColumns+` FROM filaments WHERE id = ?`, id))
	if err != nil {
		return costbasis.Filament{}, notFound(err, "filament")
	}
	return f, nil
}

// ListFilaments returns every filament, newest first.
func (s *SQLiteStore) ListFilaments(ctx context.Context) ([]costbasis.Filament, error) {
	return list(ctx, s.db, `SELECT `+filamentColumns+` FROM filaments ORDER BY id DESC`, "filaments", scanFilament)
}

// CreateFilament inserts f and sets its ID.
func (s *SQLiteStore) CreateFilament(ctx context.Context, f *costbasis.Filament) error {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO filaments (name, material, color, spool_cost, spool_weight_grams, active)
		VALUES (?, ?, ?, ?, ?, ?)
	`, f.Name, f.Material, f.Color, f.SpoolCost, f.SpoolWeightGrams, f.Active)
	if err != nil {
		return fmt.Errorf("insert filament: %w", err)
	}
	f.ID, err = result.LastInsertId()
	return err
}

// UpdateFilament replaces the stored filament with the same ID.
func (s *SQLiteStore) UpdateFilament(ctx context.Context, f costbasis.Filament) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE filaments
		SET
			name = ?,
			material = ?,
			color = ?,
			spool_cost = ?,
			spool_weight_grams = ?,
			active = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, f.Name, f.Material, f.Color, f.SpoolCost, f.SpoolWeightGrams, f.Active, f.ID)
	if err != nil {
		return fmt.Errorf("update filament: %w", err)
	}
	return checkAffected(result, "update filament")
}

const tariffColumns = `id, name, price_per_kwh, active`

func scanTariff(row interface{ Scan(...any) error }) (costbasis.ElectricityTariff, error) {
	var t costbasis.ElectricityTariff
	err := row.Scan(&t.ID, &t.Name, &t.PricePerKwh, &t.Active)
	return t, err
}

// ElectricityTariff returns the tariff with the given id.
func (s *SQLiteStore) ElectricityTariff(ctx context.Context, id int64) (costbasis.ElectricityTariff, error) {
	t, err := scanTariff(s.db.QueryRowContext(ctx, `SELECT `+tariffColumns+` FROM electricity_tariffs WHERE id = ?`, id))
	if err != nil {
		return costbasis.ElectricityTariff{}, notFound(err, "electricity tariff")
	}
	return t, nil
}

// ListElectricityTariffs returns every tariff, newest first.
func (s *SQLiteStore) ListElectricityTariffs(ctx context.Context) ([]costbasis.ElectricityTariff, error) {
	return list(ctx, s.db, `SELECT `+tariffColumns+` FROM electricity_tariffs ORDER BY id DESC`, "electricity tariffs", scanTariff)
}

// CreateElectricityTariff inserts t and sets its ID.
func (s *SQLiteStore) CreateElectricityTariff(ctx context.Context, t *costbasis.ElectricityTariff) error {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO electricity_tariffs (name, price_per_kwh, active)
		VALUES (?, ?, ?)
	`, t.Name, t.PricePerKwh, t.Active)
	if err != nil {
		return fmt.Errorf("insert electricity tariff: %w", err)
	}
	t.ID, err = result.LastInsertId()
	return err
}

// UpdateElectricityTariff replaces the stored tariff with the same ID.
func (s *SQLiteStore) UpdateElectricityTariff(ctx context.Context, t costbasis.ElectricityTariff) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE electricity_tariffs
		SET name = ?, price_per_kwh = ?, active = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, t.Name, t.PricePerKwh, t.Active, t.ID)
	if err != nil {
		return fmt.Errorf("update electricity tariff: %w", err)
	}
	return checkAffected(result, "update electricity tariff")
}

const shippingColumns = `id, name, cost, active`

func scanShipping(row interface{ Scan(...any) error }) (costbasis.ShippingOption, error) {
	var o costbasis.ShippingOption
	err := row.Scan(&o.ID, &o.Name, &o.Cost, &o.Active)
	return o, err
}

// ShippingOption returns the shipping option with the given id.
func (s *SQLiteStore) ShippingOption(ctx context.Context, id int64) (costbasis.ShippingOption, error) {
	o, err := scanShipping(s.db.QueryRowContext(ctx, `SELECT `+shippingColumns+` FROM shipping_options WHERE id = ?`, id))
	if err != nil {
		return costbasis.ShippingOption{}, notFound(err, "shipping option")
	}
	return o, nil
}

// ListShippingOptions returns every shipping option, newest first.
func (s *SQLiteStore) ListShippingOptions(ctx context.Context) ([]costbasis.ShippingOption, error) {
	return list(ctx, s.db, `SELECT `+shippingColumns+` FROM shipping_options ORDER BY id DESC`, "shipping options", scanShipping)
}

// CreateShippingOption inserts o and sets its ID.
func (s *SQLiteStore) CreateShippingOption(ctx context.Context, o *costbasis.ShippingOption) error {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO shipping_options (name, cost, active)
		VALUES (?, ?, ?)
	`, o.Name, o.Cost, o.Active)
	if err != nil {
		return fmt.Errorf("insert shipping option: %w", err)
	}
	o.ID, err = result.LastInsertId()
	return err
}

// UpdateShippingOption replaces the stored shipping option with the same ID.
func (s *SQLiteStore) UpdateShippingOption(ctx context.Context, o costbasis.ShippingOption) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE shipping_options
		SET name = ?, cost = ?, active = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, o.Name, o.Cost, o.Active, o.ID)
	if err != nil {
		return fmt.Errorf("update shipping option: %w", err)
	}
	return checkAffected(result, "update shipping option")
}

const consumableColumns = `id, name, cost_per_print, active`

func scanConsumable(row interface{ Scan(...any) error }) (costbasis.Consumable, error) {
	var c costbasis.Consumable
	err := row.Scan(&c.ID, &c.Name, &c.CostPerPrint, &c.Active)
	return c, err
}

// Consumable returns the consumable with the given id.
func (s *SQLiteStore) Consumable(ctx context.Context, id int64) (costbasis.Consumable, error) {
	c, err := scanConsumable(s.db.QueryRowContext(ctx, `SELECT `+consumableColumns+` FROM consumables WHERE id = ?`, id))
	if err != nil {
		return costbasis.Consumable{}, notFound(err, "consumable")
	}
	return c, nil
}

// ListConsumables returns every consumable, newest first.
func (s *SQLiteStore) ListConsumables(ctx context.Context) ([]costbasis.Consumable, error) {
	return list(ctx, s.db, `SELECT `+consumableColumns+` FROM consumables ORDER BY id DESC`, "consumables", scanConsumable)
}

// CreateConsumable inserts c and sets its ID.
func (s *SQLiteStore) CreateConsumable(ctx context.Context, c *costbasis.Consumable) error {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO consumables (name, cost_per_print, active)
		VALUES (?, ?, ?)
	`, c.Name, c.CostPerPrint, c.Active)
	if err != nil {
		return fmt.Errorf("insert consumable: %w", err)
	}
	c.ID, err = result.LastInsertId()
	return err
}

// UpdateConsumable replaces the stored consumable with the same ID.
func (s *SQLiteStore) UpdateConsumable(ctx context.Context, c costbasis.Consumable) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE consumables
		SET name = ?, cost_per_print = ?, active = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, c.Name, c.CostPerPrint, c.Active, c.ID)
	if err != nil {
		return fmt.Errorf("update consumable: %w", err)
	}
	return checkAffected(result, "update consumable")
}

const fixedExpenseColumns = `id, name, monthly_amount, active`

func scanFixedExpense(row interface{ Scan(...any) error }) (costbasis.FixedExpense, error) {
	var e costbasis.FixedExpense
	err := row.Scan(&e.ID, &e.Name, &e.MonthlyAmount, &e.Active)
	return e, err
}

// FixedExpense returns the fixed expense with the given id.
func (s *SQLiteStore) FixedExpense(ctx context.Context, id int64) (costbasis.FixedExpense, error) {
	e, err := scanFixedExpense(s.db.QueryRowContext(ctx, `SELECT `+fixedExpenseColumns+` FROM fixed_expenses WHERE id = ?`, id))
	if err != nil {
		return costbasis.FixedExpense{}, notFound(err, "fixed expense")
	}
	return e, nil
}

// ListFixedExpenses returns every fixed expense, newest first.
func (s *SQLiteStore) ListFixedExpenses(ctx context.Context) ([]costbasis.FixedExpense, error) {
	return list(ctx, s.db, `SELECT `+fixedExpenseColumns+` FROM fixed_expenses ORDER BY id DESC`, "fixed expenses", scanFixedExpense)
}

// CreateFixedExpense inserts e and sets its ID.
func (s *SQLiteStore) CreateFixedExpense(ctx context.Context, e *costbasis.FixedExpense) error {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO fixed_expenses (name, monthly_amount, active)
		VALUES (?, ?, ?)
	`, e.Name, e.MonthlyAmount, e.Active)
	if err != nil {
		return fmt.Errorf("insert fixed expense: %w", err)
	}
	e.ID, err = result.LastInsertId()
	return err
}

// UpdateFixedExpense replaces the stored fixed expense with the same ID.
func (s *SQLiteStore) UpdateFixedExpense(ctx context.Context, e costbasis.FixedExpense) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE fixed_expenses
		SET name = ?, monthly_amount = ?, active = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, e.Name, e.MonthlyAmount, e.Active, e.ID)
	if err != nil {
		return fmt.Errorf("update fixed expense: %w", err)
	}
	return checkAffected(result, "update fixed expense")
}

func list[T any](ctx context.Context, db *sql.DB, query, what string, scan func(interface{ Scan(...any) error }) (T, error)) ([]T, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", what, err)
	}
	defer rows.Close()

	items := make([]T, 0)
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", what, err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", what, err)
	}

	return items, nil
}
