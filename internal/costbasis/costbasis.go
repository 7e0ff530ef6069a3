// Package costbasis holds the reusable configuration records a print's cost is
// calculated from, and turns a caller's form state into a pricing input.
package costbasis

import "context"

// Printer is a machine with its energy, depreciation and maintenance figures.
type Printer struct {
	ID                     int64   `json:"id"`
	Name                   string  `json:"name" validate:"required"`
	PowerWatts             float64 `json:"power_watts" validate:"gte=0"`
	PurchaseCost           float64 `json:"purchase_cost" validate:"gte=0"`
	DepreciationHours      float64 `json:"depreciation_hours" validate:"gte=0"`
	MaintenanceCostPerYear float64 `json:"maintenance_cost_per_year" validate:"gte=0"`
	PrintingHoursPerYear   float64 `json:"printing_hours_per_year" validate:"gte=0"`
	Active                 bool    `json:"active"`
}

// Filament is a spool of printing material.
type Filament struct {
	ID               int64   `json:"id"`
	Name             string  `json:"name" validate:"required"`
	Material         string  `json:"material"`
	Color            string  `json:"color"`
	SpoolCost        float64 `json:"spool_cost" validate:"gte=0"`
	SpoolWeightGrams float64 `json:"spool_weight_grams" validate:"gte=0"`
	Active           bool    `json:"active"`
}

// ElectricityTariff is a price per kWh.
type ElectricityTariff struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name" validate:"required"`
	PricePerKwh float64 `json:"price_per_kwh" validate:"gte=0"`
	Active      bool    `json:"active"`
}

// ShippingOption is a flat shipping cost.
type ShippingOption struct {
	ID     int64   `json:"id"`
	Name   string  `json:"name" validate:"required"`
	Cost   float64 `json:"cost" validate:"gte=0"`
	Active bool    `json:"active"`
}

// Consumable is a per-print supply such as glue, tape or a nozzle share.
type Consumable struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name" validate:"required"`
	CostPerPrint float64 `json:"cost_per_print" validate:"gte=0"`
	Active       bool    `json:"active"`
}

// FixedExpense is a monthly cost such as rent or software subscriptions.
type FixedExpense struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name" validate:"required"`
	MonthlyAmount float64 `json:"monthly_amount" validate:"gte=0"`
	Active        bool    `json:"active"`
}

// Settings is the per-shop singleton of rates and policies.
type Settings struct {
	HourlyLaborRate      float64 `json:"hourly_labor_rate" validate:"gte=0"`
	DefaultMarkupPercent float64 `json:"default_markup_percent"`
	VATEnabled           bool    `json:"vat_enabled"`
	VATPercent           float64 `json:"vat_percent" validate:"gte=0,lte=100"`
	Currency             string  `json:"currency" validate:"required,len=3"`
	// PrintsPerMonth divides monthly fixed expenses into a per-print share.
	PrintsPerMonth       float64 `json:"prints_per_month" validate:"gte=0"`
	PrintingHoursPerYear float64 `json:"printing_hours_per_year" validate:"gte=0"`
}

// VAT returns the VAT display policy of the settings.
func (s Settings) VAT() VATPolicy {
	return VATPolicy{Enabled: s.VATEnabled, RatePercent: s.VATPercent}
}

// VATPolicy decides whether a VAT-inclusive figure is shown next to the
// VAT-exclusive calculation results.
type VATPolicy struct {
	Enabled     bool    `json:"enabled"`
	RatePercent float64 `json:"rate_percent"`
}

// Gross returns amount with VAT added, or amount unchanged when VAT is disabled.
func (v VATPolicy) Gross(amount float64) float64 {
	if !v.Enabled {
		return amount
	}
	return amount * (1.0 + v.RatePercent/100.0)
}

// Registry is the read-only lookup side of the cost basis records.
type Registry interface {
	Printer(ctx context.Context, id int64) (Printer, error)
	Filament(ctx context.Context, id int64) (Filament, error)
	ElectricityTariff(ctx context.Context, id int64) (ElectricityTariff, error)
	ShippingOption(ctx context.Context, id int64) (ShippingOption, error)
	Consumable(ctx context.Context, id int64) (Consumable, error)
	FixedExpense(ctx context.Context, id int64) (FixedExpense, error)
	Settings(ctx context.Context) (Settings, error)
}
