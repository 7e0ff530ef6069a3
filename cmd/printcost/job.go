package main

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Simplici0/printshop/internal/costbasis"
	"github.com/Simplici0/printshop/internal/store"
)

// job is a self-contained calculation read from a YAML file. It carries its
// own cost basis records instead of referencing a database.
type job struct {
	Name      string        `yaml:"name"`
	Locale    string        `yaml:"locale"`
	Settings  jobSettings   `yaml:"settings"`
	Printer   jobPrinter    `yaml:"printer"`
	Tariff    float64       `yaml:"price_per_kwh"`
	Shipping  float64       `yaml:"shipping_cost"`
	Filaments []jobFilament `yaml:"filaments"`

	Consumables   []jobAmount `yaml:"consumables"`
	FixedExpenses []jobAmount `yaml:"fixed_expenses"`

	PrintTime          string  `yaml:"print_time"`
	LaborTime          string  `yaml:"labor_time"`
	IncludeLabor       bool    `yaml:"include_labor"`
	ModelCost          float64 `yaml:"model_cost"`
	WastagePercent     float64 `yaml:"wastage_percent"`
	FailureRatePercent float64 `yaml:"failure_rate_percent"`
	Quantity           int     `yaml:"quantity"`

	MarkupPercent *float64  `yaml:"markup_percent"`
	DiscountTiers []float64 `yaml:"discount_tiers"`
}

type jobSettings struct {
	HourlyLaborRate      float64 `yaml:"hourly_labor_rate"`
	DefaultMarkupPercent float64 `yaml:"default_markup_percent"`
	VATEnabled           bool    `yaml:"vat_enabled"`
	VATPercent           float64 `yaml:"vat_percent"`
	Currency             string  `yaml:"currency"`
	PrintsPerMonth       float64 `yaml:"prints_per_month"`
	PrintingHoursPerYear float64 `yaml:"printing_hours_per_year"`
}

type jobPrinter struct {
	Name                   string  `yaml:"name"`
	PowerWatts             float64 `yaml:"power_watts"`
	PurchaseCost           float64 `yaml:"purchase_cost"`
	DepreciationHours      float64 `yaml:"depreciation_hours"`
	MaintenanceCostPerYear float64 `yaml:"maintenance_cost_per_year"`
	PrintingHoursPerYear   float64 `yaml:"printing_hours_per_year"`
}

type jobFilament struct {
	Name             string  `yaml:"name"`
	SpoolCost        float64 `yaml:"spool_cost"`
	SpoolWeightGrams float64 `yaml:"spool_weight_grams"`
	Grams            float64 `yaml:"grams"`
}

type jobAmount struct {
	Name   string  `yaml:"name"`
	Amount float64 `yaml:"amount"`
}

func loadJob(path string) (*job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read job file: %w", err)
	}
	return parseJob(data)
}

func parseJob(data []byte) (*job, error) {
	j := &job{
		Locale:   "en",
		Quantity: 1,
		Settings: jobSettings{Currency: "EUR", DefaultMarkupPercent: 50},
	}
	if err := yaml.Unmarshal(data, j); err != nil {
		return nil, fmt.Errorf("decode job file: %w", err)
	}
	return j, nil
}

// markup returns the job's markup, or the default markup of its settings.
func (j *job) markup() float64 {
	if j.MarkupPercent != nil {
		return *j.MarkupPercent
	}
	return j.Settings.DefaultMarkupPercent
}

// request turns the job into a calculator request against the registry
// returned alongside it. Records are numbered from 1 in file order.
func (j *job) request() (costbasis.Request, *jobRegistry) {
	reg := &jobRegistry{
		settings: costbasis.Settings{
			HourlyLaborRate:      j.Settings.HourlyLaborRate,
			DefaultMarkupPercent: j.Settings.DefaultMarkupPercent,
			VATEnabled:           j.Settings.VATEnabled,
			VATPercent:           j.Settings.VATPercent,
			Currency:             j.Settings.Currency,
			PrintsPerMonth:       j.Settings.PrintsPerMonth,
			PrintingHoursPerYear: j.Settings.PrintingHoursPerYear,
		},
		printer: costbasis.Printer{
			ID:                     1,
			Name:                   j.Printer.Name,
			PowerWatts:             j.Printer.PowerWatts,
			PurchaseCost:           j.Printer.PurchaseCost,
			DepreciationHours:      j.Printer.DepreciationHours,
			MaintenanceCostPerYear: j.Printer.MaintenanceCostPerYear,
			PrintingHoursPerYear:   j.Printer.PrintingHoursPerYear,
			Active:                 true,
		},
		tariff:   costbasis.ElectricityTariff{ID: 1, Name: "job", PricePerKwh: j.Tariff, Active: true},
		shipping: costbasis.ShippingOption{ID: 1, Name: "job", Cost: j.Shipping, Active: true},
	}

	req := costbasis.Request{
		PrinterID:          1,
		TariffID:           1,
		ShippingID:         1,
		PrintTime:          j.PrintTime,
		LaborTime:          j.LaborTime,
		IncludeLabor:       j.IncludeLabor,
		ModelCost:          j.ModelCost,
		WastagePercent:     j.WastagePercent,
		FailureRatePercent: j.FailureRatePercent,
		Quantity:           j.Quantity,
	}

	for i, f := range j.Filaments {
		id := int64(i + 1)
		reg.filaments = append(reg.filaments, costbasis.Filament{
			ID: id, Name: f.Name, SpoolCost: f.SpoolCost, SpoolWeightGrams: f.SpoolWeightGrams, Active: true,
		})
		req.Filaments = append(req.Filaments, costbasis.FilamentLine{FilamentID: id, Grams: f.Grams})
	}
	for i, c := range j.Consumables {
		id := int64(i + 1)
		reg.consumables = append(reg.consumables, costbasis.Consumable{ID: id, Name: c.Name, CostPerPrint: c.Amount, Active: true})
		req.ConsumableIDs = append(req.ConsumableIDs, id)
	}
	for i, e := range j.FixedExpenses {
		id := int64(i + 1)
		reg.fixedExpenses = append(reg.fixedExpenses, costbasis.FixedExpense{ID: id, Name: e.Name, MonthlyAmount: e.Amount, Active: true})
		req.FixedExpenseIDs = append(req.FixedExpenseIDs, id)
	}

	return req, reg
}

// jobRegistry serves the records of one job file.
type jobRegistry struct {
	settings      costbasis.Settings
	printer       costbasis.Printer
	tariff        costbasis.ElectricityTariff
	shipping      costbasis.ShippingOption
	filaments     []costbasis.Filament
	consumables   []costbasis.Consumable
	fixedExpenses []costbasis.FixedExpense
}

var _ costbasis.Registry = (*jobRegistry)(nil)

func byID[T any](items []T, id int64, what string) (T, error) {
	var zero T
	if id < 1 || id > int64(len(items)) {
		return zero, fmt.Errorf("%s %d: %w", what, id, store.ErrNotFound)
	}
	return items[id-1], nil
}

func (r *jobRegistry) Printer(_ context.Context, id int64) (costbasis.Printer, error) {
	return byID([]costbasis.Printer{r.printer}, id, "printer")
}

func (r *jobRegistry) Filament(_ context.Context, id int64) (costbasis.Filament, error) {
	return byID(r.filaments, id, "filament")
}

func (r *jobRegistry) ElectricityTariff(_ context.Context, id int64) (costbasis.ElectricityTariff, error) {
	return byID([]costbasis.ElectricityTariff{r.tariff}, id, "electricity tariff")
}

func (r *jobRegistry) ShippingOption(_ context.Context, id int64) (costbasis.ShippingOption, error) {
	return byID([]costbasis.ShippingOption{r.shipping}, id, "shipping option")
}

func (r *jobRegistry) Consumable(_ context.Context, id int64) (costbasis.Consumable, error) {
	return byID(r.consumables, id, "consumable")
}

func (r *jobRegistry) FixedExpense(_ context.Context, id int64) (costbasis.FixedExpense, error) {
	return byID(r.fixedExpenses, id, "fixed expense")
}

func (r *jobRegistry) Settings(_ context.Context) (costbasis.Settings, error) {
	return r.settings, nil
}
