package costbasis

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Simplici0/printshop/internal/pricing"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// FilamentLine is one filament selected on the calculator form.
type FilamentLine struct {
	FilamentID int64   `json:"filament_id" validate:"gt=0"`
	Grams      float64 `json:"grams" validate:"gte=0"`
}

// Request is the raw calculator form state, before record lookups.
type Request struct {
	PrinterID       int64          `json:"printer_id" validate:"gt=0"`
	TariffID        int64          `json:"tariff_id" validate:"gt=0"`
	ShippingID      int64          `json:"shipping_id" validate:"gte=0"`
	ConsumableIDs   []int64        `json:"consumable_ids" validate:"dive,gt=0"`
	FixedExpenseIDs []int64        `json:"fixed_expense_ids" validate:"dive,gt=0"`
	Filaments       []FilamentLine `json:"filaments" validate:"dive"`

	PrintTime    string `json:"print_time" validate:"required"`
	LaborTime    string `json:"labor_time"`
	IncludeLabor bool   `json:"include_labor"`

	ModelCost          float64 `json:"model_cost" validate:"gte=0"`
	WastagePercent     float64 `json:"wastage_percent" validate:"gte=0,lte=100"`
	FailureRatePercent float64 `json:"failure_rate_percent" validate:"gte=0,lte=100"`
	Quantity           int     `json:"quantity" validate:"gte=1"`
}

// FieldError is a validation failure on one request field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError collects the field failures of a request.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "invalid request: " + strings.Join(parts, "; ")
}

// FieldMap returns the failures keyed by field name.
func (e *ValidationError) FieldMap() map[string]string {
	m := make(map[string]string, len(e.Fields))
	for _, f := range e.Fields {
		m[f.Field] = f.Message
	}
	return m
}

// Validate checks a struct against its validate tags and returns a
// *ValidationError describing every failing field.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate: %w", err)
	}

	out := &ValidationError{}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{
			Field:   fieldPath(fe),
			Message: describe(fe),
		})
	}
	return out
}

func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return fe.Field()
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "lte":
		return "must be less than or equal to " + fe.Param()
	case "len":
		return "must have length " + fe.Param()
	default:
		return "is invalid"
	}
}

// Assemble validates req, resolves every referenced record through reg and
// returns the pricing input built from the current record values. Time
// fields that cannot be parsed fail the whole request.
func Assemble(ctx context.Context, reg Registry, req Request) (pricing.PrintCostInput, error) {
	if err := Validate(req); err != nil {
		return pricing.PrintCostInput{}, err
	}

	printMinutes, err := pricing.ParseMinutes(req.PrintTime)
	if err != nil {
		return pricing.PrintCostInput{}, &ValidationError{Fields: []FieldError{{Field: "PrintTime", Message: err.Error()}}}
	}

	laborMinutes := 0
	if strings.TrimSpace(req.LaborTime) != "" {
		laborMinutes, err = pricing.ParseMinutes(req.LaborTime)
		if err != nil {
			return pricing.PrintCostInput{}, &ValidationError{Fields: []FieldError{{Field: "LaborTime", Message: err.Error()}}}
		}
	}

	settings, err := reg.Settings(ctx)
	if err != nil {
		return pricing.PrintCostInput{}, fmt.Errorf("load settings: %w", err)
	}

	printer, err := reg.Printer(ctx, req.PrinterID)
	if err != nil {
		return pricing.PrintCostInput{}, fmt.Errorf("load printer %d: %w", req.PrinterID, err)
	}

	tariff, err := reg.ElectricityTariff(ctx, req.TariffID)
	if err != nil {
		return pricing.PrintCostInput{}, fmt.Errorf("load electricity tariff %d: %w", req.TariffID, err)
	}

	filaments := make([]pricing.FilamentUsage, 0, len(req.Filaments))
	for _, line := range req.Filaments {
		f, err := reg.Filament(ctx, line.FilamentID)
		if err != nil {
			return pricing.PrintCostInput{}, fmt.Errorf("load filament %d: %w", line.FilamentID, err)
		}
		filaments = append(filaments, pricing.FilamentUsage{
			GramsUsed:        line.Grams,
			SpoolCost:        f.SpoolCost,
			SpoolWeightGrams: f.SpoolWeightGrams,
		})
	}

	shippingCost := 0.0
	if req.ShippingID != 0 {
		opt, err := reg.ShippingOption(ctx, req.ShippingID)
		if err != nil {
			return pricing.PrintCostInput{}, fmt.Errorf("load shipping option %d: %w", req.ShippingID, err)
		}
		shippingCost = opt.Cost
	}

	consumablesCost := 0.0
	for _, id := range req.ConsumableIDs {
		c, err := reg.Consumable(ctx, id)
		if err != nil {
			return pricing.PrintCostInput{}, fmt.Errorf("load consumable %d: %w", id, err)
		}
		consumablesCost += c.CostPerPrint
	}

	monthlyFixed := 0.0
	for _, id := range req.FixedExpenseIDs {
		e, err := reg.FixedExpense(ctx, id)
		if err != nil {
			return pricing.PrintCostInput{}, fmt.Errorf("load fixed expense %d: %w", id, err)
		}
		monthlyFixed += e.MonthlyAmount
	}

	return pricing.PrintCostInput{
		Filaments:                filaments,
		PrinterPowerWatts:        printer.PowerWatts,
		PrintTimeMinutes:         float64(printMinutes),
		ElectricityPricePerKwh:   tariff.PricePerKwh,
		PrinterPurchaseCost:      printer.PurchaseCost,
		PrinterDepreciationHours: printer.DepreciationHours,
		MaintenanceCostPerYear:   printer.MaintenanceCostPerYear,
		PrintingHoursPerYear:     printingHoursPerYear(printer, settings),
		LaborTimeMinutes:         float64(laborMinutes),
		HourlyRate:               settings.HourlyLaborRate,
		IncludeLaborInCost:       req.IncludeLabor,
		ShippingCost:             shippingCost,
		ConsumablesCost:          consumablesCost,
		FixedExpensesCost:        ProrateFixedExpenses(monthlyFixed, settings.PrintsPerMonth),
		ModelCost:                req.ModelCost,
		WastagePercent:           req.WastagePercent,
		FailureRatePercent:       req.FailureRatePercent,
		Quantity:                 req.Quantity,
	}, nil
}

// ProrateFixedExpenses returns the per-print share of monthly fixed expenses.
// A zero divisor means proration is not configured and contributes nothing.
func ProrateFixedExpenses(monthlyAmount, printsPerMonth float64) float64 {
	if printsPerMonth == 0 {
		return 0
	}
	return monthlyAmount / printsPerMonth
}

func printingHoursPerYear(p Printer, s Settings) float64 {
	if p.PrintingHoursPerYear > 0 {
		return p.PrintingHoursPerYear
	}
	if s.PrintingHoursPerYear > 0 {
		return s.PrintingHoursPerYear
	}
	return pricing.DefaultPrintingHoursPerYear
}
