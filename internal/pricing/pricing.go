package pricing

// DefaultPrintingHoursPerYear is the annual utilization assumed when a printer
// has no better estimate of how many hours it runs per year.
const DefaultPrintingHoursPerYear = 1000.0

// DefaultDiscountTiers are the discount percentages shown in the what-if table.
var DefaultDiscountTiers = []float64{0, 5, 10, 20, 30, 50}

// FilamentUsage is one filament consumed by a print. The per-gram cost is
// derived from the spool fields on every call and never stored.
type FilamentUsage struct {
	GramsUsed        float64 `json:"grams_used"`
	SpoolCost        float64 `json:"spool_cost"`
	SpoolWeightGrams float64 `json:"spool_weight_grams"`
}

// CostPerGram returns SpoolCost / SpoolWeightGrams, or 0 for an unset spool weight.
func (f FilamentUsage) CostPerGram() float64 {
	return safeDiv(f.SpoolCost, f.SpoolWeightGrams)
}

// Cost returns GramsUsed × CostPerGram.
func (f FilamentUsage) Cost() float64 {
	return f.GramsUsed * f.CostPerGram()
}

// PrintCostInput is the complete input of one cost calculation.
type PrintCostInput struct {
	Filaments []FilamentUsage `json:"filaments"`

	PrinterPowerWatts      float64 `json:"printer_power_watts"`
	PrintTimeMinutes       float64 `json:"print_time_minutes"`
	ElectricityPricePerKwh float64 `json:"electricity_price_per_kwh"`

	PrinterPurchaseCost      float64 `json:"printer_purchase_cost"`
	PrinterDepreciationHours float64 `json:"printer_depreciation_hours"`
	MaintenanceCostPerYear   float64 `json:"maintenance_cost_per_year"`
	PrintingHoursPerYear     float64 `json:"printing_hours_per_year"`

	LaborTimeMinutes   float64 `json:"labor_time_minutes"`
	HourlyRate         float64 `json:"hourly_rate"`
	IncludeLaborInCost bool    `json:"include_labor_in_cost"`

	ShippingCost      float64 `json:"shipping_cost"`
	ConsumablesCost   float64 `json:"consumables_cost"`
	FixedExpensesCost float64 `json:"fixed_expenses_cost"`
	ModelCost         float64 `json:"model_cost"`

	WastagePercent     float64 `json:"wastage_percent"`
	FailureRatePercent float64 `json:"failure_rate_percent"`

	Quantity int `json:"quantity"`
}

// CostBreakdown contains every cost component of one unit plus the roll-ups.
// Labor always holds the computed labor value; it only counts toward the
// subtotal when LaborIncluded is true.
type CostBreakdown struct {
	Filament      float64 `json:"filament"`
	Electricity   float64 `json:"electricity"`
	Depreciation  float64 `json:"depreciation"`
	Maintenance   float64 `json:"maintenance"`
	Labor         float64 `json:"labor"`
	LaborIncluded bool    `json:"labor_included"`
	Shipping      float64 `json:"shipping"`
	Consumables   float64 `json:"consumables"`
	FixedExpenses float64 `json:"fixed_expenses"`
	Model         float64 `json:"model"`
	BaseSubtotal  float64 `json:"base_subtotal"`
	Wastage       float64 `json:"wastage"`
	Failure       float64 `json:"failure"`
	CostPerUnit   float64 `json:"cost_per_unit"`
	TotalCost     float64 `json:"total_cost"`
	Quantity      int     `json:"quantity"`
}

// PricingResult is the sell price derived from a unit cost and a markup.
type PricingResult struct {
	SellPrice           float64 `json:"sell_price"`
	Profit              float64 `json:"profit"`
	ProfitMarginPercent float64 `json:"profit_margin_percent"`
}

// DiscountRow is one line of the discount what-if table.
type DiscountRow struct {
	Discount       float64 `json:"discount"`
	Price          float64 `json:"price"`
	Cost           float64 `json:"cost"`
	DiscountAmount float64 `json:"discount_amount"`
	Profit         float64 `json:"profit"`
}

// CalculatePrintCost computes the cost breakdown of a print. Every component
// is a unit cost; only TotalCost is scaled by quantity. Inputs are used as
// given: validation belongs to the caller.
func CalculatePrintCost(in PrintCostInput) CostBreakdown {
	printHours := in.PrintTimeMinutes / 60.0

	filamentCost := 0.0
	for _, f := range in.Filaments {
		filamentCost += f.Cost()
	}

	electricityCost := (in.PrinterPowerWatts / 1000.0) * printHours * in.ElectricityPricePerKwh
	depreciationCost := safeDiv(in.PrinterPurchaseCost, in.PrinterDepreciationHours) * printHours
	maintenanceCost := safeDiv(in.MaintenanceCostPerYear, in.PrintingHoursPerYear) * printHours
	laborCost := (in.LaborTimeMinutes / 60.0) * in.HourlyRate

	baseSubtotal := filamentCost + electricityCost + depreciationCost + maintenanceCost +
		in.ShippingCost + in.ConsumablesCost + in.FixedExpensesCost + in.ModelCost
	if in.IncludeLaborInCost {
		baseSubtotal += laborCost
	}

	// Both buffers apply to the same subtotal; they are not compounded.
	wastageCost := baseSubtotal * (in.WastagePercent / 100.0)
	failureCost := baseSubtotal * (in.FailureRatePercent / 100.0)

	costPerUnit := baseSubtotal + wastageCost + failureCost

	return CostBreakdown{
		Filament:      filamentCost,
		Electricity:   electricityCost,
		Depreciation:  depreciationCost,
		Maintenance:   maintenanceCost,
		Labor:         laborCost,
		LaborIncluded: in.IncludeLaborInCost,
		Shipping:      in.ShippingCost,
		Consumables:   in.ConsumablesCost,
		FixedExpenses: in.FixedExpensesCost,
		Model:         in.ModelCost,
		BaseSubtotal:  baseSubtotal,
		Wastage:       wastageCost,
		Failure:       failureCost,
		CostPerUnit:   costPerUnit,
		TotalCost:     costPerUnit * float64(in.Quantity),
		Quantity:      in.Quantity,
	}
}

// CalculatePricingFromMarkup derives sell price, profit and margin from a unit
// cost. Zero and negative markups are accepted.
func CalculatePricingFromMarkup(costPerUnit, markupPercent float64) PricingResult {
	sellPrice := costPerUnit * (1.0 + markupPercent/100.0)
	profit := sellPrice - costPerUnit

	margin := 0.0
	if sellPrice > 0 {
		margin = profit / sellPrice * 100.0
	}

	return PricingResult{
		SellPrice:           sellPrice,
		Profit:              profit,
		ProfitMarginPercent: margin,
	}
}

// DiscountTable returns one row per discount tier, in the order given.
func DiscountTable(sellPrice, costPerUnit float64, tiers []float64) []DiscountRow {
	rows := make([]DiscountRow, 0, len(tiers))
	for _, discount := range tiers {
		price := sellPrice * (1.0 - discount/100.0)
		rows = append(rows, DiscountRow{
			Discount:       discount,
			Price:          price,
			Cost:           costPerUnit,
			DiscountAmount: sellPrice - price,
			Profit:         price - costPerUnit,
		})
	}
	return rows
}

// safeDiv treats a zero divisor as "not configured" and contributes nothing.
func safeDiv(numerator, divisor float64) float64 {
	if divisor == 0 {
		return 0
	}
	return numerator / divisor
}
