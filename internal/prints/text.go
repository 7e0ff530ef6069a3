package prints

import (
	"fmt"
	"strings"

	"github.com/Simplici0/printshop/internal/format"
	"github.com/Simplici0/printshop/internal/models"
	"github.com/Simplici0/printshop/internal/pricing"
)

// Text renders a saved print as a plain-text summary.
func Text(rec *models.PrintRecord, f *format.Formatter) string {
	b := rec.Breakdown
	var sb strings.Builder

	fmt.Fprintf(&sb, "Print: %s\n", rec.Name)
	if !rec.UpdatedAt.IsZero() {
		fmt.Fprintf(&sb, "Saved: %s\n", rec.UpdatedAt.Format("2006-01-02 15:04"))
	}
	fmt.Fprintf(&sb, "Quantity: %d\n", b.Quantity)
	fmt.Fprintf(&sb, "Print time: %s\n", format.Minutes(int(rec.Input.PrintTimeMinutes)))
	sb.WriteString("\n")

	sb.WriteString("Costs per unit:\n")
	labor := f.Money(b.Labor)
	if !b.LaborIncluded {
		labor += " (not included)"
	}
	rows := [][]string{
		{"Filament", f.Money(b.Filament)},
		{"Electricity", f.Money(b.Electricity)},
		{"Depreciation", f.Money(b.Depreciation)},
		{"Maintenance", f.Money(b.Maintenance)},
		{"Labor", labor},
		{"Shipping", f.Money(b.Shipping)},
		{"Consumables", f.Money(b.Consumables)},
		{"Fixed expenses", f.Money(b.FixedExpenses)},
		{"Model", f.Money(b.Model)},
		{"Wastage", f.Money(b.Wastage)},
		{"Failure buffer", f.Money(b.Failure)},
	}
	sb.WriteString(format.Table([]string{"Component", "Amount"}, rows))
	sb.WriteString("\n")

	fmt.Fprintf(&sb, "Cost per unit: %s\n", f.Money(b.CostPerUnit))
	fmt.Fprintf(&sb, "Total cost: %s\n", f.Money(b.TotalCost))
	fmt.Fprintf(&sb, "Markup: %s\n", f.Percent(rec.MarkupPercent))
	fmt.Fprintf(&sb, "Sell price: %s\n", f.Money(rec.Pricing.SellPrice))
	fmt.Fprintf(&sb, "Profit: %s\n", f.Money(rec.Pricing.Profit))
	fmt.Fprintf(&sb, "Margin: %s\n", f.Percent(rec.Pricing.ProfitMarginPercent))

	return sb.String()
}

// DiscountText renders a discount table.
func DiscountText(rows []pricing.DiscountRow, f *format.Formatter) string {
	cells := make([][]string, 0, len(rows))
	for _, r := range rows {
		cells = append(cells, []string{
			f.Percent(r.Discount),
			f.Money(r.Price),
			f.Money(r.DiscountAmount),
			f.Money(r.Cost),
			f.Money(r.Profit),
		})
	}
	return format.Table([]string{"Discount", "Price", "Discount amount", "Cost", "Profit"}, cells)
}
