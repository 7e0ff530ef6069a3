// Package format renders calculation results for people. Nothing here feeds
// back into a calculation.
package format

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Formatter formats money, percentages and durations for one locale and currency.
type Formatter struct {
	printer  *message.Printer
	scale    int
	currency string
}

// New builds a Formatter from a BCP 47 locale tag and an ISO 4217 currency code.
func New(locale, currencyCode string) (*Formatter, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("parse locale %q: %w", locale, err)
	}

	unit, err := currency.ParseISO(currencyCode)
	if err != nil {
		return nil, fmt.Errorf("parse currency %q: %w", currencyCode, err)
	}

	scale, _ := currency.Standard.Rounding(unit)

	return &Formatter{
		printer:  message.NewPrinter(tag),
		scale:    scale,
		currency: unit.String(),
	}, nil
}

// Currency returns the ISO 4217 code used by the formatter.
func (f *Formatter) Currency() string {
	return f.currency
}

// Scale returns the number of minor-unit digits of the currency.
func (f *Formatter) Scale() int {
	return f.scale
}

// Round rounds an amount half away from zero to the currency's minor unit.
func (f *Formatter) Round(amount float64) decimal.Decimal {
	return decimal.NewFromFloat(amount).Round(int32(f.scale))
}

// Money formats an amount grouped per locale and followed by the currency
// code, e.g. "1,234.50 EUR".
func (f *Formatter) Money(amount float64) string {
	rounded, _ := f.Round(amount).Float64()
	return f.printer.Sprint(number.Decimal(rounded, number.Scale(f.scale))) + " " + f.currency
}

// Percent formats a plain percentage with two decimals, e.g. "33.33%".
func (f *Formatter) Percent(value float64) string {
	rounded, _ := decimal.NewFromFloat(value).Round(2).Float64()
	return f.printer.Sprint(number.Decimal(rounded, number.Scale(2))) + "%"
}

// Minutes formats a duration in minutes as "<H>h <M>m".
func Minutes(total int) string {
	if total < 60 {
		return fmt.Sprintf("%dm", total)
	}

	hours, minutes := total/60, total%60
	if minutes == 0 {
		return fmt.Sprintf("%dh", hours)
	}
	return fmt.Sprintf("%dh %dm", hours, minutes)
}

// Table renders rows as left-aligned, space-padded columns.
func Table(header []string, rows [][]string) string {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = len([]rune(h))
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len([]rune(cell)) > widths[i] {
				widths[i] = len([]rune(cell))
			}
		}
	}

	var b strings.Builder
	writeRow := func(cells []string) {
		for i, cell := range cells {
			if i >= len(widths) {
				break
			}
			if i > 0 {
				b.WriteString("  ")
			}
			b.WriteString(cell)
			if i < len(cells)-1 {
				b.WriteString(strings.Repeat(" ", widths[i]-len([]rune(cell))))
			}
		}
		b.WriteString("\n")
	}

	writeRow(header)
	for _, row := range rows {
		writeRow(row)
	}
	return b.String()
}
