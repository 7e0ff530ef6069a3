// Package models defines the persisted records of the print shop.
//
// A PrintRecord is a snapshot: it stores a value copy of the request, the
// pricing input, the cost breakdown and the pricing result at the moment it
// was saved. Later edits to printers, filaments or any other cost basis
// record never change a saved print; only an explicit resave does.
package models

import (
	"time"

	"github.com/Simplici0/printshop/internal/costbasis"
	"github.com/Simplici0/printshop/internal/pricing"
)

// PrintRecord is a saved print calculation.
type PrintRecord struct {
	ID            string                 `json:"id"`
	Name          string                 `json:"name"`
	MarkupPercent float64                `json:"markup_percent"`
	Request       costbasis.Request      `json:"request"`
	Input         pricing.PrintCostInput `json:"input"`
	Breakdown     pricing.CostBreakdown  `json:"breakdown"`
	Pricing       pricing.PricingResult  `json:"pricing"`
	CreatedAt     time.Time              `json:"created_at"`
	UpdatedAt     time.Time              `json:"updated_at"`
}

// Product is a storefront listing published from a saved print.
type Product struct {
	ID          string    `json:"id"`
	PrintID     string    `json:"print_id"`
	Name        string    `json:"name"`
	Price       float64   `json:"price"`
	Currency    string    `json:"currency"`
	VATIncluded bool      `json:"vat_included"`
	CostPerUnit float64   `json:"cost_per_unit"`
	TotalCost   float64   `json:"total_cost"`
	CreatedAt   time.Time `json:"created_at"`
}
