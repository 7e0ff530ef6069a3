// Package prints runs the calculator workflow: live previews, saving and
// resaving snapshots, and publishing saved prints as storefront products.
package prints

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Simplici0/printshop/internal/costbasis"
	"github.com/Simplici0/printshop/internal/format"
	"github.com/Simplici0/printshop/internal/models"
	"github.com/Simplici0/printshop/internal/pricing"
)

// Store is the persistence the service needs.
type Store interface {
	costbasis.Registry

	CreatePrint(ctx context.Context, rec *models.PrintRecord) error
	UpdatePrint(ctx context.Context, rec *models.PrintRecord) error
	GetPrint(ctx context.Context, id string) (*models.PrintRecord, error)
	ListPrints(ctx context.Context, query string) ([]*models.PrintRecord, error)
	CreateProduct(ctx context.Context, p *models.Product) error
}

// Quote is a live calculation result.
type Quote struct {
	Input     pricing.PrintCostInput `json:"input"`
	Breakdown pricing.CostBreakdown  `json:"breakdown"`
	Pricing   pricing.PricingResult  `json:"pricing"`
	Discounts []pricing.DiscountRow  `json:"discounts"`
	VAT       VATView                `json:"vat"`
}

// VATView carries VAT-inclusive figures shown next to the VAT-exclusive ones.
// The calculation itself never includes VAT.
type VATView struct {
	Enabled        bool    `json:"enabled"`
	RatePercent    float64 `json:"rate_percent"`
	SellPriceGross float64 `json:"sell_price_gross"`
}

// Service coordinates the calculator with the store.
type Service struct {
	store  Store
	locale string
}

// NewService returns a Service. locale is used for text summaries.
func NewService(store Store, locale string) *Service {
	return &Service{store: store, locale: locale}
}

// Preview calculates a quote from the current cost basis records without
// saving anything. A nil tiers slice uses pricing.DefaultDiscountTiers.
func (s *Service) Preview(ctx context.Context, req costbasis.Request, markupPercent float64, tiers []float64) (*Quote, error) {
	return Calculate(ctx, s.store, req, markupPercent, tiers)
}

// Calculate resolves req against reg and prices the result. It is the
// read-only core of Preview and works with any registry.
func Calculate(ctx context.Context, reg costbasis.Registry, req costbasis.Request, markupPercent float64, tiers []float64) (*Quote, error) {
	input, err := costbasis.Assemble(ctx, reg, req)
	if err != nil {
		return nil, err
	}

	settings, err := reg.Settings(ctx)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	if tiers == nil {
		tiers = pricing.DefaultDiscountTiers
	}

	breakdown := pricing.CalculatePrintCost(input)
	result := pricing.CalculatePricingFromMarkup(breakdown.CostPerUnit, markupPercent)
	vat := settings.VAT()

	return &Quote{
		Input:     input,
		Breakdown: breakdown,
		Pricing:   result,
		Discounts: pricing.DiscountTable(result.SellPrice, breakdown.CostPerUnit, tiers),
		VAT: VATView{
			Enabled:        vat.Enabled,
			RatePercent:    vat.RatePercent,
			SellPriceGross: vat.Gross(result.SellPrice),
		},
	}, nil
}

// Save calculates and stores a new print snapshot.
func (s *Service) Save(ctx context.Context, name string, req costbasis.Request, markupPercent float64) (*models.PrintRecord, error) {
	rec, err := s.snapshot(ctx, name, req, markupPercent)
	if err != nil {
		return nil, err
	}

	if err := s.store.CreatePrint(ctx, rec); err != nil {
		return nil, fmt.Errorf("save print: %w", err)
	}

	slog.Info("print saved", "print_id", rec.ID, "cost_per_unit", rec.Breakdown.CostPerUnit, "sell_price", rec.Pricing.SellPrice)
	return rec, nil
}

// Resave recalculates a saved print from the current cost basis records and
// overwrites its snapshot.
func (s *Service) Resave(ctx context.Context, id, name string, req costbasis.Request, markupPercent float64) (*models.PrintRecord, error) {
	existing, err := s.store.GetPrint(ctx, id)
	if err != nil {
		return nil, err
	}

	rec, err := s.snapshot(ctx, name, req, markupPercent)
	if err != nil {
		return nil, err
	}
	rec.ID = existing.ID
	rec.CreatedAt = existing.CreatedAt

	if err := s.store.UpdatePrint(ctx, rec); err != nil {
		return nil, fmt.Errorf("resave print: %w", err)
	}

	slog.Info("print resaved", "print_id", rec.ID, "cost_per_unit", rec.Breakdown.CostPerUnit, "sell_price", rec.Pricing.SellPrice)
	return rec, nil
}

// Get returns the stored snapshot of a print. It never recalculates.
func (s *Service) Get(ctx context.Context, id string) (*models.PrintRecord, error) {
	return s.store.GetPrint(ctx, id)
}

// List returns stored snapshots filtered by name.
func (s *Service) List(ctx context.Context, query string) ([]*models.PrintRecord, error) {
	return s.store.ListPrints(ctx, strings.TrimSpace(query))
}

// Publish creates a storefront product from a saved print. The unit price is
// the snapshot sell price, with VAT added when the shop's VAT policy is
// enabled, rounded to the currency's minor unit.
func (s *Service) Publish(ctx context.Context, id string) (*models.Product, error) {
	rec, err := s.store.GetPrint(ctx, id)
	if err != nil {
		return nil, err
	}

	settings, err := s.store.Settings(ctx)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	f, err := format.New(s.locale, settings.Currency)
	if err != nil {
		return nil, err
	}

	vat := settings.VAT()
	price, _ := f.Round(vat.Gross(rec.Pricing.SellPrice)).Float64()

	product := &models.Product{
		PrintID:     rec.ID,
		Name:        rec.Name,
		Price:       price,
		Currency:    f.Currency(),
		VATIncluded: vat.Enabled,
		CostPerUnit: rec.Breakdown.CostPerUnit,
		TotalCost:   rec.Breakdown.TotalCost,
	}
	if err := s.store.CreateProduct(ctx, product); err != nil {
		return nil, fmt.Errorf("publish print: %w", err)
	}

	slog.Info("print published", "print_id", rec.ID, "product_id", product.ID, "price", product.Price)
	return product, nil
}

// Formatter returns a formatter for the shop's locale and currency.
func (s *Service) Formatter(ctx context.Context) (*format.Formatter, error) {
	settings, err := s.store.Settings(ctx)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	return format.New(s.locale, settings.Currency)
}

func (s *Service) snapshot(ctx context.Context, name string, req costbasis.Request, markupPercent float64) (*models.PrintRecord, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &costbasis.ValidationError{Fields: []costbasis.FieldError{{Field: "Name", Message: "is required"}}}
	}

	input, err := costbasis.Assemble(ctx, s.store, req)
	if err != nil {
		return nil, err
	}

	breakdown := pricing.CalculatePrintCost(input)
	return &models.PrintRecord{
		Name:          name,
		MarkupPercent: markupPercent,
		Request:       req,
		Input:         input,
		Breakdown:     breakdown,
		Pricing:       pricing.CalculatePricingFromMarkup(breakdown.CostPerUnit, markupPercent),
	}, nil
}
