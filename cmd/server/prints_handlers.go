package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Simplici0/printshop/internal/costbasis"
	"github.com/Simplici0/printshop/internal/format"
	"github.com/Simplici0/printshop/internal/models"
	"github.com/Simplici0/printshop/internal/pricing"
	"github.com/Simplici0/printshop/internal/prints"
)

type calculateRequest struct {
	Request costbasis.Request `json:"request"`
	// MarkupPercent falls back to the shop's default markup when omitted.
	MarkupPercent *float64  `json:"markup_percent"`
	DiscountTiers []float64 `json:"discount_tiers"`
}

type printRequest struct {
	Name          string            `json:"name"`
	Request       costbasis.Request `json:"request"`
	MarkupPercent *float64          `json:"markup_percent"`
}

// displayView holds the headline figures already formatted for the shop's
// locale and currency.
type displayView struct {
	CostPerUnit    string `json:"cost_per_unit"`
	TotalCost      string `json:"total_cost"`
	SellPrice      string `json:"sell_price"`
	SellPriceGross string `json:"sell_price_gross,omitempty"`
	Profit         string `json:"profit"`
	Margin         string `json:"margin"`
	PrintTime      string `json:"print_time"`
}

type calculateResponse struct {
	*prints.Quote
	Display displayView `json:"display"`
}

type parseTimeResponse struct {
	Minutes int    `json:"minutes"`
	Display string `json:"display"`
}

func (s *server) handleParseTime(w http.ResponseWriter, r *http.Request) {
	value := r.URL.Query().Get("value")
	minutes, err := pricing.ParseMinutes(value)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Detail: "validation failed",
			Fields: map[string]string{"value": err.Error()},
		})
		return
	}
	writeJSON(w, http.StatusOK, parseTimeResponse{Minutes: minutes, Display: format.Minutes(minutes)})
}

func (s *server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	var body calculateRequest
	if !decodeJSON(w, r, &body) {
		return
	}

	markup, err := s.markupOrDefault(r.Context(), body.MarkupPercent)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	quote, err := s.prints.Preview(r.Context(), body.Request, markup, body.DiscountTiers)
	s.metrics.observeCalculation("preview", err)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	f, err := s.prints.Formatter(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	display := displayView{
		CostPerUnit: f.Money(quote.Breakdown.CostPerUnit),
		TotalCost:   f.Money(quote.Breakdown.TotalCost),
		SellPrice:   f.Money(quote.Pricing.SellPrice),
		Profit:      f.Money(quote.Pricing.Profit),
		Margin:      f.Percent(quote.Pricing.ProfitMarginPercent),
		PrintTime:   format.Minutes(int(quote.Input.PrintTimeMinutes)),
	}
	if quote.VAT.Enabled {
		display.SellPriceGross = f.Money(quote.VAT.SellPriceGross)
	}

	writeJSON(w, http.StatusOK, calculateResponse{Quote: quote, Display: display})
}

func (s *server) handleListPrints(w http.ResponseWriter, r *http.Request) {
	records, err := s.prints.List(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if records == nil {
		records = []*models.PrintRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *server) handleSavePrint(w http.ResponseWriter, r *http.Request) {
	var body printRequest
	if !decodeJSON(w, r, &body) {
		return
	}

	markup, err := s.markupOrDefault(r.Context(), body.MarkupPercent)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	rec, err := s.prints.Save(r.Context(), body.Name, body.Request, markup)
	s.metrics.observeCalculation("save", err)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (s *server) handleGetPrint(w http.ResponseWriter, r *http.Request) {
	rec, err := s.prints.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *server) handleResavePrint(w http.ResponseWriter, r *http.Request) {
	var body printRequest
	if !decodeJSON(w, r, &body) {
		return
	}

	markup, err := s.markupOrDefault(r.Context(), body.MarkupPercent)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	rec, err := s.prints.Resave(r.Context(), chi.URLParam(r, "id"), body.Name, body.Request, markup)
	s.metrics.observeCalculation("resave", err)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *server) handlePrintText(w http.ResponseWriter, r *http.Request) {
	rec, err := s.prints.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	f, err := s.prints.Formatter(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprint(w, prints.Text(rec, f))
}

func (s *server) handlePublishPrint(w http.ResponseWriter, r *http.Request) {
	product, err := s.prints.Publish(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, product)
}

func (s *server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := s.store.ListProducts(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if products == nil {
		products = []models.Product{}
	}
	writeJSON(w, http.StatusOK, products)
}

func (s *server) markupOrDefault(ctx context.Context, markup *float64) (float64, error) {
	if markup != nil {
		return *markup, nil
	}
	settings, err := s.store.Settings(ctx)
	if err != nil {
		return 0, fmt.Errorf("load settings: %w", err)
	}
	return settings.DefaultMarkupPercent, nil
}
