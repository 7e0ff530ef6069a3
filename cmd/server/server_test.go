package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Simplici0/printshop/internal/costbasis"
	"github.com/Simplici0/printshop/internal/db"
	"github.com/Simplici0/printshop/internal/migrations"
	"github.com/Simplici0/printshop/internal/models"
	"github.com/Simplici0/printshop/internal/seed"
	"github.com/Simplici0/printshop/internal/store"
)

const (
	testAdminEmail    = "admin@example.com"
	testAdminPassword = "s3cret"
)

type testClient struct {
	t       *testing.T
	handler http.Handler
	cookie  *http.Cookie
}

func newTestServer(t *testing.T) (*server, *testClient) {
	t.Helper()
	ctx := context.Background()

	database, err := db.Open(ctx, filepath.Join(t.TempDir(), "server-test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	require.NoError(t, migrations.Up(database))

	_, err = seed.Run(ctx, database, seed.Config{AdminEmail: testAdminEmail, AdminPassword: testAdminPassword})
	require.NoError(t, err)

	srv := newServer(store.New(database), "test-secret", "en", false)
	return srv, &testClient{t: t, handler: srv.routes()}
}

func (c *testClient) login() {
	c.t.Helper()
	form := url.Values{"email": {testAdminEmail}, "password": {testAdminPassword}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rr := httptest.NewRecorder()
	c.handler.ServeHTTP(rr, req)
	require.Equal(c.t, http.StatusOK, rr.Code, rr.Body.String())

	for _, ck := range rr.Result().Cookies() {
		if ck.Name == sessionCookieName {
			c.cookie = ck
		}
	}
	require.NotNil(c.t, c.cookie, "expected session cookie")
}

func (c *testClient) do(method, path string, body any) *httptest.ResponseRecorder {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}

	rr := httptest.NewRecorder()
	c.handler.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

// setupCostBasis sets a labor rate and adds a printer next to the seeded
// filament and tariff, returning a request for a 50 g, 2 h print.
func setupCostBasis(t *testing.T, c *testClient) costbasis.Request {
	t.Helper()

	rr := c.do(http.MethodPut, "/api/settings", costbasis.Settings{
		HourlyLaborRate:      10,
		DefaultMarkupPercent: 50,
		VATEnabled:           false,
		VATPercent:           21,
		Currency:             "EUR",
		PrintsPerMonth:       100,
		PrintingHoursPerYear: 1000,
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = c.do(http.MethodPost, "/api/printers", costbasis.Printer{
		Name: "MK4", PowerWatts: 200, PurchaseCost: 300, DepreciationHours: 5000,
		MaintenanceCostPerYear: 50, PrintingHoursPerYear: 1000, Active: true,
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	printer := decode[costbasis.Printer](t, rr)

	filaments := decode[[]costbasis.Filament](t, c.do(http.MethodGet, "/api/filaments", nil))
	require.NotEmpty(t, filaments)
	tariffs := decode[[]costbasis.ElectricityTariff](t, c.do(http.MethodGet, "/api/tariffs", nil))
	require.NotEmpty(t, tariffs)

	return costbasis.Request{
		PrinterID:          printer.ID,
		TariffID:           tariffs[0].ID,
		Filaments:          []costbasis.FilamentLine{{FilamentID: filaments[0].ID, Grams: 50}},
		PrintTime:          "2h",
		LaborTime:          "15m",
		IncludeLabor:       true,
		WastagePercent:     5,
		FailureRatePercent: 5,
		Quantity:           1,
	}
}

func TestAPIRequiresSession(t *testing.T) {
	_, c := newTestServer(t)

	rr := c.do(http.MethodGet, "/api/printers", nil)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "authentication required", decode[errorResponse](t, rr).Detail)
}

func TestLoginRejectsBadPassword(t *testing.T) {
	_, c := newTestServer(t)

	form := url.Values{"email": {testAdminEmail}, "password": {"wrong"}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	c.handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Empty(t, rr.Result().Cookies())
}

func TestHealthAndMetricsArePublic(t *testing.T) {
	_, c := newTestServer(t)

	assert.Equal(t, http.StatusOK, c.do(http.MethodGet, "/healthz", nil).Code)

	c.do(http.MethodGet, "/healthz", nil)
	rr := c.do(http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `printshop_http_requests_total{method="GET",route="/healthz",status="200"}`)
}

func TestCalculate(t *testing.T) {
	_, c := newTestServer(t)
	c.login()
	req := setupCostBasis(t, c)

	rr := c.do(http.MethodPost, "/api/calculate", calculateRequest{Request: req})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var body struct {
		Breakdown struct {
			CostPerUnit float64 `json:"cost_per_unit"`
		} `json:"breakdown"`
		Pricing struct {
			SellPrice float64 `json:"sell_price"`
		} `json:"pricing"`
		Discounts []json.RawMessage `json:"discounts"`
		Display   displayView       `json:"display"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))

	assert.InDelta(t, 4.158, body.Breakdown.CostPerUnit, 1e-9)
	assert.InDelta(t, 6.237, body.Pricing.SellPrice, 1e-9)
	assert.Len(t, body.Discounts, 6)
	assert.Equal(t, "4.16 EUR", body.Display.CostPerUnit)
	assert.Equal(t, "6.24 EUR", body.Display.SellPrice)
	assert.Equal(t, "33.33%", body.Display.Margin)
	assert.Equal(t, "2h", body.Display.PrintTime)
	assert.Empty(t, body.Display.SellPriceGross)
}

func TestCalculateReportsFieldErrors(t *testing.T) {
	_, c := newTestServer(t)
	c.login()
	req := setupCostBasis(t, c)
	req.PrintTime = "soon"

	rr := c.do(http.MethodPost, "/api/calculate", calculateRequest{Request: req})

	require.Equal(t, http.StatusBadRequest, rr.Code)
	resp := decode[errorResponse](t, rr)
	assert.Contains(t, resp.Fields, "PrintTime")
}

func TestParseTime(t *testing.T) {
	_, c := newTestServer(t)
	c.login()

	rr := c.do(http.MethodGet, "/api/parse-time?value="+url.QueryEscape("2h 30m"), nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, parseTimeResponse{Minutes: 150, Display: "2h 30m"}, decode[parseTimeResponse](t, rr))

	rr = c.do(http.MethodGet, "/api/parse-time?value=abc", nil)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, decode[errorResponse](t, rr).Fields, "value")
}

func TestCostBasisValidationAndNotFound(t *testing.T) {
	_, c := newTestServer(t)
	c.login()

	rr := c.do(http.MethodPost, "/api/filaments", costbasis.Filament{SpoolCost: -1})
	require.Equal(t, http.StatusBadRequest, rr.Code)
	fields := decode[errorResponse](t, rr).Fields
	assert.Contains(t, fields, "Name")
	assert.Contains(t, fields, "SpoolCost")

	rr = c.do(http.MethodPut, "/api/filaments/999", costbasis.Filament{Name: "Ghost"})
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = c.do(http.MethodPut, "/api/filaments/abc", costbasis.Filament{Name: "Ghost"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCreateDefaultsToActive(t *testing.T) {
	_, c := newTestServer(t)
	c.login()

	rr := c.do(http.MethodPost, "/api/consumables", map[string]any{"name": "Glue stick", "cost_per_print": 0.2})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	created := decode[costbasis.Consumable](t, rr)
	assert.True(t, created.Active)

	rr = c.do(http.MethodPost, "/api/consumables", map[string]any{"name": "Tape", "cost_per_print": 0.1, "active": false})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.False(t, decode[costbasis.Consumable](t, rr).Active)

	stored := map[string]bool{}
	for _, item := range decode[[]costbasis.Consumable](t, c.do(http.MethodGet, "/api/consumables", nil)) {
		stored[item.Name] = item.Active
	}
	assert.Equal(t, true, stored["Glue stick"])
	assert.Equal(t, false, stored["Tape"])
}

func TestUpdateSettingsRejectsUnknownCurrency(t *testing.T) {
	_, c := newTestServer(t)
	c.login()

	rr := c.do(http.MethodPut, "/api/settings", costbasis.Settings{Currency: "ZZZ"})

	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, decode[errorResponse](t, rr).Fields, "Currency")
}

func TestSavedPrintReadsSnapshotWithoutRecalculation(t *testing.T) {
	_, c := newTestServer(t)
	c.login()
	req := setupCostBasis(t, c)

	rr := c.do(http.MethodPost, "/api/prints", printRequest{Name: "Benchy", Request: req})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	saved := decode[models.PrintRecord](t, rr)

	filament := costbasis.Filament{Name: "PLA (Generic)", SpoolCost: 40, SpoolWeightGrams: 1000, Active: true}
	rr = c.do(http.MethodPut, "/api/filaments/"+strconv.FormatInt(req.Filaments[0].FilamentID, 10), filament)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = c.do(http.MethodGet, "/api/prints/"+saved.ID, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	got := decode[models.PrintRecord](t, rr)
	assert.Equal(t, saved.Breakdown, got.Breakdown)
	assert.InDelta(t, 4.158, got.Breakdown.CostPerUnit, 1e-9)

	rr = c.do(http.MethodPut, "/api/prints/"+saved.ID, printRequest{Name: "Benchy v2", Request: req})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	resaved := decode[models.PrintRecord](t, rr)
	assert.Equal(t, saved.ID, resaved.ID)
	assert.Greater(t, resaved.Breakdown.CostPerUnit, saved.Breakdown.CostPerUnit)

	list := decode[[]models.PrintRecord](t, c.do(http.MethodGet, "/api/prints?q=v2", nil))
	require.Len(t, list, 1)
	assert.Equal(t, "Benchy v2", list[0].Name)
}

func TestPrintTextReturnsPlainText(t *testing.T) {
	_, c := newTestServer(t)
	c.login()
	req := setupCostBasis(t, c)

	saved := decode[models.PrintRecord](t, c.do(http.MethodPost, "/api/prints", printRequest{Name: "Benchy", Request: req}))

	rr := c.do(http.MethodGet, "/api/prints/"+saved.ID+"/text", nil)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/plain")
	body := rr.Body.String()
	for _, expected := range []string{"Print: Benchy", "Cost per unit: 4.16 EUR", "Sell price: 6.24 EUR", "Margin: 33.33%"} {
		assert.Contains(t, body, expected)
	}
}

func TestPublishPrint(t *testing.T) {
	_, c := newTestServer(t)
	c.login()
	req := setupCostBasis(t, c)

	saved := decode[models.PrintRecord](t, c.do(http.MethodPost, "/api/prints", printRequest{Name: "Benchy", Request: req}))

	rr := c.do(http.MethodPost, "/api/prints/"+saved.ID+"/publish", nil)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	product := decode[models.Product](t, rr)
	assert.Equal(t, 6.24, product.Price)
	assert.Equal(t, saved.ID, product.PrintID)

	products := decode[[]models.Product](t, c.do(http.MethodGet, "/api/products", nil))
	require.Len(t, products, 1)

	rr = c.do(http.MethodPost, "/api/prints/missing/publish", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
