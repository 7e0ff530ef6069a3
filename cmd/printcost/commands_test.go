package main

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Simplici0/printshop/internal/costbasis"
	"github.com/Simplici0/printshop/internal/store"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCalcText(t *testing.T) {
	out, err := run(t, "calc", "--file", "testdata/benchy.yaml")
	require.NoError(t, err)

	for _, expected := range []string{
		"Print: Benchy",
		"Quantity: 2",
		"Cost per unit: 4.16 EUR",
		"Total cost: 8.32 EUR",
		"Sell price: 6.24 EUR",
		"Sell price incl. VAT (21.00%): 7.55 EUR",
		"Margin: 33.33%",
		"Discounts:",
	} {
		assert.Contains(t, out, expected)
	}
	assert.NotContains(t, out, "Saved:")
}

func TestCalcJSONWithOverrides(t *testing.T) {
	out, err := run(t, "calc", "-f", "testdata/benchy.yaml", "--markup", "100", "--tiers", "0,25", "-o", "json")
	require.NoError(t, err)

	var body struct {
		Name          string  `json:"name"`
		MarkupPercent float64 `json:"markup_percent"`
		Pricing       struct {
			SellPrice float64 `json:"sell_price"`
		} `json:"pricing"`
		Discounts []struct {
			Discount float64 `json:"discount"`
			Price    float64 `json:"price"`
		} `json:"discounts"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &body))

	assert.Equal(t, "Benchy", body.Name)
	assert.Equal(t, 100.0, body.MarkupPercent)
	assert.InDelta(t, 8.316, body.Pricing.SellPrice, 1e-9)
	require.Len(t, body.Discounts, 2)
	assert.InDelta(t, 8.316*0.75, body.Discounts[1].Price, 1e-9)
}

func TestCalcRejectsUnparsableTime(t *testing.T) {
	_, err := run(t, "calc", "--file", "testdata/bad_time.yaml")

	var verr *costbasis.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.FieldMap(), "PrintTime")
}

func TestCalcRequiresFile(t *testing.T) {
	_, err := run(t, "calc")
	assert.Error(t, err)
}

func TestCalcUnknownOutput(t *testing.T) {
	_, err := run(t, "calc", "--file", "testdata/benchy.yaml", "--output", "xml")
	assert.ErrorContains(t, err, "unsupported output format")
}

func TestParseTimeCommand(t *testing.T) {
	out, err := run(t, "parse-time", "2h 30m")
	require.NoError(t, err)
	assert.Equal(t, "150 (2h 30m)\n", out)

	_, err = run(t, "parse-time", "1h 90x")
	assert.Error(t, err)
}

func TestParseJobDefaults(t *testing.T) {
	j, err := parseJob([]byte("name: Cube\nprint_time: 45m\n"))
	require.NoError(t, err)

	assert.Equal(t, 1, j.Quantity)
	assert.Equal(t, "en", j.Locale)
	assert.Equal(t, "EUR", j.Settings.Currency)
	assert.Equal(t, 50.0, j.markup())
}

func TestJobRegistryNumbersRecordsInFileOrder(t *testing.T) {
	j, err := parseJob([]byte(`
filaments:
  - {name: PLA, spool_cost: 20, spool_weight_grams: 1000, grams: 10}
  - {name: PETG, spool_cost: 30, spool_weight_grams: 1000, grams: 5}
consumables:
  - {name: glue, amount: 0.2}
fixed_expenses:
  - {name: rent, amount: 300}
`))
	require.NoError(t, err)

	req, reg := j.request()
	ctx := context.Background()

	require.Len(t, req.Filaments, 2)
	petg, err := reg.Filament(ctx, req.Filaments[1].FilamentID)
	require.NoError(t, err)
	assert.Equal(t, "PETG", petg.Name)

	assert.Equal(t, []int64{1}, req.ConsumableIDs)
	assert.Equal(t, []int64{1}, req.FixedExpenseIDs)

	_, err = reg.Filament(ctx, 3)
	assert.ErrorIs(t, err, store.ErrNotFound)
}
