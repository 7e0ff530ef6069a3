package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Simplici0/printshop/internal/format"
	"github.com/Simplici0/printshop/internal/models"
	"github.com/Simplici0/printshop/internal/pricing"
	"github.com/Simplici0/printshop/internal/prints"
)

type calcOutput struct {
	Name          string  `json:"name"`
	MarkupPercent float64 `json:"markup_percent"`
	*prints.Quote
}

func newCalcCmd() *cobra.Command {
	var (
		file   string
		markup float64
		tiers  []float64
		output string
	)

	cmd := &cobra.Command{
		Use:   "calc",
		Short: "Calculate cost, sell price and discounts for a job file",
		Long: `Calculate cost, sell price and discounts for a job file.

Examples:
  printcost calc --file benchy.yaml
  printcost calc --file benchy.yaml --markup 80 --tiers 0,10,25
  printcost calc --file benchy.yaml --output json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := loadJob(file)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("markup") {
				j.MarkupPercent = &markup
			}
			if cmd.Flags().Changed("tiers") {
				j.DiscountTiers = tiers
			}

			req, reg := j.request()
			quote, err := prints.Calculate(cmd.Context(), reg, req, j.markup(), j.DiscountTiers)
			if err != nil {
				return err
			}
			slog.Debug("job calculated", "file", file, "cost_per_unit", quote.Breakdown.CostPerUnit)

			switch output {
			case "json":
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(calcOutput{Name: j.Name, MarkupPercent: j.markup(), Quote: quote})
			case "text":
				f, err := format.New(j.Locale, j.Settings.Currency)
				if err != nil {
					return err
				}
				return writeQuoteText(cmd.OutOrStdout(), j, quote, f)
			default:
				return fmt.Errorf("unsupported output format: %s", output)
			}
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Path to the YAML job file")
	cmd.Flags().Float64Var(&markup, "markup", 0, "Markup percent, overrides the job file")
	cmd.Flags().Float64SliceVar(&tiers, "tiers", nil, "Discount tiers in percent, overrides the job file")
	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output format (text, json)")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func writeQuoteText(w io.Writer, j *job, quote *prints.Quote, f *format.Formatter) error {
	rec := &models.PrintRecord{
		Name:          j.Name,
		MarkupPercent: j.markup(),
		Input:         quote.Input,
		Breakdown:     quote.Breakdown,
		Pricing:       quote.Pricing,
	}

	if _, err := io.WriteString(w, prints.Text(rec, f)); err != nil {
		return err
	}
	if quote.VAT.Enabled {
		if _, err := fmt.Fprintf(w, "Sell price incl. VAT (%s): %s\n", f.Percent(quote.VAT.RatePercent), f.Money(quote.VAT.SellPriceGross)); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "\nDiscounts:\n%s", prints.DiscountText(quote.Discounts, f))
	return err
}

func newParseTimeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse-time <value>",
		Short: `Convert "2h 30m", "45m" or "90" to minutes`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			minutes, err := pricing.ParseMinutes(args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%d (%s)\n", minutes, format.Minutes(minutes))
			return err
		},
	}
}
