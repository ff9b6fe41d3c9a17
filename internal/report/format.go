package report

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

const notAvailable = "N/A"

// FormatMoney renders an amount with thousands separators, keeping cents
// only when the amount has them.
func FormatMoney(d decimal.Decimal) string {
	if d.Equal(d.Truncate(0)) {
		return printer.Sprintf("%d %s", d.IntPart(), Currency)
	}
	return printer.Sprintf("%.2f %s", d.InexactFloat64(), Currency)
}

func FormatPercent(d decimal.NullDecimal) string {
	if !d.Valid {
		return notAvailable
	}
	return d.Decimal.StringFixed(1) + "%"
}

// Summary renders the report as plain text for chat delivery.
func Summary(r *Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "📈 %s\n", r.Title)
	if r.Description != "" {
		fmt.Fprintf(&b, "%s\n", r.Description)
	}
	b.WriteString("\n")

	h := r.Headline
	fmt.Fprintf(&b, "Year 1 Total Revenue: %s\n", FormatMoney(h.YearOneRevenue))
	fmt.Fprintf(&b, "Year 1 Net Profit: %s\n", FormatMoney(h.YearOneNetProfit))
	fmt.Fprintf(&b, "Year 1 ROI: %s\n", FormatPercent(h.ROIPct))
	fmt.Fprintf(&b, "Month %d cumulative: %s revenue / %s cost\n",
		h.FinalMonth, FormatMoney(h.FinalCumulativeRevenue), FormatMoney(h.FinalCumulativeCost))

	b.WriteString("──────────────────\n")
	for _, row := range r.Projection.Rows {
		fmt.Fprintf(&b, "%s: cost %s, price %s, profit %s (%s)\n",
			row.Name,
			FormatMoney(row.OurCost),
			FormatMoney(row.ClientPrice),
			FormatMoney(row.NetProfit),
			FormatPercent(row.MarginPct))
	}

	agg := r.Projection.Aggregate
	fmt.Fprintf(&b, "TOTAL (Year 1): cost %s, price %s, profit %s (%s)\n",
		FormatMoney(agg.TotalCost),
		FormatMoney(agg.TotalPrice),
		FormatMoney(agg.TotalProfit),
		FormatPercent(agg.TotalMarginPct))

	if len(r.Projection.Warnings) > 0 {
		b.WriteString("──────────────────\n")
		for _, w := range r.Projection.Warnings {
			fmt.Fprintf(&b, "⚠️ %s\n", w)
		}
	}
	return b.String()
}
