// Package report turns a pricing variant into the figures the dashboard
// shows: the ROI table, headline metrics, cash flow and cost distribution.
package report

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"smarta-financials/internal/projection"
)

const Currency = "EGP"

type Headline struct {
	YearOneRevenue   decimal.Decimal     `json:"year_one_revenue"`
	YearOneNetProfit decimal.Decimal     `json:"year_one_net_profit"`
	ROIPct           decimal.NullDecimal `json:"roi_pct"`

	FinalMonth             int             `json:"final_month"`
	FinalCumulativeRevenue decimal.Decimal `json:"final_cumulative_revenue"`
	FinalCumulativeCost    decimal.Decimal `json:"final_cumulative_cost"`
}

type Report struct {
	ID          uuid.UUID `json:"id"`
	Variant     string    `json:"variant"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Currency    string    `json:"currency"`
	GeneratedAt time.Time `json:"generated_at"`

	Headline   Headline              `json:"headline"`
	Projection projection.Projection `json:"projection"`
}

// Build recomputes the projection for p from scratch.
func Build(p projection.Params) (*Report, error) {
	proj, err := p.Calculate()
	if err != nil {
		return nil, fmt.Errorf("calculate %s: %w", p.Name, err)
	}

	title := p.Title
	if title == "" {
		title = p.Name
	}

	r := &Report{
		ID:          uuid.New(),
		Variant:     p.Name,
		Title:       title,
		Description: p.Description,
		Currency:    Currency,
		GeneratedAt: time.Now().UTC(),
		Projection:  proj,
		Headline: Headline{
			YearOneRevenue:   proj.Aggregate.TotalPrice,
			YearOneNetProfit: proj.Aggregate.TotalProfit,
			ROIPct:           proj.ROIPct,
		},
	}

	if n := len(proj.Cashflow); n > 0 {
		last := proj.Cashflow[n-1]
		r.Headline.FinalMonth = last.Month
		r.Headline.FinalCumulativeRevenue = last.CumulativeRevenue
		r.Headline.FinalCumulativeCost = last.CumulativeCost
	}
	return r, nil
}

// Reissue returns a copy of r with a new id and generation time. The
// projection is shared, not copied.
func (r *Report) Reissue() *Report {
	out := *r
	out.ID = uuid.New()
	out.GeneratedAt = time.Now().UTC()
	return &out
}
