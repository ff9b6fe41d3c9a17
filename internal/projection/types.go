package projection

import (
	"fmt"

	"github.com/shopspring/decimal"
)

const (
	SetupItemName       = "Initial Setup & Hardware"
	ServiceItemName     = "Annual SaaS"
	MaintenanceItemName = "Annual Maintenance"

	DefaultMonths = 12
	itemCount     = 3
)

// LineItem is one cost/revenue category.
type LineItem struct {
	Name        string          `json:"name"`
	OurCost     decimal.Decimal `json:"our_cost"`
	ClientPrice decimal.Decimal `json:"client_price"`
}

func (li LineItem) validate() error {
	if li.OurCost.IsNegative() {
		return fmt.Errorf("%w: %s our cost %s", ErrNegativeAmount, li.Name, li.OurCost)
	}
	if li.ClientPrice.IsNegative() {
		return fmt.Errorf("%w: %s client price %s", ErrNegativeAmount, li.Name, li.ClientPrice)
	}
	return nil
}

// ProjectionInput holds the setup, recurring service and maintenance items
// (in that order) and the rates that drive the cash flow trajectory.
type ProjectionInput struct {
	Items              []LineItem      `json:"items"`
	MonthlyRevenueRate decimal.Decimal `json:"monthly_revenue_rate"`
	MonthlyCostRate    decimal.Decimal `json:"monthly_cost_rate"`
	Months             int             `json:"months"`
}

// Setup returns the first line item. ok is false when there are no items.
func (in ProjectionInput) Setup() (LineItem, bool) {
	if len(in.Items) == 0 {
		return LineItem{}, false
	}
	return in.Items[0], true
}

func (in ProjectionInput) Validate() error {
	if len(in.Items) != itemCount {
		return fmt.Errorf("%w: got %d", ErrWrongItemCount, len(in.Items))
	}
	for _, item := range in.Items {
		if err := item.validate(); err != nil {
			return err
		}
	}
	if in.MonthlyRevenueRate.IsNegative() || in.MonthlyCostRate.IsNegative() {
		return fmt.Errorf("%w: monthly rate", ErrNegativeAmount)
	}
	if in.Months < 0 {
		return fmt.Errorf("%w: %d", ErrNegativeMonths, in.Months)
	}
	return nil
}

type LineItemResult struct {
	LineItem
	NetProfit decimal.Decimal     `json:"net_profit"`
	MarginPct decimal.NullDecimal `json:"margin_pct"`
}

// Margin returns the margin percentage or ErrUndefinedMargin.
func (r LineItemResult) Margin() (decimal.Decimal, error) {
	if !r.MarginPct.Valid {
		return decimal.Zero, ErrUndefinedMargin
	}
	return r.MarginPct.Decimal, nil
}

type AggregateResult struct {
	TotalCost      decimal.Decimal     `json:"total_cost"`
	TotalPrice     decimal.Decimal     `json:"total_price"`
	TotalProfit    decimal.Decimal     `json:"total_profit"`
	TotalMarginPct decimal.NullDecimal `json:"total_margin_pct"`
}

func (a AggregateResult) Margin() (decimal.Decimal, error) {
	if !a.TotalMarginPct.Valid {
		return decimal.Zero, ErrUndefinedMargin
	}
	return a.TotalMarginPct.Decimal, nil
}

// CashflowPoint is the running revenue and cost total at the end of Month.
type CashflowPoint struct {
	Month             int             `json:"month"`
	CumulativeRevenue decimal.Decimal `json:"cumulative_revenue"`
	CumulativeCost    decimal.Decimal `json:"cumulative_cost"`
}

// CostShare is one slice of the cost distribution, in whole percent.
type CostShare struct {
	Name     string          `json:"name"`
	Amount   decimal.Decimal `json:"amount"`
	SharePct decimal.Decimal `json:"share_pct"`
}

// Projection bundles every derived figure for one input.
type Projection struct {
	Input      ProjectionInput     `json:"input"`
	Rows       []LineItemResult    `json:"rows"`
	Aggregate  AggregateResult     `json:"aggregate"`
	ROIPct     decimal.NullDecimal `json:"roi_pct"`
	Cashflow   []CashflowPoint     `json:"cashflow"`
	CostShares []CostShare         `json:"cost_shares"`
	Warnings   []string            `json:"warnings,omitempty"`
}
