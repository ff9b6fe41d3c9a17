package projection

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	hundred = decimal.NewFromInt(100)
	two     = decimal.NewFromInt(2)
)

// Percentages are rounded half to even: 12.25 -> 12.2, 12.35 -> 12.4.
const (
	pctPlaces   int32 = 1
	moneyPlaces int32 = 2
)

// percentOf rounds part*100/whole half to even from the exact remainder, so
// no intermediate quotient precision can move a value across a tie.
func percentOf(part, whole decimal.Decimal, places int32) decimal.Decimal {
	num := part.Mul(hundred)
	q, r := num.QuoRem(whole, places)
	unit := decimal.New(1, -places)

	cmp := r.Abs().Mul(two).Cmp(whole.Abs().Mul(unit))
	if cmp < 0 || (cmp == 0 && q.Shift(places).Mod(two).IsZero()) {
		return q
	}
	if num.Sign()*whole.Sign() < 0 {
		return q.Sub(unit)
	}
	return q.Add(unit)
}

// ComputeLineResults derives net profit and margin for each item, keeping
// input order. Rows whose client price is zero get an invalid MarginPct and a
// *MarginError in the joined error; every row is still returned.
func ComputeLineResults(items []LineItem) ([]LineItemResult, error) {
	if len(items) == 0 {
		return nil, ErrNoLineItems
	}

	results := make([]LineItemResult, 0, len(items))
	var errs []error
	for i, item := range items {
		res := LineItemResult{
			LineItem:  item,
			NetProfit: item.ClientPrice.Sub(item.OurCost),
		}
		if item.ClientPrice.IsZero() {
			errs = append(errs, &MarginError{Row: i, Name: item.Name})
		} else {
			res.MarginPct = decimal.NullDecimal{
				Decimal: percentOf(res.NetProfit, item.ClientPrice, pctPlaces),
				Valid:   true,
			}
		}
		results = append(results, res)
	}

	return results, errors.Join(errs...)
}

// ComputeAggregate sums the rows. The total margin is taken from the sums,
// not averaged from row margins.
func ComputeAggregate(results []LineItemResult) (AggregateResult, error) {
	agg := AggregateResult{
		TotalCost:   decimal.Zero,
		TotalPrice:  decimal.Zero,
		TotalProfit: decimal.Zero,
	}
	for _, r := range results {
		agg.TotalCost = agg.TotalCost.Add(r.OurCost)
		agg.TotalPrice = agg.TotalPrice.Add(r.ClientPrice)
		agg.TotalProfit = agg.TotalProfit.Add(r.NetProfit)
	}

	if agg.TotalPrice.IsZero() {
		return agg, fmt.Errorf("aggregate: %w", ErrUndefinedMargin)
	}
	agg.TotalMarginPct = decimal.NullDecimal{
		Decimal: percentOf(agg.TotalProfit, agg.TotalPrice, pctPlaces),
		Valid:   true,
	}
	return agg, nil
}

// ComputeCashflow extrapolates cumulative revenue and cost linearly from the
// setup item for months 0..in.Months. Only the m*rate term is rounded, to
// minor currency units, so month 0 equals the setup pair exactly. With a rate
// that is not a whole number of cents, intermediate months can differ from
// the unrounded setup + m*rate by up to half a cent.
func ComputeCashflow(in ProjectionInput) ([]CashflowPoint, error) {
	if in.Months < 0 {
		return nil, fmt.Errorf("%w: %d", ErrNegativeMonths, in.Months)
	}
	setup, ok := in.Setup()
	if !ok {
		return nil, ErrNoLineItems
	}

	points := make([]CashflowPoint, 0, in.Months+1)
	for m := 0; m <= in.Months; m++ {
		month := decimal.NewFromInt(int64(m))
		points = append(points, CashflowPoint{
			Month:             m,
			CumulativeRevenue: setup.ClientPrice.Add(month.Mul(in.MonthlyRevenueRate).RoundBank(moneyPlaces)),
			CumulativeCost:    setup.OurCost.Add(month.Mul(in.MonthlyCostRate).RoundBank(moneyPlaces)),
		})
	}
	return points, nil
}

// ROI is total net profit over total cost, as a percentage rounded like the
// margins.
func ROI(agg AggregateResult) (decimal.Decimal, error) {
	if agg.TotalCost.IsZero() {
		return decimal.Zero, ErrUndefinedROI
	}
	return percentOf(agg.TotalProfit, agg.TotalCost, pctPlaces), nil
}

// CostShares splits total cost across items in whole percent.
func CostShares(items []LineItem) ([]CostShare, error) {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.OurCost)
	}
	if total.IsZero() {
		return nil, ErrUndefinedShare
	}

	shares := make([]CostShare, 0, len(items))
	for _, item := range items {
		shares = append(shares, CostShare{
			Name:     item.Name,
			Amount:   item.OurCost,
			SharePct: percentOf(item.OurCost, total, 0),
		})
	}
	return shares, nil
}

// Calculate runs every derivation for a validated input. Undefined margins,
// ROI and shares end up in Warnings instead of failing the call.
func Calculate(in ProjectionInput) (Projection, error) {
	if err := in.Validate(); err != nil {
		return Projection{}, err
	}

	p := Projection{Input: in}
	var warnings []error

	rows, err := ComputeLineResults(in.Items)
	if err != nil {
		warnings = append(warnings, err)
	}
	p.Rows = rows

	agg, err := ComputeAggregate(rows)
	if err != nil {
		warnings = append(warnings, err)
	}
	p.Aggregate = agg

	if roi, err := ROI(agg); err != nil {
		warnings = append(warnings, err)
	} else {
		p.ROIPct = decimal.NullDecimal{Decimal: roi, Valid: true}
	}

	if p.Cashflow, err = ComputeCashflow(in); err != nil {
		return Projection{}, err
	}

	if p.CostShares, err = CostShares(in.Items); err != nil {
		warnings = append(warnings, err)
	}

	for _, w := range warnings {
		p.Warnings = append(p.Warnings, splitJoined(w)...)
	}
	return p, nil
}

func splitJoined(err error) []string {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var out []string
		for _, e := range joined.Unwrap() {
			out = append(out, e.Error())
		}
		return out
	}
	return []string{err.Error()}
}
