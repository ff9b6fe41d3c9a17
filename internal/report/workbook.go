package report

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	SummarySheet  = "Summary"
	DetailSheet   = "ROI Detail"
	CashflowSheet = "Cash Flow"

	TotalRowLabel = "TOTAL (Year 1)"
)

var detailHeaders = []interface{}{
	"Category",
	"Our Cost (" + Currency + ")",
	"Client Price (" + Currency + ")",
	"Net Profit (" + Currency + ")",
	"Profit Margin (%)",
}

// WriteWorkbook writes r as an xlsx file with the ROI table, the cash flow
// and native bar, line and pie charts.
func WriteWorkbook(w io.Writer, r *Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	for _, name := range []string{DetailSheet, CashflowSheet} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}

	steps := []func(*excelize.File, *Report, int) error{
		writeSummary,
		writeDetail,
		writeCashflow,
	}
	for _, step := range steps {
		if err := step(f, r, bold); err != nil {
			return err
		}
	}

	f.SetActiveSheet(0)
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeSummary(f *excelize.File, r *Report, bold int) error {
	h := r.Headline
	rows := [][]interface{}{
		{"Variant", r.Variant},
		{"Title", r.Title},
		{"Generated At", r.GeneratedAt.Format("2006-01-02 15:04")},
		{"Year 1 Total Revenue (" + Currency + ")", num(h.YearOneRevenue)},
		{"Year 1 Net Profit (" + Currency + ")", num(h.YearOneNetProfit)},
		{"Year 1 ROI (%)", nullNum(h.ROIPct)},
		{fmt.Sprintf("Month %d Cumulative Revenue (%s)", h.FinalMonth, Currency), num(h.FinalCumulativeRevenue)},
		{fmt.Sprintf("Month %d Cumulative Cost (%s)", h.FinalMonth, Currency), num(h.FinalCumulativeCost)},
	}
	for _, w := range r.Projection.Warnings {
		rows = append(rows, []interface{}{"Warning", w})
	}

	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(SummarySheet, cell, &row); err != nil {
			return fmt.Errorf("write summary: %w", err)
		}
	}

	last, _ := excelize.CoordinatesToCellName(1, len(rows))
	if err := f.SetCellStyle(SummarySheet, "A1", last, bold); err != nil {
		return fmt.Errorf("style summary: %w", err)
	}
	return f.SetColWidth(SummarySheet, "A", "A", 36)
}

func writeDetail(f *excelize.File, r *Report, bold int) error {
	if err := f.SetSheetRow(DetailSheet, "A1", &detailHeaders); err != nil {
		return fmt.Errorf("write detail header: %w", err)
	}

	rows := r.Projection.Rows
	for i, row := range rows {
		values := []interface{}{row.Name, num(row.OurCost), num(row.ClientPrice), num(row.NetProfit), nullNum(row.MarginPct)}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(DetailSheet, cell, &values); err != nil {
			return fmt.Errorf("write detail row: %w", err)
		}
	}

	agg := r.Projection.Aggregate
	totalRow := len(rows) + 2
	total := []interface{}{TotalRowLabel, num(agg.TotalCost), num(agg.TotalPrice), num(agg.TotalProfit), nullNum(agg.TotalMarginPct)}
	totalCell, _ := excelize.CoordinatesToCellName(1, totalRow)
	if err := f.SetSheetRow(DetailSheet, totalCell, &total); err != nil {
		return fmt.Errorf("write total row: %w", err)
	}

	totalEnd, _ := excelize.CoordinatesToCellName(len(total), totalRow)
	if err := f.SetCellStyle(DetailSheet, "A1", "E1", bold); err != nil {
		return fmt.Errorf("style detail: %w", err)
	}
	if err := f.SetCellStyle(DetailSheet, totalCell, totalEnd, bold); err != nil {
		return fmt.Errorf("style detail: %w", err)
	}
	if err := f.SetColWidth(DetailSheet, "A", "A", 28); err != nil {
		return err
	}
	if err := f.SetColWidth(DetailSheet, "B", "E", 20); err != nil {
		return err
	}

	lastItem := len(rows) + 1
	categories := fmt.Sprintf("'%s'!$A$2:$A$%d", DetailSheet, lastItem)
	if err := f.AddChart(DetailSheet, "G1", &excelize.Chart{
		Type: excelize.Col,
		Series: []excelize.ChartSeries{
			{
				Name:       fmt.Sprintf("'%s'!$B$1", DetailSheet),
				Categories: categories,
				Values:     fmt.Sprintf("'%s'!$B$2:$B$%d", DetailSheet, lastItem),
				Fill:       excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"1E88E5"}},
			},
			{
				Name:       fmt.Sprintf("'%s'!$C$1", DetailSheet),
				Categories: categories,
				Values:     fmt.Sprintf("'%s'!$C$2:$C$%d", DetailSheet, lastItem),
				Fill:       excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"64B5F6"}},
			},
		},
		Title:  []excelize.RichTextRun{{Text: "Cost vs. Revenue Breakdown"}},
		Legend: excelize.ChartLegend{Position: "bottom"},
	}); err != nil {
		return fmt.Errorf("add bar chart: %w", err)
	}

	return writeCostShares(f, r, totalRow+2, bold)
}

// writeCostShares places the distribution table below the ROI table and
// draws the pie from it.
func writeCostShares(f *excelize.File, r *Report, startRow, bold int) error {
	shares := r.Projection.CostShares
	if len(shares) == 0 {
		return nil
	}

	header := []interface{}{"Expense", "Amount (" + Currency + ")"}
	headerCell, _ := excelize.CoordinatesToCellName(1, startRow)
	if err := f.SetSheetRow(DetailSheet, headerCell, &header); err != nil {
		return fmt.Errorf("write cost share header: %w", err)
	}
	headerEnd, _ := excelize.CoordinatesToCellName(2, startRow)
	if err := f.SetCellStyle(DetailSheet, headerCell, headerEnd, bold); err != nil {
		return fmt.Errorf("style cost shares: %w", err)
	}

	for i, s := range shares {
		values := []interface{}{ShareLabel(s.Name, s.SharePct), num(s.Amount)}
		cell, _ := excelize.CoordinatesToCellName(1, startRow+1+i)
		if err := f.SetSheetRow(DetailSheet, cell, &values); err != nil {
			return fmt.Errorf("write cost share: %w", err)
		}
	}

	first, last := startRow+1, startRow+len(shares)
	if err := f.AddChart(DetailSheet, "G17", &excelize.Chart{
		Type: excelize.Pie,
		Series: []excelize.ChartSeries{{
			Name:       fmt.Sprintf("'%s'!$B$%d", DetailSheet, startRow),
			Categories: fmt.Sprintf("'%s'!$A$%d:$A$%d", DetailSheet, first, last),
			Values:     fmt.Sprintf("'%s'!$B$%d:$B$%d", DetailSheet, first, last),
		}},
		Title:    []excelize.RichTextRun{{Text: "Year 1 Cost Distribution"}},
		Legend:   excelize.ChartLegend{Position: "right"},
		PlotArea: excelize.ChartPlotArea{ShowPercent: true},
	}); err != nil {
		return fmt.Errorf("add pie chart: %w", err)
	}
	return nil
}

func writeCashflow(f *excelize.File, r *Report, bold int) error {
	header := []interface{}{"Month", "Cumulative Revenue (" + Currency + ")", "Cumulative Cost (" + Currency + ")"}
	if err := f.SetSheetRow(CashflowSheet, "A1", &header); err != nil {
		return fmt.Errorf("write cash flow header: %w", err)
	}
	if err := f.SetCellStyle(CashflowSheet, "A1", "C1", bold); err != nil {
		return fmt.Errorf("style cash flow: %w", err)
	}

	points := r.Projection.Cashflow
	for i, p := range points {
		values := []interface{}{p.Month, num(p.CumulativeRevenue), num(p.CumulativeCost)}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(CashflowSheet, cell, &values); err != nil {
			return fmt.Errorf("write cash flow row: %w", err)
		}
	}
	if err := f.SetColWidth(CashflowSheet, "B", "C", 26); err != nil {
		return err
	}

	last := len(points) + 1
	months := fmt.Sprintf("'%s'!$A$2:$A$%d", CashflowSheet, last)
	if err := f.AddChart(CashflowSheet, "E1", &excelize.Chart{
		Type: excelize.Line,
		Series: []excelize.ChartSeries{
			{
				Name:       fmt.Sprintf("'%s'!$B$1", CashflowSheet),
				Categories: months,
				Values:     fmt.Sprintf("'%s'!$B$2:$B$%d", CashflowSheet, last),
				Line:       excelize.ChartLine{Smooth: false, Width: 2},
			},
			{
				Name:       fmt.Sprintf("'%s'!$C$1", CashflowSheet),
				Categories: months,
				Values:     fmt.Sprintf("'%s'!$C$2:$C$%d", CashflowSheet, last),
				Line:       excelize.ChartLine{Smooth: false, Width: 2},
			},
		},
		Title:  []excelize.RichTextRun{{Text: fmt.Sprintf("%d-Month Cumulative Cash Flow", len(points)-1)}},
		Legend: excelize.ChartLegend{Position: "bottom"},
	}); err != nil {
		return fmt.Errorf("add line chart: %w", err)
	}
	return nil
}

// ShareLabel formats a pie slice label the way the dashboard does,
// e.g. "Initial Setup & Hardware (72%)".
func ShareLabel(name string, pct decimal.Decimal) string {
	return fmt.Sprintf("%s (%s%%)", name, pct.String())
}

func num(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}

func nullNum(d decimal.NullDecimal) interface{} {
	if !d.Valid {
		return notAvailable
	}
	return d.Decimal.InexactFloat64()
}
