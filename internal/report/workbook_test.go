package report

import (
	"bytes"
	"reflect"
	"testing"

	"github.com/xuri/excelize/v2"
)

func openWorkbook(t *testing.T, r *Report) *excelize.File {
	t.Helper()
	var buf bytes.Buffer
	if err := WriteWorkbook(&buf, r); err != nil {
		t.Fatalf("WriteWorkbook failed: %v", err)
	}
	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader failed: %v", err)
	}
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func cell(t *testing.T, f *excelize.File, sheet, ref string) string {
	t.Helper()
	v, err := f.GetCellValue(sheet, ref, excelize.Options{RawCellValue: true})
	if err != nil {
		t.Fatalf("GetCellValue(%s!%s) failed: %v", sheet, ref, err)
	}
	return v
}

func TestWriteWorkbook(t *testing.T) {
	r, err := Build(edgeAI())
	if err != nil {
		t.Fatal(err)
	}
	f := openWorkbook(t, r)

	want := []string{SummarySheet, DetailSheet, CashflowSheet}
	if got := f.GetSheetList(); !reflect.DeepEqual(got, want) {
		t.Fatalf("sheets %v, want %v", got, want)
	}

	checks := []struct {
		sheet, ref, want string
	}{
		{SummarySheet, "B1", "edge-ai"},
		{SummarySheet, "B4", "68850"},
		{SummarySheet, "B6", "41.4"},
		{DetailSheet, "A1", "Category"},
		{DetailSheet, "A2", "Initial Setup & Hardware"},
		{DetailSheet, "D3", "5350"},
		{DetailSheet, "E4", "80"},
		{DetailSheet, "A5", TotalRowLabel},
		{DetailSheet, "B5", "48700"},
		{DetailSheet, "C5", "68850"},
		{DetailSheet, "D5", "20150"},
		{DetailSheet, "E5", "29.3"},
		{DetailSheet, "A8", "Initial Setup & Hardware (72%)"},
		{CashflowSheet, "A14", "12"},
		{CashflowSheet, "B2", "45000"},
		{CashflowSheet, "C14", "48680"},
	}
	for _, c := range checks {
		if got := cell(t, f, c.sheet, c.ref); got != c.want {
			t.Errorf("%s!%s = %q, want %q", c.sheet, c.ref, got, c.want)
		}
	}
}

func TestWriteWorkbook_UndefinedMargin(t *testing.T) {
	p := edgeAI()
	p.SaasPrice = 0
	r, err := Build(p)
	if err != nil {
		t.Fatal(err)
	}
	f := openWorkbook(t, r)

	if got := cell(t, f, DetailSheet, "E3"); got != notAvailable {
		t.Errorf("undefined margin cell = %q, want %q", got, notAvailable)
	}
	if got := cell(t, f, SummarySheet, "A9"); got != "Warning" {
		t.Errorf("summary warning row = %q, want Warning", got)
	}
}
