package projection

import (
	"errors"
	"testing"
)

func edgeAIParams() Params {
	costRate := 1140.0
	return Params{
		Name:                    "edge-ai",
		SetupCost:               35000,
		SetupPrice:              45000,
		SaasCost:                12500,
		SaasPrice:               17850,
		MaintenanceCost:         1200,
		MaintenancePrice:        6000,
		MonthlySaasAddon:        500,
		MonthlyMaintenanceAddon: 100,
		MonthlyCostRate:         &costRate,
		Months:                  DefaultMonths,
	}
}

func TestParamsInput(t *testing.T) {
	in, err := edgeAIParams().Input()
	if err != nil {
		t.Fatalf("Input failed: %v", err)
	}
	if len(in.Items) != 3 || in.Items[0].Name != SetupItemName || in.Items[2].Name != MaintenanceItemName {
		t.Fatalf("unexpected items: %+v", in.Items)
	}
	if !in.MonthlyRevenueRate.Equal(d("1987.5")) {
		t.Errorf("revenue rate %s, want 1987.5", in.MonthlyRevenueRate)
	}
	if !in.MonthlyCostRate.Equal(d("1140")) {
		t.Errorf("cost rate %s, want 1140", in.MonthlyCostRate)
	}
}

func TestParamsInput_DerivedCostRate(t *testing.T) {
	p := edgeAIParams()
	p.MonthlyCostRate = nil
	p.SaasCost = 12000

	in, err := p.Input()
	if err != nil {
		t.Fatal(err)
	}
	if !in.MonthlyCostRate.Equal(d("1100")) {
		t.Errorf("cost rate %s, want 12000/12+100", in.MonthlyCostRate)
	}
}

func TestParamsInput_Invalid(t *testing.T) {
	tests := map[string]func(p *Params){
		"negative setup cost": func(p *Params) { p.SetupCost = -1 },
		"negative saas price": func(p *Params) { p.SaasPrice = -0.5 },
		"negative months":     func(p *Params) { p.Months = -1 },
		"too many months":     func(p *Params) { p.Months = 121 },
		"missing name":        func(p *Params) { p.Name = "" },
		"negative override": func(p *Params) {
			r := -10.0
			p.MonthlyRevenueRate = &r
		},
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			p := edgeAIParams()
			mutate(&p)
			if _, err := p.Input(); !errors.Is(err, ErrInvalidParams) {
				t.Errorf("expected ErrInvalidParams, got %v", err)
			}
		})
	}
}

func TestParamsCalculate_EdgeAI(t *testing.T) {
	proj, err := edgeAIParams().Calculate()
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}
	if !proj.Aggregate.TotalPrice.Equal(d("68850")) || !proj.Aggregate.TotalProfit.Equal(d("20150")) {
		t.Errorf("headline totals %s / %s, want 68850 / 20150", proj.Aggregate.TotalPrice, proj.Aggregate.TotalProfit)
	}
	if !proj.ROIPct.Decimal.Equal(d("41.4")) {
		t.Errorf("roi %s, want 41.4", proj.ROIPct.Decimal)
	}
	last := proj.Cashflow[len(proj.Cashflow)-1]
	if !last.CumulativeRevenue.Equal(d("68850")) {
		t.Errorf("month 12 revenue %s, want 45000+12*1987.5", last.CumulativeRevenue)
	}
	if !last.CumulativeCost.Equal(d("48680")) {
		t.Errorf("month 12 cost %s, want 35000+12*1140", last.CumulativeCost)
	}
}

func TestParamsFingerprint(t *testing.T) {
	base := edgeAIParams()

	a, err := base.Fingerprint()
	if err != nil {
		t.Fatalf("Fingerprint failed: %v", err)
	}
	again, _ := edgeAIParams().Fingerprint()
	if a != again {
		t.Errorf("equal params must share a fingerprint: %s != %s", a, again)
	}

	changed := edgeAIParams()
	changed.SetupPrice = 46000
	b, _ := changed.Fingerprint()
	if a == b {
		t.Error("a changed setup price must change the fingerprint")
	}

	rate := 1200.0
	changed = edgeAIParams()
	changed.MonthlyCostRate = &rate
	c, _ := changed.Fingerprint()
	if a == c {
		t.Error("a changed rate override must change the fingerprint")
	}
}
