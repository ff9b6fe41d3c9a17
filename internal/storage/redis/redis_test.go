package redis

import (
	"context"
	"errors"
	"testing"

	"smarta-financials/internal/projection"
	"smarta-financials/internal/report"
	"smarta-financials/pkg/redis"
)

type memKV struct {
	data   map[string][]byte
	getErr error
}

func newMemKV() *memKV {
	return &memKV{data: make(map[string][]byte)}
}

func (m *memKV) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.data[key]
	if !ok {
		return nil, redis.ErrMiss
	}
	return v, nil
}

func (m *memKV) SetDefault(ctx context.Context, key string, data []byte) error {
	m.data[key] = data
	return nil
}

func (m *memKV) Del(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

func premiumParams() projection.Params {
	return projection.Params{
		Name:             "premium",
		SetupCost:        45000,
		SetupPrice:       60000,
		SaasCost:         12500,
		SaasPrice:        25000,
		MaintenanceCost:  1200,
		MaintenancePrice: 6000,
		MonthlySaasAddon: 500,
		Months:           12,
	}
}

func sampleReport(t *testing.T, p projection.Params) *report.Report {
	t.Helper()
	r, err := report.Build(p)
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func TestReportCache_RoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := newMemKV()
	cache := NewReportCache(kv)
	params := premiumParams()

	got, err := cache.Get(ctx, params)
	if err != nil || got != nil {
		t.Fatalf("miss must be (nil, nil), got (%v, %v)", got, err)
	}

	r := sampleReport(t, params)
	if err := cache.Set(ctx, params, r); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if _, ok := kv.data["report:premium"]; !ok {
		t.Fatalf("expected key report:premium, have %v", kv.data)
	}

	got, err = cache.Get(ctx, params)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected a hit")
	}
	if got.ID != r.ID || !got.GeneratedAt.Equal(r.GeneratedAt) {
		t.Errorf("metadata changed: %v / %v", got.ID, got.GeneratedAt)
	}
	if !got.Headline.FinalCumulativeRevenue.Equal(r.Headline.FinalCumulativeRevenue) {
		t.Errorf("revenue %s, want %s", got.Headline.FinalCumulativeRevenue, r.Headline.FinalCumulativeRevenue)
	}
	if len(got.Projection.Rows) != 3 || !got.Projection.Rows[0].MarginPct.Valid {
		t.Errorf("rows not restored: %+v", got.Projection.Rows)
	}

	if err := cache.Drop(ctx, "premium"); err != nil {
		t.Fatal(err)
	}
	if got, _ := cache.Get(ctx, params); got != nil {
		t.Error("report must be gone after Drop")
	}
}

func TestReportCache_ChangedParamsMiss(t *testing.T) {
	ctx := context.Background()
	kv := newMemKV()
	cache := NewReportCache(kv)

	old := premiumParams()
	if err := cache.Set(ctx, old, sampleReport(t, old)); err != nil {
		t.Fatal(err)
	}

	edited := premiumParams()
	edited.SetupPrice = 65000
	got, err := cache.Get(ctx, edited)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != nil {
		t.Fatalf("report built from old params served: total price %s", got.Projection.Aggregate.TotalPrice)
	}
	if _, ok := kv.data["report:premium"]; ok {
		t.Error("stale entry must be dropped")
	}
}

func TestReportCache_Errors(t *testing.T) {
	ctx := context.Background()
	kv := newMemKV()
	cache := NewReportCache(kv)

	broken := premiumParams()
	broken.Name = "broken"
	kv.data["report:broken"] = []byte("{not json")
	if _, err := cache.Get(ctx, broken); err == nil {
		t.Error("expected unmarshal error")
	}

	kv.getErr = errors.New("connection refused")
	if _, err := cache.Get(ctx, premiumParams()); err == nil {
		t.Error("expected backend error to surface")
	}
}
