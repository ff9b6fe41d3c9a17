package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"smarta-financials/internal/projection"
	"smarta-financials/internal/report"
	"smarta-financials/pkg/redis"
)

const keyPrefix = "report:"

// KV is the subset of pkg/redis.Client the cache needs.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetDefault(ctx context.Context, key string, data []byte) error
	Del(ctx context.Context, keys ...string) error
}

// entry ties a cached report to the params it was built from.
type entry struct {
	Fingerprint string         `json:"fingerprint"`
	Report      *report.Report `json:"report"`
}

// ReportCache keeps the latest report per variant as JSON.
type ReportCache struct {
	kv KV
}

func NewReportCache(kv KV) *ReportCache {
	return &ReportCache{kv: kv}
}

// Get returns (nil, nil) on a miss. An entry built from different params is
// a miss and is dropped.
func (c *ReportCache) Get(ctx context.Context, p projection.Params) (*report.Report, error) {
	fingerprint, err := p.Fingerprint()
	if err != nil {
		return nil, err
	}

	data, err := c.kv.Get(ctx, buildReportKey(p.Name))
	if errors.Is(err, redis.ErrMiss) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get report: %w", err)
	}

	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("unmarshal report: %w", err)
	}
	if e.Report == nil || e.Fingerprint != fingerprint {
		if err := c.Drop(ctx, p.Name); err != nil {
			return nil, fmt.Errorf("drop stale report: %w", err)
		}
		return nil, nil
	}
	return e.Report, nil
}

func (c *ReportCache) Set(ctx context.Context, p projection.Params, r *report.Report) error {
	fingerprint, err := p.Fingerprint()
	if err != nil {
		return err
	}

	data, err := json.Marshal(entry{Fingerprint: fingerprint, Report: r})
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	return c.kv.SetDefault(ctx, buildReportKey(p.Name), data)
}

func (c *ReportCache) Drop(ctx context.Context, variants ...string) error {
	if len(variants) == 0 {
		return nil
	}
	keys := make([]string, 0, len(variants))
	for _, v := range variants {
		keys = append(keys, buildReportKey(v))
	}
	return c.kv.Del(ctx, keys...)
}

func buildReportKey(variant string) string {
	return keyPrefix + variant
}
