package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"smarta-financials/internal/projection"
	"smarta-financials/internal/report"
	"smarta-financials/internal/storage"
	"smarta-financials/internal/variants"
)

var ErrArchiveDisabled = errors.New("report archive disabled")

// ReportCache must treat a report built from different params as a miss.
type ReportCache interface {
	Get(ctx context.Context, p projection.Params) (*report.Report, error)
	Set(ctx context.Context, p projection.Params, r *report.Report) error
}

type ReportArchive interface {
	Save(ctx context.Context, r *report.Report) error
	List(ctx context.Context, variant string, limit int) ([]storage.Snapshot, error)
}

// Dashboard serves reports for the catalog variants. cache and archive are
// optional; pass nil to turn them off.
type Dashboard struct {
	catalog *variants.Catalog
	cache   ReportCache
	archive ReportArchive
	logger  *zap.Logger
}

func NewDashboard(catalog *variants.Catalog, cache ReportCache, archive ReportArchive, logger *zap.Logger) *Dashboard {
	return &Dashboard{
		catalog: catalog,
		cache:   cache,
		archive: archive,
		logger:  logger,
	}
}

func (d *Dashboard) Variants() []projection.Params {
	return d.catalog.All()
}

func (d *Dashboard) ArchiveEnabled() bool {
	return d.archive != nil
}

// Report returns the cached report for a variant, building and caching it on
// a miss. Cache failures never fail the call.
func (d *Dashboard) Report(ctx context.Context, name string) (*report.Report, error) {
	params, err := d.catalog.Get(name)
	if err != nil {
		return nil, err
	}

	if d.cache != nil {
		cached, err := d.cache.Get(ctx, params)
		if err != nil {
			d.logger.Warn("Report cache read failed",
				zap.String("variant", name),
				zap.Error(err))
		} else if cached != nil {
			d.logger.Debug("Report cache hit", zap.String("variant", name))
			return cached, nil
		}
	}

	r, err := report.Build(params)
	if err != nil {
		return nil, fmt.Errorf("build report: %w", err)
	}
	if len(r.Projection.Warnings) > 0 {
		d.logger.Warn("Report has undefined figures",
			zap.String("variant", name),
			zap.Strings("warnings", r.Projection.Warnings))
	}

	if d.cache != nil {
		if err := d.cache.Set(ctx, params, r); err != nil {
			d.logger.Warn("Report cache write failed",
				zap.String("variant", name),
				zap.Error(err))
		}
	}
	return r, nil
}

// Export writes the variant workbook to w and archives it. Every export gets
// its own report id and timestamp, even when the figures come from the cache.
func (d *Dashboard) Export(ctx context.Context, name string, w io.Writer) (*report.Report, error) {
	cached, err := d.Report(ctx, name)
	if err != nil {
		return nil, err
	}
	r := cached.Reissue()

	if err := report.WriteWorkbook(w, r); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}

	if d.archive != nil {
		if err := d.archive.Save(ctx, r); err != nil {
			d.logger.Error("Failed to archive report",
				zap.String("variant", name),
				zap.String("report_id", r.ID.String()),
				zap.Error(err))
		}
	}
	return r, nil
}

func (d *Dashboard) History(ctx context.Context, name string, limit int) ([]storage.Snapshot, error) {
	if _, err := d.catalog.Get(name); err != nil {
		return nil, err
	}
	if d.archive == nil {
		return nil, ErrArchiveDisabled
	}
	return d.archive.List(ctx, name, limit)
}
