package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"smarta-financials/internal/projection"
	"smarta-financials/internal/report"
	"smarta-financials/internal/service"
	"smarta-financials/internal/storage"
	"smarta-financials/internal/variants"
)

const maxHistoryLimit = 100

// Dashboard is the subset of service.Dashboard the API needs.
type Dashboard interface {
	Variants() []projection.Params
	Report(ctx context.Context, name string) (*report.Report, error)
	Export(ctx context.Context, name string, w io.Writer) (*report.Report, error)
	History(ctx context.Context, name string, limit int) ([]storage.Snapshot, error)
}

type Handler struct {
	dashboard Dashboard
	logger    *zap.Logger
}

func NewHandler(dashboard Dashboard, logger *zap.Logger) *Handler {
	return &Handler{dashboard: dashboard, logger: logger}
}

// Routes registers every endpoint and wraps the mux with request logging.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", h.Health)
	mux.HandleFunc("GET /api/variants", h.ListVariants)
	mux.HandleFunc("GET /api/projections/{variant}", h.Projection)
	mux.HandleFunc("GET /api/projections/{variant}/cashflow", h.Cashflow)
	mux.HandleFunc("GET /api/projections/{variant}/workbook.xlsx", h.Workbook)
	mux.HandleFunc("GET /api/projections/{variant}/history", h.History)
	return requestLogger(h.logger, mux)
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) ListVariants(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"variants": h.dashboard.Variants()})
}

// Projection handles GET /api/projections/{variant}.
func (h *Handler) Projection(w http.ResponseWriter, r *http.Request) {
	rep, ok := h.report(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// Cashflow handles GET /api/projections/{variant}/cashflow.
func (h *Handler) Cashflow(w http.ResponseWriter, r *http.Request) {
	rep, ok := h.report(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"variant":  rep.Variant,
		"cashflow": rep.Projection.Cashflow,
	})
}

// Workbook handles GET /api/projections/{variant}/workbook.xlsx.
func (h *Handler) Workbook(w http.ResponseWriter, r *http.Request) {
	variant := r.PathValue("variant")

	var buf bytes.Buffer
	if _, err := h.dashboard.Export(r.Context(), variant, &buf); err != nil {
		h.fail(w, variant, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": variant + ".xlsx"}))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Warn("Failed to stream workbook", zap.String("variant", variant), zap.Error(err))
	}
}

// History handles GET /api/projections/{variant}/history?limit=N.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	variant := r.PathValue("variant")

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxHistoryLimit {
			writeError(w, http.StatusBadRequest, "invalid_limit")
			return
		}
		limit = n
	}

	snaps, err := h.dashboard.History(r.Context(), variant, limit)
	if err != nil {
		h.fail(w, variant, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"variant": variant, "history": snaps})
}

func (h *Handler) report(w http.ResponseWriter, r *http.Request) (*report.Report, bool) {
	variant := r.PathValue("variant")
	rep, err := h.dashboard.Report(r.Context(), variant)
	if err != nil {
		h.fail(w, variant, err)
		return nil, false
	}
	return rep, true
}

func (h *Handler) fail(w http.ResponseWriter, variant string, err error) {
	switch {
	case errors.Is(err, variants.ErrUnknownVariant):
		writeError(w, http.StatusNotFound, "variant_not_found")
	case errors.Is(err, service.ErrArchiveDisabled):
		writeError(w, http.StatusNotImplemented, "archive_disabled")
	default:
		h.logger.Error("Request failed", zap.String("variant", variant), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}
