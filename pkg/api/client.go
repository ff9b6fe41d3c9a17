package api

// API CLIENT

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"smarta-financials/internal/projection"
	"smarta-financials/internal/report"
)

// StatusError is returned for any non-200 response.
type StatusError struct {
	StatusCode int
	Code       string
}

func (e *StatusError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("unexpected status: %d (%s)", e.StatusCode, e.Code)
	}
	return fmt.Sprintf("unexpected status: %d", e.StatusCode)
}

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(baseURL, token string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

func (c *Client) GetVariants(ctx context.Context) ([]projection.Params, error) {
	var result struct {
		Variants []projection.Params `json:"variants"`
	}
	if err := c.getJSON(ctx, "/api/variants", &result); err != nil {
		return nil, err
	}
	return result.Variants, nil
}

func (c *Client) GetProjection(ctx context.Context, variant string) (*report.Report, error) {
	var r report.Report
	if err := c.getJSON(ctx, "/api/projections/"+url.PathEscape(variant), &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *Client) GetCashflow(ctx context.Context, variant string) ([]projection.CashflowPoint, error) {
	var result struct {
		Cashflow []projection.CashflowPoint `json:"cashflow"`
	}
	if err := c.getJSON(ctx, "/api/projections/"+url.PathEscape(variant)+"/cashflow", &result); err != nil {
		return nil, err
	}
	return result.Cashflow, nil
}

// DownloadWorkbook copies the variant workbook into w.
func (c *Client) DownloadWorkbook(ctx context.Context, variant string, w io.Writer) (int64, error) {
	resp, err := c.do(ctx, "/api/projections/"+url.PathEscape(variant)+"/workbook.xlsx")
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, fmt.Errorf("read workbook: %w", err)
	}
	return n, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	resp, err := c.do(ctx, path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// do performs a GET and returns the response only when the status is 200.
func (c *Client) do(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		statusErr := &StatusError{StatusCode: resp.StatusCode}
		var body struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&body) == nil {
			statusErr.Code = body.Error
		}
		c.logger.Warn("API request failed",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("code", statusErr.Code))
		return nil, statusErr
	}
	return resp, nil
}
