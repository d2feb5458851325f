// Package insights talks to the analytics service: collection analysis,
// summaries, recommendations, chart series and chat sessions.
package insights

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/MarcoMadridG27/Thesaurus/internal/apiclient"
	"github.com/MarcoMadridG27/Thesaurus/internal/common"
	"github.com/MarcoMadridG27/Thesaurus/internal/model"
	"github.com/MarcoMadridG27/Thesaurus/internal/service"
)

const serviceName = "insights"

// Client calls the insights service.
type Client struct {
	api     *apiclient.Client
	limiter *rate.Limiter
	charts  *chartCache
	now     func() time.Time
	retry   service.RetryOptions
}

// Option configures a Client.
type Option func(*Client)

// WithRequestsPerMinute throttles analysis requests.
func WithRequestsPerMinute(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(n)), max(1, n/10))
		}
	}
}

// WithRetryOptions overrides the retry policy of idempotent reads.
func WithRetryOptions(opts service.RetryOptions) Option {
	return func(c *Client) {
		c.retry = opts
	}
}

// WithChartTTL sets how long successful chart responses are reused.
func WithChartTTL(ttl time.Duration) Option {
	return func(c *Client) {
		c.charts.close()
		c.charts = newChartCache(ttl)
	}
}

// NewClient creates an insights client rooted at base. Close releases the
// chart cache.
func NewClient(base string, httpClient *http.Client, opts ...Option) *Client {
	c := &Client{
		api:     apiclient.New(serviceName, base, httpClient),
		limiter: rate.NewLimiter(rate.Every(2*time.Second), 3),
		charts:  newChartCache(0),
		now:     time.Now,
		retry:   service.DefaultRetryOptions(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Close stops background cache maintenance.
func (c *Client) Close() {
	c.charts.close()
}

// Base returns the service base URL.
func (c *Client) Base() string {
	return c.api.Base()
}

type analyzeRequest struct {
	Period   string          `json:"period"`
	Invoices []model.Invoice `json:"invoices"`
}

// AnalyzeInvoices sends the full collection for analysis.
func (c *Client) AnalyzeInvoices(ctx context.Context, invoices []model.Invoice, period string) (*model.Analysis, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("insights rate limiter: %w", err)
	}
	if invoices == nil {
		invoices = []model.Invoice{}
	}

	var analysis model.Analysis
	err := c.api.Do(ctx, apiclient.Request{
		Method: http.MethodPost,
		Path:   "insights/analyze-invoices",
		Op:     "analyze",
		Body:   analyzeRequest{Invoices: invoices, Period: period},
	}, &analysis)
	if err != nil {
		return nil, err
	}
	if analysis.Period == "" {
		analysis.Period = period
	}
	return &analysis, nil
}

// get performs an idempotent read with retries.
func (c *Client) get(ctx context.Context, path, op string, out any) error {
	return common.WithRetry(ctx, func() error {
		return c.api.Do(ctx, apiclient.Request{Method: http.MethodGet, Path: path, Op: op}, out)
	}, c.retry)
}

func isNoData(err error) bool {
	return apiclient.StatusCode(err) == http.StatusUnprocessableEntity
}

// Summary returns the quick stats for period. A period the service has no
// data for yields the empty summary rather than an error.
func (c *Client) Summary(ctx context.Context, period string) (*model.Summary, error) {
	if period == "" {
		period = model.PeriodMonth
	}

	var summary model.Summary
	err := c.get(ctx, "insights/summary-quick?period="+url.QueryEscape(period), "summary", &summary)
	if isNoData(err) {
		return model.EmptySummary(period, c.now()), nil
	}
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

// Recommendations returns savings suggestions for period. A period the
// service has no data for yields an empty list.
func (c *Client) Recommendations(ctx context.Context, period string) (*model.Recommendations, error) {
	if period == "" {
		period = model.PeriodMonth
	}

	var recs model.Recommendations
	err := c.get(ctx, "insights/recommendations?period="+url.QueryEscape(period), "recommendations", &recs)
	if isNoData(err) {
		return model.EmptyRecommendations(), nil
	}
	if err != nil {
		return nil, err
	}
	if recs.Recommendations == nil {
		recs.Recommendations = []model.Recommendation{}
	}
	return &recs, nil
}

type chartResponse struct {
	Data model.ChartData `json:"data"`
}

// ChartData returns one chart series. Service failures are returned as
// errors and never replaced with made-up data. A response without labels
// fails with common.ErrNoData and one that looks like sample data with
// common.ErrPlaceholderData.
func (c *Client) ChartData(ctx context.Context, chart model.ChartType, period string) (*model.ChartData, error) {
	if period == "" {
		period = model.PeriodMonth
	}
	key := chartKey(chart, period)
	if data, ok := c.charts.get(key); ok {
		return &data, nil
	}

	var resp chartResponse
	path := fmt.Sprintf("insights/chart-data/%s?period=%s", url.PathEscape(string(chart)), url.QueryEscape(period))
	if err := c.get(ctx, path, "chart-data", &resp); err != nil {
		return nil, err
	}

	if err := checkChart(chart, resp.Data); err != nil {
		return nil, err
	}

	c.charts.set(key, resp.Data)
	return &resp.Data, nil
}

// IsNoData reports whether err means the chart has nothing to show.
func IsNoData(err error) bool {
	return errors.Is(err, common.ErrNoData) || errors.Is(err, common.ErrPlaceholderData)
}
