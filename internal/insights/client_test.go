package insights

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MarcoMadridG27/Thesaurus/internal/common"
	"github.com/MarcoMadridG27/Thesaurus/internal/model"
	"github.com/MarcoMadridG27/Thesaurus/internal/service"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c := NewClient(server.URL+"/", server.Client(),
		WithRequestsPerMinute(6000),
		WithRetryOptions(service.RetryOptions{
			MaxAttempts:  3,
			InitialDelay: time.Millisecond,
			MaxDelay:     5 * time.Millisecond,
			Multiplier:   2,
		}),
	)
	c.now = func() time.Time { return time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC) }
	t.Cleanup(c.Close)
	return c
}

func TestClient_AnalyzeInvoices(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/insights/analyze-invoices", r.URL.Path)

		var body struct {
			Period   string           `json:"period"`
			Invoices []map[string]any `json:"invoices"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "monthly", body.Period)
		if assert.Len(t, body.Invoices, 1) {
			assert.Equal(t, "T1", body.Invoices[0]["id"])
			assert.EqualValues(t, 118, body.Invoices[0]["total"])
		}

		_, _ = w.Write([]byte(`{"success":true,"ai_insight":{"id":3,"text":"Gasto concentrado en ACME","sentiment":"warning","priority":"high","created_at":"2024-05-01T08:00:00Z"}}`))
	})

	analysis, err := c.AnalyzeInvoices(context.Background(), []model.Invoice{{ID: "T1", Total: decimal.RequireFromString("118.00")}}, "monthly")
	require.NoError(t, err)
	assert.True(t, analysis.Success)
	assert.Equal(t, "monthly", analysis.Period)
	require.NotNil(t, analysis.AIInsight)
	assert.Equal(t, model.FlexString("3"), analysis.AIInsight.ID)
	assert.Equal(t, "Alerta", analysis.AIInsight.Sentiment.Label())
}

func TestClient_AnalyzeInvoicesError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"error":"upstream model unavailable"}`))
	})

	_, err := c.AnalyzeInvoices(context.Background(), nil, "monthly")

	var se *common.ServiceError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "upstream model unavailable", se.Message)
}

func TestClient_AnalyzeInvoicesCancelledWhileThrottled(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"success":true}`))
	})
	WithRequestsPerMinute(1)(c)

	_, err := c.AnalyzeInvoices(context.Background(), nil, "monthly")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = c.AnalyzeInvoices(ctx, nil, "monthly")
	assert.Error(t, err)
}

func TestClient_Summary(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/insights/summary-quick", r.URL.Path)
			assert.Equal(t, "week", r.URL.Query().Get("period"))
			_, _ = w.Write([]byte(`{"success":true,"period":"week","summary":{"total_spent":250.5,"total_invoices":3,"total_suppliers":2,"growth_percentage":12.5},"quick_stats":[{"label":"Gasto","value":"250.50","change":"+12%","trend":"up"}]}`))
		})

		s, err := c.Summary(context.Background(), "week")
		require.NoError(t, err)
		assert.Equal(t, "250.5", s.Summary.TotalSpent.String())
		assert.Equal(t, 3, s.Summary.TotalInvoices)
		require.Len(t, s.QuickStats, 1)
		assert.Equal(t, "up", s.QuickStats[0].Trend)
	})

	t.Run("422 yields the empty summary", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`{"detail":"no invoices"}`))
		})

		s, err := c.Summary(context.Background(), "month")
		require.NoError(t, err)
		assert.True(t, s.Success)
		assert.Equal(t, "month", s.Period)
		assert.True(t, s.Summary.TotalSpent.IsZero())
		assert.Equal(t, 0, s.Summary.TotalInvoices)
		require.NotNil(t, s.LatestInsight)
		assert.Equal(t, model.SentimentNeutral, s.LatestInsight.Sentiment)
		assert.Equal(t, "No hay datos de análisis disponibles. Sube facturas para comenzar.", s.LatestInsight.Text)
		require.Len(t, s.QuickStats, 4)
		assert.Equal(t, "Gasto total (month)", s.QuickStats[0].Label)
		assert.Equal(t, "2024-05-01T09:00:00Z", s.LatestInsight.CreatedAt)
	})

	t.Run("server errors are retried then surfaced", func(t *testing.T) {
		var calls atomic.Int32
		c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusServiceUnavailable)
		})

		_, err := c.Summary(context.Background(), "")
		require.Error(t, err)
		assert.ErrorIs(t, err, common.ErrMaxRetries)
		assert.Equal(t, int32(3), calls.Load())

		var se *common.ServiceError
		require.True(t, errors.As(err, &se))
		assert.Equal(t, "Error: 503", se.Message)
	})

	t.Run("client errors are not retried", func(t *testing.T) {
		var calls atomic.Int32
		c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusBadRequest)
		})

		_, err := c.Summary(context.Background(), "month")
		require.Error(t, err)
		assert.Equal(t, int32(1), calls.Load())
	})
}

func TestClient_Recommendations(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/insights/recommendations", r.URL.Path)
			_, _ = w.Write([]byte(`{"success":true,"recommendations":[{"title":"Consolidar proveedores","description":"...","priority":"high","potential_savings":120}],"total_potential_savings":120,"currency":"PEN"}`))
		})

		recs, err := c.Recommendations(context.Background(), "month")
		require.NoError(t, err)
		require.Len(t, recs.Recommendations, 1)
		assert.Equal(t, "Consolidar proveedores", recs.Recommendations[0].Title)
		assert.Equal(t, "120", recs.TotalPotentialSavings.String())
	})

	t.Run("422 yields an empty list", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
		})

		recs, err := c.Recommendations(context.Background(), "month")
		require.NoError(t, err)
		assert.Empty(t, recs.Recommendations)
		assert.NotNil(t, recs.Recommendations)
		assert.True(t, recs.TotalPotentialSavings.IsZero())
		assert.Equal(t, "PEN", recs.Currency)
	})
}

func TestClient_ChartData(t *testing.T) {
	tests := []struct {
		wantErr error
		name    string
		chart   model.ChartType
		body    string
		status  int
	}{
		{
			name:  "expense success",
			chart: model.ChartExpense,
			body:  `{"success":true,"data":{"labels":["Ene","Feb"],"datasets":[{"label":"Gasto","data":[10,20]}]}}`,
		},
		{
			name:    "empty labels is no data",
			chart:   model.ChartExpense,
			body:    `{"success":true,"data":{"labels":[],"datasets":[]}}`,
			wantErr: common.ErrNoData,
		},
		{
			name:    "missing data is no data",
			chart:   model.ChartSupplier,
			body:    `{"success":true}`,
			wantErr: common.ErrNoData,
		},
		{
			name:    "week labels are placeholders",
			chart:   model.ChartExpense,
			body:    `{"data":{"labels":["Semana 1","Semana 2"],"datasets":[]}}`,
			wantErr: common.ErrPlaceholderData,
		},
		{
			name:    "generic supplier names are placeholders",
			chart:   model.ChartSupplier,
			body:    `{"data":{"labels":["ACME SAC","empresa ABC SAC"],"datasets":[]}}`,
			wantErr: common.ErrPlaceholderData,
		},
		{
			name:    "single catch-all category is a placeholder",
			chart:   model.ChartCategory,
			body:    `{"data":{"labels":["Otros"],"datasets":[]}}`,
			wantErr: common.ErrPlaceholderData,
		},
		{
			name:  "catch-all among real categories is fine",
			chart: model.ChartCategory,
			body:  `{"data":{"labels":["Servicios","Otros"],"datasets":[]}}`,
		},
		{
			name:  "week labels are fine outside expense charts",
			chart: model.ChartCategory,
			body:  `{"data":{"labels":["Semana 1"],"datasets":[]}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/insights/chart-data/"+string(tt.chart), r.URL.Path)
				assert.Equal(t, "month", r.URL.Query().Get("period"))
				_, _ = w.Write([]byte(tt.body))
			})

			data, err := c.ChartData(context.Background(), tt.chart, "")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.True(t, IsNoData(err))
				assert.Nil(t, data)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, data.Labels)
		})
	}
}

func TestClient_ChartDataServiceError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"detail":"period must be one of week, month"}`))
	})

	data, err := c.ChartData(context.Background(), model.ChartExpense, "decade")
	assert.Nil(t, data)

	var se *common.ServiceError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "period must be one of week, month", se.Message)
	assert.False(t, IsNoData(err))
}

func TestClient_ChartDataCached(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"data":{"labels":["Ene"],"datasets":[{"label":"Gasto","data":[1]}]}}`))
	})

	first, err := c.ChartData(context.Background(), model.ChartExpense, "month")
	require.NoError(t, err)
	first.Labels[0] = "mutated"

	second, err := c.ChartData(context.Background(), model.ChartExpense, "month")
	require.NoError(t, err)
	assert.Equal(t, "Ene", second.Labels[0])
	assert.Equal(t, int32(1), calls.Load())

	_, err = c.ChartData(context.Background(), model.ChartExpense, "year")
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}
