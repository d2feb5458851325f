package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Sentiment classifies a generated insight.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentWarning  Sentiment = "warning"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// Label returns the dashboard badge text for the sentiment.
func (s Sentiment) Label() string {
	switch s {
	case SentimentPositive:
		return "Positivo"
	case SentimentWarning:
		return "Alerta"
	case SentimentNegative:
		return "Crítico"
	default:
		return "Neutral"
	}
}

// Insight is a generated narrative about the invoice collection.
type Insight struct {
	ID        FlexString `json:"id"`
	Text      string     `json:"text"`
	Sentiment Sentiment  `json:"sentiment"`
	Priority  string     `json:"priority"`
	CreatedAt string     `json:"created_at"`
}

// CreatedTime parses CreatedAt, reporting false when it is not RFC 3339.
func (i Insight) CreatedTime() (time.Time, bool) {
	t, err := time.Parse(time.RFC3339, i.CreatedAt)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// SummaryTotals are the headline figures of an insights summary.
type SummaryTotals struct {
	TotalSpent       decimal.Decimal `json:"total_spent"`
	GrowthPercentage decimal.Decimal `json:"growth_percentage"`
	TotalInvoices    int             `json:"total_invoices"`
	TotalSuppliers   int             `json:"total_suppliers"`
}

// Analysis is the result of analysing the full invoice collection.
type Analysis struct {
	AIInsight *Insight       `json:"ai_insight,omitempty"`
	Summary   *SummaryTotals `json:"summary,omitempty"`
	Period    string         `json:"period,omitempty"`
	Success   bool           `json:"success"`
}

// QuickStat is one dashboard tile of the insights summary.
type QuickStat struct {
	Label    string `json:"label"`
	Value    string `json:"value"`
	Currency string `json:"currency,omitempty"`
	Change   string `json:"change"`
	Trend    string `json:"trend"`
}

// Summary is the quick-stats view of a period.
type Summary struct {
	LatestInsight *Insight      `json:"latest_insight"`
	Period        string        `json:"period"`
	QuickStats    []QuickStat   `json:"quick_stats"`
	Summary       SummaryTotals `json:"summary"`
	Success       bool          `json:"success"`
}

// EmptySummary is what a period without analysable data looks like.
func EmptySummary(period string, now time.Time) *Summary {
	return &Summary{
		Success: true,
		Period:  period,
		LatestInsight: &Insight{
			ID:        "0",
			Text:      "No hay datos de análisis disponibles. Sube facturas para comenzar.",
			Sentiment: SentimentNeutral,
			Priority:  "low",
			CreatedAt: now.UTC().Format(time.RFC3339),
		},
		QuickStats: []QuickStat{
			{Label: fmt.Sprintf("Gasto total (%s)", period), Value: "0.00", Currency: "PEN", Change: "0%", Trend: "neutral"},
			{Label: "Facturas procesadas", Value: "0", Change: "0", Trend: "neutral"},
			{Label: "Proveedores activos", Value: "0", Change: "0", Trend: "neutral"},
			{Label: "Ahorro potencial", Value: "0.00", Currency: "PEN", Change: "N/A", Trend: "neutral"},
		},
	}
}

// Recommendation is one savings suggestion.
type Recommendation struct {
	Title            string          `json:"title"`
	Description      string          `json:"description"`
	Priority         string          `json:"priority"`
	Category         string          `json:"category,omitempty"`
	PotentialSavings decimal.Decimal `json:"potential_savings"`
}

// Recommendations is the recommendations view of a period.
type Recommendations struct {
	Currency              string           `json:"currency"`
	Recommendations       []Recommendation `json:"recommendations"`
	TotalPotentialSavings decimal.Decimal  `json:"total_potential_savings"`
	Success               bool             `json:"success"`
}

// EmptyRecommendations is what a period without analysable data looks like.
func EmptyRecommendations() *Recommendations {
	return &Recommendations{
		Success:         true,
		Recommendations: []Recommendation{},
		Currency:        "PEN",
	}
}

// ChartType selects a chart series.
type ChartType string

const (
	ChartExpense  ChartType = "expense"
	ChartCategory ChartType = "category"
	ChartSupplier ChartType = "supplier"
)

// ParseChartType validates a chart type name.
func ParseChartType(s string) (ChartType, error) {
	switch t := ChartType(s); t {
	case ChartExpense, ChartCategory, ChartSupplier:
		return t, nil
	default:
		return "", fmt.Errorf("unknown chart type %q", s)
	}
}

// Period values accepted by the chart and summary endpoints.
const (
	PeriodWeek    = "week"
	PeriodMonth   = "month"
	PeriodQuarter = "quarter"
	PeriodYear    = "year"
)

// ChartDataset is one labelled series.
type ChartDataset struct {
	Label string    `json:"label"`
	Data  []float64 `json:"data"`
}

// ChartData is label/series data for one chart.
type ChartData struct {
	Labels   []string       `json:"labels"`
	Datasets []ChartDataset `json:"datasets"`
}

// RelativeTime renders how long ago t was, as shown next to insights.
func RelativeTime(now, t time.Time) string {
	diff := now.Sub(t)
	if diff < 0 {
		diff = 0
	}
	mins := int(diff / time.Minute)
	hours := int(diff / time.Hour)

	switch {
	case mins < 60:
		return fmt.Sprintf("Hace %d min", mins)
	case hours < 24:
		return fmt.Sprintf("Hace %dh", hours)
	default:
		return fmt.Sprintf("Hace %dd", hours/24)
	}
}
