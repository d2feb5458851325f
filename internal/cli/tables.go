package cli

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/MarcoMadridG27/Thesaurus/internal/model"
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(SubtleStyle).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return TableHeaderStyle
			}
			return TableCellStyle
		})
}

// InvoiceTable renders invoices newest first.
func InvoiceTable(invoices []model.Invoice) string {
	t := newTable("ID", "Número", "Proveedor", "RUC", "Fecha", "Tipo", "Total")
	for _, inv := range invoices {
		t.Row(inv.ID, inv.Numero, inv.Proveedor, inv.RUC, inv.Fecha, string(inv.DocKind), Money(inv.Total, inv.Moneda))
	}
	return t.Render()
}

// SupplierTable renders supplier aggregates.
func SupplierTable(suppliers []model.Supplier) string {
	t := newTable("RUC", "Razón social", "Facturas", "Total gastado", "Estado")
	for _, s := range suppliers {
		t.Row(s.RUC, s.RazonSocial, strconv.Itoa(s.FacturasCount), Money(s.TotalGastado, ""), string(s.Estado))
	}
	return t.Render()
}

// StatsBox renders the collection figures.
func StatsBox(stats model.Stats) string {
	content := fmt.Sprintf("Gasto total:  %s\nEste mes:     %s\nFacturas:     %d\nProveedores:  %d",
		Money(stats.TotalSpent, ""),
		Money(stats.MonthlySpent, ""),
		stats.InvoiceCount,
		stats.SupplierCount,
	)
	return RenderBox(ChartIcon+" Resumen", content)
}

// QuickStatsTable renders the tiles of an insights summary.
func QuickStatsTable(stats []model.QuickStat) string {
	t := newTable("Indicador", "Valor", "Cambio", "Tendencia")
	for _, s := range stats {
		value := s.Value
		if s.Currency != "" {
			value = s.Currency + " " + value
		}
		t.Row(s.Label, value, s.Change, s.Trend)
	}
	return t.Render()
}

// RecommendationTable renders savings suggestions.
func RecommendationTable(recs []model.Recommendation, currency string) string {
	t := newTable("Prioridad", "Recomendación", "Ahorro potencial")
	for _, r := range recs {
		t.Row(r.Priority, r.Title, Money(r.PotentialSavings, currency))
	}
	return t.Render()
}

// ChartTable renders chart series as one column per dataset.
func ChartTable(data *model.ChartData) string {
	headers := []string{""}
	for _, ds := range data.Datasets {
		headers = append(headers, ds.Label)
	}
	t := newTable(headers...)
	for i, label := range data.Labels {
		row := []string{label}
		for _, ds := range data.Datasets {
			cell := ""
			if i < len(ds.Data) {
				cell = strconv.FormatFloat(ds.Data[i], 'f', 2, 64)
			}
			row = append(row, cell)
		}
		t.Row(row...)
	}
	return t.Render()
}

// InsightLine renders a generated insight with its sentiment badge.
func InsightLine(insight *model.Insight) string {
	if insight == nil {
		return SubtleStyle.Render("Sin análisis disponible.")
	}
	badge := "[" + insight.Sentiment.Label() + "]"
	switch insight.Sentiment {
	case model.SentimentPositive:
		badge = SuccessStyle.Render(badge)
	case model.SentimentWarning:
		badge = WarningStyle.Render(badge)
	case model.SentimentNegative:
		badge = ErrorStyle.Render(badge)
	default:
		badge = SubtleStyle.Render(badge)
	}
	return RobotIcon + " " + badge + " " + insight.Text
}
