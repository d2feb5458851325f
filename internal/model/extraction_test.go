package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexString(t *testing.T) {
	tests := []struct {
		raw  string
		want FlexString
	}{
		{raw: `"F001-1"`, want: "F001-1"},
		{raw: `12345`, want: "12345"},
		{raw: `118.5`, want: "118.5"},
		{raw: `null`, want: ""},
		{raw: `{"x":1}`, want: ""},
		{raw: `true`, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			var f FlexString
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &f))
			assert.Equal(t, tt.want, f)
		})
	}
}

func TestParseAmount(t *testing.T) {
	tests := map[string]string{
		"118.00":    "118",
		" 1,234.50": "1234.5",
		"-20":       "-20",
		"59.00 PEN": "59",
		"S/ 10":     "0",
		"":          "0",
		"N/A":       "0",
		".5":        "0.5",
		"-.25":      "-0.25",
		"1e3":       "1000",
		"2.5E-1":    "0.25",
		"5.":        "5",
		"1e":        "1",
		"1.2.3":     "1.2",
	}
	for in, want := range tests {
		assert.True(t, decimal.RequireFromString(want).Equal(ParseAmount(in)), "ParseAmount(%q) = %s", in, ParseAmount(in))
	}
}

func TestNewInvoice_FullPayload(t *testing.T) {
	payload := `{"invoice_id":"F001-1","doc_kind":"boleta","data":{"provider":{"ruc":20123456789,"razon_social":"ACME"},"invoice":{"numero":"F001-1","fecha":"2024-01-15","moneda":"USD","subtotal":"100.00","igv":"18.00","total":"118.00"},"items":[{"descripcion":"Papel","cantidad":2,"precio_unitario":"50","total":"100"}]}}`
	r, err := ParseExtractionResult([]byte(payload))
	require.NoError(t, err)

	inv := NewInvoice(r, time.Now(), func() string { t.Fatal("id generator must not be called"); return "" })

	assert.Equal(t, "F001-1", inv.ID)
	assert.Equal(t, "20123456789", inv.RUC)
	assert.Equal(t, "ACME", inv.Proveedor)
	assert.Equal(t, "USD", inv.Moneda)
	assert.Equal(t, DocKindBoleta, inv.DocKind)
	assert.Equal(t, InvoiceStatusProcessed, inv.Estado)
	assert.True(t, decimal.NewFromInt(118).Equal(inv.Total))
	assert.True(t, decimal.NewFromInt(18).Equal(inv.IGV))
	require.Len(t, inv.Items, 1)
	assert.Equal(t, LineItem{Descripcion: "Papel", Cantidad: "2", PrecioUnitario: "50", Total: "100"}, inv.Items[0])
	assert.JSONEq(t, payload, string(inv.RawData))
}

func TestNewInvoice_Defaults(t *testing.T) {
	now := time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC)
	inv := NewInvoice(ExtractionResult{}, now, func() string { return "INV-x" })

	assert.Equal(t, "INV-x", inv.ID)
	assert.Equal(t, "N/A", inv.Numero)
	assert.Equal(t, "N/A", inv.Proveedor)
	assert.Equal(t, "N/A", inv.RUC)
	assert.Equal(t, "2024-03-09", inv.Fecha)
	assert.Equal(t, "PEN", inv.Moneda)
	assert.Equal(t, DocKindFactura, inv.DocKind)
	assert.True(t, inv.Total.IsZero())
	assert.NotNil(t, inv.Items)
	assert.NotEmpty(t, inv.RawData)
}

func TestParseInvoiceDate(t *testing.T) {
	lima := time.FixedZone("PET", -5*3600)

	got, ok := ParseInvoiceDate("2024-01-31", lima)
	require.True(t, ok)
	assert.Equal(t, time.January, got.Month())
	assert.Equal(t, lima, got.Location())

	got, ok = ParseInvoiceDate("2024-02-01T02:00:00Z", lima)
	require.True(t, ok)
	assert.Equal(t, time.January, got.Month())

	_, ok = ParseInvoiceDate("31/01/2024", lima)
	assert.False(t, ok)
}
