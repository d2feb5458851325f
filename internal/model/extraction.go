package model

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// FlexString accepts a JSON string, number or null. Anything else decodes
// to the empty string instead of failing the whole payload.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0, bytes.Equal(b, []byte("null")):
		*f = ""
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			*f = ""
			return nil
		}
		*f = FlexString(s)
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			*f = ""
			return nil
		}
		*f = FlexString(n.String())
	}
	return nil
}

// ExtractionProvider identifies the issuer of an extracted document.
type ExtractionProvider struct {
	RUC         FlexString `json:"ruc"`
	RazonSocial FlexString `json:"razon_social"`
}

// ExtractionHeader holds the invoice header fields, all as strings.
type ExtractionHeader struct {
	Numero   FlexString `json:"numero"`
	Fecha    FlexString `json:"fecha"`
	Moneda   FlexString `json:"moneda"`
	Subtotal FlexString `json:"subtotal"`
	IGV      FlexString `json:"igv"`
	Total    FlexString `json:"total"`
}

// ExtractionItem is one extracted line item.
type ExtractionItem struct {
	Descripcion    FlexString `json:"descripcion"`
	Cantidad       FlexString `json:"cantidad"`
	PrecioUnitario FlexString `json:"precio_unitario"`
	Total          FlexString `json:"total"`
}

// ExtractionData is the normalized body of an extraction result.
type ExtractionData struct {
	Provider *ExtractionProvider `json:"provider"`
	Invoice  *ExtractionHeader   `json:"invoice"`
	Items    []ExtractionItem    `json:"items"`
}

// ExtractionResult is the output of the extraction service for one document.
// Raw keeps the payload exactly as received.
type ExtractionResult struct {
	Data      *ExtractionData `json:"data"`
	InvoiceID FlexString      `json:"invoice_id"`
	DocKind   FlexString      `json:"doc_kind"`
	Raw       json.RawMessage `json:"-"`
}

// UnmarshalJSON decodes the typed fields and keeps the raw payload.
func (r *ExtractionResult) UnmarshalJSON(b []byte) error {
	type alias ExtractionResult
	var a alias
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	*r = ExtractionResult(a)
	r.Raw = append(json.RawMessage(nil), b...)
	return nil
}

// ParseExtractionResult decodes one extraction payload.
func ParseExtractionResult(b []byte) (ExtractionResult, error) {
	var r ExtractionResult
	if err := json.Unmarshal(b, &r); err != nil {
		return ExtractionResult{}, err
	}
	return r, nil
}

const notAvailable = "N/A"

var amountPrefix = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// ParseAmount reads a decimal from an upstream string. Thousands separators
// and surrounding spaces are ignored. The longest leading numeric prefix is
// used, including bare fractions like ".5" and exponents like "1e3";
// anything unreadable yields zero.
func ParseAmount(s string) decimal.Decimal {
	clean := strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	m := amountPrefix.FindString(clean)
	if m == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(m)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func orDefault(s FlexString, def string) string {
	if v := strings.TrimSpace(string(s)); v != "" {
		return v
	}
	return def
}

// NewInvoice builds an Invoice from an extraction result applying the
// defaulting rules for missing or malformed fields. newID supplies the
// placeholder identifier when the result carries none.
func NewInvoice(r ExtractionResult, now time.Time, newID func() string) Invoice {
	var (
		provider ExtractionProvider
		header   ExtractionHeader
		items    []ExtractionItem
	)
	if r.Data != nil {
		if r.Data.Provider != nil {
			provider = *r.Data.Provider
		}
		if r.Data.Invoice != nil {
			header = *r.Data.Invoice
		}
		items = r.Data.Items
	}

	id := strings.TrimSpace(string(r.InvoiceID))
	if id == "" {
		id = newID()
	}

	lines := make([]LineItem, 0, len(items))
	for _, it := range items {
		lines = append(lines, LineItem{
			Descripcion:    string(it.Descripcion),
			Cantidad:       string(it.Cantidad),
			PrecioUnitario: string(it.PrecioUnitario),
			Total:          string(it.Total),
		})
	}

	var raw json.RawMessage
	if len(r.Raw) > 0 {
		raw = append(json.RawMessage(nil), r.Raw...)
	} else if b, err := json.Marshal(r); err == nil {
		raw = b
	}

	return Invoice{
		ID:        id,
		Numero:    orDefault(header.Numero, notAvailable),
		Proveedor: orDefault(provider.RazonSocial, notAvailable),
		RUC:       orDefault(provider.RUC, notAvailable),
		Fecha:     orDefault(header.Fecha, now.Format(time.DateOnly)),
		Moneda:    orDefault(header.Moneda, "PEN"),
		Subtotal:  ParseAmount(string(header.Subtotal)),
		IGV:       ParseAmount(string(header.IGV)),
		Total:     ParseAmount(string(header.Total)),
		Estado:    InvoiceStatusProcessed,
		DocKind:   ParseDocKind(strings.TrimSpace(string(r.DocKind))),
		Items:     lines,
		RawData:   raw,
	}
}

// ParseInvoiceDate reads an invoice date in YYYY-MM-DD or RFC 3339 form.
func ParseInvoiceDate(s string, loc *time.Location) (time.Time, bool) {
	if t, err := time.ParseInLocation(time.DateOnly, s, loc); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.In(loc), true
	}
	return time.Time{}, false
}
