package model

import (
	"encoding/json"
	"slices"

	"github.com/shopspring/decimal"
)

func init() {
	// Amounts travel as JSON numbers, matching the services' wire format.
	decimal.MarshalJSONWithoutQuotes = true
}

// DocKind is the closed set of billing document kinds.
type DocKind string

const (
	// DocKindFactura is a standard invoice.
	DocKindFactura DocKind = "factura"
	// DocKindBoleta is a sales receipt.
	DocKindBoleta DocKind = "boleta"
)

// ParseDocKind maps a raw tag onto a DocKind, defaulting to factura.
func ParseDocKind(s string) DocKind {
	if DocKind(s) == DocKindBoleta {
		return DocKindBoleta
	}
	return DocKindFactura
}

// Valid reports whether k is one of the known kinds.
func (k DocKind) Valid() bool {
	return k == DocKindFactura || k == DocKindBoleta
}

// InvoiceStatusProcessed is the status of every invoice accepted from extraction.
const InvoiceStatusProcessed = "procesado"

// LineItem is one line of an invoice, kept as the strings extraction produced.
type LineItem struct {
	Descripcion    string `json:"descripcion"`
	Cantidad       string `json:"cantidad"`
	PrecioUnitario string `json:"precio_unitario"`
	Total          string `json:"total"`
}

// Invoice represents one processed billing document.
type Invoice struct {
	ID        string          `json:"id"`
	Numero    string          `json:"numero"`
	Proveedor string          `json:"proveedor"`
	RUC       string          `json:"ruc"`
	Fecha     string          `json:"fecha"`
	Moneda    string          `json:"moneda"`
	Estado    string          `json:"estado"`
	DocKind   DocKind         `json:"doc_kind"`
	Items     []LineItem      `json:"items"`
	RawData   json.RawMessage `json:"raw_data,omitempty"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	IGV       decimal.Decimal `json:"igv"`
	Total     decimal.Decimal `json:"total"`
}

// Clone returns a copy that shares no slices with inv.
func (inv Invoice) Clone() Invoice {
	out := inv
	if inv.Items != nil {
		out.Items = slices.Clone(inv.Items)
	}
	if inv.RawData != nil {
		out.RawData = slices.Clone(inv.RawData)
	}
	return out
}

// SupplierStatus is the activity flag of a supplier aggregate.
type SupplierStatus string

const (
	SupplierActive   SupplierStatus = "activo"
	SupplierInactive SupplierStatus = "inactivo"
)

// Supplier is derived from the invoices sharing one tax identifier.
type Supplier struct {
	RUC           string          `json:"ruc"`
	RazonSocial   string          `json:"razon_social"`
	Estado        SupplierStatus  `json:"estado"`
	TotalGastado  decimal.Decimal `json:"total_gastado"`
	FacturasCount int             `json:"facturas_count"`
}

// Stats is a computed snapshot of the invoice collection.
type Stats struct {
	RecentInvoices []Invoice       `json:"recentInvoices"`
	TotalSpent     decimal.Decimal `json:"totalSpent"`
	MonthlySpent   decimal.Decimal `json:"monthlySpent"`
	InvoiceCount   int             `json:"invoiceCount"`
	SupplierCount  int             `json:"supplierCount"`
}

// ChatContext returns the aggregate figures passed to the chat service.
func (s Stats) ChatContext() ChatContext {
	return ChatContext{
		TotalSpent:     s.TotalSpent,
		TotalInvoices:  s.InvoiceCount,
		TotalSuppliers: s.SupplierCount,
	}
}

// BuildSuppliers derives supplier aggregates from invoices. Suppliers are
// returned in order of first appearance; the first invoice seen for a key
// names the supplier.
func BuildSuppliers(invoices []Invoice) []Supplier {
	index := make(map[string]int, len(invoices))
	suppliers := make([]Supplier, 0)

	for _, inv := range invoices {
		if i, ok := index[inv.RUC]; ok {
			suppliers[i].TotalGastado = suppliers[i].TotalGastado.Add(inv.Total)
			suppliers[i].FacturasCount++
			continue
		}
		index[inv.RUC] = len(suppliers)
		suppliers = append(suppliers, Supplier{
			RUC:           inv.RUC,
			RazonSocial:   inv.Proveedor,
			TotalGastado:  inv.Total,
			FacturasCount: 1,
			Estado:        SupplierActive,
		})
	}

	return suppliers
}
