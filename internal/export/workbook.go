// Package export writes the invoice collection to spreadsheet files.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/MarcoMadridG27/Thesaurus/internal/model"
)

// Sheet names.
const (
	InvoicesSheet  = "Facturas"
	SuppliersSheet = "Proveedores"
)

var (
	invoiceHeader  = []any{"ID", "Número", "Proveedor", "RUC", "Fecha", "Moneda", "Tipo", "Estado", "Ítems", "Subtotal", "IGV", "Total"}
	supplierHeader = []any{"RUC", "Razón social", "Estado", "Facturas", "Total gastado"}
)

// WriteWorkbook writes invoices and suppliers as an xlsx workbook with one
// sheet each. Invoices keep the order given; a closing row sums the
// invoice amounts.
func WriteWorkbook(w io.Writer, invoices []model.Invoice, suppliers []model.Supplier) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), InvoicesSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(SuppliersSheet); err != nil {
		return fmt.Errorf("create %s sheet: %w", SuppliersSheet, err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	money, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	if err != nil {
		return fmt.Errorf("create amount style: %w", err)
	}

	if err := writeRows(f, InvoicesSheet, invoiceRows(invoices)); err != nil {
		return err
	}
	if err := writeRows(f, SuppliersSheet, supplierRows(suppliers)); err != nil {
		return err
	}

	last := len(invoices) + 1
	totalRow := last + 1
	if err := f.SetCellValue(InvoicesSheet, cell("I", totalRow), "Total"); err != nil {
		return err
	}
	for _, col := range []string{"J", "K", "L"} {
		formula := "0"
		if len(invoices) > 0 {
			formula = fmt.Sprintf("SUM(%s2:%s%d)", col, col, last)
		}
		if err := f.SetCellFormula(InvoicesSheet, cell(col, totalRow), formula); err != nil {
			return fmt.Errorf("set total formula: %w", err)
		}
	}

	styles := []struct {
		sheet       string
		from, to    string
		style       int
		first, last int
	}{
		{InvoicesSheet, "A", "L", bold, 1, 1},
		{InvoicesSheet, "I", "L", bold, totalRow, totalRow},
		{InvoicesSheet, "J", "L", money, 2, totalRow},
		{SuppliersSheet, "A", "E", bold, 1, 1},
		{SuppliersSheet, "E", "E", money, 2, len(suppliers) + 1},
	}
	for _, s := range styles {
		if s.last < s.first {
			continue
		}
		if err := f.SetCellStyle(s.sheet, cell(s.from, s.first), cell(s.to, s.last), s.style); err != nil {
			return fmt.Errorf("style %s: %w", s.sheet, err)
		}
	}

	_ = f.SetColWidth(InvoicesSheet, "B", "C", 28)
	_ = f.SetColWidth(InvoicesSheet, "D", "E", 14)
	_ = f.SetColWidth(SuppliersSheet, "A", "A", 14)
	_ = f.SetColWidth(SuppliersSheet, "B", "B", 36)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func invoiceRows(invoices []model.Invoice) [][]any {
	rows := make([][]any, 0, len(invoices)+1)
	rows = append(rows, invoiceHeader)
	for _, inv := range invoices {
		rows = append(rows, []any{
			inv.ID,
			inv.Numero,
			inv.Proveedor,
			inv.RUC,
			inv.Fecha,
			inv.Moneda,
			string(inv.DocKind),
			inv.Estado,
			len(inv.Items),
			inv.Subtotal.InexactFloat64(),
			inv.IGV.InexactFloat64(),
			inv.Total.InexactFloat64(),
		})
	}
	return rows
}

func supplierRows(suppliers []model.Supplier) [][]any {
	rows := make([][]any, 0, len(suppliers)+1)
	rows = append(rows, supplierHeader)
	for _, s := range suppliers {
		rows = append(rows, []any{
			s.RUC,
			s.RazonSocial,
			string(s.Estado),
			s.FacturasCount,
			s.TotalGastado.InexactFloat64(),
		})
	}
	return rows
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		if err := f.SetSheetRow(sheet, cell("A", i+1), &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
