package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MarcoMadridG27/Thesaurus/internal/cli"
	"github.com/MarcoMadridG27/Thesaurus/internal/export"
)

func invoicesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invoices",
		Short: "List, remove and export invoices",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List invoices, newest first",
		RunE: withApp(true, func(cmd *cobra.Command, a *app, _ []string) error {
			st, err := a.openStore(cmd.Context(), false)
			if err != nil {
				return err
			}
			invoices := st.Invoices()
			if len(invoices) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("No hay facturas. Usa `thesaurus upload` para agregar."))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatTitle(cli.InvoiceIcon, fmt.Sprintf("Facturas (%d)", len(invoices))))
			fmt.Fprintln(cmd.OutOrStdout(), cli.InvoiceTable(invoices))
			return nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove <id>",
		Short: "Remove one invoice",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(true, func(cmd *cobra.Command, a *app, args []string) error {
			st, err := a.openStore(cmd.Context(), false)
			if err != nil {
				return err
			}
			if !st.RemoveInvoice(args[0]) {
				return fmt.Errorf("invoice %q not found", args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Factura "+args[0]+" eliminada"))
			return nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "export <file.xlsx>",
		Short: "Export invoices and suppliers to an Excel workbook",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(true, func(cmd *cobra.Command, a *app, args []string) error {
			st, err := a.openStore(cmd.Context(), false)
			if err != nil {
				return err
			}

			f, err := os.Create(args[0])
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", args[0], err)
			}
			if err := export.WriteWorkbook(f, st.Invoices(), st.Suppliers()); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("failed to write %s: %w", args[0], err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Exportado a "+args[0]))
			return nil
		}),
	})

	return cmd
}

func suppliersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "suppliers",
		Short: "List and remove suppliers",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List suppliers with their spend",
		RunE: withApp(true, func(cmd *cobra.Command, a *app, _ []string) error {
			st, err := a.openStore(cmd.Context(), false)
			if err != nil {
				return err
			}
			suppliers := st.Suppliers()
			if len(suppliers) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("No hay proveedores."))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.SupplierTable(suppliers))
			return nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove <ruc>",
		Short: "Remove a supplier and all of its invoices",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(true, func(cmd *cobra.Command, a *app, args []string) error {
			st, err := a.openStore(cmd.Context(), false)
			if err != nil {
				return err
			}
			n := st.RemoveSupplier(args[0])
			if n == 0 {
				return fmt.Errorf("supplier %q not found", args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Proveedor %s eliminado (%d factura(s))", args[0], n)))
			return nil
		}),
	})

	return cmd
}
