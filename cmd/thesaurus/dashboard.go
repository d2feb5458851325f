package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/MarcoMadridG27/Thesaurus/internal/cli"
	"github.com/MarcoMadridG27/Thesaurus/internal/model"
)

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show spending figures and the latest insight",
		RunE: withApp(true, func(cmd *cobra.Command, a *app, _ []string) error {
			st, err := a.openStore(cmd.Context(), false)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, cli.StatsBox(st.Stats()))
			if analysis, at, ok := st.LatestAnalysis(); ok && analysis.AIInsight != nil {
				line := cli.InsightLine(analysis.AIInsight)
				if !at.IsZero() {
					line += " " + cli.SubtleStyle.Render("("+model.RelativeTime(time.Now(), at)+")")
				}
				fmt.Fprintln(out, line)
			}
			return nil
		}),
	}
}

func analyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze",
		Short: "Re-run the analysis of all invoices",
		RunE: withApp(true, func(cmd *cobra.Command, a *app, _ []string) error {
			if _, err := a.insightsClient(); err != nil {
				return err
			}
			st, err := a.openStore(cmd.Context(), false)
			if err != nil {
				return err
			}

			analysis, err := st.ForceAnalyze(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if analysis == nil {
				fmt.Fprintln(out, cli.FormatInfo("No hay facturas para analizar."))
				return nil
			}
			fmt.Fprintln(out, cli.InsightLine(analysis.AIInsight))
			if s := analysis.Summary; s != nil {
				fmt.Fprintf(out, "%s · %d facturas · %d proveedores · crecimiento %s%%\n",
					cli.Money(s.TotalSpent, ""), s.TotalInvoices, s.TotalSuppliers, s.GrowthPercentage.StringFixed(1))
			}
			return nil
		}),
	}
}

func clearCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every stored invoice",
		RunE: withApp(true, func(cmd *cobra.Command, a *app, _ []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			if !force {
				fmt.Fprint(out, cli.FormatWarning("¿Eliminar todas las facturas? (s/N) "))
				answer, err := cli.NewLineReader(cmd.InOrStdin(), out).ReadLine(ctx)
				if err != nil {
					return err
				}
				if a := strings.ToLower(answer); a != "s" && a != "si" && a != "sí" && a != "y" {
					fmt.Fprintln(out, cli.FormatInfo("Cancelado"))
					return nil
				}
			}

			st, err := a.openStore(ctx, false)
			if err != nil {
				return err
			}
			st.ClearAll()
			fmt.Fprintln(out, cli.FormatSuccess("Todas las facturas fueron eliminadas"))
			return nil
		}),
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip confirmation")

	return cmd
}
