package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MarcoMadridG27/Thesaurus/internal/cli"
	"github.com/MarcoMadridG27/Thesaurus/internal/insights"
	"github.com/MarcoMadridG27/Thesaurus/internal/model"
)

func insightsCmd() *cobra.Command {
	var period string

	cmd := &cobra.Command{
		Use:   "insights",
		Short: "Query the analytics service",
	}
	cmd.PersistentFlags().StringVar(&period, "period", model.PeriodMonth, "period (week, month, quarter, year)")

	cmd.AddCommand(&cobra.Command{
		Use:   "summary",
		Short: "Show the quick stats of a period",
		RunE: withApp(true, func(cmd *cobra.Command, a *app, _ []string) error {
			client, err := a.insightsClient()
			if err != nil {
				return err
			}
			summary, err := client.Summary(cmd.Context(), period)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, cli.FormatTitle(cli.ChartIcon, "Resumen ("+summary.Period+")"))
			fmt.Fprintln(out, cli.QuickStatsTable(summary.QuickStats))
			fmt.Fprintln(out, cli.InsightLine(summary.LatestInsight))
			return nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "recommendations",
		Short: "Show savings recommendations",
		RunE: withApp(true, func(cmd *cobra.Command, a *app, _ []string) error {
			client, err := a.insightsClient()
			if err != nil {
				return err
			}
			recs, err := client.Recommendations(cmd.Context(), period)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(recs.Recommendations) == 0 {
				fmt.Fprintln(out, cli.FormatInfo("No hay recomendaciones para este periodo."))
				return nil
			}
			fmt.Fprintln(out, cli.RecommendationTable(recs.Recommendations, recs.Currency))
			fmt.Fprintln(out, cli.BoldStyle.Render("Ahorro potencial total: "+cli.Money(recs.TotalPotentialSavings, recs.Currency)))
			return nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:       "chart <expense|category|supplier>",
		Short:     "Show the data behind a dashboard chart",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(model.ChartExpense), string(model.ChartCategory), string(model.ChartSupplier)},
		RunE: withApp(true, func(cmd *cobra.Command, a *app, args []string) error {
			chart, err := model.ParseChartType(args[0])
			if err != nil {
				return err
			}
			client, err := a.insightsClient()
			if err != nil {
				return err
			}

			data, err := client.ChartData(cmd.Context(), chart, period)
			if insights.IsNoData(err) {
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("No hay datos suficientes para este gráfico: "+err.Error()))
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.ChartTable(data))
			return nil
		}),
	})

	return cmd
}
