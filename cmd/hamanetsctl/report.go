package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"hamanets/internal/charts"
	"hamanets/internal/cli"
	"hamanets/internal/core"
	"hamanets/internal/export"
	"hamanets/internal/period"
	"hamanets/internal/stats"
)

func summaryCmd(o *rootOptions) *cobra.Command {
	var (
		offset    int
		chartPath string
	)
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show income, expenses and category totals for a month",
		Example: `  hamanetsctl summary
  hamanetsctl summary --offset 1 --chart last-month.png`,
		Args: cobra.NoArgs,
		RunE: o.withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			if offset < 0 {
				return fmt.Errorf("%w: offset counts months back and cannot be negative", core.ErrInvalidInput)
			}
			s := stats.Month(a.store.Transactions(), period.SystemClock.Now(), offset)
			if chartPath != "" {
				png, err := charts.NewGenerator().Categories(s, a.store.Categories())
				if err != nil {
					return err
				}
				if err := writeFile(chartPath, png); err != nil {
					return err
				}
			}
			if o.jsonOutput() {
				return printJSON(cmd.OutOrStdout(), s)
			}

			w := cmd.OutOrStdout()
			tag := a.locale()
			cur := a.store.Settings().DefaultCurrency
			printTitle(w, "Summary "+s.Label)
			printTable(w, []string{"Income", "Expenses", "Balance", "Transactions"}, [][]string{{
				core.FormatCurrencyIn(tag, s.TotalIncome, cur),
				core.FormatCurrencyIn(tag, s.TotalExpenses, cur),
				core.FormatCurrencyIn(tag, s.Balance, cur),
				fmt.Sprint(s.Count),
			}})
			if len(s.ByCategory) > 0 {
				rows := make([][]string, 0, len(s.ByCategory))
				for _, ca := range s.ByCategory {
					rows = append(rows, []string{
						categoryLabel(a, ca.CategoryID),
						core.FormatCurrencyIn(tag, ca.Amount, cur),
						fmt.Sprintf("%.0f%%", ca.Amount.Ratio(s.TotalExpenses)*100),
					})
				}
				printTable(w, []string{"Category", "Spent", "Share"}, rows)
			}
			if chartPath != "" {
				fmt.Fprintln(w, formatSuccess("Chart written to "+chartPath))
			}
			return nil
		}),
	}
	cmd.Flags().IntVarP(&offset, "offset", "o", 0, "months back from the current month")
	cmd.Flags().StringVar(&chartPath, "chart", "", "write a category pie chart PNG to this path")
	return cmd
}

func weeklyCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "weekly",
		Short: "Show income and expenses for each of the last seven days",
		Args:  cobra.NoArgs,
		RunE: o.withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			points := stats.Weekly(a.store.Transactions(), period.SystemClock.Now())
			return printSeries(cmd, o, a, "Last 7 days", points)
		}),
	}
}

func trendCmd(o *rootOptions) *cobra.Command {
	var chartPath string
	cmd := &cobra.Command{
		Use:   "trend",
		Short: "Show income and expenses for the last six months",
		Args:  cobra.NoArgs,
		RunE: o.withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			points := stats.SixMonths(a.store.Transactions(), period.SystemClock.Now())
			if chartPath != "" {
				png, err := charts.NewGenerator().SixMonths(points)
				if err != nil {
					return err
				}
				if err := writeFile(chartPath, png); err != nil {
					return err
				}
				defer fmt.Fprintln(cmd.OutOrStdout(), formatSuccess("Chart written to "+chartPath))
			}
			return printSeries(cmd, o, a, "Last 6 months", points)
		}),
	}
	cmd.Flags().StringVar(&chartPath, "chart", "", "write a bar chart PNG to this path")
	return cmd
}

func printSeries(cmd *cobra.Command, o *rootOptions, a *app, title string, points []core.SeriesPoint) error {
	if o.jsonOutput() {
		return printJSON(cmd.OutOrStdout(), points)
	}
	tag := a.locale()
	cur := a.store.Settings().DefaultCurrency
	rows := make([][]string, 0, len(points))
	for _, p := range points {
		rows = append(rows, []string{
			p.Label,
			core.FormatCurrencyIn(tag, p.Income, cur),
			core.FormatCurrencyIn(tag, p.Expenses, cur),
		})
	}
	printTitle(cmd.OutOrStdout(), title)
	printTable(cmd.OutOrStdout(), []string{"Period", "Income", "Expenses"}, rows)
	return nil
}

func budgetsCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "budgets",
		Short: "Show budgets with spending measured now",
		Args:  cobra.NoArgs,
		RunE: o.withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			statuses := stats.WithSpent(a.store.Budgets(), a.store.Transactions(), period.SystemClock.Now(), cli.BudgetPolicy(a.cfg))
			if o.jsonOutput() {
				return printJSON(cmd.OutOrStdout(), statuses)
			}
			tag := a.locale()
			rows := make([][]string, 0, len(statuses))
			for _, st := range statuses {
				rows = append(rows, []string{
					categoryLabel(a, st.CategoryID),
					string(st.Period),
					core.FormatCurrencyIn(tag, st.Spent, st.Currency),
					core.FormatCurrencyIn(tag, st.Amount, st.Currency),
					budgetState(st),
				})
			}
			printTitle(cmd.OutOrStdout(), "Budgets")
			printTable(cmd.OutOrStdout(), []string{"Category", "Period", "Spent", "Limit", "Status"}, rows)
			return nil
		}),
	}
}

func budgetState(st core.BudgetStatus) string {
	pct := fmt.Sprintf("%.0f%%", st.Ratio*100)
	switch {
	case st.IsOver:
		return errorStyle.Render(pct + " over")
	case st.IsNear:
		return warningStyle.Render(pct + " near")
	default:
		return successStyle.Render(pct)
	}
}

func forecastCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "forecast",
		Short: "Predict next month's expenses from the last three months",
		Args:  cobra.NoArgs,
		RunE: o.withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			next := stats.PredictNextMonth(a.store.Transactions(), period.SystemClock.Now())
			cur := a.store.Settings().DefaultCurrency
			if o.jsonOutput() {
				return printJSON(cmd.OutOrStdout(), map[string]any{"nextMonth": next, "currency": cur})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Expected expenses next month: %s\n", core.FormatCurrencyIn(a.locale(), next, cur))
			return nil
		}),
	}
}

func exportCmd(o *rootOptions) *cobra.Command {
	var (
		outPath string
		quote   bool
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export every transaction as CSV",
		Example: `  hamanetsctl export > ledger.csv
  hamanetsctl export --quote -o ledger.csv`,
		Args: cobra.NoArgs,
		RunE: o.withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			opts := []export.Option{
				export.WithLabels(cli.Labels(a.cfg)),
				export.WithLocation(period.SystemClock.Now().Location()),
			}
			if quote {
				opts = append(opts, export.WithQuoting())
			}
			csv := export.ToCSV(a.store.Transactions(), a.store.Categories(), opts...)
			if outPath == "" {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), csv)
				return err
			}
			if err := writeFile(outPath, []byte(csv+"\n")); err != nil {
				return err
			}
			fmt.Fprintln(cmd.ErrOrStderr(), formatSuccess(fmt.Sprintf("Exported %d transactions to %s", len(a.store.Transactions()), outPath)))
			return nil
		}),
	}
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "write to this file instead of stdout")
	cmd.Flags().BoolVar(&quote, "quote", false, "quote fields so descriptions may contain commas")
	return cmd
}

func categoryLabel(a *app, id string) string {
	if c, ok := a.store.Category(id); ok {
		return c.Icon + " " + c.Name
	}
	return id
}

func writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
