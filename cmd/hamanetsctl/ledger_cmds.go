package main

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"hamanets/internal/core"
	"hamanets/internal/ledger"
	"hamanets/internal/period"
	"hamanets/internal/services"
)

const dateLayout = "2006-01-02"

func addCmd(o *rootOptions) *cobra.Command {
	var (
		typ         string
		amount      string
		categoryID  string
		description string
		date        string
		currency    string
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a transaction",
		Example: `  hamanetsctl add --amount 125,50 --category food --description "Groceries"
  hamanetsctl add --type income --amount 30000 --category salary --date 2024-03-01`,
		Args: cobra.NoArgs,
		RunE: o.withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			m, err := core.ParseMoney(amount)
			if err != nil {
				return err
			}
			tx := core.Transaction{
				Type:        core.TransactionType(strings.ToLower(typ)),
				Amount:      m,
				Currency:    core.Currency(strings.ToUpper(currency)),
				CategoryID:  categoryID,
				Description: strings.TrimSpace(description),
			}
			if date != "" {
				d, err := time.ParseInLocation(dateLayout, date, time.Local)
				if err != nil {
					return fmt.Errorf("%w: date must look like 2006-01-02", core.ErrInvalidInput)
				}
				tx.Date = d.Add(12 * time.Hour)
			}
			saved, err := a.svc.AddTransaction(cmd.Context(), tx)
			if err != nil {
				return err
			}
			if o.jsonOutput() {
				return printJSON(cmd.OutOrStdout(), saved)
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatSuccess(fmt.Sprintf("Added %s %s in %s (%s)",
				saved.Type, core.FormatCurrencyIn(a.locale(), saved.Amount, saved.Currency),
				categoryLabel(a, saved.CategoryID), saved.ID)))
			return nil
		}),
	}
	f := cmd.Flags()
	f.StringVarP(&typ, "type", "t", string(core.Expense), "income or expense")
	f.StringVarP(&amount, "amount", "a", "", "amount, dot or comma decimal separator")
	f.StringVarP(&categoryID, "category", "c", "", "category id")
	f.StringVarP(&description, "description", "d", "", "free text description")
	f.StringVar(&date, "date", "", "transaction date (default today)")
	f.StringVar(&currency, "currency", "", "ISO currency code (default from settings)")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("category")
	return cmd
}

func categoriesCmd(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "List and manage categories",
	}

	var accepts string
	list := &cobra.Command{
		Use:   "list",
		Short: "List categories",
		Args:  cobra.NoArgs,
		RunE: o.withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			var cats []core.Category
			for _, c := range a.store.Categories() {
				if accepts == "" || c.Accepts(core.TransactionType(accepts)) {
					cats = append(cats, c)
				}
			}
			if o.jsonOutput() {
				return printJSON(cmd.OutOrStdout(), cats)
			}
			rows := make([][]string, 0, len(cats))
			for _, c := range cats {
				kind := "built-in"
				if c.IsCustom {
					kind = "custom"
				}
				rows = append(rows, []string{c.ID, c.Icon + " " + c.Name, string(c.Type), kind})
			}
			printTable(cmd.OutOrStdout(), []string{"ID", "Name", "Type", "Kind"}, rows)
			return nil
		}),
	}
	list.Flags().StringVar(&accepts, "accepts", "", "only categories usable for this transaction type")

	var c core.Category
	var ctype string
	add := &cobra.Command{
		Use:   "add",
		Short: "Create a custom category",
		Args:  cobra.NoArgs,
		RunE: o.withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			c.Type = core.CategoryType(ctype)
			saved, err := a.svc.AddCategory(cmd.Context(), c)
			if err != nil {
				return err
			}
			if o.jsonOutput() {
				return printJSON(cmd.OutOrStdout(), saved)
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatSuccess("Created category "+saved.Name+" ("+saved.ID+")"))
			return nil
		}),
	}
	add.Flags().StringVar(&c.Name, "name", "", "display name")
	add.Flags().StringVar(&c.Icon, "icon", "📦", "emoji icon")
	add.Flags().StringVar(&c.Color, "color", "#AEB6BF", "hex color")
	add.Flags().StringVar(&ctype, "type", string(core.CategoryExpense), "income, expense or both")
	_ = add.MarkFlagRequired("name")

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a custom category",
		Args:  cobra.ExactArgs(1),
		RunE: o.withApp(func(cmd *cobra.Command, args []string, a *app) error {
			deleted, err := a.svc.DeleteCategory(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !deleted {
				return fmt.Errorf("category %q not found", args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatSuccess("Deleted category "+args[0]))
			return nil
		}),
	}

	cmd.AddCommand(list, add, del)
	return cmd
}

func remindersCmd(o *rootOptions) *cobra.Command {
	var (
		days int
		all  bool
	)
	cmd := &cobra.Command{
		Use:   "reminders",
		Short: "Show upcoming payment reminders",
		Args:  cobra.NoArgs,
		RunE: o.withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			now := period.SystemClock.Now()
			var due []services.DueReminder
			if all {
				for _, r := range a.store.Reminders() {
					next := services.NextDue(r, now)
					due = append(due, services.DueReminder{Reminder: r, NextDue: next, Overdue: next.Before(period.StartOfDay(now))})
				}
			} else {
				due = services.Upcoming(a.store.Reminders(), now, days)
			}
			if o.jsonOutput() {
				return printJSON(cmd.OutOrStdout(), due)
			}
			if len(due) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), subtleStyle.Render(fmt.Sprintf("Nothing due in the next %d days", days)))
				return nil
			}
			tag := a.locale()
			rows := make([][]string, 0, len(due))
			for _, d := range due {
				when := d.NextDue.Format(dateLayout)
				if d.Overdue {
					when = errorStyle.Render(when + " overdue")
				}
				if !d.IsActive {
					when = subtleStyle.Render(when + " inactive")
				}
				rows = append(rows, []string{when, d.Title, core.FormatCurrencyIn(tag, d.Amount, d.Currency), string(d.RecurringInterval)})
			}
			printTable(cmd.OutOrStdout(), []string{"Due", "Title", "Amount", "Repeats"}, rows)
			return nil
		}),
	}
	cmd.Flags().IntVar(&days, "days", 7, "look ahead this many days")
	cmd.Flags().BoolVar(&all, "all", false, "list every reminder, including inactive ones")
	return cmd
}

func seedCmd(o *rootOptions) *cobra.Command {
	var seed int64
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Add generated demo transactions spread over recent months",
		Args:  cobra.NoArgs,
		RunE: o.withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			if seed == 0 {
				seed = time.Now().UnixNano()
			}
			txns := ledger.DemoTransactions(period.SystemClock.Now(), rand.New(rand.NewSource(seed)), nil)
			added, rejects, err := a.svc.ImportTransactions(cmd.Context(), txns)
			if err != nil {
				return err
			}
			for _, r := range rejects {
				fmt.Fprintln(cmd.ErrOrStderr(), formatWarning(r.Error()))
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatSuccess(fmt.Sprintf("Added %d demo transactions", added)))
			return nil
		}),
	}
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed for repeatable data (default: time based)")
	return cmd
}
