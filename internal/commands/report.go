package commands

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"ledger-engine/internal/app"
	"ledger-engine/internal/db"
	"ledger-engine/internal/store"
)

func newReportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Build financial statements from the command line",
	}

	var asOf string
	cmd.PersistentFlags().StringVar(&asOf, "as-of", "", "statement cutoff date (YYYY-MM-DD, default today)")

	cmd.AddCommand(&cobra.Command{
		Use:   "balance-sheet",
		Short: "Print the balance sheet",
		RunE: func(c *cobra.Command, _ []string) error {
			return withService(c.Context(), func(ctx context.Context, svc app.ApplicationService) error {
				cutoff, err := parseAsOf(asOf)
				if err != nil {
					return err
				}
				result, err := svc.GetBalanceSheet(ctx, cutoff)
				if err != nil {
					return err
				}
				renderBalanceSheet(c.OutOrStdout(), result)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "pnl",
		Short: "Print the profit and loss statement",
		RunE: func(c *cobra.Command, _ []string) error {
			return withService(c.Context(), func(ctx context.Context, svc app.ApplicationService) error {
				cutoff, err := parseAsOf(asOf)
				if err != nil {
					return err
				}
				result, err := svc.GetProfitAndLoss(ctx, cutoff)
				if err != nil {
					return err
				}
				renderProfitAndLoss(c.OutOrStdout(), result)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "trial-balance",
		Short: "Print the per-ledger trial balance",
		RunE: func(c *cobra.Command, _ []string) error {
			return withService(c.Context(), func(ctx context.Context, svc app.ApplicationService) error {
				cutoff, err := parseAsOf(asOf)
				if err != nil {
					return err
				}
				result, err := svc.GetTrialBalance(ctx, cutoff)
				if err != nil {
					return err
				}
				renderTrialBalance(c.OutOrStdout(), result)
				return nil
			})
		},
	})

	return cmd
}

func parseAsOf(raw string) (time.Time, error) {
	if raw == "" {
		return time.Now(), nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --as-of date %q, expected YYYY-MM-DD", raw)
	}
	return t, nil
}

// withService connects to the database, wires the application service, runs
// fn, and tears the pool down afterwards.
func withService(ctx context.Context, fn func(context.Context, app.ApplicationService) error) error {
	_ = godotenv.Load()

	pool, err := db.NewPool(ctx)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer pool.Close()

	st := store.New(pool)
	svc := app.NewAppService(app.Repositories{
		Groups:   st,
		Ledgers:  st,
		Vouchers: st,
		Invoices: st,
		Stock:    st,
	})
	return fn(ctx, svc)
}

func renderBalanceSheet(w io.Writer, bs *app.BalanceSheetResult) {
	fmt.Fprintf(w, "Balance Sheet as of %s\n\n", bs.AsOf)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	renderSection(tw, bs.Assets)
	renderSection(tw, bs.Liabilities)
	renderSection(tw, bs.Equity)
	fmt.Fprintf(tw, "Profit and Loss\t%s\n", bs.ProfitAndLoss)
	fmt.Fprintln(tw)
	fmt.Fprintf(tw, "Total Assets\t%s\n", bs.TotalAssets)
	fmt.Fprintf(tw, "Total Liabilities and Equity\t%s\n", bs.TotalLiabilitiesAndEquity)
	tw.Flush()

	if !bs.Balanced {
		fmt.Fprintf(w, "\nWARNING: accounting identity off by %s\n", bs.IdentityDelta)
	}
	renderWarnings(w, bs.Warnings)
}

func renderProfitAndLoss(w io.Writer, pl *app.ProfitAndLossResult) {
	fmt.Fprintf(w, "Profit and Loss as of %s\n\n", pl.AsOf)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	renderSection(tw, pl.Income)
	renderSection(tw, pl.Expense)
	fmt.Fprintf(tw, "Net Profit\t%s\n", pl.NetProfit)
	tw.Flush()

	renderWarnings(w, pl.Warnings)
}

func renderTrialBalance(w io.Writer, tb *app.TrialBalanceResult) {
	fmt.Fprintf(w, "Trial Balance as of %s\n\n", tb.AsOf)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "Ledger\tDebit\tCredit")
	for _, row := range tb.Rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", row.Name, row.Debit, row.Credit)
	}
	fmt.Fprintf(tw, "Total\t%s\t%s\n", tb.TotalDebit, tb.TotalCredit)
	tw.Flush()

	if !tb.Balanced {
		fmt.Fprintln(w, "\nWARNING: debit and credit totals disagree")
	}
	renderWarnings(w, tb.Warnings)
}

func renderSection(tw *tabwriter.Writer, s app.SectionDTO) {
	fmt.Fprintf(tw, "%s\t%s\n", s.Label, s.Total)
	for _, g := range s.Groups {
		renderGroup(tw, g, 1)
	}
	fmt.Fprintln(tw)
}

func renderGroup(tw *tabwriter.Writer, g app.GroupDTO, depth int) {
	indent := strings.Repeat("  ", depth)
	fmt.Fprintf(tw, "%s%s\t%s\n", indent, g.Name, g.Total)
	for _, l := range g.Ledgers {
		fmt.Fprintf(tw, "%s  %s\t%s\n", indent, l.Name, l.Balance)
	}
	for _, child := range g.Children {
		renderGroup(tw, child, depth+1)
	}
}

func renderWarnings(w io.Writer, warnings []app.WarningDTO) {
	for _, warn := range warnings {
		fmt.Fprintf(w, "warning [%s] %s", warn.Kind, warn.Detail)
		if warn.Ref != "" {
			fmt.Fprintf(w, " (ref: %s)", warn.Ref)
		}
		fmt.Fprintln(w)
	}
}
