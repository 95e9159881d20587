package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/expenses-tracker/reports-backend/internal/config"
	"github.com/expenses-tracker/reports-backend/internal/domain"
	"github.com/expenses-tracker/reports-backend/internal/handler"
	"github.com/expenses-tracker/reports-backend/internal/service"
	"github.com/expenses-tracker/reports-backend/internal/util"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// Output formats for the report command
const (
	formatTable = "table"
	formatCSV   = "csv"
	formatJSON  = "json"
)

type app struct {
	loadConfig func() (*config.Config, error)
	openSource func(ctx context.Context, cfg *config.Config) (domain.DataSource, func(), error)

	userID  string
	token   string
	verbose bool
	timeout time.Duration
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "reportctl",
		Short:        "Query expense reports from the command line",
		Long:         `reportctl builds the same summaries and category breakdowns as the reports API, reading from the configured data source.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if a.verbose {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}
			if a.userID == "" {
				return fmt.Errorf("--user is required")
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.userID, "user", "", "user whose transactions are reported")
	rootCmd.PersistentFlags().StringVar(&a.token, "token", os.Getenv("EXPENSES_API_TOKEN"), "bearer token for the expenses API (default $EXPENSES_API_TOKEN)")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().DurationVar(&a.timeout, "timeout", 30*time.Second, "overall deadline for the command")

	rootCmd.AddCommand(newReportCmd(a), newDashboardCmd(a))
	return rootCmd
}

func newReportCmd(a *app) *cobra.Command {
	var from, to, format string

	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Print the summary and category breakdown",
		Long:  `Print the financial summary and per-category breakdown. Without --from and --to every transaction is included.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withReports(cmd.Context(), func(ctx context.Context, reports *service.ReportService, cfg *config.Config) error {
				rng, err := domain.ParseDateRangeParams(from, to, cfg.Location)
				if err != nil {
					return err
				}
				report, err := reports.AssembleReport(ctx, a.session(), rng)
				if err != nil {
					return err
				}
				return writeReport(cmd.OutOrStdout(), report, format)
			})
		},
	}

	reportCmd.Flags().StringVar(&from, "from", "", "first day of the window (YYYY-MM-DD)")
	reportCmd.Flags().StringVar(&to, "to", "", "last day of the window (YYYY-MM-DD)")
	reportCmd.Flags().StringVarP(&format, "format", "o", formatTable, "output format: table, csv or json")
	return reportCmd
}

func newDashboardCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Print all-time totals, average expense and recent transactions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withReports(cmd.Context(), func(ctx context.Context, reports *service.ReportService, cfg *config.Config) error {
				dashboard, err := reports.Dashboard(ctx, a.session())
				if err != nil {
					return err
				}
				return writeDashboard(cmd.OutOrStdout(), dashboard)
			})
		},
	}
}

func (a *app) session() domain.Session {
	return domain.Session{UserID: a.userID, Token: a.token}
}

// withReports loads configuration, opens the data source and runs fn with a
// report service bound to it
func (a *app) withReports(ctx context.Context, fn func(ctx context.Context, reports *service.ReportService, cfg *config.Config) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}
	ctx = util.WithRequestID(ctx, uuid.NewString())

	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	source, closeSource, err := a.openSource(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeSource()

	return fn(ctx, service.NewReportService(source, source), cfg)
}

func writeReport(w io.Writer, report *domain.Report, format string) error {
	switch format {
	case formatCSV:
		data, err := service.RenderCSV(report)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(handler.ToReportResponse(report))
	case formatTable:
		return writeReportTable(w, report)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func writeReportTable(w io.Writer, report *domain.Report) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	writeSummary(tw, report.Summary)
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "CATEGORY\tINCOME\tEXPENSE\tBALANCE")
	for _, row := range report.Categories.Summaries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", row.Category, row.TotalIncome.StringFixed(2), row.TotalExpense.StringFixed(2), row.Balance.StringFixed(2))
	}
	return tw.Flush()
}

func writeDashboard(w io.Writer, dashboard *domain.Dashboard) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	writeSummary(tw, dashboard.Summary)
	fmt.Fprintf(tw, "Average expense:\t%s\n", dashboard.AverageExpense.StringFixed(2))
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "DATE\tTYPE\tAMOUNT\tDESCRIPTION")
	for _, tx := range dashboard.Recent {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", tx.OccurredAt.Format(time.DateOnly), tx.Type, tx.Amount.StringFixed(2), tx.Description)
	}
	return tw.Flush()
}

func writeSummary(w io.Writer, summary domain.FinancialSummary) {
	period := "all time"
	if summary.Start != nil && summary.End != nil {
		period = summary.Start.Format(time.DateOnly) + " to " + summary.End.Format(time.DateOnly)
	}
	fmt.Fprintf(w, "Period:\t%s\n", period)
	fmt.Fprintf(w, "Income:\t%s\n", summary.TotalIncome.StringFixed(2))
	fmt.Fprintf(w, "Expense:\t%s\n", summary.TotalExpense.StringFixed(2))
	fmt.Fprintf(w, "Balance:\t%s\n", summary.Balance.StringFixed(2))
	fmt.Fprintf(w, "Transactions:\t%d\n", summary.TransactionCount)
}
