package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/halewood/envl/internal/cli"
	"github.com/halewood/envl/internal/report"
	"github.com/halewood/envl/internal/timeframe"
)

func dashboardCmd() *cobra.Command {
	var (
		periodFlag string
		dateFlag   string
		trendFlag  string
		stepFlag   int
	)

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show the budget dashboard for a period",
		Long: `Render totals, spending by category, envelope status and the spending
trend for the selected period. The period anchors on the latest
transaction date unless --date is given; --step moves whole periods
back or forward from the anchor.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			period, rng, err := resolveRange(ctx, store, periodFlag, dateFlag, stepFlag)
			if err != nil {
				return err
			}

			dim, err := report.ParseDimension(trendFlag)
			if err != nil {
				return err
			}

			allTxns, categories, envelopes, err := loadLedger(ctx, store)
			if err != nil {
				return err
			}
			periodTxns := rng.Filter(allTxns)

			fmt.Println(cli.FormatTitle("Dashboard " + rng.Label(period)))

			renderTotals(report.ComputeTotals(periodTxns, categories))
			renderSpending(report.SpendingByCategory(periodTxns, categories))
			renderPools(report.SpendingPools(periodTxns, categories, envelopes, period, rng.Start))
			renderGoals(report.GoalProgress(allTxns, periodTxns, categories, envelopes, period, rng.Start))
			if period == timeframe.Week {
				renderWeekdaySplit(report.SplitWeekdayWeekend(periodTxns, categories, envelopes, rng.Start))
			}
			renderAllocation(report.IncomeAllocation(periodTxns, categories, envelopes))
			renderTrend(report.Trend(periodTxns, categories, envelopes, period, dim), dim)

			return nil
		},
	}

	cmd.Flags().StringVar(&periodFlag, "period", "month", "period to report on (day, week, month, year)")
	cmd.Flags().StringVar(&dateFlag, "date", "", "anchor date in YYYY-MM-DD (default: latest transaction)")
	cmd.Flags().StringVar(&trendFlag, "trend", "total", "trend dimension (total, category, envelope)")
	cmd.Flags().IntVar(&stepFlag, "step", 0, "move this many periods from the anchor (negative for past)")

	return cmd
}

func renderTotals(totals report.Totals) {
	fmt.Println(cli.BoldStyle.Render("Key Insights"))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "  Income\t%s\n", cli.SuccessStyle.Render(cli.Money(totals.Income)))
	fmt.Fprintf(w, "  Expenses\t%s\n", cli.ErrorStyle.Render(cli.Money(totals.Expenses)))

	net := cli.SuccessStyle
	if totals.Net < 0 {
		net = cli.ErrorStyle
	}
	fmt.Fprintf(w, "  Net\t%s\n", net.Render(cli.SignedMoney(totals.Net)))
	fmt.Fprintf(w, "  Transactions\t%d\n", totals.Count)
	_ = w.Flush()
	fmt.Println()
}

func renderSpending(spending []report.CategorySpend) {
	if len(spending) == 0 {
		return
	}

	fmt.Println(cli.BoldStyle.Render("Spending by Category"))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, s := range spending {
		fmt.Fprintf(w, "  %s\t%s\n", s.Name, cli.Money(s.Amount))
	}
	_ = w.Flush()
	fmt.Println()
}

func renderPools(pools []report.PoolStatus) {
	if len(pools) == 0 {
		return
	}

	fmt.Println(cli.BoldStyle.Render("Spending Envelopes"))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, p := range pools {
		status := cli.SuccessStyle.Render(fmt.Sprintf("%s left", cli.Money(p.Remaining)))
		if p.OverBudget {
			status = cli.ErrorStyle.Render(fmt.Sprintf("%s over", cli.Money(-p.Remaining)))
		}
		fmt.Fprintf(w, "  %s\t%s / %s\t%s\t%d%%\n",
			p.Envelope.Name, cli.Money(p.Spent), cli.Money(p.Budget), status, p.SpentPercent)
	}
	_ = w.Flush()
	fmt.Println()
}

func renderGoals(goals []report.GoalStatus) {
	if len(goals) == 0 {
		return
	}

	fmt.Println(cli.BoldStyle.Render("Goals"))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, g := range goals {
		line := fmt.Sprintf("  %s\t%s / %s this period (%.0f%%)",
			g.Envelope.Name, cli.Money(g.ContributedInPeriod), cli.Money(g.PeriodGoal), g.PeriodProgress)
		if g.PeriodGoalMet {
			line += "\t" + cli.SuccessStyle.Render(cli.SuccessIcon)
		} else {
			line += "\t"
		}
		if g.Envelope.FinalTarget > 0 {
			line += fmt.Sprintf("\t%s saved of %s (%.0f%%)",
				cli.Money(g.ContributedAllTime), cli.Money(g.Envelope.FinalTarget), g.OverallProgress)
		}
		fmt.Fprintln(w, line)
	}
	_ = w.Flush()
	fmt.Println()
}

func renderWeekdaySplit(split report.WeekdaySplit) {
	if split.Weekday.Total == 0 && split.Weekend.Total == 0 {
		return
	}

	fmt.Println(cli.BoldStyle.Render("Weekday vs Weekend"))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "  Weekdays\t%s\n", cli.Money(split.Weekday.Total))
	for _, e := range split.Weekday.Envelopes {
		fmt.Fprintf(w, "    %s\t%s of %s\n", e.Name, cli.Money(e.Spent), cli.Money(e.WeekBudget))
	}
	fmt.Fprintf(w, "  Weekends\t%s\n", cli.Money(split.Weekend.Total))
	for _, e := range split.Weekend.Envelopes {
		fmt.Fprintf(w, "    %s\t%s of %s\n", e.Name, cli.Money(e.Spent), cli.Money(e.WeekBudget))
	}
	_ = w.Flush()
	fmt.Println()
}

func renderAllocation(alloc report.Allocation) {
	if alloc.TotalIncome == 0 || len(alloc.Slices) == 0 {
		return
	}

	fmt.Println(cli.BoldStyle.Render("Income Allocation"))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, s := range alloc.Slices {
		name := s.Name
		if s.Unallocated {
			name = cli.SubtleStyle.Render(name)
		}
		fmt.Fprintf(w, "  %s\t%s\t%.1f%%\n", name, cli.Money(s.Value), s.Share)
	}
	_ = w.Flush()
	fmt.Println()
}

func renderTrend(trend report.TrendResult, dim report.Dimension) {
	if len(trend.Groups) == 0 {
		return
	}

	fmt.Println(cli.BoldStyle.Render(fmt.Sprintf("Spending Trend (%s)", dim)))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)

	if len(trend.Keys) > 1 {
		fmt.Fprintf(w, "  \t%s\n", strings.Join(trend.Keys, "\t"))
	}
	for _, group := range trend.Groups {
		row := []string{"  " + group.Label}
		for _, key := range trend.Keys {
			row = append(row, cli.Money(group.Values[key]))
		}
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	_ = w.Flush()
	fmt.Println()
}

// renderCount prints a short count line used by list commands.
func renderCount(n int, noun string) {
	if n == 1 {
		fmt.Println(cli.SubtitleStyle.Render(fmt.Sprintf("1 %s", noun)))
		return
	}
	fmt.Println(cli.SubtitleStyle.Render(fmt.Sprintf("%d %ss", n, noun)))
}
