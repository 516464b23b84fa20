package commands

import (
	"io"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/bix-dev/bixdash/internal/cache"
	"github.com/bix-dev/bixdash/internal/filter"
	"github.com/bix-dev/bixdash/internal/model"
)

func newDashboardCommand(opts *rootOptions) *cobra.Command {
	var flags filterFlags
	var page int

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show summary, charts and the latest transactions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if _, err := a.requireAuth(); err != nil {
				return err
			}

			janitor := cache.NewJanitor(a.store, a.cfg.Cache.CleanupInterval.Std())
			janitor.Start()
			defer janitor.Stop()

			f, err := a.activeFilters(cmd, &flags)
			if err != nil {
				return err
			}

			loader, snap, err := a.mount(cmd)
			if err != nil {
				return err
			}
			if err := renderDashboard(a.out, snap.Transactions, f, a.clock.Now(), page); err != nil {
				return err
			}

			// The cached copy is on screen; show the revalidated one only
			// if it differs.
			if snap.Revalidating {
				loader.Wait()
				latest := loader.Snapshot()
				if !slices.Equal(snap.Transactions, latest.Transactions) {
					renderNote(a.out, "Transactions changed upstream")
					return renderDashboard(a.out, latest.Transactions, f, a.clock.Now(), page)
				}
			}
			return nil
		},
	}

	flags.register(cmd, true)
	cmd.Flags().IntVar(&page, "page", 1, "transaction table page")

	return cmd
}

func renderDashboard(w io.Writer, ts []model.Transaction, f model.TransactionFilters, now time.Time, page int) error {
	visible := filter.Apply(ts, f)

	summary, err := filter.Summarize(visible, now)
	if err != nil {
		return err
	}
	monthly, err := filter.MonthlySeries(visible, time.Local)
	if err != nil {
		return err
	}
	balance, err := filter.DailyBalance(visible, time.Local)
	if err != nil {
		return err
	}

	renderHeading(w, "Summary")
	renderSummary(w, summary)
	if !f.IsEmpty() {
		renderNote(w, "Filtered: %d of %d transactions", len(visible), len(ts))
	}

	renderHeading(w, "Revenue and expenses")
	renderMonthly(w, monthly)

	renderHeading(w, "Balance evolution")
	renderBalance(w, balance)

	renderHeading(w, "Transactions")
	sorted := filter.Sort(visible, filter.SortDate, filter.Desc)
	renderTransactions(w, filter.Paginate(sorted, page, filter.DefaultPageSize), time.Local)
	return nil
}
