package commands

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/bix-dev/bixdash/internal/activity"
	"github.com/bix-dev/bixdash/internal/export"
	"github.com/bix-dev/bixdash/internal/filter"
	"github.com/bix-dev/bixdash/internal/transactions"
)

func newTransactionsCommand(opts *rootOptions) *cobra.Command {
	txCmd := &cobra.Command{
		Use:     "transactions",
		Aliases: []string{"tx"},
		Short:   "Work with the transaction collection",
	}
	txCmd.AddCommand(
		newTransactionsListCommand(opts),
		newTransactionsRefreshCommand(opts),
		newTransactionsExportCommand(opts),
		newTransactionsValidateCommand(opts),
	)
	return txCmd
}

func newTransactionsListCommand(opts *rootOptions) *cobra.Command {
	var flags filterFlags
	var sortBy string
	var asc bool
	var page, pageSize int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions, filtered, sorted and paginated",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := filter.ParseSortKey(sortBy)
			if err != nil {
				return err
			}
			dir := filter.Desc
			if asc {
				dir = filter.Asc
			}

			a, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			if _, err := a.requireAuth(); err != nil {
				return err
			}

			f, err := a.activeFilters(cmd, &flags)
			if err != nil {
				return err
			}
			_, snap, err := a.mount(cmd)
			if err != nil {
				return err
			}

			sorted := filter.Sort(filter.Apply(snap.Transactions, f), key, dir)
			renderTransactions(a.out, filter.Paginate(sorted, page, pageSize), time.Local)
			return nil
		},
	}

	flags.register(cmd, true)
	cmd.Flags().StringVar(&sortBy, "sort", string(filter.SortDate), "sort column")
	cmd.Flags().BoolVar(&asc, "asc", false, "sort ascending")
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&pageSize, "page-size", filter.DefaultPageSize, "rows per page")

	return cmd
}

func newTransactionsRefreshCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Drop the cached collection and fetch it again",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			tok, err := a.requireAuth()
			if err != nil {
				return err
			}

			loader, err := a.loader()
			if err != nil {
				return err
			}
			snap := loader.Refresh(cmd.Context())
			if snap.State == transactions.Failed {
				return fmt.Errorf("refreshing transactions: %s", snap.Err)
			}
			a.activity.Record(actor(tok), activity.ActionRefresh, fmt.Sprintf("%d transactions", len(snap.Transactions)))
			fmt.Fprintf(a.out, "Fetched %d transactions\n", len(snap.Transactions))
			return nil
		},
	}
}

func newTransactionsExportCommand(opts *rootOptions) *cobra.Command {
	var flags filterFlags
	var outPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write filtered transactions as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			tok, err := a.requireAuth()
			if err != nil {
				return err
			}

			f, err := a.activeFilters(cmd, &flags)
			if err != nil {
				return err
			}
			_, snap, err := a.mount(cmd)
			if err != nil {
				return err
			}
			rows := filter.Sort(filter.Apply(snap.Transactions, f), filter.SortDate, filter.Asc)

			var w io.Writer = a.out
			if outPath != "" && outPath != "-" {
				file, err := os.Create(outPath)
				if err != nil {
					return fmt.Errorf("creating %s: %w", outPath, err)
				}
				defer file.Close()
				w = file
			}
			if err := export.WriteTransactions(w, rows); err != nil {
				return fmt.Errorf("exporting transactions: %w", err)
			}

			a.activity.Record(actor(tok), activity.ActionExport, fmt.Sprintf("%d transactions to %s", len(rows), exportTarget(outPath)))
			return nil
		},
	}

	flags.register(cmd, true)
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "output file (default stdout)")

	return cmd
}

func exportTarget(path string) string {
	if path == "" || path == "-" {
		return "stdout"
	}
	return path
}

func newTransactionsValidateCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check every transaction record for malformed fields",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			_, snap, err := a.mount(cmd)
			if err != nil {
				return err
			}

			problems := filter.Validate(snap.Transactions)
			if len(problems) == 0 {
				fmt.Fprintf(a.out, "All %d transactions are valid\n", len(snap.Transactions))
				return nil
			}
			rows := make([][]string, 0, len(problems))
			for _, p := range problems {
				rows = append(rows, []string{p.Key, p.Field, p.Description})
			}
			renderTable(a.out, []string{"Row", "Field", "Problem"}, rows)
			return fmt.Errorf("%d problems in %d transactions", len(problems), len(snap.Transactions))
		},
	}
}
