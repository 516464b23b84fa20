package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/bix-dev/bixdash/internal/filter"
	"github.com/bix-dev/bixdash/internal/model"
)

const dayFlagLayout = "2006-01-02"

// filterFlags are the command-line form of model.TransactionFilters.
type filterFlags struct {
	from, to                 string
	account, industry, state string
	ignoreSaved              bool
}

func (f *filterFlags) register(cmd *cobra.Command, withSaved bool) {
	cmd.Flags().StringVar(&f.from, "from", "", "first day to include (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.to, "to", "", "last day to include (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.account, "account", "", "only this account")
	cmd.Flags().StringVar(&f.industry, "industry", "", "only this industry")
	cmd.Flags().StringVar(&f.state, "state", "", "only this state")
	if withSaved {
		cmd.Flags().BoolVar(&f.ignoreSaved, "no-saved", false, "ignore saved filters")
	}
}

// apply overlays the flags that were given on base.
func (f *filterFlags) apply(cmd *cobra.Command, base model.TransactionFilters) (model.TransactionFilters, error) {
	out := base
	if cmd.Flags().Changed("from") {
		from, err := parseDay(f.from, false)
		if err != nil {
			return out, err
		}
		out.DateRange.From = from
	}
	if cmd.Flags().Changed("to") {
		to, err := parseDay(f.to, true)
		if err != nil {
			return out, err
		}
		out.DateRange.To = to
	}
	if cmd.Flags().Changed("account") {
		out.Account = model.StringPtr(f.account)
	}
	if cmd.Flags().Changed("industry") {
		out.Industry = model.StringPtr(f.industry)
	}
	if cmd.Flags().Changed("state") {
		out.State = model.StringPtr(f.state)
	}
	return out, nil
}

// parseDay reads a local calendar day. The end of day is returned for
// an upper bound so that the whole day is included.
func parseDay(s string, endOfDay bool) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	d, err := time.ParseInLocation(dayFlagLayout, s, time.Local)
	if err != nil {
		return nil, fmt.Errorf("parsing day %q: %w", s, err)
	}
	if endOfDay {
		d = d.AddDate(0, 0, 1).Add(-time.Millisecond)
	}
	return &d, nil
}

// activeFilters returns the saved filters overlaid with any flags.
func (a *app) activeFilters(cmd *cobra.Command, flags *filterFlags) (model.TransactionFilters, error) {
	var base model.TransactionFilters
	if !flags.ignoreSaved {
		if saved := filter.LoadFilters(a.store); saved != nil {
			base = *saved
		}
	}
	return flags.apply(cmd, base)
}

func newFiltersCommand(opts *rootOptions) *cobra.Command {
	filtersCmd := &cobra.Command{
		Use:   "filters",
		Short: "Manage saved dashboard filters",
	}
	filtersCmd.AddCommand(
		newFiltersSetCommand(opts),
		newFiltersShowCommand(opts),
		newFiltersClearCommand(opts),
	)
	return filtersCmd
}

func newFiltersSetCommand(opts *rootOptions) *cobra.Command {
	var flags filterFlags

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Save filters; given flags replace the saved values",
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

			f, err := a.activeFilters(cmd, &flags)
			if err != nil {
				return err
			}
			filter.SaveFilters(a.store, f)
			renderFilters(a.out, f)
			return nil
		},
	}
	flags.register(cmd, false)
	return cmd
}

func newFiltersShowCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show saved filters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			saved := filter.LoadFilters(a.store)
			if saved == nil {
				fmt.Fprintln(a.out, "No saved filters")
				return nil
			}
			renderFilters(a.out, *saved)
			return nil
		},
	}
}

func newFiltersClearCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Forget saved filters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			filter.ClearFilters(a.store)
			fmt.Fprintln(a.out, "Filters cleared")
			return nil
		},
	}
}
