package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/bix-dev/bixdash/internal/activity"
)

func newActivityCommand(opts *rootOptions) *cobra.Command {
	var actor, action string
	var limit int

	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Show the most recent recorded actions",
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

			dir := a.activity.Dir()
			if dir == "" {
				fmt.Fprintln(a.out, "Activity recording is disabled")
				return nil
			}
			entries, err := activity.Read(dir, activity.Query{
				Actor:  actor,
				Action: activity.Action(action),
				Limit:  limit,
			})
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(a.out, "No recorded activity")
				return nil
			}

			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, []string{
					e.Timestamp.In(time.Local).Format(time.DateTime),
					e.Actor,
					string(e.Action),
					e.Details,
				})
			}
			renderTable(a.out, []string{"When", "Actor", "Action", "Details"}, rows)
			return nil
		},
	}

	cmd.Flags().StringVar(&actor, "actor", "", "only entries by this user")
	cmd.Flags().StringVar(&action, "action", "", "only entries with this action")
	cmd.Flags().IntVar(&limit, "limit", 20, "most recent entries to show (0 for all)")

	return cmd
}
