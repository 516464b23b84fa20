package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bix-dev/bixdash/internal/activity"
	"github.com/bix-dev/bixdash/internal/cache"
)

func newCacheCommand(opts *rootOptions) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and maintain the local cache",
	}
	cacheCmd.AddCommand(
		newCacheCleanCommand(opts),
		newCacheClearCommand(opts),
		newCacheSizeCommand(opts),
	)
	return cacheCmd
}

func newCacheCleanCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Remove expired or unreadable entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			before := a.store.Size()
			a.store.CleanExpired()
			after := a.store.Size()

			a.activity.Record(actor(a.gate.StoredToken()), activity.ActionClean, fmt.Sprintf("%d bytes freed", before-after))
			fmt.Fprintf(a.out, "Freed %d bytes, %d bytes remain\n", before-after, after)
			return nil
		},
	}
}

func newCacheClearCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every entry, signing out",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			who := actor(a.gate.StoredToken())
			a.store.ClearAll()
			a.activity.Record(who, activity.ActionClear, "")
			fmt.Fprintln(a.out, "Cache cleared")
			return nil
		},
	}
}

func newCacheSizeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "size",
		Short: "Show how many bytes each category occupies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if !a.store.Available() {
				fmt.Fprintln(a.out, "Storage unavailable")
				return nil
			}
			rows := make([][]string, 0, len(cache.Categories)+1)
			for _, c := range cache.Categories {
				n := 0
				if raw, ok := a.store.ReadRaw(c); ok {
					n = len(raw)
				}
				rows = append(rows, []string{c.Key(), fmt.Sprint(n)})
			}
			rows = append(rows, []string{"total", fmt.Sprint(a.store.Size())})
			renderTable(a.out, []string{"Key", "Bytes"}, rows)
			return nil
		},
	}
}
