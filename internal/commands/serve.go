package commands

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/bix-dev/bixdash/internal/server"
)

func newServeCommand(opts *rootOptions) *cobra.Command {
	var file, addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Publish transactions.json with entity tags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("file") {
				file = cfg.Server.File
			}
			if !cmd.Flags().Changed("addr") {
				addr = cfg.Server.Addr
			}

			srv, err := server.New(file, log)
			if err != nil {
				return err
			}

			g, ctx := errgroup.WithContext(cmd.Context())
			g.Go(func() error { return srv.Watch(ctx) })
			g.Go(func() error {
				err := srv.ListenAndServe(ctx, addr)
				if err != nil {
					return err
				}
				// Stop the watcher once the listener is done.
				return context.Canceled
			})
			if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "transactions file (default from config)")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")

	return cmd
}
