package commands

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/bix-dev/bixdash/internal/activity"
	"github.com/bix-dev/bixdash/internal/auth"
)

func newLoginCommand(opts *rootOptions) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with the demo credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			tok, err := a.gate.Login(cmd.Context(), email, password)
			if err != nil {
				if errors.Is(err, auth.ErrInvalidCredentials) {
					a.activity.Record(email, activity.ActionLoginFailed, "")
				}
				return err
			}
			a.activity.Record(tok.User.Email, activity.ActionLogin, "")

			expires := time.UnixMilli(tok.ExpiresAt).In(time.Local).Format(time.RFC1123)
			fmt.Fprintf(a.out, "Signed in as %s <%s>\nSession expires %s\n", tok.User.Name, tok.User.Email, expires)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func newLogoutCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			tok := a.gate.StoredToken()
			a.gate.Logout()
			a.activity.Record(actor(tok), activity.ActionLogout, "")
			fmt.Fprintln(a.out, "Signed out")
			return nil
		},
	}
}

func newWhoamiCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			state := a.session()
			if !state.IsAuthenticated {
				return auth.ErrUnauthenticated
			}
			tok := state.Token
			remaining := time.UnixMilli(tok.ExpiresAt).Sub(a.clock.Now()).Truncate(time.Minute)
			renderTable(a.out, []string{"Name", "Email", "Token", "Expires in"}, [][]string{
				{tok.User.Name, tok.User.Email, tok.Token, remaining.String()},
			})
			return nil
		},
	}
}

func newRouteCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "route <path>",
		Short: "Show where visiting a dashboard route leads",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			d, err := auth.Guard(args[0], a.session())
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s: %s\n", args[0], d)
			return nil
		},
	}
}
