package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/angelmondragon/jewelry-admin/internal/app"
	"github.com/angelmondragon/jewelry-admin/internal/session"
)

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the stored access token",
	}

	var email, password string
	login := &cobra.Command{
		Use:   "login",
		Short: "Log in to the shop backend and store the access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app.App) error {
				status, err := a.Session.Login(cmd.Context(), email, password)
				if err != nil {
					return err
				}
				printStatus(cmd.OutOrStdout(), status)
				return nil
			})
		},
	}
	login.Flags().StringVar(&email, "email", "", "admin email")
	login.Flags().StringVar(&password, "password", "", "admin password")

	status := &cobra.Command{
		Use:   "status",
		Short: "Show whether a token is stored and when it expires",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app.App) error {
				st, err := a.Session.Status(cmd.Context())
				if err != nil {
					return err
				}
				printStatus(cmd.OutOrStdout(), st)
				return nil
			})
		},
	}

	logout := &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app.App) error {
				if err := a.Session.Logout(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "logged out")
				return nil
			})
		},
	}

	cmd.AddCommand(login, status, logout)
	return cmd
}

func printStatus(w io.Writer, st session.Status) {
	if !st.LoggedIn {
		fmt.Fprintln(w, "not logged in")
		return
	}
	switch {
	case st.ExpiresAt == nil:
		fmt.Fprintln(w, "logged in")
	case st.Expired:
		fmt.Fprintf(w, "logged in, token expired at %s\n", st.ExpiresAt.Format(time.RFC3339))
	default:
		fmt.Fprintf(w, "logged in, token expires at %s\n", st.ExpiresAt.Format(time.RFC3339))
	}
}
