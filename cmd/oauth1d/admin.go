package main

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/aussiebroadwan/oauth1d/internal/provider/domain"
	"github.com/aussiebroadwan/oauth1d/internal/provider/service"
	"github.com/aussiebroadwan/oauth1d/internal/provider/store"
	"github.com/aussiebroadwan/oauth1d/pkg/oauthsdk"
	"github.com/spf13/cobra"
)

func newClientCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "client",
		Short: "Manage client applications",
	}

	var (
		callback    string
		permissions []string
	)
	create := &cobra.Command{
		Use:   "create <name>",
		Short: "Register a client application and print its key and secret",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			perms, err := domain.ParsePermissions(permissions)
			if err != nil {
				return err
			}
			return withStore(cmd.Context(), func(ctx context.Context, st store.Store) error {
				c, err := (&service.ClientService{Store: st}).Register(ctx, service.RegisterClient{
					Name:        args[0],
					CallbackURL: callback,
					Permissions: perms,
				})
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "id:          %s\n", c.ID)
				fmt.Fprintf(out, "key:         %s\n", c.Key)
				fmt.Fprintf(out, "secret:      %s\n", c.Secret)
				fmt.Fprintf(out, "permissions: %s\n", strings.Join(c.Permissions.Names(), ","))
				return nil
			})
		},
	}
	create.Flags().StringVar(&callback, "callback", "", "registered callback URL")
	create.Flags().StringSliceVar(&permissions, "permission", nil, "permission to declare, e.g. allow_read_prefs (repeatable)")

	list := &cobra.Command{
		Use:   "list",
		Short: "List client applications",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(cmd.Context(), func(ctx context.Context, st store.Store) error {
				clients, err := (&service.ClientService{Store: st}).List(ctx)
				if err != nil {
					return err
				}

				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "NAME\tKEY\tCALLBACK\tPERMISSIONS")
				for _, c := range clients {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", c.Name, c.Key, c.CallbackURL, strings.Join(c.Permissions.Names(), ","))
				}
				return tw.Flush()
			})
		},
	}

	cmd.AddCommand(create, list)
	return cmd
}

func newUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users",
	}

	add := &cobra.Command{
		Use:   "add <display_name>",
		Short: "Create a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(ctx context.Context, st store.Store) error {
				u, err := (&service.UserService{Store: st}).Create(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), u.ID)
				return nil
			})
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(cmd.Context(), func(ctx context.Context, st store.Store) error {
				users, err := (&service.UserService{Store: st}).List(ctx)
				if err != nil {
					return err
				}

				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tDISPLAY NAME\tCREATED")
				for _, u := range users {
					fmt.Fprintf(tw, "%s\t%s\t%s\n", u.ID, u.DisplayName, u.CreatedAt.Format("2006-01-02"))
				}
				return tw.Flush()
			})
		},
	}

	cmd.AddCommand(add, list)
	return cmd
}

func newTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage request tokens",
	}

	var (
		callback string
		oauth10  bool
	)
	issue := &cobra.Command{
		Use:   "issue <client_key>",
		Short: "Issue a request token for a client",
		Long: `Issue a request token for a client and print it in the form-encoded
request token response. Pass --callback oob for out-of-band clients.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(ctx context.Context, st store.Store) error {
				rt, err := (&service.RequestTokenService{Store: st}).Issue(ctx, service.IssueRequest{
					ClientKey: args[0],
					Callback:  callback,
					OAuth10:   oauth10,
				})
				if err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "oauth_token=%s&oauth_token_secret=%s&oauth_callback_confirmed=%t\n",
					oauthsdk.PercentEncode(rt.Token),
					oauthsdk.PercentEncode(rt.Secret),
					!rt.OAuth10,
				)
				return nil
			})
		},
	}
	issue.Flags().StringVar(&callback, "callback", "", `callback URL for this token, or "oob"`)
	issue.Flags().BoolVar(&oauth10, "oauth10", false, "issue a legacy OAuth 1.0 token (no verifier)")

	cmd.AddCommand(issue)
	return cmd
}
