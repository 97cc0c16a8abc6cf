package main

import (
	"context"
	"fmt"

	"github.com/aussiebroadwan/oauth1d/internal/provider/app"
	"github.com/aussiebroadwan/oauth1d/internal/provider/store"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "oauth1d",
		Short: "OAuth 1.0a provider",
		Long: `oauth1d lets users authorize third-party applications with OAuth 1.0a.
It serves the authorization page, the request token exchange and the
revocation listing, and manages users and client applications from the
command line.

Configuration is read from the environment and an optional .env file.`,
		SilenceUsage:      true,
		DisableAutoGenTag: true,
	}

	root.AddCommand(
		newServeCmd(),
		newMigrateCmd(),
		newClientCmd(),
		newUserCmd(),
		newTokenCmd(),
		newSessionCmd(),
		newVersionCmd(),
	)
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := app.LoadConfig()
			if err != nil {
				return err
			}

			application, err := app.New(cfg)
			if err != nil {
				return fmt.Errorf("failed to initialize application: %w", err)
			}
			return application.Run()
		},
	}
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(cmd.Context(), func(ctx context.Context, _ store.Store) error {
				fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
				return nil
			})
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), app.BuildVersion)
		},
	}
}

// withStore runs fn against a migrated store built from the environment.
func withStore(ctx context.Context, fn func(context.Context, store.Store) error) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := app.LoadConfig()
	if err != nil {
		return err
	}

	st, err := app.OpenMigratedStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	return fn(ctx, st)
}
