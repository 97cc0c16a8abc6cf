package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/aussiebroadwan/oauth1d/internal/provider/app"
	"github.com/aussiebroadwan/oauth1d/internal/provider/service"
	"github.com/aussiebroadwan/oauth1d/pkg/jwtx"
	"github.com/aussiebroadwan/oauth1d/pkg/slogx"
	"github.com/spf13/cobra"
)

func newSessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Session key tooling for deployments without a login front-end",
	}
	cmd.AddCommand(newSessionKeygenCmd(), newSessionMintCmd())
	return cmd
}

func newSessionKeygenCmd() *cobra.Command {
	var (
		algorithm string
		kid       string
		keyOut    string
		jwksOut   string
	)
	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate a session signing key and its public JWKS",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pemBytes, err := jwtx.GenerateKeyPEM(algorithm, 0)
			if err != nil {
				return err
			}
			km, err := jwtx.NewKeyManagerFromPEM(jwtx.KeyManagerOptions{
				Algorithm: algorithm,
				Issuer:    "oauth1d",
			}, kid, pemBytes)
			if err != nil {
				return err
			}
			jwks, err := json.MarshalIndent(km.KeySet.PublicJWKS(), "", "  ")
			if err != nil {
				return err
			}

			if err := os.WriteFile(keyOut, pemBytes, 0o600); err != nil {
				return err
			}
			if err := os.WriteFile(jwksOut, append(jwks, '\n'), 0o644); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s and %s (kid %s)\n", keyOut, jwksOut, kid)
			return nil
		},
	}
	cmd.Flags().StringVar(&algorithm, "algorithm", jwtx.AlgorithmEdDSA, "EdDSA or RS256")
	cmd.Flags().StringVar(&kid, "kid", "oauth1d-session", "key ID")
	cmd.Flags().StringVar(&keyOut, "key-out", "session.pem", "private key output path")
	cmd.Flags().StringVar(&jwksOut, "jwks-out", "jwks.json", "public JWKS output path")
	return cmd
}

func newSessionMintCmd() *cobra.Command {
	var (
		scopes []string
		ttl    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "mint <display_name>",
		Short: "Sign a session token for an existing user",
		Long: `Sign a session token with the configured SESSION_SIGNING_KEY or
SESSION_SIGNING_KEY_FILE. Admin tokens need --scope admin:read or admin:write.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			cfg, err := app.LoadConfig()
			if err != nil {
				return err
			}
			if cfg.SessionSigningKey == "" && cfg.SessionSigningKeyFile == "" {
				return fmt.Errorf("SESSION_SIGNING_KEY or SESSION_SIGNING_KEY_FILE is required to mint sessions")
			}

			km, err := app.InitSessionKeys(ctx, cfg, slogx.Discard())
			if err != nil {
				return err
			}

			st, err := app.OpenMigratedStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			u, err := (&service.UserService{Store: st}).GetByDisplayName(ctx, args[0])
			if err != nil {
				return err
			}

			tok, err := km.Signer.Sign(jwtx.NewSessionClaims(u.ID, u.DisplayName, scopes, ttl,
				cfg.SessionIssuer, cfg.SessionAudience, time.Now()))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&scopes, "scope", nil, "scope to grant, e.g. admin:write (repeatable)")
	cmd.Flags().DurationVar(&ttl, "ttl", jwtx.DefaultSessionTTL, "token lifetime")
	return cmd
}
