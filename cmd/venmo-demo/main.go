// Command venmo-demo is a small web app that signs users in with Venmo.
//
//	venmo-demo serve --config config.yaml --env-file .env
//	venmo-demo check --config config.yaml
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/venmoauth"
	"github.com/dmitrymomot/venmoauth/internal/config"
	"github.com/dmitrymomot/venmoauth/middlewares"
	"github.com/dmitrymomot/venmoauth/pkg/logger"
	"github.com/dmitrymomot/venmoauth/pkg/statestore"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		envFiles   []string
	)

	root := &cobra.Command{
		Use:          "venmo-demo",
		Short:        "Sign in with Venmo demo server",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", os.Getenv("APP_CONFIG"), "path to config.yaml (env APP_CONFIG)")
	root.PersistentFlags().StringSliceVar(&envFiles, "env-file", []string{".env"}, "dotenv files to load; missing files are ignored")

	load := func() (*config.Config, error) {
		return config.Load(configPath, envFiles...)
	}

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			log := newLogger(cfg.Log)

			a, err := newApp(cmd.Context(), cfg, log)
			if err != nil {
				log.Error("failed to start", slog.String("error", err.Error()))
				return err
			}
			return a.run(cmd.Context())
		},
	}

	check := &cobra.Command{
		Use:   "check",
		Short: "Validate configuration and print the effective Venmo settings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			var opts []venmoauth.Option
			if cfg.State.Backend != config.StateSealed {
				// server-side stores are not dialed here
				opts = append(opts, venmoauth.WithStateDataFormat(statestore.NewMemory(cfg.State.TTL)))
			}
			h, err := venmoauth.New(cfg.Venmo, opts...)
			if err != nil {
				return err
			}
			eff := h.Config()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "authentication type: %s\n", eff.AuthenticationType)
			fmt.Fprintf(out, "callback path:       %s\n", eff.CallbackPath)
			fmt.Fprintf(out, "scopes:              %v\n", eff.Scopes)
			fmt.Fprintf(out, "authorize endpoint:  %s\n", eff.AuthorizationEndpoint)
			fmt.Fprintf(out, "token endpoint:      %s\n", eff.TokenEndpoint)
			fmt.Fprintf(out, "user endpoint:       %s\n", eff.UserInfoEndpoint)
			fmt.Fprintf(out, "state backend:       %s\n", cfg.State.Backend)
			return nil
		},
	}

	root.AddCommand(serve, check)
	return root
}

func newLogger(c config.LogConfig) *slog.Logger {
	return logger.NewWithSentry(
		logger.Config{Level: logger.ParseLevel(c.Level), Format: c.Format},
		logger.SentryConfig{DSN: c.SentryDSN, Environment: c.Environment},
		middlewares.RequestIDExtractor(),
		venmoauth.LogExtractor(),
	)
}
