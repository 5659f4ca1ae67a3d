package main

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rgehrsitz/fincalc/internal/server"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func serveCmd(g *globalFlags) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := g.newApp(ctx, cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			a.logger.SetFormatter(&logrus.JSONFormatter{})

			if addr != "" {
				a.cfg.Server.Addr = addr
			}
			if a.cfg.Auth.JWTSecret == "" {
				a.logger.Warn("JWT_SECRET is not set; rate updates are disabled")
			}

			srv, err := server.New(server.Config{
				Registry:  a.registry,
				Rates:     a.store,
				JWTSecret: a.cfg.Auth.JWTSecret,
				Logger:    a.logger,
			})
			if err != nil {
				return err
			}

			if a.refresher != nil {
				a.refresher.Refresh()
				a.refresher.Start()
				a.logger.WithField("schedule", a.cfg.Rates.Refresh).Info("rate cache refresher started")
			}

			return server.Serve(ctx, &http.Server{
				Addr:         a.cfg.Server.Addr,
				Handler:      srv.Handler(),
				ReadTimeout:  a.cfg.Server.ReadTimeout,
				WriteTimeout: a.cfg.Server.WriteTimeout,
			}, a.cfg.Server.ShutdownTimeout, a.logger)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides config)")
	return cmd
}
