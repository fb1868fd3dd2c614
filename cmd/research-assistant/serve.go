// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/research-assistant/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web frontend",
	Long: `Serve starts the web frontend: a single-page form where the user enters a
research question, picks a paper count, and gets a ranked list of PubMed
papers. The assistant pipeline is shared across all sessions; each request
blocks until its search completes or the search timeout expires.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		log := newLogger()

		if cfg.Assistant.APIKey == "" {
			log.Warn("no Anthropic API key configured; searches will fail until one is provided")
		}

		a := newAssistant(cfg, log)
		srv := web.New(a, cfg.Server, log)

		errCh := make(chan error, 1)
		go func() {
			log.Info("starting server", "addr", cfg.Server.Addr)
			if err := srv.Start(); err != nil && err != http.ErrServerClosed {
				errCh <- err
			}
		}()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case err := <-errCh:
			return fmt.Errorf("server failed: %w", err)
		case sig := <-quit:
			log.Info("shutting down", "signal", sig.String())
		}

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default :8501)")
	viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))

	rootCmd.AddCommand(serveCmd)
}
