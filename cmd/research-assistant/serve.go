// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/research-assistant/internal/observability"
	"github.com/pdiddy/research-assistant/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the JSON API and Prometheus metrics",
	Long: `Serve exposes search, question answering, reviews, and the stored paper
library over HTTP. The server shuts down gracefully on interrupt.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	metrics := observability.NewMetrics()
	if err := metrics.RegisterRuntime(); err != nil {
		return err
	}
	p, err := newPipeline(metrics)
	if err != nil {
		return err
	}
	defer p.Close()

	srv := server.New(cfg.Server, p.assistant, p.store, metrics, logger)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-cmd.Context().Done():
	}

	logger.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return <-errCh
}

func init() {
	serveCmd.Flags().String("address", "", "listen address (default: server.address)")
	_ = viper.BindPFlag("server.address", serveCmd.Flags().Lookup("address"))

	rootCmd.AddCommand(serveCmd)
}
