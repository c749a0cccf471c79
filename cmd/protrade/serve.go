package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newthinker/protrade/internal/api"
	"github.com/newthinker/protrade/internal/core"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var templatesDir string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the viewer web server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&templatesDir, "templates", "", "load page templates from this directory instead of the embedded ones")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	rt, err := setup()
	if err != nil {
		return err
	}
	log := rt.log
	defer log.Sync()

	log.Info("starting protrade server",
		zap.String("host", rt.cfg.Server.Host),
		zap.Int("port", rt.cfg.Server.Port),
		zap.String("backend", rt.client.BaseURL()),
	)

	deps := api.Dependencies{
		Factory:       rt.factory,
		DefaultSymbol: rt.cfg.Viewer.DefaultSymbol,
		DefaultTF:     core.Timeframe(rt.cfg.Viewer.DefaultTimeframe),
		Metrics:       rt.metrics,
		MetricsPath:   rt.cfg.Metrics.Path,
		Backend:       rt.client.BaseURL(),
	}

	// A page waits on a full backend load before writing.
	var writeTimeout time.Duration
	if rt.cfg.Backend.Timeout > 0 {
		writeTimeout = rt.cfg.Backend.Timeout + 15*time.Second
	}

	server, err := api.NewServer(api.Config{
		Host:         rt.cfg.Server.Host,
		Port:         rt.cfg.Server.Port,
		TemplatesDir: templatesDir,
		WriteTimeout: writeTimeout,
	}, deps, log)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	log.Info("shutting down protrade server")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return server.Shutdown(ctx)
}
