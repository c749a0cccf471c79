package main

import (
	"fmt"

	"github.com/newthinker/protrade/internal/client"
	"github.com/newthinker/protrade/internal/config"
	"github.com/newthinker/protrade/internal/logger"
	"github.com/newthinker/protrade/internal/metrics"
	"github.com/newthinker/protrade/internal/viewer"
	"go.uber.org/zap"
)

// env bundles what every command builds from the config.
type env struct {
	cfg     *config.Config
	log     *zap.Logger
	metrics *metrics.Registry
	client  *client.Client
	factory *viewer.Factory
}

// setup loads and validates config, then builds the logger, metrics
// registry, backend client and viewer factory.
func setup() (*env, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	level := cfg.Log.Level
	if debug {
		level = "debug"
	}
	log, err := logger.New(logger.Options{Development: debug, Level: level})
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	if cfgFile == "" {
		log.Debug("no config file specified, using defaults and environment")
	}

	rt := &env{cfg: cfg, log: log}

	opts := []client.Option{
		client.WithTimeout(cfg.Backend.Timeout),
		client.WithLogger(log.Named("client")),
	}
	if cfg.Metrics.Enabled {
		rt.metrics = metrics.NewRegistry()
		opts = append(opts, client.WithObserver(rt.metrics))
	}

	rt.client, err = client.New(cfg.Backend.APIBase, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating backend client: %w", err)
	}

	rt.factory = &viewer.Factory{
		Candles:  rt.client,
		Strategy: rt.client,
		Logger:   log.Named("viewer"),
	}
	if rt.metrics != nil {
		rt.factory.Recorder = rt.metrics
	}

	return rt, nil
}
