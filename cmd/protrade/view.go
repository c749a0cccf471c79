package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/newthinker/protrade/internal/core"
	"github.com/newthinker/protrade/internal/ux"
	"github.com/newthinker/protrade/internal/viewer"
	"github.com/spf13/cobra"
)

// viewFlags are the inputs shared by the terminal viewers.
type viewFlags struct {
	symbol string
	tf     string
	rows   int
}

func (f *viewFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.symbol, "symbol", "s", "", "ticker symbol (default from config)")
	cmd.Flags().StringVarP(&f.tf, "tf", "t", "", "timeframe: 30m or 1d (default from config)")
	cmd.Flags().IntVarP(&f.rows, "rows", "n", 20, "candle rows to print, 0 for all")
}

// inputs resolves the flags against the configured defaults.
func (f *viewFlags) inputs(rt *env) (string, core.Timeframe, error) {
	symbol := f.symbol
	if symbol == "" {
		symbol = rt.cfg.Viewer.DefaultSymbol
	}
	raw := f.tf
	if raw == "" {
		raw = rt.cfg.Viewer.DefaultTimeframe
	}
	tf, err := core.ParseTimeframe(raw)
	if err != nil {
		return "", "", err
	}
	return symbol, tf, nil
}

var (
	candlesFlags  viewFlags
	strategyFlags viewFlags
)

var candlesCmd = &cobra.Command{
	Use:   "candles",
	Short: "Print candles for a symbol",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runView(cmd, viewer.KindCandles, &candlesFlags)
	},
}

var strategyCmd = &cobra.Command{
	Use:   "strategy",
	Short: "Print the strategy ticket and candles for a symbol",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runView(cmd, viewer.KindStrategy, &strategyFlags)
	},
}

func init() {
	candlesFlags.register(candlesCmd)
	strategyFlags.register(strategyCmd)
	rootCmd.AddCommand(candlesCmd, strategyCmd)
}

// runView mounts one viewer, prints its view and fails when the load did.
func runView(cmd *cobra.Command, kind viewer.Kind, flags *viewFlags) error {
	rt, err := setup()
	if err != nil {
		return err
	}
	defer rt.log.Sync()

	symbol, tf, err := flags.inputs(rt)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	v := rt.factory.New(kind, symbol, tf)
	st := v.Mount(ctx)

	if err := ux.WriteView(cmd.OutOrStdout(), v.View(), flags.rows); err != nil {
		return err
	}
	if st.Status == viewer.StatusError {
		return errors.New(st.Error)
	}
	return nil
}
