package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/newthinker/protrade/internal/ux"
	"github.com/newthinker/protrade/internal/viewer"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	watchFlags    viewFlags
	watchInterval time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Reload the strategy view on an interval",
	Long: `watch keeps one strategy viewer mounted and reloads it on every tick
without waiting for the previous load. A load that a newer one overtakes
is dropped, so the printed view always matches the latest request.`,
	RunE: runWatch,
}

func init() {
	watchFlags.register(watchCmd)
	watchCmd.Flags().DurationVarP(&watchInterval, "interval", "i", 0, "reload interval (default from config)")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	rt, err := setup()
	if err != nil {
		return err
	}
	log := rt.log
	defer log.Sync()

	symbol, tf, err := watchFlags.inputs(rt)
	if err != nil {
		return err
	}
	interval := watchInterval
	if interval <= 0 {
		interval = rt.cfg.Viewer.WatchInterval
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	v := rt.factory.New(viewer.KindStrategy, symbol, tf)
	out := cmd.OutOrStdout()

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	reload := func() {
		defer wg.Done()
		st := v.Reload(ctx)
		if st.Loading || ctx.Err() != nil {
			// Overtaken by a newer load; that one prints.
			return
		}

		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintf(out, "\n%s\n", time.Now().Format(time.RFC3339))
		if err := ux.WriteView(out, v.View(), watchFlags.rows); err != nil {
			log.Warn("writing view", zap.Error(err))
		}
	}

	log.Info("watching",
		zap.String("symbol", symbol),
		zap.String("tf", string(tf)),
		zap.Duration("interval", interval),
	)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	wg.Add(1)
	go reload()
	for {
		select {
		case <-ctx.Done():
			wg.Wait()
			return nil
		case <-ticker.C:
			wg.Add(1)
			go reload()
		}
	}
}
