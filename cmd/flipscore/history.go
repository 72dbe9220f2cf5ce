package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/alejandrodnm/flipscore/internal/adapters/notify"
	"github.com/alejandrodnm/flipscore/internal/ports"
)

// runHistory imprime los deals vistos en la ventana [now-window, now].
func runHistory(ctx context.Context, store ports.Storage, notifier *notify.Console, window time.Duration) error {
	to := time.Now()
	records, err := store.GetHistory(ctx, to.Add(-window), to)
	if err != nil {
		return err
	}
	slog.Info("deal history", "window", window, "deals", len(records))
	notifier.PrintHistory(records)
	return nil
}
