package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alejandrodnm/flipscore/config"
	"github.com/alejandrodnm/flipscore/internal/application/scanner"
	"github.com/alejandrodnm/flipscore/internal/application/settings"
)

// watchReload recarga la configuración con SIGHUP y publica un snapshot nuevo.
// Una config inválida se loguea y se ignora: sigue activo el snapshot anterior.
func watchReload(ctx context.Context, path string, holder *settings.Holder, s *scanner.Scanner) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			if err := reload(path, holder, s); err != nil {
				slog.Error("config reload failed, keeping previous settings", "err", err)
			}
		}
	}
}

func reload(path string, holder *settings.Holder, s *scanner.Scanner) error {
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	prices, err := cfg.LoadPricing()
	if err != nil {
		return err
	}

	v := holder.Store(cfg.Settings.ToDomain(), prices)
	s.SetFilter(scanner.NewFilter(filterConfig(cfg.Scanner)))

	slog.Info("config reloaded",
		"version", v,
		"strategy", cfg.Settings.Strategy,
		"pricing", prices.Version(),
	)
	return nil
}
