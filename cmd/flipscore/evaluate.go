package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/alejandrodnm/flipscore/config"
	"github.com/alejandrodnm/flipscore/internal/adapters/feed"
	"github.com/alejandrodnm/flipscore/internal/adapters/notify"
	"github.com/alejandrodnm/flipscore/internal/application/scanner"
	"github.com/alejandrodnm/flipscore/internal/application/settings"
	"github.com/alejandrodnm/flipscore/internal/domain"
	"github.com/alejandrodnm/flipscore/internal/engine"
	"github.com/shopspring/decimal"
)

// runEvaluate evalúa los anuncios de un fichero sin filtros y muestra el
// desglose completo más las capas de enriquecimiento del mejor deal.
func runEvaluate(ctx context.Context, path, comps string, cfg *config.Config, holder *settings.Holder, notifier *notify.Console) error {
	slog.Info("=== EVALUATE MODE ===", "file", path)

	comparables, err := parseComparables(comps)
	if err != nil {
		return err
	}

	listings, err := feed.NewFileProvider(path, cfg.Feed.Platform).FetchListings(ctx)
	if err != nil {
		return err
	}

	snap := holder.Load()
	ev := engine.New(snap.Settings, snap.Pricing)

	var deals []domain.Deal
	for _, l := range listings {
		d, err := ev.Evaluate(l, nil)
		if err != nil {
			slog.Warn("listing skipped", "listing", l.ID, "err", err)
			continue
		}
		deals = append(deals, d)
	}
	if len(deals) == 0 {
		return errors.New("no listing in file could be evaluated")
	}

	scanner.RankByScore(deals)
	if err := notifier.Notify(ctx, deals); err != nil {
		return err
	}
	notifier.PrintEnrichment(ev.Enrich(deals[0], comparables))
	return nil
}

// parseComparables convierte "950, 1020,990" en precios.
func parseComparables(s string) ([]decimal.Decimal, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var out []decimal.Decimal
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		d, err := decimal.NewFromString(part)
		if err != nil {
			return nil, fmt.Errorf("parseComparables: %q: %w", part, err)
		}
		out = append(out, d)
	}
	return out, nil
}
