package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync/atomic"
	"time"

	"github.com/alejandrodnm/flipscore/internal/application/settings"
	"github.com/alejandrodnm/flipscore/internal/domain"
	"github.com/alejandrodnm/flipscore/internal/ports"
	"github.com/google/uuid"
)

// Config contiene la configuración del scanner.
type Config struct {
	ScanInterval time.Duration
	Filter       FilterConfig
	Workers      int     // goroutines de evaluación (0 = NumCPU*2)
	HotScore     float64 // deal score a partir del cual se alerta
	Once         bool    // un solo ciclo y salir
	DryRun       bool    // no persiste en storage
}

// Scanner es el orquestador del loop: fetch → evaluate → filter → rank → alert → notify → persist.
type Scanner struct {
	cfg            Config
	listings       ports.ListingProvider
	storage        ports.Storage
	notifier       ports.Notifier
	analyzer       *Analyzer
	filter         atomic.Pointer[Filter]
	now            func() time.Time
	previousHotIDs map[string]bool // deals hot del ciclo anterior para alertas
}

// New crea un Scanner con todas las dependencias inyectadas.
// storage puede ser nil (sin histórico).
func New(
	cfg Config,
	listings ports.ListingProvider,
	storage ports.Storage,
	notifier ports.Notifier,
	holder *settings.Holder,
) *Scanner {
	s := &Scanner{
		cfg:            cfg,
		listings:       listings,
		storage:        storage,
		notifier:       notifier,
		analyzer:       NewAnalyzer(holder),
		now:            time.Now,
		previousHotIDs: make(map[string]bool),
	}
	s.filter.Store(NewFilter(cfg.Filter))
	return s
}

// SetFilter reemplaza el filtro del scanner (p. ej. tras recargar config).
// Es seguro llamarlo mientras Run está en marcha.
func (s *Scanner) SetFilter(f *Filter) {
	s.filter.Store(f)
}

// Run ejecuta el loop de escaneo hasta que el contexto se cancele.
// Si cfg.Once está activo, solo ejecuta un ciclo.
func (s *Scanner) Run(ctx context.Context) error {
	slog.Info("scanner starting",
		"interval", s.cfg.ScanInterval,
		"once", s.cfg.Once,
		"dry_run", s.cfg.DryRun,
		"workers", s.cfg.Workers,
	)

	if err := s.runCycle(ctx); err != nil {
		slog.Error("scan cycle failed", "err", err)
		if s.cfg.Once {
			return err
		}
	}

	if s.cfg.Once {
		return nil
	}

	ticker := time.NewTicker(s.cfg.ScanInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("scanner stopped")
			return nil
		case <-ticker.C:
			if err := s.runCycle(ctx); err != nil {
				slog.Error("scan cycle failed", "err", err)
			}
		}
	}
}

// RunOnce ejecuta exactamente un ciclo de evaluación y devuelve los deals rankeados.
// No notifica ni persiste.
func (s *Scanner) RunOnce(ctx context.Context) ([]domain.Deal, error) {
	deals, _, err := s.cycle(ctx)
	return deals, err
}

// runCycle ejecuta un ciclo completo y notifica/persiste los resultados.
func (s *Scanner) runCycle(ctx context.Context) error {
	start := s.now()

	deals, received, err := s.cycle(ctx)
	if err != nil {
		return err
	}

	hot := s.emitHotAlerts(deals)

	if err := s.notifier.Notify(ctx, deals); err != nil {
		slog.Warn("notifier error", "err", err)
	}

	summary := domain.CycleSummary{
		ID:        uuid.NewString(),
		ScannedAt: start.UTC(),
		Listings:  received,
		Deals:     len(deals),
		Hot:       hot,
	}
	if len(deals) > 0 {
		summary.BestScore = deals[0].ROI.DealScore
	}

	if s.storage != nil && !s.cfg.DryRun {
		if err := s.storage.SaveCycle(ctx, summary, deals); err != nil {
			slog.Warn("storage error", "err", err)
		}
	}

	slog.Info("scan cycle complete",
		"cycle", summary.ID,
		"listings", received,
		"deals", len(deals),
		"hot", hot,
		"best_score", fmt.Sprintf("%.1f", summary.BestScore),
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return nil
}

// cycle hace fetch → concurrent evaluate → filter → rank.
// Devuelve también el número de anuncios recibidos del feed.
func (s *Scanner) cycle(ctx context.Context) ([]domain.Deal, int, error) {
	listings, err := s.listings.FetchListings(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("scanner.cycle: fetch listings: %w", err)
	}

	ev, snap := s.analyzer.Evaluator()
	slog.Debug("evaluating listings", "count", len(listings), "settings_version", snap.Version, "pricing", snap.Pricing.Version())

	deals, err := evaluateConcurrent(ctx, ev, listings, s.cfg.Workers)
	if err != nil {
		return nil, len(listings), fmt.Errorf("scanner.cycle: evaluate: %w", err)
	}

	filtered := s.filter.Load().Apply(deals)
	return RankByScore(filtered), len(listings), nil
}

// emitHotAlerts registra alertas para deals hot nuevos (no vistos en el ciclo anterior)
// y devuelve cuántos deals hot hay en el ciclo.
func (s *Scanner) emitHotAlerts(deals []domain.Deal) int {
	hotIDs := make(map[string]bool, len(deals))

	for _, d := range deals {
		if s.cfg.HotScore <= 0 || !d.IsHot(s.cfg.HotScore) {
			continue
		}
		hotIDs[d.ID] = true

		if s.previousHotIDs[d.ID] {
			continue // ya conocido
		}

		slog.Warn("NEW HOT DEAL",
			"listing", d.Listing.Title,
			"url", d.Listing.URL,
			"asking", "$"+d.Listing.AskingPrice().StringFixed(2),
			"fmv", "$"+d.FMV.Total.StringFixed(2),
			"net_profit", "$"+d.ROI.NetProfit.StringFixed(2),
			"offer", "$"+d.Offer.RecommendedOffer.StringFixed(2),
			"walk_away", "$"+d.ROI.WalkAwayPrice.StringFixed(2),
			"score", fmt.Sprintf("%.1f", d.ROI.DealScore),
		)
	}

	s.previousHotIDs = hotIDs
	return len(hotIDs)
}

// RankByScore ordena por DealScore descendente; a igualdad, más beneficio neto primero.
func RankByScore(deals []domain.Deal) []domain.Deal {
	sort.SliceStable(deals, func(i, j int) bool {
		if deals[i].ROI.DealScore != deals[j].ROI.DealScore {
			return deals[i].ROI.DealScore > deals[j].ROI.DealScore
		}
		return deals[i].ROI.NetProfit.GreaterThan(deals[j].ROI.NetProfit)
	})
	return deals
}
