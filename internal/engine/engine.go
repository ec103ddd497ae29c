package engine

// engine.go — orquestación de la sesión: un actor lógico por cuenta.
// Cada ciclo resuelve pujas pendientes, recalcula recomendaciones y
// publica estadísticas. Ninguna mutación concurrente del tracker: dos
// sesiones sobre el mismo estado persistido serían un race de
// read-modify-write.

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alejandrodnm/bidbot/internal/ports"
)

// Config contiene la configuración de la sesión.
type Config struct {
	PollInterval time.Duration
	Once         bool // un ciclo y salir
}

// Session es el orquestador principal del trade engine.
type Session struct {
	cfg       Config
	market    ports.Marketplace
	snapshots ports.SnapshotProvider
	notifier  ports.Notifier
	tracker   *Tracker
	learner   *Learner
	optimizer *Optimizer
}

// NewSession crea una Session con todas las dependencias inyectadas.
func NewSession(
	cfg Config,
	market ports.Marketplace,
	snapshots ports.SnapshotProvider,
	notifier ports.Notifier,
	tracker *Tracker,
	learner *Learner,
	optimizer *Optimizer,
) *Session {
	return &Session{
		cfg:       cfg,
		market:    market,
		snapshots: snapshots,
		notifier:  notifier,
		tracker:   tracker,
		learner:   learner,
		optimizer: optimizer,
	}
}

// Run ejecuta el loop de la sesión hasta que el contexto se cancele.
// Con cfg.Once solo ejecuta un ciclo.
func (s *Session) Run(ctx context.Context) error {
	slog.Info("session starting",
		"interval", s.cfg.PollInterval,
		"once", s.cfg.Once,
		"pending_bids", len(s.tracker.Pending()),
	)

	if err := s.runCycle(ctx); err != nil {
		slog.Error("cycle failed", "err", err)
		if s.cfg.Once {
			return err
		}
	}
	if s.cfg.Once {
		return nil
	}

	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("session stopped")
			return nil
		case <-ticker.C:
			if err := s.runCycle(ctx); err != nil {
				slog.Error("cycle failed", "err", err)
			}
		}
	}
}

// runCycle ejecuta un ciclo completo: resolver → optimizar → reportar.
func (s *Session) runCycle(ctx context.Context) error {
	start := time.Now()

	events, err := s.tracker.PollAndResolve(ctx)
	if err != nil {
		return fmt.Errorf("session: poll: %w", err)
	}
	if len(events) > 0 {
		if err := s.notifier.NotifyResolutions(ctx, events); err != nil {
			slog.Warn("notify resolutions failed", "err", err)
		}
	}

	snap, err := s.snapshots.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("session: snapshot: %w", err)
	}

	budget, err := s.market.CurrentBudget(ctx)
	if err != nil {
		return fmt.Errorf("session: budget: %w", err)
	}

	recs := s.optimizer.FindTrades(ctx, snap.Holdings, snap.Market, snap.Scores, budget)
	if err := s.notifier.NotifyRecommendations(ctx, recs); err != nil {
		slog.Warn("notify recommendations failed", "err", err)
	}

	if err := s.notifier.NotifyStats(ctx, s.learner.Stats(ctx)); err != nil {
		slog.Warn("notify stats failed", "err", err)
	}

	slog.Info("cycle complete",
		"resolved", len(events),
		"recommendations", len(recs),
		"budget", budget,
		"took", time.Since(start).Round(time.Millisecond),
	)
	return nil
}

// Tracker expone el tracker para el caller (registro y cancelación de
// pujas van por aquí).
func (s *Session) Tracker() *Tracker { return s.tracker }
