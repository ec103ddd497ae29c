package engine

// learner.go — Auction Outcome Learner.
//
// Infiere la presión competitiva del histórico de subastas y recomienda
// una sobrepuja. NO aplica el techo de valor: ese es trabajo exclusivo
// del valuation engine. Si el store no está disponible degrada al default
// — pujar sin histórico siempre tiene que ser posible.

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alejandrodnm/bidbot/internal/domain"
	"github.com/alejandrodnm/bidbot/internal/ports"
)

// LearnerConfig son los parámetros del learner.
type LearnerConfig struct {
	DefaultOverbidPct float64       // recomendación en frío / degradada
	LossBuffer        float64       // puntos extra sobre la media de derrotas
	CompetitorBuffer  float64       // puntos extra sobre la sobrepuja media rival
	Window            time.Duration // ventana de histórico considerada
	MaxOutcomes       int           // tope de filas consideradas
	MinSamples        int           // por debajo: default conservador
}

// DefaultLearnerConfig devuelve los parámetros de producción.
func DefaultLearnerConfig() LearnerConfig {
	return LearnerConfig{
		DefaultOverbidPct: 5.0,
		LossBuffer:        5.0,
		CompetitorBuffer:  3.0,
		Window:            90 * 24 * time.Hour,
		MaxOutcomes:       100,
		MinSamples:        5,
	}
}

// Learner implementa OverbidAdvisor sobre un OutcomeStore inyectado.
// Una instancia por cuenta/sesión — sin estado global compartido.
type Learner struct {
	cfg   LearnerConfig
	store ports.OutcomeStore
	now   func() time.Time
}

// NewLearner crea un Learner sobre el store dado.
func NewLearner(cfg LearnerConfig, store ports.OutcomeStore) *Learner {
	return &Learner{cfg: cfg, store: store, now: time.Now}
}

// RecordOutcome añade un resultado al histórico. Idempotente frente a
// duplicados exactos (lo garantiza el store).
func (l *Learner) RecordOutcome(ctx context.Context, outcome domain.AuctionOutcome) error {
	if err := l.store.AppendOutcome(ctx, outcome); err != nil {
		return fmt.Errorf("engine.RecordOutcome: %w", err)
	}
	return nil
}

// RecommendedOverbidPct devuelve la sobrepuja recomendada para el activo.
// Preferencia: (a) dominan derrotas → media de derrota + buffer;
// (b) dominan victorias → media ganadora (no pagar de más);
// (c) hay datos de rivales → media rival + buffer pequeño, prevalece.
// Siempre no-negativa y finita; el techo lo aplica el valuation engine.
func (l *Learner) RecommendedOverbidPct(ctx context.Context, askingPrice, assessedValue, valueCeiling int64) OverbidAdvice {
	since := l.now().Add(-l.cfg.Window)
	outcomes, err := l.store.RecentOutcomes(ctx, since, l.cfg.MaxOutcomes)
	if err != nil {
		slog.Warn("learner: outcome store unavailable, using default overbid",
			"err", err, "default_pct", l.cfg.DefaultOverbidPct)
		return OverbidAdvice{Pct: l.cfg.DefaultOverbidPct, Basis: "store unavailable", Degraded: true}
	}

	if len(outcomes) < l.cfg.MinSamples {
		return OverbidAdvice{
			Pct:     l.cfg.DefaultOverbidPct,
			Basis:   fmt.Sprintf("insufficient data (%d outcomes)", len(outcomes)),
			Samples: 0,
		}
	}

	stats := domain.DeriveStats(outcomes)
	pct, basis := l.recommend(stats)

	if pct < 0 {
		pct = 0
	}
	return OverbidAdvice{Pct: pct, Basis: basis, Samples: stats.TotalAuctions}
}

// recommend aplica las reglas adaptativas sobre las estadísticas derivadas.
func (l *Learner) recommend(stats domain.CompetitiveStats) (float64, string) {
	// Datos de rivales primero: saber qué nos gana vale más que nuestro
	// propio patrón.
	if stats.CompetitorSamples > 0 {
		pct := stats.AvgCompetitorOverbid + l.cfg.CompetitorBuffer
		basis := fmt.Sprintf("%d competitor bids avg %.1f%%", stats.CompetitorSamples, stats.AvgCompetitorOverbid)
		return l.adaptToWinRate(pct, stats), basis
	}

	if stats.WinRate < 50 {
		// Dominan derrotas: subir por encima de lo que venimos perdiendo.
		pct := stats.AvgLosingOverbid + l.cfg.LossBuffer
		basis := fmt.Sprintf("%d auctions, %.0f%% win rate, losses dominate", stats.TotalAuctions, stats.WinRate)
		return pct, basis
	}

	// Dominan victorias: no pagar más de lo necesario.
	pct := stats.AvgWinningOverbid
	if stats.WinRate > 80 {
		pct *= 0.9 // ganamos demasiado: probablemente sobrepagamos
	}
	basis := fmt.Sprintf("%d auctions, %.0f%% win rate, wins dominate", stats.TotalAuctions, stats.WinRate)
	return pct, basis
}

// adaptToWinRate corrige la recomendación cuando el win rate está muy
// desviado, incluso con datos de rivales.
func (l *Learner) adaptToWinRate(pct float64, stats domain.CompetitiveStats) float64 {
	switch {
	case stats.WinRate < 30:
		gap := stats.AvgLosingOverbid - stats.AvgWinningOverbid
		if gap < 0 {
			gap = 0
		}
		if floor := stats.AvgLosingOverbid + gap + l.cfg.LossBuffer; floor > pct {
			return floor
		}
	case stats.WinRate > 80:
		return pct * 0.9
	}
	return pct
}

// Stats devuelve las estadísticas competitivas acumuladas de la ventana.
// Si el store falla devuelve estadísticas vacías — reporting nunca rompe
// una sesión.
func (l *Learner) Stats(ctx context.Context) domain.CompetitiveStats {
	since := l.now().Add(-l.cfg.Window)
	outcomes, err := l.store.RecentOutcomes(ctx, since, l.cfg.MaxOutcomes)
	if err != nil {
		slog.Warn("learner: stats unavailable", "err", err)
		return domain.CompetitiveStats{}
	}
	return domain.DeriveStats(outcomes)
}
