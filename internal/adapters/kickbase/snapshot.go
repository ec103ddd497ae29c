package kickbase

// snapshot.go — implementación de ports.SnapshotProvider.
//
// El quality score es un input opaco: aquí solo se integra el scorer
// externo inyectado, no se define ninguna fórmula de valoración.

import (
	"context"
	"fmt"

	"github.com/alejandrodnm/bidbot/internal/domain"
	"github.com/alejandrodnm/bidbot/internal/ports"
)

// ScoreFunc convierte el rendimiento medio en un quality score [0,1].
type ScoreFunc func(avgPoints float64) float64

// DefaultScoreFunc normaliza los puntos medios a [0,1] saturando en 100.
func DefaultScoreFunc(avgPoints float64) float64 {
	if avgPoints <= 0 {
		return 0
	}
	if avgPoints >= 100 {
		return 1
	}
	return avgPoints / 100
}

// SnapshotProvider arma el snapshot de cada ciclo desde el API.
type SnapshotProvider struct {
	client *Client
	score  ScoreFunc
}

// NewSnapshotProvider crea un provider. score puede ser nil (default).
func NewSnapshotProvider(client *Client, score ScoreFunc) *SnapshotProvider {
	if score == nil {
		score = DefaultScoreFunc
	}
	return &SnapshotProvider{client: client, score: score}
}

// Snapshot devuelve holdings, mercado y scores del ciclo actual.
func (s *SnapshotProvider) Snapshot(ctx context.Context) (ports.Snapshot, error) {
	var squad squadResponse
	if err := s.client.get(ctx, "/leagues/"+s.client.leagueID+"/squad", &squad); err != nil {
		return ports.Snapshot{}, fmt.Errorf("kickbase.Snapshot: squad: %w", err)
	}

	var market marketResponse
	if err := s.client.get(ctx, "/leagues/"+s.client.leagueID+"/market", &market); err != nil {
		return ports.Snapshot{}, fmt.Errorf("kickbase.Snapshot: market: %w", err)
	}

	snap := ports.Snapshot{
		Holdings: make([]domain.Asset, 0, len(squad.Players)),
		Market:   make([]domain.Asset, 0, len(market.Players)),
		Scores:   make(map[string]float64, len(squad.Players)+len(market.Players)),
	}

	for _, p := range squad.Players {
		a := toHoldingAsset(p, s.score)
		snap.Holdings = append(snap.Holdings, a)
		snap.Scores[a.ID] = a.QualityScore * 100
	}
	for _, p := range market.Players {
		a := toMarketAsset(p, s.score)
		snap.Market = append(snap.Market, a)
		snap.Scores[a.ID] = a.QualityScore * 100
	}

	return snap, nil
}
