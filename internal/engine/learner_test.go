package engine

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/bidbot/internal/domain"
)

// fakeOutcomeStore sirve un histórico fijo y registra los appends.
type fakeOutcomeStore struct {
	outcomes []domain.AuctionOutcome
	err      error
	appended []domain.AuctionOutcome
}

func (f *fakeOutcomeStore) AppendOutcome(_ context.Context, o domain.AuctionOutcome) error {
	if f.err != nil {
		return f.err
	}
	f.appended = append(f.appended, o)
	return nil
}

func (f *fakeOutcomeStore) RecentOutcomes(_ context.Context, _ time.Time, limit int) ([]domain.AuctionOutcome, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.outcomes) > limit {
		return f.outcomes[:limit], nil
	}
	return f.outcomes, nil
}

func (f *fakeOutcomeStore) Close() error { return nil }

func won(overbidPct float64) domain.AuctionOutcome {
	return domain.AuctionOutcome{Won: true, OverbidPct: overbidPct, ResolvedAt: time.Now()}
}

func lost(overbidPct float64) domain.AuctionOutcome {
	return domain.AuctionOutcome{Won: false, OverbidPct: overbidPct, ResolvedAt: time.Now()}
}

func lostToRival(ourPct float64, winningBid, asking int64) domain.AuctionOutcome {
	rival := "rival-1"
	return domain.AuctionOutcome{
		Won:         false,
		OverbidPct:  ourPct,
		AskingPrice: asking,
		WinningBid:  &winningBid,
		WinnerID:    &rival,
		ResolvedAt:  time.Now(),
	}
}

func TestLearner_ColdStart(t *testing.T) {
	store := &fakeOutcomeStore{outcomes: []domain.AuctionOutcome{won(5), lost(3)}}
	l := NewLearner(DefaultLearnerConfig(), store)

	advice := l.RecommendedOverbidPct(context.Background(), 100, 100, 200)

	// Dos outcomes < MinSamples: default conservador, sin muestras
	assert.InDelta(t, 5.0, advice.Pct, 0.001)
	assert.Zero(t, advice.Samples)
	assert.False(t, advice.Degraded)
	assert.Contains(t, advice.Basis, "insufficient data")
}

func TestLearner_StoreUnavailableDegrades(t *testing.T) {
	store := &fakeOutcomeStore{err: errors.New("disk on fire")}
	l := NewLearner(DefaultLearnerConfig(), store)

	advice := l.RecommendedOverbidPct(context.Background(), 100, 100, 200)

	assert.True(t, advice.Degraded)
	assert.InDelta(t, 5.0, advice.Pct, 0.001)
}

func TestLearner_LossesDominate(t *testing.T) {
	// 1 victoria, 4 derrotas con sobrepuja media del 6%
	store := &fakeOutcomeStore{outcomes: []domain.AuctionOutcome{
		won(5), lost(6), lost(6), lost(6), lost(6),
	}}
	l := NewLearner(DefaultLearnerConfig(), store)

	advice := l.RecommendedOverbidPct(context.Background(), 100, 100, 200)

	require.Equal(t, 5, advice.Samples)
	// media de derrotas (6) + buffer (5)
	assert.InDelta(t, 11.0, advice.Pct, 0.001)
	assert.Contains(t, advice.Basis, "losses dominate")
}

func TestLearner_WinsDominate(t *testing.T) {
	// 4 victorias al 8%, 1 derrota: win rate 80% → media ganadora sin recorte
	store := &fakeOutcomeStore{outcomes: []domain.AuctionOutcome{
		won(8), won(8), won(8), won(8), lost(2),
	}}
	l := NewLearner(DefaultLearnerConfig(), store)

	advice := l.RecommendedOverbidPct(context.Background(), 100, 100, 200)

	assert.InDelta(t, 8.0, advice.Pct, 0.001)
	assert.Contains(t, advice.Basis, "wins dominate")
}

func TestLearner_TooManyWinsReducesOverbid(t *testing.T) {
	// Win rate del 100%: probablemente sobrepagamos → 10% × 0.9
	store := &fakeOutcomeStore{outcomes: []domain.AuctionOutcome{
		won(10), won(10), won(10), won(10), won(10),
	}}
	l := NewLearner(DefaultLearnerConfig(), store)

	advice := l.RecommendedOverbidPct(context.Background(), 100, 100, 200)
	assert.InDelta(t, 9.0, advice.Pct, 0.001)
}

func TestLearner_CompetitorDataTakesPrecedence(t *testing.T) {
	// 3 derrotas con rival revelado al +10%, 2 victorias (win rate 40%)
	store := &fakeOutcomeStore{outcomes: []domain.AuctionOutcome{
		won(5), won(5),
		lostToRival(4, 110, 100),
		lostToRival(4, 110, 100),
		lostToRival(4, 110, 100),
	}}
	l := NewLearner(DefaultLearnerConfig(), store)

	advice := l.RecommendedOverbidPct(context.Background(), 100, 100, 200)

	// sobrepuja media rival (10) + buffer rival (3); win rate 40% no dispara
	// la corrección (solo actúa <30% o >80%)
	assert.InDelta(t, 13.0, advice.Pct, 0.001)
	assert.Contains(t, advice.Basis, "competitor bids")
}

func TestLearner_LowWinRateRaisesFloor(t *testing.T) {
	// 1 victoria, 4 derrotas reveladas: win rate 20% → floor agresivo
	store := &fakeOutcomeStore{outcomes: []domain.AuctionOutcome{
		won(5),
		lostToRival(6, 108, 100),
		lostToRival(6, 108, 100),
		lostToRival(6, 108, 100),
		lostToRival(6, 108, 100),
	}}
	l := NewLearner(DefaultLearnerConfig(), store)

	advice := l.RecommendedOverbidPct(context.Background(), 100, 100, 200)

	// floor = avgLosing(6) + gap(6-5=1) + buffer(5) = 12 > rival 8+3=11
	assert.InDelta(t, 12.0, advice.Pct, 0.001)
}

func TestLearner_AlwaysNonNegativeAndFinite(t *testing.T) {
	store := &fakeOutcomeStore{outcomes: []domain.AuctionOutcome{
		won(-10), won(-10), won(-10), won(-10), won(-10),
	}}
	l := NewLearner(DefaultLearnerConfig(), store)

	advice := l.RecommendedOverbidPct(context.Background(), 100, 100, 200)
	assert.GreaterOrEqual(t, advice.Pct, 0.0)
	assert.False(t, math.IsNaN(advice.Pct))
	assert.False(t, math.IsInf(advice.Pct, 0))
}

func TestLearner_RecordOutcomePropagatesError(t *testing.T) {
	store := &fakeOutcomeStore{err: errors.New("locked")}
	l := NewLearner(DefaultLearnerConfig(), store)

	err := l.RecordOutcome(context.Background(), won(5))
	assert.Error(t, err)
}

func TestLearner_StatsOnStoreFailureAreEmpty(t *testing.T) {
	store := &fakeOutcomeStore{err: errors.New("gone")}
	l := NewLearner(DefaultLearnerConfig(), store)

	stats := l.Stats(context.Background())
	assert.Zero(t, stats.TotalAuctions)
}
