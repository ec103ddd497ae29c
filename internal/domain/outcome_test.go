package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func outcome(won bool, overbidPct float64) AuctionOutcome {
	return AuctionOutcome{
		AssetID:    "p1",
		OurBid:     105,
		OverbidPct: overbidPct,
		Won:        won,
		ResolvedAt: time.Now(),
	}
}

func lostTo(winner string, winningBid, askingPrice int64) AuctionOutcome {
	return AuctionOutcome{
		AssetID:     "p1",
		AskingPrice: askingPrice,
		OurBid:      askingPrice,
		Won:         false,
		WinningBid:  &winningBid,
		WinnerID:    &winner,
		ResolvedAt:  time.Now(),
	}
}

func TestWinningOverbidPct(t *testing.T) {
	bid := int64(110)
	o := AuctionOutcome{AskingPrice: 100, WinningBid: &bid}
	pct, ok := o.WinningOverbidPct()
	require.True(t, ok)
	assert.InDelta(t, 10.0, pct, 0.001)

	// Sin importe revelado no hay dato
	_, ok = AuctionOutcome{AskingPrice: 100}.WinningOverbidPct()
	assert.False(t, ok)
}

func TestDeriveStats_Empty(t *testing.T) {
	stats := DeriveStats(nil)
	assert.Equal(t, 0, stats.TotalAuctions)
	assert.Empty(t, stats.Competitors)
}

func TestDeriveStats_WinRateAndAverages(t *testing.T) {
	outcomes := []AuctionOutcome{
		outcome(true, 5),
		outcome(true, 7),
		outcome(false, 4),
		outcome(false, 6),
	}
	stats := DeriveStats(outcomes)

	assert.Equal(t, 4, stats.TotalAuctions)
	assert.Equal(t, 2, stats.Wins)
	assert.Equal(t, 2, stats.Losses)
	assert.InDelta(t, 50.0, stats.WinRate, 0.001)
	assert.InDelta(t, 6.0, stats.AvgWinningOverbid, 0.001)
	assert.InDelta(t, 5.0, stats.AvgLosingOverbid, 0.001)
	// Ninguna derrota reveló al ganador
	assert.Equal(t, 0, stats.CompetitorSamples)
}

func TestDeriveStats_CompetitorProfiles(t *testing.T) {
	outcomes := []AuctionOutcome{
		lostTo("rival-a", 110, 100), // +10%
		lostTo("rival-a", 120, 100), // +20%
		lostTo("rival-b", 105, 100), // +5%
	}
	stats := DeriveStats(outcomes)

	assert.Equal(t, 3, stats.CompetitorSamples)
	assert.InDelta(t, 35.0/3, stats.AvgCompetitorOverbid, 0.001)

	require.Len(t, stats.Competitors, 2)
	// Ordenados por veces que nos ganaron, desc
	top := stats.Competitors[0]
	assert.Equal(t, "rival-a", top.CompetitorID)
	assert.Equal(t, 2, top.TimesOutbid)
	assert.InDelta(t, 15.0, top.AvgOverbid, 0.001)
	assert.InDelta(t, 10.0, top.MinOverbid, 0.001)
	assert.InDelta(t, 20.0, top.MaxOverbid, 0.001)
}

func TestDeriveStats_StableCompetitorOrder(t *testing.T) {
	outcomes := []AuctionOutcome{
		lostTo("zeta", 110, 100),
		lostTo("alfa", 110, 100),
	}
	stats := DeriveStats(outcomes)
	require.Len(t, stats.Competitors, 2)
	// Empate en TimesOutbid → orden alfabético
	assert.Equal(t, "alfa", stats.Competitors[0].CompetitorID)
	assert.Equal(t, "zeta", stats.Competitors[1].CompetitorID)
}
