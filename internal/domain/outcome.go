package domain

import (
	"sort"
	"time"
)

// AuctionOutcome es el registro histórico inmutable de una subasta resuelta.
// Append-only: nunca se muta ni se borra salvo por retención.
type AuctionOutcome struct {
	AssetID       string
	AssetName     string
	OurBid        int64
	AskingPrice   int64
	OverbidPct    float64 // derivado de OurBid y AskingPrice
	Won           bool
	WinningBid    *int64  // solo si el mercado lo revela a posteriori
	WinnerID      *string // ídem
	AssessedValue int64
	QualityScore  float64
	ResolvedAt    time.Time
}

// WinningOverbidPct devuelve la sobrepuja del ganador si se conoce.
func (o AuctionOutcome) WinningOverbidPct() (float64, bool) {
	if o.WinningBid == nil || o.AskingPrice <= 0 {
		return 0, false
	}
	return float64(*o.WinningBid-o.AskingPrice) / float64(o.AskingPrice) * 100, true
}

// CompetitorProfile agrega el comportamiento observado de un competidor.
type CompetitorProfile struct {
	CompetitorID string
	TimesOutbid  int     // veces que nos ganó una subasta
	AvgOverbid   float64 // su sobrepuja media conocida
	MinOverbid   float64
	MaxOverbid   float64
}

// CompetitiveStats son estadísticas derivadas del histórico de subastas.
// Se calculan bajo demanda, nunca se persisten directamente.
type CompetitiveStats struct {
	TotalAuctions     int
	Wins              int
	Losses            int
	WinRate           float64 // porcentaje 0–100
	AvgWinningOverbid float64 // nuestra sobrepuja media en victorias
	AvgLosingOverbid  float64 // nuestra sobrepuja media en derrotas
	// AvgCompetitorOverbid es la sobrepuja media de los ganadores que nos
	// batieron, solo sobre derrotas donde el mercado reveló el importe.
	AvgCompetitorOverbid float64
	CompetitorSamples    int
	Competitors          []CompetitorProfile
}

// DeriveStats calcula CompetitiveStats a partir de un histórico de outcomes.
func DeriveStats(outcomes []AuctionOutcome) CompetitiveStats {
	var stats CompetitiveStats
	stats.TotalAuctions = len(outcomes)
	if len(outcomes) == 0 {
		return stats
	}

	var winSum, lossSum, compSum float64
	perCompetitor := make(map[string]*CompetitorProfile)

	for _, o := range outcomes {
		if o.Won {
			stats.Wins++
			winSum += o.OverbidPct
			continue
		}
		stats.Losses++
		lossSum += o.OverbidPct

		pct, known := o.WinningOverbidPct()
		if !known {
			continue
		}
		compSum += pct
		stats.CompetitorSamples++

		if o.WinnerID == nil {
			continue
		}
		p, ok := perCompetitor[*o.WinnerID]
		if !ok {
			p = &CompetitorProfile{CompetitorID: *o.WinnerID, MinOverbid: pct, MaxOverbid: pct}
			perCompetitor[*o.WinnerID] = p
		}
		p.AvgOverbid = (p.AvgOverbid*float64(p.TimesOutbid) + pct) / float64(p.TimesOutbid+1)
		p.TimesOutbid++
		if pct < p.MinOverbid {
			p.MinOverbid = pct
		}
		if pct > p.MaxOverbid {
			p.MaxOverbid = pct
		}
	}

	stats.WinRate = float64(stats.Wins) / float64(stats.TotalAuctions) * 100
	if stats.Wins > 0 {
		stats.AvgWinningOverbid = winSum / float64(stats.Wins)
	}
	if stats.Losses > 0 {
		stats.AvgLosingOverbid = lossSum / float64(stats.Losses)
	}
	if stats.CompetitorSamples > 0 {
		stats.AvgCompetitorOverbid = compSum / float64(stats.CompetitorSamples)
	}

	for _, p := range perCompetitor {
		stats.Competitors = append(stats.Competitors, *p)
	}
	// Orden estable para reporting y tests.
	sort.Slice(stats.Competitors, func(i, j int) bool {
		a, b := stats.Competitors[i], stats.Competitors[j]
		if a.TimesOutbid != b.TimesOutbid {
			return a.TimesOutbid > b.TimesOutbid
		}
		return a.CompetitorID < b.CompetitorID
	})
	return stats
}
