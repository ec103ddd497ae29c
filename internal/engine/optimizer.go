package engine

// optimizer.go — Trade Optimizer.
//
// Enumera swaps N-por-M (0..maxDivest vendidos, 1..maxAcquire comprados)
// y los filtra por factibilidad: presupuesto, capacidad de plantilla,
// mínimos de composición y mejora mínima. El coste de adquisición viene
// del valuation engine — lo que la puja tendría que ser para ganar, no el
// valor de mercado. Acotar maxDivest/maxAcquire (≤3) mantiene la búsqueda
// exhaustiva tratable.

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/alejandrodnm/bidbot/internal/domain"
)

// OptimizerConfig son los parámetros del optimizador.
type OptimizerConfig struct {
	MaxDivest      int
	MaxAcquire     int
	TopK           int
	MinImprovement float64 // score mínimo para emitir un swap
	Rules          domain.CompositionRules
}

// DefaultOptimizerConfig devuelve los parámetros de producción.
func DefaultOptimizerConfig() OptimizerConfig {
	return OptimizerConfig{
		MaxDivest:      3,
		MaxAcquire:     3,
		TopK:           5,
		MinImprovement: 2.0,
		Rules:          domain.DefaultCompositionRules(),
	}
}

// Optimizer busca los mejores swaps de plantilla.
type Optimizer struct {
	cfg    OptimizerConfig
	valuer *Valuer
}

// NewOptimizer crea un Optimizer que estima costes con el valuer dado.
func NewOptimizer(cfg OptimizerConfig, valuer *Valuer) *Optimizer {
	return &Optimizer{cfg: cfg, valuer: valuer}
}

// FindTrades devuelve los mejores TopK swaps factibles, orden descendente
// por score con desempate por menor coste neto. Determinista: el mismo
// snapshot de holdings/mercado/presupuesto produce el mismo resultado.
func (o *Optimizer) FindTrades(
	ctx context.Context,
	holdings []domain.Asset,
	market []domain.Asset,
	scores map[string]float64,
	budget int64,
) []domain.TradeRecommendation {
	lineup := domain.SelectBestLineup(holdings, scores, o.cfg.Rules)
	currentPoints, currentValue := domain.LineupStrength(lineup, scores)

	// Valorar cada candidato del mercado una sola vez. Los no viables
	// (techo por debajo del asking) y los impagables incluso en solitario
	// quedan fuera del espacio de búsqueda.
	candidates := make([]domain.Asset, 0, len(market))
	bidPrices := make(map[string]int64, len(market))
	for _, a := range market {
		if !a.IsListed() {
			continue
		}
		rec := o.valuer.ComputeBid(ctx, ValuationInput{
			AskingPrice:   a.AskingPrice,
			AssessedValue: a.AssessedValue,
			QualityScore:  a.QualityScore,
			Confidence:    0.8, // conservador para trades de plantilla
			ValueCeiling:  estimateCeiling(a),
			IsPriority:    true, // un swap de plantilla es un hold a largo plazo
		})
		if !rec.Viable || rec.Amount > budget {
			continue
		}
		candidates = append(candidates, a)
		bidPrices[a.ID] = rec.Amount
	}

	var recs []domain.TradeRecommendation
	for nOut := 0; nOut <= o.cfg.MaxDivest && nOut <= len(lineup); nOut++ {
		for _, divest := range combinations(lineup, nOut) {
			for mIn := 1; mIn <= o.cfg.MaxAcquire && mIn <= len(candidates); mIn++ {
				for _, acquire := range combinations(candidates, mIn) {
					if rec, ok := o.evaluate(holdings, divest, acquire, bidPrices, scores, budget, currentPoints, currentValue); ok {
						recs = append(recs, rec)
					}
				}
			}
		}
	}

	sort.Slice(recs, func(i, j int) bool {
		if recs[i].Score != recs[j].Score {
			return recs[i].Score > recs[j].Score
		}
		if recs[i].NetCost != recs[j].NetCost {
			return recs[i].NetCost < recs[j].NetCost
		}
		return tradeKey(recs[i]) < tradeKey(recs[j])
	})

	if len(recs) > o.cfg.TopK {
		recs = recs[:o.cfg.TopK]
	}
	return recs
}

// evaluate aplica los filtros de factibilidad a un swap concreto.
// Un candidato que falla un filtro se descarta, no se puntúa bajo.
func (o *Optimizer) evaluate(
	holdings, divest, acquire []domain.Asset,
	bidPrices map[string]int64,
	scores map[string]float64,
	budget int64,
	currentPoints, currentValue float64,
) (domain.TradeRecommendation, bool) {
	var totalCost int64
	prices := make(map[string]int64, len(acquire))
	for _, a := range acquire {
		prices[a.ID] = bidPrices[a.ID]
		totalCost += bidPrices[a.ID]
	}
	// Presupuesto: el coste completo se necesita por adelantado (se compra
	// antes de que las ventas liquiden).
	if totalCost > budget {
		return domain.TradeRecommendation{}, false
	}

	newSize := len(holdings) - len(divest) + len(acquire)
	if newSize > o.cfg.Rules.MaxHoldings {
		return domain.TradeRecommendation{}, false
	}

	out := make(map[string]bool, len(divest))
	var proceeds int64
	for _, a := range divest {
		out[a.ID] = true
		proceeds += a.AssessedValue
	}
	newHoldings := make([]domain.Asset, 0, newSize)
	for _, a := range holdings {
		if !out[a.ID] {
			newHoldings = append(newHoldings, a)
		}
	}
	newHoldings = append(newHoldings, acquire...)

	if !domain.ValidateComposition(newHoldings, o.cfg.Rules) {
		return domain.TradeRecommendation{}, false
	}

	newLineup := domain.SelectBestLineup(newHoldings, scores, o.cfg.Rules)
	newPoints, newValue := domain.LineupStrength(newLineup, scores)

	pointsImp := newPoints - currentPoints
	valueImp := newValue - currentValue
	score := domain.TradeScore(pointsImp, valueImp, acquire)
	if score < o.cfg.MinImprovement {
		return domain.TradeRecommendation{}, false
	}

	return domain.TradeRecommendation{
		Divest:            divest,
		Acquire:           acquire,
		BidPrices:         prices,
		TotalCost:         totalCost,
		TotalProceeds:     proceeds,
		NetCost:           totalCost - proceeds,
		PointsImprovement: pointsImp,
		ValueImprovement:  valueImp,
		Score:             score,
		Strategy:          fmt.Sprintf("%d-for-%d", len(divest), len(acquire)),
	}, true
}

// CheckAffordable valida un trade forzado por el caller contra el
// presupuesto. El optimizador nunca emite swaps infactibles, así que esto
// solo protege contra mal uso del API.
func (o *Optimizer) CheckAffordable(rec domain.TradeRecommendation, budget int64) error {
	if rec.TotalCost > budget {
		return fmt.Errorf("optimizer.CheckAffordable: cost %d over budget %d: %w",
			rec.TotalCost, budget, ErrInsufficientBudget)
	}
	return nil
}

// estimateCeiling deriva el techo de valor de un candidato a partir de su
// quality score: más calidad, más crecimiento esperado (0.6 → +6%).
func estimateCeiling(a domain.Asset) int64 {
	growth := 1.0 + a.QualityScore*0.1
	return int64(math.Round(float64(a.AssessedValue) * growth))
}

// combinations genera todas las combinaciones de k elementos en orden de
// índice estable. k=0 devuelve la combinación vacía.
func combinations(assets []domain.Asset, k int) [][]domain.Asset {
	if k == 0 {
		return [][]domain.Asset{nil}
	}
	if k > len(assets) {
		return nil
	}

	var out [][]domain.Asset
	idx := make([]int, k)
	for i := range idx {
		idx[i] = i
	}
	for {
		combo := make([]domain.Asset, k)
		for i, j := range idx {
			combo[i] = assets[j]
		}
		out = append(out, combo)

		// Avanzar al siguiente índice lexicográfico.
		i := k - 1
		for i >= 0 && idx[i] == len(assets)-k+i {
			i--
		}
		if i < 0 {
			return out
		}
		idx[i]++
		for j := i + 1; j < k; j++ {
			idx[j] = idx[j-1] + 1
		}
	}
}

// tradeKey es el desempate terciario determinista del ranking.
func tradeKey(rec domain.TradeRecommendation) string {
	ids := make([]string, 0, len(rec.Divest)+len(rec.Acquire))
	for _, a := range rec.Divest {
		ids = append(ids, a.ID)
	}
	for _, a := range rec.Acquire {
		ids = append(ids, a.ID)
	}
	return strings.Join(ids, "|")
}
