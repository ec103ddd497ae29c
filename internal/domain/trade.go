package domain

// TradeRecommendation es un candidato de swap N-por-M. Efímero: se
// recalcula en cada ciclo de optimización, nunca se persiste.
type TradeRecommendation struct {
	Divest  []Asset
	Acquire []Asset
	// BidPrices mapea assetID → puja estimada por el valuation engine.
	// Es el coste realista de adquisición, no el valor de mercado.
	BidPrices map[string]int64

	TotalCost     int64 // suma de BidPrices
	TotalProceeds int64 // suma de assessed values de los vendidos
	NetCost       int64 // TotalCost - TotalProceeds (negativo = beneficio)

	PointsImprovement float64
	ValueImprovement  float64
	Score             float64
	Strategy          string // "1-for-1", "0-for-2", ...
}

// QualityBonus devuelve el bonus escalonado por calidad media de los
// activos a adquirir. Desempata a favor de fichar activos sobresalientes
// frente a mejoras agregadas marginales.
func QualityBonus(acquire []Asset) float64 {
	if len(acquire) == 0 {
		return 0
	}
	var sum float64
	for _, a := range acquire {
		sum += a.AvgOutput
	}
	avg := sum / float64(len(acquire))

	switch {
	case avg > 50:
		return 2.0
	case avg > 40:
		return 1.5
	case avg > 30:
		return 1.0
	case avg > 20:
		return 0.5
	default:
		return 0
	}
}

// TradeScore calcula el score de un swap: mejora en puntos, mejora en
// valor atenuada, y bonus por calidad.
func TradeScore(pointsImprovement, valueImprovement float64, acquire []Asset) float64 {
	return pointsImprovement + valueImprovement/10 + QualityBonus(acquire)
}
