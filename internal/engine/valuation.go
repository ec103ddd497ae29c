package engine

// valuation.go — Bid Valuation Engine.
//
// Calcula una puja competitiva pero acotada: parte de una sobrepuja base,
// incorpora la recomendación del learner si existe, y aplica SIEMPRE el
// techo de valor como último paso. Puro: sin side effects, determinista
// dado el mismo snapshot del learner.

import (
	"context"
	"fmt"
	"math"
	"strings"
)

// ValuationConfig son los parámetros del valuation engine.
type ValuationConfig struct {
	DefaultOverbidPct  float64 // arranque en frío
	MaxOverbidPct      float64 // cap normal (flips a corto plazo)
	PriorityOverbidPct float64 // cap elevado para adquisiciones prioritarias
	PriorityQuality    float64 // quality score mínimo para optar al cap elevado
}

// DefaultValuationConfig devuelve los parámetros de producción.
func DefaultValuationConfig() ValuationConfig {
	return ValuationConfig{
		DefaultOverbidPct:  5.0,
		MaxOverbidPct:      15.0,
		PriorityOverbidPct: 30.0,
		PriorityQuality:    0.7,
	}
}

// ValuationInput es el snapshot de entrada para valorar una puja.
type ValuationInput struct {
	AskingPrice   int64
	AssessedValue int64
	QualityScore  float64 // [0,1], del scorer externo
	Confidence    float64 // [0,1]
	ValueCeiling  int64   // precio máximo racional — nunca se supera
	// IsPriority marca una adquisición estratégica a largo plazo,
	// elegible para el cap de sobrepuja elevado. Nunca aplica a flips.
	IsPriority bool
}

// BidRecommendation es el resultado de valorar una puja.
type BidRecommendation struct {
	Amount          int64   // puja final; 0 = no pujar
	OverbidPct      float64 // sobrepuja efectiva sobre el asking price
	Rationale       string
	CappedAtCeiling bool
	Viable          bool
}

// OverbidAdvisor entrega la sobrepuja recomendada por el learner.
// La separación es deliberada: el learner decide cuán competitivo ser,
// el valuation engine decide cuánto es demasiado.
type OverbidAdvisor interface {
	RecommendedOverbidPct(ctx context.Context, askingPrice, assessedValue, valueCeiling int64) OverbidAdvice
}

// OverbidAdvice es la recomendación del learner con su justificación.
type OverbidAdvice struct {
	Pct      float64
	Basis    string // justificación legible ("12 auctions, 40% win rate", ...)
	Samples  int    // outcomes en los que se basa; 0 = arranque en frío
	Degraded bool   // el store no estaba disponible
}

// Valuer implementa el Bid Valuation Engine.
type Valuer struct {
	cfg     ValuationConfig
	advisor OverbidAdvisor // nil = siempre default
}

// NewValuer crea un Valuer. advisor puede ser nil (solo defaults).
func NewValuer(cfg ValuationConfig, advisor OverbidAdvisor) *Valuer {
	return &Valuer{cfg: cfg, advisor: advisor}
}

// ComputeBid calcula la puja final para un activo.
// Invariante duro: el resultado nunca excede in.ValueCeiling.
func (v *Valuer) ComputeBid(ctx context.Context, in ValuationInput) BidRecommendation {
	if in.AskingPrice <= 0 {
		return BidRecommendation{Rationale: "not viable: no asking price"}
	}
	if in.ValueCeiling < in.AskingPrice {
		return BidRecommendation{
			Rationale: fmt.Sprintf("not viable: value ceiling %d below asking price %d - skip", in.ValueCeiling, in.AskingPrice),
		}
	}

	var reasons []string

	overbidPct := v.cfg.DefaultOverbidPct
	reasons = append(reasons, fmt.Sprintf("default +%.1f%% overbid", overbidPct))

	if v.advisor != nil {
		advice := v.advisor.RecommendedOverbidPct(ctx, in.AskingPrice, in.AssessedValue, in.ValueCeiling)
		switch {
		case advice.Degraded:
			reasons = append(reasons, "degraded: outcome history unavailable")
		case advice.Samples > 0:
			overbidPct = advice.Pct
			reasons[0] = fmt.Sprintf("learned +%.1f%% overbid (%s)", overbidPct, advice.Basis)
		default:
			// Arranque en frío: el learner devuelve el default.
			reasons[0] = fmt.Sprintf("default +%.1f%% overbid (cold start)", overbidPct)
		}
	}

	// La confianza atenúa la agresividad: con señal dudosa se puja menos
	// por encima del asking. 0 = sin dato, no escala.
	if in.Confidence > 0 && in.Confidence < 1 {
		overbidPct *= in.Confidence
		reasons = append(reasons, fmt.Sprintf("confidence %.2f", in.Confidence))
	}

	// Cap de sobrepuja: elevado solo para adquisiciones prioritarias de
	// calidad alta; los flips a corto plazo nunca lo reciben.
	capPct := v.cfg.MaxOverbidPct
	if in.IsPriority && in.QualityScore >= v.cfg.PriorityQuality {
		capPct = v.cfg.PriorityOverbidPct
		reasons = append(reasons, "priority acquisition: elevated cap")
	}
	if overbidPct > capPct {
		overbidPct = capPct
	}
	if overbidPct < 0 {
		overbidPct = 0
	}

	overbidAmount := roundToIncrement(int64(math.Round(float64(in.AskingPrice) * overbidPct / 100)))
	raw := in.AskingPrice + overbidAmount

	rec := BidRecommendation{Amount: raw, Viable: true}

	// Invariante duro: nunca por encima del techo de valor.
	if rec.Amount > in.ValueCeiling {
		rec.Amount = in.ValueCeiling
		rec.CappedAtCeiling = true
		reasons = append(reasons, "at value ceiling")
	}

	rec.OverbidPct = float64(rec.Amount-in.AskingPrice) / float64(in.AskingPrice) * 100
	rec.Rationale = strings.Join(reasons, " | ")
	return rec
}

// ComputeBatch valora una lista ordenada de candidatos contra un
// presupuesto que se va consumiendo. Los que no caben en el presupuesto
// restante quedan marcados como no viables — el orden de entrada es la
// prioridad del caller.
func (v *Valuer) ComputeBatch(ctx context.Context, inputs []ValuationInput, budget int64) []BidRecommendation {
	remaining := budget
	out := make([]BidRecommendation, len(inputs))
	for i, in := range inputs {
		rec := v.ComputeBid(ctx, in)
		if rec.Viable && rec.Amount > remaining {
			rec = BidRecommendation{Rationale: fmt.Sprintf("not viable: bid %d over remaining budget %d", rec.Amount, remaining)}
		}
		if rec.Viable {
			remaining -= rec.Amount
		}
		out[i] = rec
	}
	return out
}

// roundToIncrement redondea la sobrepuja a incrementos realistas:
// 1k por debajo de 10k, 5k por debajo de 100k, 10k a partir de ahí.
func roundToIncrement(amount int64) int64 {
	round := func(a, inc int64) int64 {
		return (a + inc/2) / inc * inc
	}
	switch {
	case amount < 10_000:
		return round(amount, 1_000)
	case amount < 100_000:
		return round(amount, 5_000)
	default:
		return round(amount, 10_000)
	}
}
