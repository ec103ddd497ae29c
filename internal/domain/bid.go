package domain

import "time"

// BidStatus es el estado de una puja en el tracker.
// Transiciones monótonas: pending → {won, lost, timeout}. Nunca se sale
// de un estado terminal.
type BidStatus string

const (
	BidPending BidStatus = "pending"
	BidWon     BidStatus = "won"
	BidLost    BidStatus = "lost"
	BidTimeout BidStatus = "timeout"
)

// IsTerminal devuelve true si el estado no admite más transiciones.
func (s BidStatus) IsTerminal() bool {
	return s == BidWon || s == BidLost || s == BidTimeout
}

// CanTransitionTo valida que una transición respete la máquina de estados.
func (s BidStatus) CanTransitionTo(next BidStatus) bool {
	return s == BidPending && next.IsTerminal()
}

// Bid es una oferta en vuelo sobre un activo. Se crea al registrarla,
// solo el tracker la muta, y se archiva como AuctionOutcome al resolverse.
type Bid struct {
	Handle       string // ID interno de la puja
	AssetID      string
	AssetName    string
	Amount       int64
	Status       BidStatus
	PlacedAt     time.Time
	ResolvedAt   time.Time // cero mientras está pending
	// Contexto de valoración en el momento de pujar, para el learner.
	AskingPrice   int64
	AssessedValue int64
	QualityScore  float64
	// Replacement referencia el plan adjunto, "" si no hay.
	Replacement string
}

// OverbidPct devuelve el porcentaje de sobrepuja respecto al asking price.
func (b Bid) OverbidPct() float64 {
	if b.AskingPrice <= 0 {
		return 0
	}
	return float64(b.Amount-b.AskingPrice) / float64(b.AskingPrice) * 100
}

// ReplacementPlan describe la desinversión a ejecutar si la puja gana.
// Invariante: nunca se ejecuta antes de confirmar la victoria.
type ReplacementPlan struct {
	ID          string
	TargetID    string // activo por el que se puja
	DivestIDs   []string
	DivestNames []string
	NetProceeds int64 // lo que esperamos recuperar vendiendo
}

// ResolutionEvent es el resultado de resolver una puja en un poll.
type ResolutionEvent struct {
	Bid      Bid
	Status   BidStatus
	// ReplacementRan indica si el plan de reemplazo se ejecutó en este poll.
	ReplacementRan bool
}
