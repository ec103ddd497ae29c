package ports

import (
	"context"
	"time"

	"github.com/alejandrodnm/bidbot/internal/domain"
)

// OutcomeStore es el log durable append-only de resultados de subastas.
type OutcomeStore interface {
	// AppendOutcome añade un resultado al histórico. Idempotente sobre
	// duplicados exactos (mismo activo + mismo instante de resolución)
	// para tolerar grabación at-least-once.
	AppendOutcome(ctx context.Context, outcome domain.AuctionOutcome) error

	// RecentOutcomes devuelve los resultados posteriores a since, los más
	// recientes primero, hasta limit filas.
	RecentOutcomes(ctx context.Context, since time.Time, limit int) ([]domain.AuctionOutcome, error)

	Close() error
}

// PendingBid es el registro persistido de una puja en vuelo con su plan
// de reemplazo opcional.
type PendingBid struct {
	Bid  domain.Bid
	Plan *domain.ReplacementPlan
}

// BidStore persiste el mapa de pujas pendientes. Debe sobrevivir a un
// reinicio del proceso y soportar actualización atómica por registro.
type BidStore interface {
	// SaveBid persiste una puja nueva junto a su plan. La puja es visible
	// solo si el write completa — no hay estado intermedio observable.
	SaveBid(ctx context.Context, record PendingBid) error

	// UpdateBid persiste un cambio de estado de una puja existente.
	UpdateBid(ctx context.Context, bid domain.Bid) error

	// DeleteBid elimina el registro de una puja (cancelación o archivado).
	DeleteBid(ctx context.Context, assetID string) error

	// PendingBids devuelve todas las pujas sin resolver. Los registros
	// corruptos se descartan individualmente, nunca tumban la carga.
	PendingBids(ctx context.Context) ([]PendingBid, error)

	Close() error
}
