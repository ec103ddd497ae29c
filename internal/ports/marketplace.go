package ports

import (
	"context"

	"github.com/alejandrodnm/bidbot/internal/domain"
)

// Marketplace es la API externa del mercado de subastas. Todas las
// llamadas son I/O bloqueante y pueden fallar de forma transitoria.
type Marketplace interface {
	// ListAsset devuelve el estado de listado actual de un activo.
	// El mercado nunca revela la puja líder — solo si nuestra oferta
	// sigue reflejada.
	ListAsset(ctx context.Context, assetID string) (domain.ListingState, error)

	// AssetDetail devuelve datos post-resolución (dueño, último precio).
	// Best-effort: los campos pueden venir vacíos.
	AssetDetail(ctx context.Context, assetID string) (domain.AssetDetail, error)

	// ListHoldings devuelve los IDs de los activos actualmente en plantilla.
	ListHoldings(ctx context.Context) ([]string, error)

	// PlaceBid envía una oferta por un activo listado.
	PlaceBid(ctx context.Context, assetID string, amount int64) error

	// CancelBid retira nuestra oferta activa sobre un activo.
	CancelBid(ctx context.Context, assetID string) error

	// Sell pone un activo propio a la venta al precio de mercado.
	Sell(ctx context.Context, assetID string) error

	// CurrentBudget devuelve el presupuesto disponible de la cuenta.
	CurrentBudget(ctx context.Context) (int64, error)
}
