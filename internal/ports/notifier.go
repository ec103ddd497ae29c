package ports

import (
	"context"

	"github.com/alejandrodnm/bidbot/internal/domain"
)

// Notifier publica los resultados de cada ciclo de la sesión.
type Notifier interface {
	// NotifyRecommendations publica los swaps recomendados del ciclo.
	NotifyRecommendations(ctx context.Context, recs []domain.TradeRecommendation) error

	// NotifyResolutions publica las pujas resueltas en el último poll.
	NotifyResolutions(ctx context.Context, events []domain.ResolutionEvent) error

	// NotifyStats publica las estadísticas competitivas acumuladas.
	NotifyStats(ctx context.Context, stats domain.CompetitiveStats) error
}
