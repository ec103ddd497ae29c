package ports

import (
	"context"

	"github.com/alejandrodnm/bidbot/internal/domain"
)

// Snapshot es la foto del mercado y la plantilla para un ciclo. Los
// quality scores vienen del scorer externo — aquí son un número opaco.
type Snapshot struct {
	Holdings []domain.Asset
	Market   []domain.Asset
	Scores   map[string]float64 // assetID → value score (0–100)
}

// SnapshotProvider entrega el snapshot inmutable de cada ciclo.
type SnapshotProvider interface {
	Snapshot(ctx context.Context) (Snapshot, error)
}
