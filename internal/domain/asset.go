package domain

import "time"

// Role es la etiqueta de composición de un activo (posición del jugador).
type Role string

const (
	RoleGoalkeeper Role = "GK"
	RoleDefender   Role = "DEF"
	RoleMidfielder Role = "MID"
	RoleForward    Role = "FWD"
)

// Asset es el snapshot inmutable de un activo del mercado en un ciclo de
// valoración. El engine solo lo lee, nunca lo muta — el dueño es el caller.
type Asset struct {
	ID            string
	Name          string
	Role          Role
	AssessedValue int64   // valor de mercado estimado externamente (EUR)
	AskingPrice   int64   // precio de lista actual, 0 si no está listado
	QualityScore  float64 // score opaco del scorer externo, en [0,1]
	AvgOutput     float64 // rendimiento histórico medio (puntos por jornada)
	ListedAt      time.Time
}

// IsListed devuelve true si el activo está actualmente en el mercado.
func (a Asset) IsListed() bool {
	return a.AskingPrice > 0
}

// ListingState es lo único que el mercado revela sobre un activo listado.
// Nunca incluye la puja líder ni el pujador — observabilidad parcial.
type ListingState struct {
	AssetID     string
	IsListed    bool
	AskingPrice int64
	// OurOfferAmount es el importe de nuestra oferta activa según el
	// mercado, o nil si el mercado no refleja ninguna oferta nuestra.
	OurOfferAmount *int64
}

// AssetDetail son los datos post-resolución que el mercado puede revelar
// sobre una subasta ya cerrada. Todos los campos son best-effort.
type AssetDetail struct {
	AssetID    string
	OwnerID    string // comprador actual, "" si desconocido
	LastPrice  int64  // último precio pagado, 0 si no se revela
}
