package engine

import "errors"

var (
	// ErrDuplicateActiveBid se devuelve al registrar una puja sobre un
	// activo que ya tiene una puja sin resolver. El caller debe cancelar
	// o esperar — nunca se sobreescribe en silencio.
	ErrDuplicateActiveBid = errors.New("engine: active bid already registered for asset")

	// ErrBidNotFound se devuelve al cancelar una puja que no está en el
	// conjunto pendiente.
	ErrBidNotFound = errors.New("engine: no pending bid for asset")

	// ErrInsufficientBudget se devuelve si un trade forzado por el caller
	// excede el presupuesto. El optimizador nunca emite swaps infactibles,
	// así que esto solo salta por mal uso.
	ErrInsufficientBudget = errors.New("engine: trade exceeds available budget")
)
