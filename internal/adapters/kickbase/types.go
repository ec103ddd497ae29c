package kickbase

// types.go — DTOs del API del mercado. Los nombres de campo cortos son
// los del wire format; el mapeo a dominio vive en mapping.go.

type marketResponse struct {
	Players []marketPlayer `json:"it"`
}

type marketPlayer struct {
	ID          string  `json:"i"`
	Name        string  `json:"n"`
	Position    int     `json:"pos"`
	MarketValue int64   `json:"mv"`
	Price       int64   `json:"prc"`
	AvgPoints   float64 `json:"ap"`
	// Offers son las ofertas visibles para nosotros: solo las nuestras
	// llevan importe — el mercado nunca revela la puja líder.
	Offers []offer `json:"ofs"`
	Expiry string  `json:"dt"`
}

type offer struct {
	UserID string `json:"u"`
	Price  int64  `json:"uop"` // solo presente en nuestras ofertas
}

type squadResponse struct {
	Players []squadPlayer `json:"it"`
}

type squadPlayer struct {
	ID          string  `json:"i"`
	Name        string  `json:"n"`
	Position    int     `json:"pos"`
	MarketValue int64   `json:"mv"`
	AvgPoints   float64 `json:"ap"`
}

type playerDetailResponse struct {
	ID        string `json:"i"`
	OwnerID   string `json:"u"`
	LastPrice int64  `json:"p"`
}

type budgetResponse struct {
	Budget int64 `json:"b"`
}

type meResponse struct {
	UserID string `json:"i"`
}

type placeOfferRequest struct {
	Price int64 `json:"price"`
}
