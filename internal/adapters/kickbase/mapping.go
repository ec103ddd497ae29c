package kickbase

import (
	"time"

	"github.com/alejandrodnm/bidbot/internal/domain"
)

// positionRoles mapea el código de posición del wire al rol de dominio.
var positionRoles = map[int]domain.Role{
	1: domain.RoleGoalkeeper,
	2: domain.RoleDefender,
	3: domain.RoleMidfielder,
	4: domain.RoleForward,
}

func roleFor(pos int) domain.Role {
	if r, ok := positionRoles[pos]; ok {
		return r
	}
	return domain.RoleMidfielder
}

func toMarketAsset(p marketPlayer, quality func(avgPoints float64) float64) domain.Asset {
	listedAt, _ := time.Parse(time.RFC3339, p.Expiry)
	return domain.Asset{
		ID:            p.ID,
		Name:          p.Name,
		Role:          roleFor(p.Position),
		AssessedValue: p.MarketValue,
		AskingPrice:   p.Price,
		QualityScore:  quality(p.AvgPoints),
		AvgOutput:     p.AvgPoints,
		ListedAt:      listedAt,
	}
}

func toHoldingAsset(p squadPlayer, quality func(avgPoints float64) float64) domain.Asset {
	return domain.Asset{
		ID:            p.ID,
		Name:          p.Name,
		Role:          roleFor(p.Position),
		AssessedValue: p.MarketValue,
		QualityScore:  quality(p.AvgPoints),
		AvgOutput:     p.AvgPoints,
	}
}
