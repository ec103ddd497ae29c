package kickbase

// market.go — implementación de ports.Marketplace sobre el API v4.

import (
	"context"
	"fmt"

	"github.com/alejandrodnm/bidbot/internal/domain"
)

// userID cachea el ID del usuario autenticado (necesario para distinguir
// nuestras ofertas en el listado).
func (c *Client) userID(ctx context.Context) (string, error) {
	if c.cachedUserID != "" {
		return c.cachedUserID, nil
	}
	var me meResponse
	if err := c.get(ctx, "/user/me", &me); err != nil {
		return "", fmt.Errorf("kickbase.userID: %w", err)
	}
	c.cachedUserID = me.UserID
	return me.UserID, nil
}

// ListAsset devuelve el estado de listado de un activo. El único dato
// sobre la competencia es si nuestra propia oferta sigue reflejada.
func (c *Client) ListAsset(ctx context.Context, assetID string) (domain.ListingState, error) {
	var resp marketResponse
	if err := c.get(ctx, "/leagues/"+c.leagueID+"/market", &resp); err != nil {
		return domain.ListingState{}, fmt.Errorf("kickbase.ListAsset: %w", err)
	}

	uid, err := c.userID(ctx)
	if err != nil {
		return domain.ListingState{}, fmt.Errorf("kickbase.ListAsset: %w", err)
	}

	for _, p := range resp.Players {
		if p.ID != assetID {
			continue
		}
		state := domain.ListingState{
			AssetID:     assetID,
			IsListed:    true,
			AskingPrice: p.Price,
		}
		for _, o := range p.Offers {
			if o.UserID == uid && o.Price > 0 {
				amount := o.Price
				state.OurOfferAmount = &amount
				break
			}
		}
		return state, nil
	}

	return domain.ListingState{AssetID: assetID, IsListed: false}, nil
}

// AssetDetail devuelve dueño y último precio de un activo, si el API los
// revela. Best-effort post-resolución.
func (c *Client) AssetDetail(ctx context.Context, assetID string) (domain.AssetDetail, error) {
	var resp playerDetailResponse
	if err := c.get(ctx, "/leagues/"+c.leagueID+"/players/"+assetID, &resp); err != nil {
		return domain.AssetDetail{}, fmt.Errorf("kickbase.AssetDetail: %w", err)
	}
	return domain.AssetDetail{
		AssetID:   assetID,
		OwnerID:   resp.OwnerID,
		LastPrice: resp.LastPrice,
	}, nil
}

// ListHoldings devuelve los IDs de los activos en plantilla.
func (c *Client) ListHoldings(ctx context.Context) ([]string, error) {
	var resp squadResponse
	if err := c.get(ctx, "/leagues/"+c.leagueID+"/squad", &resp); err != nil {
		return nil, fmt.Errorf("kickbase.ListHoldings: %w", err)
	}
	ids := make([]string, len(resp.Players))
	for i, p := range resp.Players {
		ids[i] = p.ID
	}
	return ids, nil
}

// PlaceBid envía una oferta por un activo listado.
func (c *Client) PlaceBid(ctx context.Context, assetID string, amount int64) error {
	path := "/leagues/" + c.leagueID + "/market/" + assetID + "/offers"
	if err := c.post(ctx, path, placeOfferRequest{Price: amount}, nil); err != nil {
		return fmt.Errorf("kickbase.PlaceBid: %s: %w", assetID, err)
	}
	return nil
}

// CancelBid retira nuestra oferta activa sobre un activo.
func (c *Client) CancelBid(ctx context.Context, assetID string) error {
	path := "/leagues/" + c.leagueID + "/market/" + assetID + "/offers"
	if err := c.del(ctx, path); err != nil {
		return fmt.Errorf("kickbase.CancelBid: %s: %w", assetID, err)
	}
	return nil
}

// Sell pone un activo propio a la venta al precio de mercado.
func (c *Client) Sell(ctx context.Context, assetID string) error {
	path := "/leagues/" + c.leagueID + "/market/" + assetID + "/sell"
	if err := c.post(ctx, path, struct{}{}, nil); err != nil {
		return fmt.Errorf("kickbase.Sell: %s: %w", assetID, err)
	}
	return nil
}

// CurrentBudget devuelve el presupuesto disponible de la cuenta.
func (c *Client) CurrentBudget(ctx context.Context) (int64, error) {
	var resp budgetResponse
	if err := c.get(ctx, "/leagues/"+c.leagueID+"/me/budget", &resp); err != nil {
		return 0, fmt.Errorf("kickbase.CurrentBudget: %w", err)
	}
	return resp.Budget, nil
}
