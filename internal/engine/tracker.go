package engine

// tracker.go — Pending Bid Tracker.
//
// Máquina de estados persistida: pending → {won, lost, timeout}. El
// mercado nunca revela quién va ganando — lo único observable es si
// nuestra oferta sigue reflejada en el listado. La resolución se infiere
// al desaparecer el listado: si el activo aparece en holdings, ganamos.
//
// Orden de efectos en una victoria, SIEMPRE:
//   1. persistir el estado won
//   2. archivar el AuctionOutcome
//   3. ejecutar el plan de reemplazo (como mucho una vez, nunca antes)

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/alejandrodnm/bidbot/internal/domain"
	"github.com/alejandrodnm/bidbot/internal/ports"
)

// TrackerConfig son los parámetros del tracker.
type TrackerConfig struct {
	// PendingTimeout es cuánto se tolera un listado ambiguo (activo listado
	// pero nuestra oferta ya no reflejada) antes de forzar timeout.
	// Timeout significa "dejamos de mirar", no "retiramos la puja".
	PendingTimeout time.Duration
}

// Tracker posee el conjunto de pujas en vuelo. Una instancia por cuenta;
// el modelo es de actor único — sin mutación concurrente interna.
type Tracker struct {
	cfg     TrackerConfig
	market  ports.Marketplace
	store   ports.BidStore
	learner *Learner
	now     func() time.Time

	pending map[string]ports.PendingBid // assetID → puja + plan
}

// NewTracker crea un Tracker y restaura las pujas pendientes del store.
// Un fallo total de lectura degrada a un conjunto vacío con warning —
// nunca impide arrancar la sesión.
func NewTracker(cfg TrackerConfig, market ports.Marketplace, store ports.BidStore, learner *Learner) *Tracker {
	t := &Tracker{
		cfg:     cfg,
		market:  market,
		store:   store,
		learner: learner,
		now:     time.Now,
		pending: make(map[string]ports.PendingBid),
	}

	records, err := store.PendingBids(context.Background())
	if err != nil {
		slog.Warn("tracker: could not restore pending bids, starting empty", "err", err)
		return t
	}
	for _, r := range records {
		t.pending[r.Bid.AssetID] = r
	}
	if len(t.pending) > 0 {
		slog.Info("tracker: restored pending bids from previous session", "count", len(t.pending))
	}
	return t
}

// RegisterBid registra una puja ya colocada en el mercado para su
// seguimiento. Falla con ErrDuplicateActiveBid si el activo ya tiene una
// puja sin resolver. La puja queda registrada solo si el write persiste:
// sin estados intermedios observables.
func (t *Tracker) RegisterBid(ctx context.Context, asset domain.Asset, amount int64, plan *domain.ReplacementPlan) (domain.Bid, error) {
	if _, ok := t.pending[asset.ID]; ok {
		return domain.Bid{}, fmt.Errorf("tracker.RegisterBid: asset %s: %w", asset.ID, ErrDuplicateActiveBid)
	}

	bid := domain.Bid{
		Handle:        uuid.New().String(),
		AssetID:       asset.ID,
		AssetName:     asset.Name,
		Amount:        amount,
		Status:        domain.BidPending,
		PlacedAt:      t.now(),
		AskingPrice:   asset.AskingPrice,
		AssessedValue: asset.AssessedValue,
		QualityScore:  asset.QualityScore,
	}
	if plan != nil {
		if plan.ID == "" {
			plan.ID = uuid.New().String()
		}
		bid.Replacement = plan.ID
	}

	record := ports.PendingBid{Bid: bid, Plan: plan}
	if err := t.store.SaveBid(ctx, record); err != nil {
		return domain.Bid{}, fmt.Errorf("tracker.RegisterBid: persist %s: %w", asset.ID, err)
	}
	t.pending[asset.ID] = record

	slog.Info("bid registered", "asset", asset.Name, "amount", amount, "has_plan", plan != nil)
	return bid, nil
}

// CancelBid retira la oferta en el mercado y elimina la puja del conjunto
// pendiente. Una cancelación no es un outcome: no se archiva nada — no
// hay dato competitivo en una retirada voluntaria.
func (t *Tracker) CancelBid(ctx context.Context, assetID string) error {
	record, ok := t.pending[assetID]
	if !ok {
		return fmt.Errorf("tracker.CancelBid: asset %s: %w", assetID, ErrBidNotFound)
	}

	if err := t.market.CancelBid(ctx, assetID); err != nil {
		return fmt.Errorf("tracker.CancelBid: marketplace cancel %s: %w", assetID, err)
	}
	if err := t.store.DeleteBid(ctx, assetID); err != nil {
		return fmt.Errorf("tracker.CancelBid: delete record %s: %w", assetID, err)
	}
	delete(t.pending, assetID)

	slog.Info("bid cancelled", "asset", record.Bid.AssetName, "amount", record.Bid.Amount)
	return nil
}

// PollAndResolve consulta el mercado para cada puja pendiente y resuelve
// las que hayan terminado. Las pujas se resuelven de forma independiente:
// un fallo transitorio en una no afecta a las demás ni corrompe estado.
func (t *Tracker) PollAndResolve(ctx context.Context) ([]domain.ResolutionEvent, error) {
	if len(t.pending) == 0 {
		return nil, nil
	}

	var events []domain.ResolutionEvent
	var holdings map[string]bool // lazy: solo si algún listado desapareció

	for assetID, record := range t.pending {
		listing, err := t.market.ListAsset(ctx, assetID)
		if err != nil {
			// Transitorio: la puja sigue pending, sin tocar estado persistido.
			slog.Warn("poll: listing check failed, keeping pending", "asset", record.Bid.AssetName, "err", err)
			continue
		}

		if listing.IsListed {
			if listing.OurOfferAmount != nil && *listing.OurOfferAmount == record.Bid.Amount {
				continue // oferta reflejada: subasta sigue viva
			}
			// Ambiguo: listado sin nuestra oferta (sobrescrita o expirada).
			// Política: pending hasta que venza el timeout configurable.
			if t.now().Sub(record.Bid.PlacedAt) < t.cfg.PendingTimeout {
				slog.Debug("poll: offer not reflected, still within timeout", "asset", record.Bid.AssetName)
				continue
			}
			events = append(events, t.resolve(ctx, record, domain.BidTimeout))
			continue
		}

		// El listado desapareció: subasta terminada. Ganamos si y solo si
		// el activo aparece en nuestros holdings.
		if holdings == nil {
			ids, err := t.market.ListHoldings(ctx)
			if err != nil {
				slog.Warn("poll: holdings check failed, keeping pending", "err", err)
				continue
			}
			holdings = make(map[string]bool, len(ids))
			for _, id := range ids {
				holdings[id] = true
			}
		}

		status := domain.BidLost
		if holdings[assetID] {
			status = domain.BidWon
		}
		events = append(events, t.resolve(ctx, record, status))
	}

	return events, nil
}

// resolve ejecuta una transición terminal: persiste el estado, archiva el
// outcome y, en victorias con plan, ejecuta el reemplazo exactamente
// después de que la victoria esté grabada.
func (t *Tracker) resolve(ctx context.Context, record ports.PendingBid, status domain.BidStatus) domain.ResolutionEvent {
	bid := record.Bid
	if !bid.Status.CanTransitionTo(status) {
		// No debería ocurrir: el mapa pending solo contiene estado pending.
		slog.Error("poll: invalid transition ignored", "asset", bid.AssetName, "from", bid.Status, "to", status)
		return domain.ResolutionEvent{Bid: bid, Status: bid.Status}
	}

	bid.Status = status
	bid.ResolvedAt = t.now()

	// 1. Persistir el estado ANTES de cualquier side effect.
	if err := t.store.UpdateBid(ctx, bid); err != nil {
		// Write fallido: no avanzamos; el próximo poll lo reintenta.
		slog.Warn("poll: could not persist resolution, will retry", "asset", bid.AssetName, "err", err)
		return domain.ResolutionEvent{Bid: record.Bid, Status: domain.BidPending}
	}
	delete(t.pending, bid.AssetID)

	// 2. Archivar el outcome para el learner.
	outcome := t.buildOutcome(ctx, bid)
	if err := t.learner.RecordOutcome(ctx, outcome); err != nil {
		slog.Warn("poll: could not record outcome", "asset", bid.AssetName, "err", err)
	}

	event := domain.ResolutionEvent{Bid: bid, Status: status}
	slog.Info("bid resolved", "asset", bid.AssetName, "status", status, "amount", bid.Amount)

	// 3. Plan de reemplazo: solo tras victoria durable, como mucho una vez.
	if status == domain.BidWon && record.Plan != nil {
		event.ReplacementRan = t.runReplacement(ctx, *record.Plan)
	}

	if err := t.store.DeleteBid(ctx, bid.AssetID); err != nil {
		slog.Warn("poll: could not archive resolved bid record", "asset", bid.AssetName, "err", err)
	}
	return event
}

// buildOutcome arma el registro histórico de la puja resuelta. En derrotas
// intenta recuperar ganador e importe — el mercado solo los revela a
// posteriori y no siempre.
func (t *Tracker) buildOutcome(ctx context.Context, bid domain.Bid) domain.AuctionOutcome {
	outcome := domain.AuctionOutcome{
		AssetID:       bid.AssetID,
		AssetName:     bid.AssetName,
		OurBid:        bid.Amount,
		AskingPrice:   bid.AskingPrice,
		OverbidPct:    bid.OverbidPct(),
		Won:           bid.Status == domain.BidWon,
		AssessedValue: bid.AssessedValue,
		QualityScore:  bid.QualityScore,
		ResolvedAt:    bid.ResolvedAt,
	}

	if outcome.Won {
		amount := bid.Amount
		outcome.WinningBid = &amount
		return outcome
	}

	detail, err := t.market.AssetDetail(ctx, bid.AssetID)
	if err != nil {
		slog.Debug("poll: winner details unavailable", "asset", bid.AssetName, "err", err)
		return outcome
	}
	if detail.OwnerID != "" {
		owner := detail.OwnerID
		outcome.WinnerID = &owner
	}
	if detail.LastPrice > 0 {
		price := detail.LastPrice
		outcome.WinningBid = &price
	}
	return outcome
}

// runReplacement desinvierte los activos del plan. Devuelve true si todas
// las ventas se emitieron.
func (t *Tracker) runReplacement(ctx context.Context, plan domain.ReplacementPlan) bool {
	ok := true
	for i, id := range plan.DivestIDs {
		name := id
		if i < len(plan.DivestNames) {
			name = plan.DivestNames[i]
		}
		if err := t.market.Sell(ctx, id); err != nil {
			slog.Error("replacement: sell failed", "asset", name, "err", err)
			ok = false
			continue
		}
		slog.Info("replacement: asset listed for sale", "asset", name)
	}
	return ok
}

// Pending devuelve un snapshot de las pujas sin resolver, para reporting.
func (t *Tracker) Pending() []ports.PendingBid {
	out := make([]ports.PendingBid, 0, len(t.pending))
	for _, r := range t.pending {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Bid.PlacedAt.Before(out[j].Bid.PlacedAt) })
	return out
}
