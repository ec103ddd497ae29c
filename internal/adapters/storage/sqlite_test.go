package storage_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/alejandrodnm/bidbot/internal/adapters/storage"
	"github.com/alejandrodnm/bidbot/internal/domain"
	"github.com/alejandrodnm/bidbot/internal/ports"
)

func makeOutcome(assetID string, won bool, resolvedAt time.Time) domain.AuctionOutcome {
	return domain.AuctionOutcome{
		AssetID:     assetID,
		AssetName:   "Jugador " + assetID,
		OurBid:      10_500_000,
		AskingPrice: 10_000_000,
		OverbidPct:  5.0,
		Won:         won,
		ResolvedAt:  resolvedAt.UTC().Truncate(time.Second),
	}
}

func makePending(assetID string, plan *domain.ReplacementPlan) ports.PendingBid {
	return ports.PendingBid{
		Bid: domain.Bid{
			Handle:        "handle-" + assetID,
			AssetID:       assetID,
			AssetName:     "Jugador " + assetID,
			Amount:        10_500_000,
			Status:        domain.BidPending,
			PlacedAt:      time.Now().UTC().Truncate(time.Second),
			AskingPrice:   10_000_000,
			AssessedValue: 10_200_000,
			QualityScore:  0.8,
		},
		Plan: plan,
	}
}

func TestStore_AppendAndRecentOutcomes(t *testing.T) {
	db, err := storage.NewStore(":memory:")
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	now := time.Now()

	winner := "rival-1"
	winningBid := int64(11_000_000)
	o := makeOutcome("p1", false, now)
	o.WinnerID = &winner
	o.WinningBid = &winningBid

	require.NoError(t, db.AppendOutcome(ctx, o))
	require.NoError(t, db.AppendOutcome(ctx, makeOutcome("p2", true, now.Add(-time.Hour))))

	outcomes, err := db.RecentOutcomes(ctx, now.Add(-24*time.Hour), 100)
	require.NoError(t, err)
	require.Len(t, outcomes, 2)

	// Más recientes primero
	assert.Equal(t, "p1", outcomes[0].AssetID)
	assert.False(t, outcomes[0].Won)
	require.NotNil(t, outcomes[0].WinnerID)
	assert.Equal(t, "rival-1", *outcomes[0].WinnerID)
	require.NotNil(t, outcomes[0].WinningBid)
	assert.Equal(t, int64(11_000_000), *outcomes[0].WinningBid)

	assert.Equal(t, "p2", outcomes[1].AssetID)
	assert.True(t, outcomes[1].Won)
	assert.Nil(t, outcomes[1].WinnerID)
}

func TestStore_AppendOutcome_Idempotent(t *testing.T) {
	db, err := storage.NewStore(":memory:")
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	o := makeOutcome("p1", true, time.Now())

	// Grabar dos veces el mismo resultado no duplica la fila
	require.NoError(t, db.AppendOutcome(ctx, o))
	require.NoError(t, db.AppendOutcome(ctx, o))

	outcomes, err := db.RecentOutcomes(ctx, time.Now().Add(-time.Hour), 100)
	require.NoError(t, err)
	assert.Len(t, outcomes, 1)
}

func TestStore_RecentOutcomes_WindowAndLimit(t *testing.T) {
	db, err := storage.NewStore(":memory:")
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	now := time.Now()

	require.NoError(t, db.AppendOutcome(ctx, makeOutcome("old", true, now.Add(-100*24*time.Hour))))
	for i := 0; i < 5; i++ {
		require.NoError(t, db.AppendOutcome(ctx, makeOutcome(string(rune('a'+i)), true, now.Add(-time.Duration(i)*time.Hour))))
	}

	// Fuera de ventana
	outcomes, err := db.RecentOutcomes(ctx, now.Add(-90*24*time.Hour), 100)
	require.NoError(t, err)
	assert.Len(t, outcomes, 5)

	// Limit corta los más antiguos
	outcomes, err = db.RecentOutcomes(ctx, now.Add(-90*24*time.Hour), 3)
	require.NoError(t, err)
	require.Len(t, outcomes, 3)
	assert.Equal(t, "a", outcomes[0].AssetID)
}

func TestStore_BidLifecycle(t *testing.T) {
	db, err := storage.NewStore(":memory:")
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	plan := &domain.ReplacementPlan{
		ID:          "plan-1",
		TargetID:    "p1",
		DivestIDs:   []string{"old1", "old2"},
		DivestNames: []string{"Viejo Uno", "Viejo Dos"},
		NetProceeds: 2_000_000,
	}
	record := makePending("p1", plan)

	require.NoError(t, db.SaveBid(ctx, record))

	loaded, err := db.PendingBids(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, record.Bid.Handle, loaded[0].Bid.Handle)
	assert.Equal(t, record.Bid.Amount, loaded[0].Bid.Amount)
	require.NotNil(t, loaded[0].Plan)
	assert.Equal(t, plan.DivestIDs, loaded[0].Plan.DivestIDs)
	assert.Equal(t, plan.NetProceeds, loaded[0].Plan.NetProceeds)

	// La resolución saca la puja del conjunto pendiente
	bid := record.Bid
	bid.Status = domain.BidWon
	bid.ResolvedAt = time.Now()
	require.NoError(t, db.UpdateBid(ctx, bid))

	loaded, err = db.PendingBids(ctx)
	require.NoError(t, err)
	assert.Empty(t, loaded)

	require.NoError(t, db.DeleteBid(ctx, "p1"))
}

func TestStore_UpdateBid_MissingRecord(t *testing.T) {
	db, err := storage.NewStore(":memory:")
	require.NoError(t, err)
	defer db.Close()

	err = db.UpdateBid(context.Background(), domain.Bid{AssetID: "ghost", Status: domain.BidWon})
	assert.Error(t, err)
}

func TestStore_SaveBid_WithoutPlan(t *testing.T) {
	db, err := storage.NewStore(":memory:")
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	require.NoError(t, db.SaveBid(ctx, makePending("p1", nil)))

	loaded, err := db.PendingBids(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Nil(t, loaded[0].Plan)
}

func TestStore_PendingBids_QuarantinesCorruptPlan(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bids.db")

	db, err := storage.NewStore(path)
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	require.NoError(t, db.SaveBid(ctx, makePending("sano", nil)))

	// Corromper el plan de otra fila por fuera del store
	raw, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = raw.Exec(`
		INSERT INTO pending_bids (asset_id, handle, asset_name, amount, status, placed_at, plan)
		VALUES ('roto', 'h2', 'Roto', 100, 'pending', ?, 'esto-no-es-json')`,
		time.Now().UTC())
	require.NoError(t, err)
	require.NoError(t, raw.Close())

	// La fila corrupta se salta; la sana sobrevive
	loaded, err := db.PendingBids(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "sano", loaded[0].Bid.AssetID)
}

func TestStore_Reopen_KeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bids.db")
	ctx := context.Background()

	db, err := storage.NewStore(path)
	require.NoError(t, err)
	require.NoError(t, db.SaveBid(ctx, makePending("p1", nil)))
	require.NoError(t, db.AppendOutcome(ctx, makeOutcome("p1", true, time.Now())))
	require.NoError(t, db.Close())

	db, err = storage.NewStore(path)
	require.NoError(t, err)
	defer db.Close()

	loaded, err := db.PendingBids(ctx)
	require.NoError(t, err)
	assert.Len(t, loaded, 1)

	outcomes, err := db.RecentOutcomes(ctx, time.Now().Add(-time.Hour), 10)
	require.NoError(t, err)
	assert.Len(t, outcomes, 1)
}
