package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/alejandrodnm/bidbot/internal/domain"
)

// Console implementa ports.Notifier escribiendo tablas a stdout.
type Console struct {
	out   io.Writer
	table bool // tabla completa vs resumen compacto de 1 línea
}

// NewConsole crea un notificador que escribe a stdout.
func NewConsole(table bool) *Console {
	return &Console{out: os.Stdout, table: table}
}

// NewConsoleWriter crea un notificador para tests.
func NewConsoleWriter(w io.Writer, table bool) *Console {
	return &Console{out: w, table: table}
}

// NotifyRecommendations imprime los swaps recomendados del ciclo.
func (c *Console) NotifyRecommendations(_ context.Context, recs []domain.TradeRecommendation) error {
	now := time.Now().Format("15:04:05")
	if len(recs) == 0 {
		fmt.Fprintf(c.out, "[%s] no viable trades found\n", now)
		return nil
	}

	if !c.table {
		best := recs[0]
		fmt.Fprintf(c.out, "[%s] %d trades → best %s score %.1f net %s\n",
			now, len(recs), best.Strategy, best.Score, formatEUR(best.NetCost))
		return nil
	}

	table := tablewriter.NewWriter(c.out)
	table.Header("#", "Swap", "Out", "In", "Cost", "Proceeds", "Net", "Pts", "Score")

	for i, rec := range recs {
		table.Append(
			fmt.Sprintf("%d", i+1),
			rec.Strategy,
			assetNames(rec.Divest),
			assetNames(rec.Acquire),
			formatEUR(rec.TotalCost),
			formatEUR(rec.TotalProceeds),
			formatEUR(rec.NetCost),
			fmt.Sprintf("%+.1f", rec.PointsImprovement),
			fmt.Sprintf("%.1f", rec.Score),
		)
	}
	table.Render()

	fmt.Fprintln(c.out, "  Cost = pujas estimadas para ganar, no valor de mercado")
	return nil
}

// NotifyResolutions imprime las pujas resueltas en el último poll.
func (c *Console) NotifyResolutions(_ context.Context, events []domain.ResolutionEvent) error {
	for _, e := range events {
		icon := map[domain.BidStatus]string{
			domain.BidWon:     "✓ WON ",
			domain.BidLost:    "✗ LOST",
			domain.BidTimeout: "~ TOUT",
		}[e.Status]

		line := fmt.Sprintf("%s %s %s", icon, e.Bid.AssetName, formatEUR(e.Bid.Amount))
		if e.ReplacementRan {
			line += " (replacement executed)"
		}
		fmt.Fprintln(c.out, line)
	}
	return nil
}

// NotifyStats imprime el bloque de estadísticas competitivas.
func (c *Console) NotifyStats(_ context.Context, stats domain.CompetitiveStats) error {
	if stats.TotalAuctions == 0 {
		return nil
	}

	fmt.Fprintf(c.out, "auctions %d | win rate %.0f%% | overbid won %.1f%% lost %.1f%%\n",
		stats.TotalAuctions, stats.WinRate, stats.AvgWinningOverbid, stats.AvgLosingOverbid)

	if !c.table || len(stats.Competitors) == 0 {
		return nil
	}

	tbl := tablewriter.NewWriter(c.out)
	tbl.Header("Competitor", "Outbid us", "Avg %", "Min %", "Max %")
	for _, p := range stats.Competitors {
		tbl.Append(
			p.CompetitorID,
			fmt.Sprintf("%d", p.TimesOutbid),
			fmt.Sprintf("%.1f", p.AvgOverbid),
			fmt.Sprintf("%.1f", p.MinOverbid),
			fmt.Sprintf("%.1f", p.MaxOverbid),
		)
	}
	tbl.Render()
	return nil
}

// --- helpers ---

func assetNames(assets []domain.Asset) string {
	if len(assets) == 0 {
		return "-"
	}
	names := make([]string, len(assets))
	for i, a := range assets {
		names[i] = a.Name
	}
	return strings.Join(names, ", ")
}

// formatEUR imprime un importe con separadores de miles.
func formatEUR(amount int64) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}
	s := fmt.Sprintf("%d", amount)
	var sb strings.Builder
	for i, d := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			sb.WriteByte('.')
		}
		sb.WriteRune(d)
	}
	prefix := "€"
	if neg {
		prefix = "-€"
	}
	return prefix + sb.String()
}
