package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/alejandrodnm/flipscore/internal/domain"
	"github.com/olekukonko/tablewriter"
	"github.com/shopspring/decimal"
)

// Console implementa ports.Notifier.
type Console struct {
	out      io.Writer
	table    bool
	hotScore float64
	now      func() time.Time
}

// NewConsole crea un notificador que escribe a stdout.
// hotScore es el deal score a partir del cual un deal se marca como hot.
func NewConsole(table bool, hotScore float64) *Console {
	return &Console{out: os.Stdout, table: table, hotScore: hotScore, now: time.Now}
}

// NewConsoleWriter crea un notificador para tests.
func NewConsoleWriter(w io.Writer, table bool, hotScore float64) *Console {
	return &Console{out: w, table: table, hotScore: hotScore, now: time.Now}
}

// Notify imprime los deals (ya rankeados) en el modo configurado.
func (c *Console) Notify(_ context.Context, deals []domain.Deal) error {
	if len(deals) == 0 {
		fmt.Fprintf(c.out, "[%s] no deals found\n", c.stamp())
		return nil
	}

	if c.table {
		c.printFull(deals)
	} else {
		c.printCompact(deals)
	}
	return nil
}

// printCompact imprime lo esencial en una línea.
func (c *Console) printCompact(deals []domain.Deal) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] %d deals → hot:%d best:%.1f", c.stamp(), len(deals), c.countHot(deals), deals[0].ROI.DealScore)

	for i, d := range deals {
		if i >= 4 {
			break
		}
		fmt.Fprintf(&sb, " | %s %s $%s→$%s offer $%s",
			c.icon(d), compactName(d.Listing.Title, 25),
			d.Listing.AskingPrice().StringFixed(0), d.FMV.Total.StringFixed(0),
			d.ROI.RecommendedOffer.StringFixed(0))
	}

	fmt.Fprintln(c.out, sb.String())
}

// printFull imprime la tabla de ranking y el detalle del mejor deal.
func (c *Console) printFull(deals []domain.Deal) {
	fmt.Fprintf(c.out, "\n[%s] %d deals, hot:%d\n", c.stamp(), len(deals), c.countHot(deals))

	table := tablewriter.NewWriter(c.out)
	table.Header("#", "", "Listing", "Asking", "FMV", "Net", "ROI", "Offer", "Walk", "Comp", "Score")

	for i, d := range deals {
		table.Append(
			fmt.Sprintf("%d", i+1),
			c.icon(d),
			truncate(listingLabel(d.Listing), 38),
			money(d.Listing.AskingPrice()),
			money(d.FMV.Total),
			money(d.ROI.NetProfit),
			fmt.Sprintf("%.1f%%", d.ROI.ROI),
			fmt.Sprintf("%s (%s)", money(d.Offer.RecommendedOffer), d.Offer.Recommended),
			money(d.ROI.WalkAwayPrice),
			fmt.Sprintf("%.0f", d.Competition.Score),
			fmt.Sprintf("%.1f", d.ROI.DealScore),
		)
	}
	table.Render()

	fmt.Fprintln(c.out, "  Net = profit after fees, taxes, transport, refurb and holding | Walk = max price keeping min profit")
	c.printBreakdown(deals[0])
}

// printBreakdown imprime el cálculo paso a paso del mejor deal.
func (c *Console) printBreakdown(d domain.Deal) {
	fmt.Fprintf(c.out, "\n--- best: %s ---\n", listingLabel(d.Listing))
	if d.Listing.URL != "" {
		fmt.Fprintf(c.out, "  URL: %s\n", d.Listing.URL)
	}

	fmt.Fprintf(c.out, "\n  1. FMV $%s (confidence %.0f%%, range $%s–$%s)\n",
		d.FMV.Total.StringFixed(2), d.FMV.Confidence*100,
		d.FMV.PriceRange.Min.StringFixed(2), d.FMV.PriceRange.Max.StringFixed(2))
	for _, v := range d.FMV.ComponentBreakdown {
		fmt.Fprintf(c.out, "     %-11s %-28s $%s\n", v.Type, truncate(v.Name, 28), v.AdjustedValue.StringFixed(2))
	}
	for _, a := range d.FMV.Adjustments {
		if a.Applied {
			fmt.Fprintf(c.out, "     %-18s %s  %s\n", a.Type, a.Impact, a.Reason)
		}
	}

	r := d.ROI
	fmt.Fprintf(c.out, "\n  2. ROI\n")
	fmt.Fprintf(c.out, "     buy $%s  resale $%s  invest $%s\n",
		r.PurchasePrice.StringFixed(2), r.ResalePrice.StringFixed(2), r.TotalInvestment.StringFixed(2))
	fmt.Fprintf(c.out, "     transport $%s  refurb $%s  fees $%s  taxes $%s  holding $%s\n",
		r.TransportCost.StringFixed(2), r.RefurbCost.StringFixed(2), r.ListingFees.StringFixed(2),
		r.Taxes.StringFixed(2), r.HoldingCost.StringFixed(2))
	fmt.Fprintf(c.out, "     net $%s  margin %.1f%%  roi %.1f%%  risk-adj %.1f%%  ~%d days\n",
		r.NetProfit.StringFixed(2), r.ProfitMargin, r.ROI, r.RiskAdjustedROI, r.EstimatedDaysToSell)

	o := d.Offer
	fmt.Fprintf(c.out, "\n  3. OFFERS aggressive $%s | fair $%s | conservative $%s\n",
		o.Aggressive.Amount.StringFixed(0), o.Fair.Amount.StringFixed(0), o.Conservative.Amount.StringFixed(0))
	fmt.Fprintf(c.out, "     >>> %s $%s: %s\n", o.Recommended, o.RecommendedOffer.StringFixed(0), o.Rationale)

	for _, tip := range d.Competition.Tips {
		fmt.Fprintf(c.out, "     >> %s\n", tip)
	}
	for _, in := range d.FMV.Insights {
		fmt.Fprintf(c.out, "     !! %s\n", in)
	}
	fmt.Fprintln(c.out)
}

// PrintHistory imprime el histórico de deals guardado en storage.
func (c *Console) PrintHistory(records []domain.DealRecord) {
	if len(records) == 0 {
		fmt.Fprintln(c.out, "\n  No deal history in range.")
		return
	}

	table := tablewriter.NewWriter(c.out)
	table.Header("#", "Listing", "Platform", "Asking", "FMV", "Net", "Offer", "Score", "Peak", "First seen", "Last seen")
	for i, r := range records {
		title := r.Title
		if title == "" {
			title = r.ListingID
		}
		table.Append(
			fmt.Sprintf("%d", i+1),
			truncate(title, 32),
			r.Platform,
			money(r.AskingPrice),
			money(r.FMV),
			money(r.NetProfit),
			money(r.RecommendedOffer),
			fmt.Sprintf("%.1f", r.DealScore),
			fmt.Sprintf("%.1f", r.PeakScore),
			r.FirstSeen.Local().Format("01-02 15:04"),
			r.LastSeen.Local().Format("01-02 15:04"),
		)
	}
	table.Render()
}

// PrintEnrichment imprime las capas opcionales aplicadas sobre el FMV.
func (c *Console) PrintEnrichment(res domain.EnrichmentResult) {
	fmt.Fprintf(c.out, "=== ENRICHED FMV $%s → $%s ===\n", res.Input.StringFixed(2), res.Final.StringFixed(2))
	for _, l := range res.Layers {
		mark := "-"
		if l.Adjustment.Applied {
			mark = "✓"
		}
		fmt.Fprintf(c.out, "  %s %-12s %7s  $%-9s %s\n",
			mark, l.Adjustment.Type, l.Adjustment.Impact, l.AdjustedValue.StringFixed(2), l.Adjustment.Reason)
	}
	fmt.Fprintln(c.out)
}

// --- helpers ---

func (c *Console) stamp() string {
	return c.now().Format("15:04:05")
}

func (c *Console) countHot(deals []domain.Deal) int {
	n := 0
	for _, d := range deals {
		if d.IsHot(c.hotScore) {
			n++
		}
	}
	return n
}

func (c *Console) icon(d domain.Deal) string {
	if d.IsHot(c.hotScore) {
		return "🔥"
	}
	return "·"
}

func listingLabel(l domain.Listing) string {
	if l.Title != "" {
		return l.Title
	}
	if l.ID != "" {
		return l.Platform + "/" + l.ID
	}
	return l.URL
}

func money(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func compactName(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := s[:maxLen]
	if idx := strings.LastIndex(cut, " "); idx > maxLen/2 {
		cut = cut[:idx]
	}
	return cut + "…"
}
