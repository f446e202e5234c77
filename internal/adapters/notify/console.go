package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/alejandrodnm/arbscout/internal/domain"
	"github.com/olekukonko/tablewriter"
)

const (
	titleWidth   = 38
	compactTop   = 4
	detailTop    = 3
	compactTitle = 25
)

// Console implementa ports.Notifier.
type Console struct {
	out    io.Writer
	table  bool
	detail bool
}

// NewConsole crea un notificador que escribe a stdout.
func NewConsole(table, detail bool) *Console {
	return &Console{out: os.Stdout, table: table, detail: detail}
}

// NewConsoleWriter crea un notificador para tests.
func NewConsoleWriter(w io.Writer, table, detail bool) *Console {
	return &Console{out: w, table: table, detail: detail}
}

// Notify imprime las oportunidades en el modo configurado.
func (c *Console) Notify(_ context.Context, opps []domain.ArbitrageOpportunity) error {
	if len(opps) == 0 {
		fmt.Fprintf(c.out, "[%s] no opportunities found\n", time.Now().Format("15:04:05"))
		return nil
	}

	if c.table {
		c.printFull(opps)
	} else {
		c.printCompact(opps)
	}

	if c.detail {
		c.printDetail(opps)
	}
	return nil
}

// printCompact imprime lo esencial en una línea.
func (c *Console) printCompact(opps []domain.ArbitrageOpportunity) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] %d opps, best $%.2f", time.Now().Format("15:04:05"), len(opps), bestProfit(opps))

	for i, o := range opps {
		if i >= compactTop {
			break
		}
		fmt.Fprintf(&sb, " | %s %s +$%.2f %.1f%%",
			o.Route(),
			compactName(domain.TruncateTitle(o.ProductTitle, o.ProductID, 0), compactTitle),
			o.EstimatedProfit, o.MarginPct)
	}
	fmt.Fprintln(c.out, sb.String())
}

// printFull imprime cabecera, tabla y resumen.
func (c *Console) printFull(opps []domain.ArbitrageOpportunity) {
	fmt.Fprintf(c.out, "\n[%s] %d opportunities, %d routes\n",
		time.Now().Format("15:04:05"), len(opps), countRoutes(opps))
	c.PrintTable(opps)
	c.printSummary(opps)
}

// PrintTable imprime la tabla de oportunidades. También se usa para el histórico.
func (c *Console) PrintTable(opps []domain.ArbitrageOpportunity) {
	table := tablewriter.NewWriter(c.out)
	table.Header("#", "Product", "Route", "Buy", "Sell", "Fees", "Profit", "Margin", "ROI", "Score", "Match")

	for i, o := range opps {
		table.Append(
			fmt.Sprintf("%d", i+1),
			domain.TruncateTitle(o.ProductTitle, o.ProductID, titleWidth),
			o.Route(),
			fmt.Sprintf("$%.2f", o.BuyPrice+o.BuyShipping),
			fmt.Sprintf("$%.2f", o.SellPrice),
			fmt.Sprintf("$%.2f", o.EstimatedFees),
			fmt.Sprintf("$%.2f", o.EstimatedProfit),
			fmt.Sprintf("%.1f%%", o.MarginPct),
			fmt.Sprintf("%.1f%%", o.ROI),
			fmt.Sprintf("%.2f", o.Score),
			matchLabel(o.MatchType),
		)
	}
	table.Render()

	fmt.Fprintln(c.out, "  Buy = precio + envío | Fees = comisiones + pago + envío de venta estimado")
}

// printSummary imprime totales del scan.
func (c *Console) printSummary(opps []domain.ArbitrageOpportunity) {
	var profit, capital float64
	for _, o := range opps {
		profit += o.EstimatedProfit
		capital += o.BuyPrice + o.BuyShipping
	}

	fmt.Fprintf(c.out, "\n  Capital needed: $%.2f  Expected profit: $%.2f  Blended ROI: %.1f%%\n\n",
		capital, profit, pct(profit, capital))
}

// printDetail imprime el desglose paso a paso de los top 3.
func (c *Console) printDetail(opps []domain.ArbitrageOpportunity) {
	top := opps
	if len(top) > detailTop {
		top = opps[:detailTop]
	}

	fmt.Fprintln(c.out, "=== DETAIL — step-by-step ===")
	for i, o := range top {
		fmt.Fprintf(c.out, "\n--- #%d: %s  [%s] score %.2f ---\n",
			i+1, domain.TruncateTitle(o.ProductTitle, o.ProductID, 60), o.Route(), o.Score)

		fmt.Fprintf(c.out, "  1. BUY on %s\n", o.BuyPlatform)
		fmt.Fprintf(c.out, "     price $%.2f + shipping $%.2f = $%.2f\n",
			o.BuyPrice, o.BuyShipping, o.BuyPrice+o.BuyShipping)
		if o.BuyURL != "" {
			fmt.Fprintf(c.out, "     %s\n", o.BuyURL)
		}

		fmt.Fprintf(c.out, "  2. SELL on %s\n", o.SellPlatform)
		fmt.Fprintf(c.out, "     price $%.2f, ship to buyer $%.2f\n", o.SellPrice, o.SellShipping)
		if o.SellURL != "" {
			fmt.Fprintf(c.out, "     %s\n", o.SellURL)
		}

		fmt.Fprintf(c.out, "  3. COSTS\n")
		fmt.Fprintf(c.out, "     fees + payment + shipping: $%.2f\n", o.EstimatedFees)
		fmt.Fprintf(c.out, "     >>> NET PROFIT: $%.2f  margin %.1f%%  ROI %.1f%%\n",
			o.EstimatedProfit, o.MarginPct, o.ROI)
	}
	fmt.Fprintln(c.out)
}

// PrintMatches imprime los grupos de mismo producto encontrados entre plataformas.
func (c *Console) PrintMatches(matches []domain.MatchResult) {
	if len(matches) == 0 {
		fmt.Fprintln(c.out, "  no cross-platform matches found")
		return
	}

	table := tablewriter.NewWriter(c.out)
	table.Header("#", "Match", "Conf", "Platform", "Product", "Price", "Ship")

	for i, m := range matches {
		for j, p := range m.Products {
			idx, kind, conf := "", "", ""
			if j == 0 {
				idx = fmt.Sprintf("%d", i+1)
				kind = matchLabel(m.MatchType)
				conf = fmt.Sprintf("%.2f", m.Confidence)
			}
			table.Append(
				idx,
				kind,
				conf,
				p.Platform.String(),
				domain.TruncateTitle(p.Title, p.PlatformID, titleWidth),
				fmt.Sprintf("$%.2f", p.Price),
				fmt.Sprintf("$%.2f", p.Shipping),
			)
		}
	}
	table.Render()
	fmt.Fprintf(c.out, "  %d groups\n", len(matches))
}

// --- helpers ---

func bestProfit(opps []domain.ArbitrageOpportunity) float64 {
	best := 0.0
	for _, o := range opps {
		if o.EstimatedProfit > best {
			best = o.EstimatedProfit
		}
	}
	return best
}

func countRoutes(opps []domain.ArbitrageOpportunity) int {
	seen := make(map[string]struct{})
	for _, o := range opps {
		seen[o.Route()] = struct{}{}
	}
	return len(seen)
}

func matchLabel(t domain.MatchType) string {
	if t == "" {
		return "-"
	}
	return string(t)
}

func compactName(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	cut := string(r[:maxLen])
	if idx := strings.LastIndex(cut, " "); idx > maxLen/2 {
		cut = cut[:idx]
	}
	return cut + "…"
}

func pct(part, whole float64) float64 {
	if whole <= 0 {
		return 0
	}
	return part / whole * 100
}
