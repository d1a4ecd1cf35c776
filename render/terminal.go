package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
)

// WriteText renders the page for a terminal: notices, the top coins table,
// the summary block and an ascii chart.
func WriteText(w io.Writer, p *Page) error {
	var b strings.Builder

	fmt.Fprintf(&b, "%s  (%s)\n\n", p.Title, p.GeneratedAt.Format("2006-01-02 15:04:05"))
	for _, n := range p.Notices {
		fmt.Fprintf(&b, "[%s] %s\n", strings.ToUpper(string(n.Level)), n.Message)
	}
	if p.Halted {
		_, err := io.WriteString(w, b.String())
		return err
	}

	table := tablewriter.NewWriter(&b)
	table.SetHeader([]string{"#", "Name", "Price", "Market Cap", "Volume 24h"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	for i, c := range p.Coins {
		table.Append([]string{
			fmt.Sprintf("%d", i+1),
			c.Name,
			FormatPrice(c.CurrentPrice),
			FormatGrouped(c.MarketCap),
			FormatGrouped(c.TotalVolume),
		})
	}
	table.Render()

	fmt.Fprintf(&b, "\nSelected: %s, %s\n", p.Selection.Coin, p.Selection.Range)
	if s := p.Summary; s != nil {
		fmt.Fprintf(&b, "Current price: %s\nMarket cap: %s\nVolume 24h: %s\n", s.Price, s.MarketCap, s.Volume)
	}
	if p.Chart != nil {
		if plot := p.Chart.Plot(60, 12); plot != "" {
			fmt.Fprintf(&b, "\n%s\n", plot)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}
