package render

import (
	"time"

	"github.com/kv-base-hack/crypto-dashboard/common"
	"github.com/kv-base-hack/crypto-dashboard/internal/notify"
)

const Title = "Crypto Dashboard"

// Page is everything one refresh pass produced. A halted page carries only
// its notices.
type Page struct {
	Title       string               `json:"title"`
	GeneratedAt time.Time            `json:"generated_at"`
	Notices     []notify.Notice      `json:"notices"`
	Halted      bool                 `json:"halted"`
	CoinNames   []string             `json:"coin_names"`
	RangeLabels []string             `json:"range_labels"`
	Selection   common.Selection     `json:"selection"`
	Coins       []common.CoinSummary `json:"coins"`
	Summary     *Summary             `json:"summary,omitempty"`
	Chart       *Chart               `json:"chart,omitempty"`
}

// NewHaltedPage is rendered when there is no coin data at all.
func NewHaltedPage(now time.Time, notices []notify.Notice) *Page {
	return &Page{
		Title:       Title,
		GeneratedAt: now,
		Notices:     notices,
		Halted:      true,
		CoinNames:   []string{},
		RangeLabels: common.TimeRangeLabels(),
		Coins:       []common.CoinSummary{},
	}
}

// NewPage assembles a full page. The summary is skipped when the selected id
// is not in coins, the chart when series is nil.
func NewPage(now time.Time, coins []common.CoinSummary, options CoinOptions, sel Resolved,
	series *common.PriceSeries, notices []notify.Notice) *Page {
	page := &Page{
		Title:       Title,
		GeneratedAt: now,
		Notices:     notices,
		CoinNames:   options.Names,
		RangeLabels: common.TimeRangeLabels(),
		Selection:   sel.Selection(),
		Coins:       coins,
	}
	if coin, ok := FindCoin(coins, sel.CoinID); ok {
		summary := NewSummary(coin)
		page.Summary = &summary
	}
	page.Chart = NewChart(sel.CoinName, series, sel.Range.Days)
	return page
}
