package render

import (
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/kv-base-hack/crypto-dashboard/common"
)

const IconWidth = 80

// Summary is the text block of the selected coin, values already formatted.
type Summary struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Price      string `json:"price"`
	MarketCap  string `json:"market_cap"`
	Volume     string `json:"total_volume"`
	Image      string `json:"image"`
	ImageWidth int    `json:"image_width"`
}

// FindCoin is an exact-match lookup by coin id.
func FindCoin(coins []common.CoinSummary, id string) (common.CoinSummary, bool) {
	for _, c := range coins {
		if c.ID == id {
			return c, true
		}
	}
	return common.CoinSummary{}, false
}

func NewSummary(coin common.CoinSummary) Summary {
	return Summary{
		ID:         coin.ID,
		Name:       coin.Name,
		Price:      FormatPrice(coin.CurrentPrice),
		MarketCap:  FormatGrouped(coin.MarketCap),
		Volume:     FormatGrouped(coin.TotalVolume),
		Image:      coin.Image,
		ImageWidth: IconWidth,
	}
}

// FormatPrice prints the price as received, no rounding: 50000 -> $50000.
func FormatPrice(v float64) string {
	return "$" + strconv.FormatFloat(v, 'f', -1, 64)
}

// FormatGrouped adds thousands separators: 1000000000 -> $1,000,000,000.
func FormatGrouped(v float64) string {
	return "$" + humanize.Commaf(v)
}
