package common

// QuoteCurrency is the only currency prices are requested in.
const QuoteCurrency = "usd"

// TopCoinsLimit is the number of coins requested from the markets endpoint.
const TopCoinsLimit = 10

// CoinSummary is a snapshot of one coin's current market stats, as returned by
// the coins/markets endpoint.
type CoinSummary struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	CurrentPrice float64 `json:"current_price"`
	MarketCap    float64 `json:"market_cap"`
	TotalVolume  float64 `json:"total_volume"`
	Image        string  `json:"image"`
}

// PricePoint is one [timestamp_ms, price] pair.
type PricePoint struct {
	Timestamp int64   `json:"timestamp"`
	Price     float64 `json:"price"`
}

// PriceSeries keeps the upstream order, it is never resampled.
type PriceSeries []PricePoint

// Timestamps returns the x values of the series.
func (p PriceSeries) Timestamps() []int64 {
	res := make([]int64, 0, len(p))
	for _, point := range p {
		res = append(res, point.Timestamp)
	}
	return res
}

// Prices returns the y values of the series.
func (p PriceSeries) Prices() []float64 {
	res := make([]float64, 0, len(p))
	for _, point := range p {
		res = append(res, point.Price)
	}
	return res
}

// Selection is the operator choice carried across refresh passes.
type Selection struct {
	Coin  string `json:"coin" form:"coin"`
	Range string `json:"range" form:"range"`
}
