package coingecko

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/kv-base-hack/crypto-dashboard/common"
)

const (
	DefaultBaseURL = "https://api.coingecko.com/api/v3"
	DefaultTimeout = time.Second * 10

	userAgent = "Mozilla/5.0"

	marketsEndpoint     = "%s/coins/markets"
	marketChartEndpoint = "%s/coins/%s/market_chart"
)

// CoinGecko talks to the public CoinGecko v3 REST API. Only the markets and
// market_chart endpoints are used.
type CoinGecko struct {
	client  *http.Client
	baseURL string
}

// NewCoinGecko creates a new CoinGecko instance. An empty baseURL or a zero
// timeout fall back to the defaults.
func NewCoinGecko(baseURL string, timeout time.Duration) *CoinGecko {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	client := &http.Client{
		Timeout: timeout,
	}
	return &CoinGecko{
		client:  client,
		baseURL: baseURL,
	}
}

// GetTopCoins returns the top coins by descending market cap, in upstream order.
func (cg *CoinGecko) GetTopCoins(ctx context.Context) ([]common.CoinSummary, error) {
	q := url.Values{}
	q.Set("vs_currency", common.QuoteCurrency)
	q.Set("order", "market_cap_desc")
	q.Set("per_page", strconv.Itoa(common.TopCoinsLimit))
	q.Set("page", "1")

	body, err := cg.get(ctx, fmt.Sprintf(marketsEndpoint, cg.baseURL), q)
	if err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("%w: expected a list of coins", ErrMalformedResponse)
	}

	var coins []common.CoinSummary
	if err := json.Unmarshal(trimmed, &coins); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return coins, nil
}

// GetMarketChart returns the daily price series of a coin over the last days.
func (cg *CoinGecko) GetMarketChart(ctx context.Context, id string, days int) (common.PriceSeries, error) {
	q := url.Values{}
	q.Set("vs_currency", common.QuoteCurrency)
	q.Set("days", strconv.Itoa(days))
	q.Set("interval", "daily")

	body, err := cg.get(ctx, fmt.Sprintf(marketChartEndpoint, cg.baseURL, url.PathEscape(id)), q)
	if err != nil {
		return nil, err
	}

	var chart marketChartResponse
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	series := make(common.PriceSeries, 0, len(chart.Prices))
	for _, p := range chart.Prices {
		if len(p) < 2 {
			return nil, fmt.Errorf("%w: price entry with %d values", ErrMalformedResponse, len(p))
		}
		series = append(series, common.PricePoint{
			Timestamp: int64(p[0]),
			Price:     p[1],
		})
	}
	return series, nil
}

func (cg *CoinGecko) get(ctx context.Context, endpoint string, query url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Add("Accept", "application/json")
	req.Header.Add("User-Agent", userAgent)
	req.URL.RawQuery = query.Encode()

	rsp, err := cg.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", req.URL.Path, err)
	}
	defer rsp.Body.Close()

	if rsp.StatusCode != http.StatusOK {
		return nil, &StatusError{Code: rsp.StatusCode, Status: rsp.Status}
	}
	respBody, err := io.ReadAll(rsp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", req.URL.Path, err)
	}
	return respBody, nil
}
