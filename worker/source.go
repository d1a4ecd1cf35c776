package worker

import (
	"context"
	"errors"

	"github.com/kv-base-hack/crypto-dashboard/common"
	"github.com/kv-base-hack/crypto-dashboard/lib/coingecko"
	"github.com/kv-base-hack/crypto-dashboard/internal/metrics"
)

// MarketSource is the upstream market data API, *coingecko.CoinGecko in production.
type MarketSource interface {
	GetTopCoins(ctx context.Context) ([]common.CoinSummary, error)
	GetMarketChart(ctx context.Context, id string, days int) (common.PriceSeries, error)
}

func resultOf(err error) string {
	switch {
	case err == nil:
		return metrics.ResultOK
	case errors.Is(err, coingecko.ErrUnexpectedStatus):
		return metrics.ResultStatus
	case errors.Is(err, coingecko.ErrMalformedResponse):
		return metrics.ResultMalformed
	default:
		return metrics.ResultTransport
	}
}

func statusCode(err error) int {
	var statusErr *coingecko.StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Code
	}
	return 0
}
