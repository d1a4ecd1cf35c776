package worker

import (
	"context"

	"github.com/kv-base-hack/crypto-dashboard/common"
	"github.com/kv-base-hack/crypto-dashboard/internal/metrics"
	"github.com/kv-base-hack/crypto-dashboard/internal/notify"
	"go.uber.org/zap"
)

// History fetches the daily price series of one coin.
type History struct {
	log    *zap.SugaredLogger
	source MarketSource
}

func NewHistory(log *zap.SugaredLogger, source MarketSource) *History {
	return &History{
		log:    log.With("worker", "history"),
		source: source,
	}
}

// Fetch returns nil ("no data") after adding exactly one notice when the
// series could not be fetched. A non-nil empty series is valid data.
func (h *History) Fetch(ctx context.Context, id string, days int, notices *notify.Notices) *common.PriceSeries {
	series, err := h.source.GetMarketChart(ctx, id, days)
	result := resultOf(err)
	metrics.ObserveUpstream("market_chart", result)
	if err != nil {
		h.log.Errorw("error when get market chart", "id", id, "days", days, "result", result, "err", err)
		switch result {
		case metrics.ResultStatus:
			notices.Errorf("Failed to fetch price history (status code %d)", statusCode(err))
		case metrics.ResultMalformed:
			notices.Errorf("Price history from CoinGecko is not in the expected format")
		default:
			notices.Errorf("Error while fetching price history: %v", err)
		}
		return nil
	}
	if series == nil {
		series = common.PriceSeries{}
	}
	h.log.Debugw("got market chart", "id", id, "days", days, "len", len(series))
	return &series
}
