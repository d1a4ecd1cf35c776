package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/kv-base-hack/crypto-dashboard/common"
	"github.com/kv-base-hack/crypto-dashboard/internal/metrics"
	"github.com/kv-base-hack/crypto-dashboard/internal/notify"
	"github.com/kv-base-hack/crypto-dashboard/storage/cache"
	"go.uber.org/zap"
)

const topCoinsKey = "top_coins"

// TopCoins fetches the top coins by market cap and memoises successful
// results for ttl.
type TopCoins struct {
	log    *zap.SugaredLogger
	source MarketSource
	cache  cache.Cache
	ttl    time.Duration
}

func NewTopCoins(log *zap.SugaredLogger, source MarketSource, cache cache.Cache, ttl time.Duration) *TopCoins {
	return &TopCoins{
		log:    log.With("worker", "top_coins"),
		source: source,
		cache:  cache,
		ttl:    ttl,
	}
}

// Fetch never fails: on any error it adds exactly one notice and returns an
// empty list.
func (t *TopCoins) Fetch(ctx context.Context, notices *notify.Notices) []common.CoinSummary {
	if coins, ok := t.cached(ctx); ok {
		return coins
	}

	coins, err := t.source.GetTopCoins(ctx)
	result := resultOf(err)
	metrics.ObserveUpstream("markets", result)
	if err != nil {
		t.log.Errorw("error when get top coins", "result", result, "err", err)
		switch result {
		case metrics.ResultStatus:
			notices.Errorf("Failed to fetch coin data from CoinGecko (status code %d)", statusCode(err))
		case metrics.ResultMalformed:
			notices.Errorf("Coin data from CoinGecko is not in the expected format")
		default:
			notices.Errorf("Error while fetching coin data: %v", err)
		}
		return []common.CoinSummary{}
	}

	t.log.Debugw("got top coins", "len", len(coins))
	if len(coins) > 0 {
		t.store(ctx, coins)
	}
	return coins
}

// Invalidate drops the memoised result, the next Fetch goes upstream.
func (t *TopCoins) Invalidate(ctx context.Context) error {
	if err := t.cache.Delete(ctx, topCoinsKey); err != nil {
		t.log.Errorw("error when invalidate top coins", "err", err)
		return err
	}
	t.log.Infow("top coins cache invalidated")
	return nil
}

func (t *TopCoins) cached(ctx context.Context) ([]common.CoinSummary, bool) {
	data, err := t.cache.Get(ctx, topCoinsKey)
	if err != nil {
		if !errors.Is(err, cache.ErrNotFound) {
			t.log.Errorw("error when read top coins cache", "err", err)
		}
		metrics.ObserveCache(false)
		return nil, false
	}
	var coins []common.CoinSummary
	if err := json.Unmarshal(data, &coins); err != nil {
		t.log.Errorw("error when parse cached top coins", "err", err)
		metrics.ObserveCache(false)
		return nil, false
	}
	metrics.ObserveCache(true)
	return coins, true
}

func (t *TopCoins) store(ctx context.Context, coins []common.CoinSummary) {
	data, err := json.Marshal(coins)
	if err != nil {
		t.log.Errorw("error when encode top coins", "err", err)
		return
	}
	if err := t.cache.Set(ctx, topCoinsKey, data, t.ttl); err != nil {
		t.log.Errorw("error when write top coins cache", "err", err)
	}
}
