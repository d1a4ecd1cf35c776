package worker

import (
	"context"
	"time"

	"github.com/kv-base-hack/crypto-dashboard/internal/metrics"
	"github.com/kv-base-hack/crypto-dashboard/internal/notify"
	"github.com/kv-base-hack/crypto-dashboard/render"
	"github.com/kv-base-hack/crypto-dashboard/storage"
	"go.uber.org/zap"
)

const (
	outcomeHalted   = "halted"
	outcomeRendered = "rendered"
)

// Refresh runs the refresh cycle: fetch top coins, resolve the selection,
// fetch the history, render, wait, start over.
type Refresh struct {
	log      *zap.SugaredLogger
	duration time.Duration
	topCoins *TopCoins
	history  *History
	storage  *storage.Storage
	trigger  chan struct{}
	sinks    []func(*render.Page)
	now      func() time.Time
}

func NewRefresh(log *zap.SugaredLogger, duration time.Duration, topCoins *TopCoins,
	history *History, storage *storage.Storage) *Refresh {
	return &Refresh{
		log:      log.With("worker", "refresh"),
		duration: duration,
		topCoins: topCoins,
		history:  history,
		storage:  storage,
		trigger:  make(chan struct{}, 1),
		now:      time.Now,
	}
}

// OnPage registers a sink called with every rendered page, after it has been
// stored. Must be called before Run.
func (r *Refresh) OnPage(sink func(*render.Page)) {
	r.sinks = append(r.sinks, sink)
}

// Trigger asks for a new pass without waiting for the timer. Triggers that
// arrive while one is already pending are merged.
func (r *Refresh) Trigger() {
	select {
	case r.trigger <- struct{}{}:
	default:
	}
}

// Run loops until ctx is cancelled. The wait starts after a pass completes,
// so passes never overlap.
func (r *Refresh) Run(ctx context.Context) error {
	r.log.Infow("start refresh cycle", "duration", r.duration)
	for {
		r.Do(ctx)

		wait := time.NewTimer(r.duration)
		select {
		case <-ctx.Done():
			wait.Stop()
			r.log.Infow("stop refresh cycle")
			return nil
		case <-wait.C:
		case <-r.trigger:
			wait.Stop()
			r.log.Debugw("refresh triggered")
		}
	}
}

// Do runs one full pass and publishes the resulting page. Nothing is
// published when ctx is cancelled mid-pass, Do returns nil then.
func (r *Refresh) Do(ctx context.Context) *render.Page {
	start := time.Now()
	notices := notify.New()

	coins := r.topCoins.Fetch(ctx, notices)
	if ctx.Err() != nil {
		r.log.Debugw("refresh pass cancelled", "err", ctx.Err())
		return nil
	}
	if len(coins) == 0 {
		if notices.Errors() == 0 {
			notices.Errorf("No coin data available, check the connection or the API limit")
		}
		page := render.NewHaltedPage(r.now(), notices.List())
		r.publish(page)
		metrics.ObservePass(outcomeHalted, time.Since(start))
		r.log.Infow("refresh pass halted", "notices", page.Notices, "duration(s)", time.Since(start).Seconds())
		return page
	}

	options, dropped := render.NewCoinOptions(coins)
	for _, c := range dropped {
		r.log.Warnw("duplicate coin name, keep the first one", "name", c.Name, "dropped_id", c.ID)
	}

	sel, _ := render.Resolve(r.storage.Selection(), options)
	series := r.history.Fetch(ctx, sel.CoinID, sel.Range.Days, notices)
	if ctx.Err() != nil {
		r.log.Debugw("refresh pass cancelled", "err", ctx.Err())
		return nil
	}

	page := render.NewPage(r.now(), coins, options, sel, series, notices.List())
	r.publish(page)
	metrics.ObservePass(outcomeRendered, time.Since(start))
	r.log.Infow("refresh pass done",
		"coins", len(coins),
		"selection", page.Selection,
		"notices", len(page.Notices),
		"duration(s)", time.Since(start).Seconds())
	return page
}

func (r *Refresh) publish(page *render.Page) {
	r.storage.SetPage(page)
	for _, sink := range r.sinks {
		sink(page)
	}
}
