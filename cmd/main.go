package main

import (
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/kv-base-hack/crypto-dashboard/common"
	"github.com/kv-base-hack/crypto-dashboard/internal/logger"
	"github.com/kv-base-hack/crypto-dashboard/internal/server"
	"github.com/kv-base-hack/crypto-dashboard/lib/coingecko"
	"github.com/kv-base-hack/crypto-dashboard/render"
	"github.com/kv-base-hack/crypto-dashboard/storage"
	"github.com/kv-base-hack/crypto-dashboard/storage/cache"
	"github.com/kv-base-hack/crypto-dashboard/worker"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	_ = godotenv.Load()
	app := cli.NewApp()
	app.Name = "crypto-dashboard"
	app.Usage = "top 10 crypto coins by market cap with a price history chart"
	app.Action = run
	app.Flags = append(app.Flags, logger.NewFlags()...)
	app.Flags = append(app.Flags, NewRedisFlags()...)
	app.Flags = append(app.Flags, NewFlags()...)
	app.Flags = append(app.Flags, NewHTTPFlags()...)
	app.Commands = []*cli.Command{
		{
			Name:   "watch",
			Usage:  "print the dashboard to the terminal on every refresh",
			Action: watch,
		},
	}

	sort.Sort(cli.FlagsByName(app.Flags))

	if err := app.Run(os.Args); err != nil {
		panic(err)
	}
}

// dashboard is the part shared by the web and the terminal modes.
type dashboard struct {
	topCoins *worker.TopCoins
	refresh  *worker.Refresh
	store    *storage.Storage
	close    func()
}

func newDashboard(c *cli.Context, log *zap.SugaredLogger) (*dashboard, error) {
	selection := common.Selection{
		Coin:  c.String(defaultCoinFlag),
		Range: c.String(defaultRangeFlag),
	}
	if _, ok := common.TimeRangeByLabel(selection.Range); !ok {
		return nil, fmt.Errorf("unknown %s %q, expected one of %v",
			defaultRangeFlag, selection.Range, common.TimeRangeLabels())
	}
	store := storage.NewStorage(log, selection)

	var (
		topCoinsCache cache.Cache = cache.NewMemory()
		closer                    = func() {}
	)
	if addr := c.String(redisAddrFlag); addr != "" {
		client := cache.NewRedisClient(addr, c.String(redisPasswordFlag), c.Int(redisDBFlag))
		if err := client.Ping(c.Context).Err(); err != nil {
			log.Errorw("error when connect to redis", "addr", addr, "err", err)
			return nil, err
		}
		log.Infow("cache top coins in redis", "addr", addr)
		topCoinsCache = cache.NewRedis(client)
		closer = func() { _ = client.Close() }
	}

	gecko := coingecko.NewCoinGecko(c.String(coingeckoURLFlag), c.Duration(httpTimeoutFlag))
	topCoins := worker.NewTopCoins(log, gecko, topCoinsCache, c.Duration(topCoinsTTLFlag))
	history := worker.NewHistory(log, gecko)
	refresh := worker.NewRefresh(log, c.Duration(refreshIntervalFlag), topCoins, history, store)

	return &dashboard{
		topCoins: topCoins,
		refresh:  refresh,
		store:    store,
		close:    closer,
	}, nil
}

func newLogger(c *cli.Context) (*zap.SugaredLogger, func(), error) {
	l, flusher, err := logger.NewLogger(c)
	if err != nil {
		return nil, nil, err
	}
	zap.ReplaceGlobals(l)
	return l.Sugar(), flusher, nil
}

func run(c *cli.Context) error {
	log, flusher, err := newLogger(c)
	if err != nil {
		return err
	}
	defer flusher()
	log.Debugw("Starting application...")

	d, err := newDashboard(c, log)
	if err != nil {
		return err
	}
	defer d.close()

	if !c.Bool(httpDebugFlag) {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := server.NewServer(log, c.String(httpAddressFlag), d.store,
		d.refresh, d.topCoins, c.Duration(refreshIntervalFlag))

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return d.refresh.Run(ctx)
	})
	g.Go(func() error {
		return srv.Run(ctx)
	})
	return g.Wait()
}

func watch(c *cli.Context) error {
	log, flusher, err := newLogger(c)
	if err != nil {
		return err
	}
	defer flusher()

	d, err := newDashboard(c, log)
	if err != nil {
		return err
	}
	defer d.close()

	d.refresh.OnPage(func(page *render.Page) {
		if err := render.WriteText(os.Stdout, page); err != nil {
			log.Errorw("error when write page", "err", err)
		}
	})

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()
	return d.refresh.Run(ctx)
}
