package main

import (
	"time"

	"github.com/kv-base-hack/crypto-dashboard/common"
	"github.com/kv-base-hack/crypto-dashboard/lib/coingecko"
	"github.com/urfave/cli/v2"
)

const (
	coingeckoURLFlag    = "coingecko-url"
	httpTimeoutFlag     = "http-timeout"
	refreshIntervalFlag = "refresh-interval"
	topCoinsTTLFlag     = "top-coins-ttl"
	defaultCoinFlag     = "default-coin"
	defaultRangeFlag    = "default-range"

	httpAddressFlag = "http-address"
	httpDebugFlag   = "http-debug"

	redisAddrFlag     = "redis-addr"
	redisPasswordFlag = "redis-password"
	redisDBFlag       = "redis-db"
)

// NewFlags creates new cli flags.
func NewFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    coingeckoURLFlag,
			Value:   coingecko.DefaultBaseURL,
			Usage:   "base url of the CoinGecko v3 API",
			EnvVars: []string{"COINGECKO_URL"},
		},
		&cli.DurationFlag{
			Name:    httpTimeoutFlag,
			Value:   coingecko.DefaultTimeout,
			Usage:   "timeout of a single CoinGecko request",
			EnvVars: []string{"HTTP_TIMEOUT"},
		},
		&cli.DurationFlag{
			Name:    refreshIntervalFlag,
			Value:   time.Second * 30,
			Usage:   "wait between the end of a refresh pass and the next one",
			EnvVars: []string{"REFRESH_INTERVAL"},
		},
		&cli.DurationFlag{
			Name:    topCoinsTTLFlag,
			Value:   time.Second * 60,
			Usage:   "how long a top coins result is reused, 0 disables the cache",
			EnvVars: []string{"TOP_COINS_TTL"},
		},
		&cli.StringFlag{
			Name:    defaultCoinFlag,
			Usage:   "coin name selected at startup, the first coin when empty",
			EnvVars: []string{"DEFAULT_COIN"},
		},
		&cli.StringFlag{
			Name:    defaultRangeFlag,
			Value:   common.TimeRanges[0].Label,
			Usage:   "time range label selected at startup",
			EnvVars: []string{"DEFAULT_RANGE"},
		},
	}
}

// NewHTTPFlags creates the dashboard server flags.
func NewHTTPFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    httpAddressFlag,
			Value:   ":8080",
			Usage:   "bind address of the dashboard",
			EnvVars: []string{"HTTP_ADDRESS"},
		},
		&cli.BoolFlag{
			Name:    httpDebugFlag,
			Usage:   "run gin in debug mode",
			EnvVars: []string{"HTTP_DEBUG"},
		},
	}
}

// NewRedisFlags creates the redis flags. Without an address the cache is kept
// in memory.
func NewRedisFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    redisAddrFlag,
			Usage:   "redis host:port used to cache top coins",
			EnvVars: []string{"REDIS_ADDR"},
		},
		&cli.StringFlag{
			Name:    redisPasswordFlag,
			EnvVars: []string{"REDIS_PASSWORD"},
		},
		&cli.IntFlag{
			Name:    redisDBFlag,
			Value:   0,
			EnvVars: []string{"REDIS_DB"},
		},
	}
}
