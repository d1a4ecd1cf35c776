package logger

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	logLevelFlag      = "log-level"
	logFormatFlag     = "log-format"
	logFileFlag       = "log-file"
	logMaxSizeFlag    = "log-max-size"
	logMaxBackupsFlag = "log-max-backups"
	logMaxAgeFlag     = "log-max-age"
)

// NewFlags creates the logging cli flags.
func NewFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    logLevelFlag,
			Value:   "info",
			Usage:   "log level: debug, info, warn, error",
			EnvVars: []string{"LOG_LEVEL"},
		},
		&cli.StringFlag{
			Name:    logFormatFlag,
			Value:   "console",
			Usage:   "log encoding: console or json",
			EnvVars: []string{"LOG_FORMAT"},
		},
		&cli.StringFlag{
			Name:    logFileFlag,
			Usage:   "also write logs to this file, rotated",
			EnvVars: []string{"LOG_FILE"},
		},
		&cli.IntFlag{
			Name:    logMaxSizeFlag,
			Value:   100,
			Usage:   "max size in MB of the log file before rotation",
			EnvVars: []string{"LOG_MAX_SIZE"},
		},
		&cli.IntFlag{
			Name:    logMaxBackupsFlag,
			Value:   7,
			EnvVars: []string{"LOG_MAX_BACKUPS"},
		},
		&cli.IntFlag{
			Name:    logMaxAgeFlag,
			Value:   30,
			Usage:   "days to keep rotated log files",
			EnvVars: []string{"LOG_MAX_AGE"},
		},
	}
}

// Config is what NewLogger reads from the cli context.
type Config struct {
	Level      string
	Format     string
	File       string
	MaxSize    int
	MaxBackups int
	MaxAge     int
}

// NewLogger builds a logger from the cli flags. The returned flusher must be
// called before exit.
func NewLogger(c *cli.Context) (*zap.Logger, func(), error) {
	return New(Config{
		Level:      c.String(logLevelFlag),
		Format:     c.String(logFormatFlag),
		File:       c.String(logFileFlag),
		MaxSize:    c.Int(logMaxSizeFlag),
		MaxBackups: c.Int(logMaxBackupsFlag),
		MaxAge:     c.Int(logMaxAgeFlag),
	})
}

func New(cfg Config) (*zap.Logger, func(), error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	switch cfg.Format {
	case "json":
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	case "console", "":
		encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	default:
		return nil, nil, fmt.Errorf("invalid log format %q", cfg.Format)
	}

	cores := []zapcore.Core{
		zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), level),
	}

	var rotator *lumberjack.Logger
	if cfg.File != "" {
		rotator = &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
		}
		// files always get json, they are meant for machines
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), zapcore.AddSync(rotator), level))
	}

	l := zap.New(zapcore.NewTee(cores...), zap.AddCaller())
	flusher := func() {
		_ = l.Sync()
		if rotator != nil {
			_ = rotator.Close()
		}
	}
	return l, flusher, nil
}
