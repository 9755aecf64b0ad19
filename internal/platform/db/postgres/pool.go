package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/ogurasousui/codex-crm/internal/platform/config"
	"github.com/rs/zerolog"
)

// BuildPoolConfig は database 設定から pgxpool.Config を構築します。
// traceLevel が "none" 以外の場合、発行した SQL を logger に出力します。
func BuildPoolConfig(cfg config.DatabaseConfig, logger zerolog.Logger, traceLevel string) (*pgxpool.Config, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("postgres: parse config: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		poolCfg.MaxConns = int32(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		poolCfg.MinConns = int32(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime
	}
	if cfg.ConnMaxIdleTime > 0 {
		poolCfg.MaxConnIdleTime = cfg.ConnMaxIdleTime
	}

	tracer, err := newQueryTracer(logger, traceLevel)
	if err != nil {
		return nil, err
	}
	if tracer != nil {
		poolCfg.ConnConfig.Tracer = tracer
	}

	return poolCfg, nil
}

// NewPool は pgxpool.Pool を生成し疎通確認を行います。
func NewPool(ctx context.Context, cfg config.DatabaseConfig, logger zerolog.Logger, traceLevel string) (*pgxpool.Pool, error) {
	poolCfg, err := BuildPoolConfig(cfg, logger, traceLevel)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("postgres: create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}

	logger.Info().
		Str("host", poolCfg.ConnConfig.Host).
		Str("database", poolCfg.ConnConfig.Database).
		Int32("max_conns", poolCfg.MaxConns).
		Msg("postgres pool ready")
	return pool, nil
}

func newQueryTracer(logger zerolog.Logger, traceLevel string) (*tracelog.TraceLog, error) {
	if traceLevel == "" || traceLevel == "none" {
		return nil, nil
	}
	level, err := tracelog.LogLevelFromString(traceLevel)
	if err != nil {
		return nil, fmt.Errorf("postgres: trace level: %w", err)
	}
	return &tracelog.TraceLog{
		Logger:   zerologTracer{logger: logger.With().Str("component", "pgx").Logger()},
		LogLevel: level,
	}, nil
}

// zerologTracer は pgx のトレースログを zerolog へ転送します。
type zerologTracer struct {
	logger zerolog.Logger
}

func (z zerologTracer) Log(ctx context.Context, level tracelog.LogLevel, msg string, data map[string]any) {
	logger := z.logger
	if reqLogger := zerolog.Ctx(ctx); reqLogger.GetLevel() != zerolog.Disabled {
		logger = reqLogger.With().Str("component", "pgx").Logger()
	}
	logger.WithLevel(zerologLevel(level)).Fields(data).Msg(msg)
}

func zerologLevel(level tracelog.LogLevel) zerolog.Level {
	switch level {
	case tracelog.LogLevelTrace:
		return zerolog.TraceLevel
	case tracelog.LogLevelDebug:
		return zerolog.DebugLevel
	case tracelog.LogLevelInfo:
		return zerolog.InfoLevel
	case tracelog.LogLevelWarn:
		return zerolog.WarnLevel
	case tracelog.LogLevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.NoLevel
	}
}
