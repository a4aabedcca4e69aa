package pgrepo

import (
	"context"
	"fmt"

	"kinderstep-backend/config"
	"kinderstep-backend/pkg/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

const applicationName = "kinderstep-api"

// poolConfig applies the configured sizing and lifetimes to the DSN.
func poolConfig(cfg *config.Config) (*pgxpool.Config, error) {
	pc, err := pgxpool.ParseConfig(cfg.DBUrl)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database URL: %w", err)
	}

	if cfg.DBMaxConns > 0 {
		pc.MaxConns = cfg.DBMaxConns
	}
	if cfg.DBMinConns > 0 && cfg.DBMinConns <= pc.MaxConns {
		pc.MinConns = cfg.DBMinConns
	}
	if cfg.DBMaxConnIdleTime > 0 {
		pc.MaxConnIdleTime = cfg.DBMaxConnIdleTime
	}
	if cfg.DBMaxConnLifetime > 0 {
		pc.MaxConnLifetime = cfg.DBMaxConnLifetime
	}
	if cfg.DBHealthCheckPeriod > 0 {
		pc.HealthCheckPeriod = cfg.DBHealthCheckPeriod
	}
	if _, ok := pc.ConnConfig.RuntimeParams["application_name"]; !ok {
		pc.ConnConfig.RuntimeParams["application_name"] = applicationName
	}
	return pc, nil
}

// NewPgxPool opens the catalog and order store and checks it answers.
func NewPgxPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	pc, err := poolConfig(cfg)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	logger.Debug().
		Int32("max_conns", pc.MaxConns).
		Int32("min_conns", pc.MinConns).
		Dur("max_conn_lifetime", pc.MaxConnLifetime).
		Msg("Database pool ready")
	return pool, nil
}
