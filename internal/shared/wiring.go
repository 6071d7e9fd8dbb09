package shared

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"visit_polzela/internal/adapters/connectivity"
	redisad "visit_polzela/internal/adapters/redis"
	"visit_polzela/internal/domain"
	mysqlrepo "visit_polzela/internal/storage/mysql"
)

// OpenSnapshotStore connects the configured snapshot backend. The returned
// func releases it. An unreachable redis is only logged: the client
// reconnects on later commands, so the store is returned regardless.
func OpenSnapshotStore(ctx context.Context, c Config) (domain.SnapshotStore, func(), error) {
	switch c.SnapshotBackend {
	case "mysql":
		db, err := sql.Open("mysql", c.MySQLDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("sql.Open: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("db ping: %w", err)
		}
		repo := mysqlrepo.New(db, c.SnapshotKey)
		if err := repo.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		log.Info().Str("backend", "mysql").Str("key", c.SnapshotKey).Msg("snapshot store ready")
		return repo, func() { _ = db.Close() }, nil
	default:
		st := redisad.New(c.RedisAddr, c.RedisPass, c.RedisDB, c.SnapshotKey)
		if err := st.Ping(ctx); err != nil {
			log.Warn().Err(err).Str("addr", c.RedisAddr).Msg("redis unreachable at startup; snapshot calls will retry")
			return st, func() { _ = st.Close() }, nil
		}
		log.Info().Str("backend", "redis").Str("addr", c.RedisAddr).Str("key", c.SnapshotKey).Msg("snapshot store ready")
		return st, func() { _ = st.Close() }, nil
	}
}

// NewProbe picks the connectivity signal: forced offline, always online when
// no URL is configured, otherwise an HTTP probe.
func NewProbe(c Config) domain.ConnectivityProbe {
	if c.ForceOffline {
		return connectivity.Static(false)
	}
	if c.ConnectivityURL == "" {
		return connectivity.Static(true)
	}
	p, err := connectivity.NewHTTPProbe(c.ConnectivityURL, c.ConnectivityRPS, c.ConnectivityTimeout)
	if err != nil {
		log.Warn().Err(err).Msg("connectivity probe disabled; assuming online")
		return connectivity.Static(true)
	}
	return p
}
