package redisad

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"visit_polzela/internal/adapters/observability"
	"visit_polzela/internal/domain"
)

// SnapshotStore keeps the offline catalog in one hash (field = POI id,
// value = JSON record) plus a "<key>:meta" string.
type SnapshotStore struct {
	c   *redis.Client
	key string
}

func New(addr, pass string, db int, key string) *SnapshotStore {
	return NewWithClient(redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db}), key)
}

func NewWithClient(c *redis.Client, key string) *SnapshotStore {
	return &SnapshotStore{c: c, key: key}
}

func (s *SnapshotStore) metaKey() string { return s.key + ":meta" }

// Put replaces the stored snapshot inside one MULTI/EXEC so readers never see
// a mix of two writes.
func (s *SnapshotStore) Put(ctx context.Context, snap domain.Snapshot) error {
	fields := make([]any, 0, 2*len(snap.Records))
	for _, r := range snap.Records {
		id, _ := r["id"].(string)
		if id == "" {
			err := errors.New("redis snapshot: record without id")
			observability.ObserveSnapshot("redis", "put", err)
			return err
		}
		b, err := json.Marshal(r)
		if err != nil {
			observability.ObserveSnapshot("redis", "put", err)
			return fmt.Errorf("redis snapshot: marshal %s: %w", id, err)
		}
		fields = append(fields, id, b)
	}
	meta, err := json.Marshal(snap.Meta)
	if err != nil {
		observability.ObserveSnapshot("redis", "put", err)
		return fmt.Errorf("redis snapshot: marshal meta: %w", err)
	}

	_, err = s.c.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, s.key, s.metaKey())
		if len(fields) > 0 {
			p.HSet(ctx, s.key, fields...)
		}
		p.Set(ctx, s.metaKey(), meta, 0)
		return nil
	})
	observability.ObserveSnapshot("redis", "put", err)
	return err
}

// GetAll reads meta and records in one MULTI/EXEC so a concurrent Put cannot
// pair the meta of one snapshot with the records of another.
func (s *SnapshotStore) GetAll(ctx context.Context) (domain.Snapshot, bool, error) {
	var (
		snap    domain.Snapshot
		metaCmd *redis.StringCmd
		allCmd  *redis.MapStringStringCmd
	)
	_, err := s.c.TxPipelined(ctx, func(p redis.Pipeliner) error {
		metaCmd = p.Get(ctx, s.metaKey())
		allCmd = p.HGetAll(ctx, s.key)
		return nil
	})
	// a missing meta surfaces as redis.Nil from EXEC
	if err != nil && !errors.Is(err, redis.Nil) {
		observability.ObserveSnapshot("redis", "get", err)
		return snap, false, err
	}
	mb, err := metaCmd.Bytes()
	if errors.Is(err, redis.Nil) {
		observability.ObserveCache("snapshot", "miss")
		return snap, false, nil
	}
	if err != nil {
		observability.ObserveSnapshot("redis", "get", err)
		return snap, false, err
	}
	if err := json.Unmarshal(mb, &snap.Meta); err != nil {
		log.Warn().Err(err).Str("key", s.metaKey()).Msg("unreadable snapshot meta")
	}

	all, err := allCmd.Result()
	if err != nil {
		observability.ObserveSnapshot("redis", "get", err)
		return snap, false, err
	}
	snap.Records = make([]map[string]any, 0, len(all))
	for id, v := range all {
		var rec map[string]any
		if err := json.Unmarshal([]byte(v), &rec); err != nil {
			log.Warn().Err(err).Str("id", id).Msg("skipping unreadable snapshot record")
			continue
		}
		snap.Records = append(snap.Records, rec)
	}
	observability.ObserveSnapshot("redis", "get", nil)
	return snap, true, nil
}

func (s *SnapshotStore) Ping(ctx context.Context) error { return s.c.Ping(ctx).Err() }

func (s *SnapshotStore) Close() error { return s.c.Close() }
