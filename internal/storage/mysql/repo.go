package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"visit_polzela/internal/adapters/observability"
	"visit_polzela/internal/domain"
)

// SnapshotRepo stores the offline catalog in MySQL. Each Put is one
// transaction that deletes the previous rows and inserts the new set.
type SnapshotRepo struct {
	db  *sql.DB
	key string
}

func New(db *sql.DB, key string) *SnapshotRepo { return &SnapshotRepo{db: db, key: key} }

// EnsureSchema creates the snapshot tables when missing.
func (r *SnapshotRepo) EnsureSchema(ctx context.Context) error {
	for _, stmt := range []string{createSnapshotSQL, createSnapshotMetaSQL} {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

func (r *SnapshotRepo) Put(ctx context.Context, snap domain.Snapshot) (err error) {
	defer func() { observability.ObserveSnapshot("mysql", "put", err) }()

	meta, err := json.Marshal(snap.Meta)
	if err != nil {
		return fmt.Errorf("mysql snapshot: marshal meta: %w", err)
	}
	values := make([]string, 0, len(snap.Records))
	args := make([]any, 0, len(snap.Records)*4) // 4 params per row
	for i, rec := range snap.Records {
		id, _ := rec["id"].(string)
		if id == "" {
			return errors.New("mysql snapshot: record without id")
		}
		b, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("mysql snapshot: marshal %s: %w", id, err)
		}
		values = append(values, "(?,?,?,?)")
		args = append(args, r.key, id, i, string(b))
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, deleteSnapshotSQL, r.key); err != nil {
		return err
	}
	if len(values) > 0 {
		sqlStr := insertSnapshotPrefix + strings.Join(values, ",") + insertSnapshotOnDup
		if _, err = tx.ExecContext(ctx, sqlStr, args...); err != nil {
			return err
		}
	}
	if _, err = tx.ExecContext(ctx, upsertMetaSQL, r.key, string(meta)); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *SnapshotRepo) GetAll(ctx context.Context) (domain.Snapshot, bool, error) {
	var snap domain.Snapshot

	var metaRaw []byte
	if err := r.db.QueryRowContext(ctx, getMetaSQL, r.key).Scan(&metaRaw); err != nil {
		if err == sql.ErrNoRows {
			return snap, false, nil
		}
		observability.ObserveSnapshot("mysql", "get", err)
		return snap, false, err
	}
	if err := json.Unmarshal(metaRaw, &snap.Meta); err != nil {
		log.Warn().Err(err).Str("key", r.key).Msg("unreadable snapshot meta")
	}

	rows, err := r.db.QueryContext(ctx, listSnapshotSQL, r.key)
	if err != nil {
		observability.ObserveSnapshot("mysql", "get", err)
		return snap, false, err
	}
	defer rows.Close()

	snap.Records = []map[string]any{}
	for rows.Next() {
		var id string
		var raw []byte
		if err := rows.Scan(&id, &raw); err != nil {
			observability.ObserveSnapshot("mysql", "get", err)
			return domain.Snapshot{}, false, err
		}
		var rec map[string]any
		if err := json.Unmarshal(raw, &rec); err != nil {
			log.Warn().Err(err).Str("id", id).Msg("skipping unreadable snapshot record")
			continue
		}
		snap.Records = append(snap.Records, rec)
	}
	if err := rows.Err(); err != nil {
		observability.ObserveSnapshot("mysql", "get", err)
		return domain.Snapshot{}, false, err
	}
	observability.ObserveSnapshot("mysql", "get", nil)
	return snap, true, nil
}
