package app

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog/log"

	"visit_polzela/internal/adapters/observability"
	"visit_polzela/internal/domain"
)

const defaultSyncTimeout = 10 * time.Second

// Synchronizer mirrors the last catalog loaded while online into a snapshot
// store and reads it back when offline.
type Synchronizer struct {
	store   domain.SnapshotStore
	probe   domain.ConnectivityProbe
	version int
	timeout time.Duration
	now     func() time.Time

	wg sync.WaitGroup
}

func NewSynchronizer(store domain.SnapshotStore, probe domain.ConnectivityProbe, version int, timeout time.Duration) *Synchronizer {
	if timeout <= 0 {
		timeout = defaultSyncTimeout
	}
	return &Synchronizer{store: store, probe: probe, version: version, timeout: timeout, now: time.Now}
}

// IsOnline reports the probe's answer. A probe that cannot answer counts as
// online so the fresh source is tried.
func (s *Synchronizer) IsOnline(ctx context.Context) bool {
	if s.probe == nil {
		observability.ObserveConnectivity("online")
		return true
	}
	ok, err := s.probe.Online(ctx)
	switch {
	case err != nil:
		log.Warn().Err(err).Msg("connectivity unknown; assuming online")
		observability.ObserveConnectivity("unknown")
		return true
	case ok:
		observability.ObserveConnectivity("online")
	default:
		observability.ObserveConnectivity("offline")
	}
	return ok
}

// SyncOut schedules a background write of pois as the new snapshot and
// returns immediately. Failures are logged, never returned.
func (s *Synchronizer) SyncOut(ctx context.Context, lang string, pois []domain.POI) {
	if s.store == nil {
		return
	}
	snap := s.snapshot(lang, pois)
	bg := context.WithoutCancel(ctx)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(bg, s.timeout)
		defer cancel()
		if err := s.store.Put(ctx, snap); err != nil {
			log.Error().Err(err).Str("snapshot", snap.Meta.ID).Str("lang", lang).Int("records", len(snap.Records)).Msg("snapshot write failed")
			return
		}
		log.Debug().Str("snapshot", snap.Meta.ID).Str("lang", lang).Int("records", len(snap.Records)).Msg("snapshot written")
	}()
}

// Push writes pois synchronously.
func (s *Synchronizer) Push(ctx context.Context, lang string, pois []domain.POI) error {
	if s.store == nil {
		return errors.New("no snapshot store configured")
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.store.Put(ctx, s.snapshot(lang, pois))
}

// LoadCached rebuilds the POIs of the stored snapshot and returns its meta,
// whose Language is the language the records were written in. Missing,
// unreadable or empty snapshots all yield an empty slice and zero meta.
func (s *Synchronizer) LoadCached(ctx context.Context) ([]domain.POI, domain.SnapshotMeta) {
	out := []domain.POI{}
	if s.store == nil {
		return out, domain.SnapshotMeta{}
	}
	snap, ok, err := s.store.GetAll(ctx)
	if err != nil {
		log.Error().Err(err).Msg("snapshot read failed")
		return out, domain.SnapshotMeta{}
	}
	if !ok {
		log.Info().Err(domain.ErrSnapshotEmpty).Msg("no snapshot stored")
		return out, domain.SnapshotMeta{}
	}
	if snap.Meta.Version != 0 && snap.Meta.Version != s.version {
		log.Warn().Str("snapshot", snap.Meta.ID).Int("stored", snap.Meta.Version).Int("current", s.version).Msg("snapshot from another data version")
	}
	for i, rec := range snap.Records {
		p, ok := poiFromRecord(rec, i)
		if !ok {
			log.Warn().Int("index", i).Msg("skipping snapshot record without id")
			continue
		}
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, snap.Meta
}

// Wait blocks until every scheduled write has finished.
func (s *Synchronizer) Wait() { s.wg.Wait() }

func (s *Synchronizer) snapshot(lang string, pois []domain.POI) domain.Snapshot {
	return domain.Snapshot{
		Meta:    domain.SnapshotMeta{ID: ulid.Make().String(), Language: lang, Version: s.version, WrittenAt: s.now().UTC()},
		Records: recordsFromPOIs(pois),
	}
}
