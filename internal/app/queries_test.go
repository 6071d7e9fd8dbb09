package app_test

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"visit_polzela/internal/app"
	"visit_polzela/internal/catalog"
	"visit_polzela/internal/domain"
)

// ---- fakes ----

type fakeLoader struct {
	pois  []domain.POI
	calls int
}

func (f *fakeLoader) LoadCatalog(ctx context.Context, lang string) []domain.POI {
	f.calls++
	out := make([]domain.POI, len(f.pois))
	copy(out, f.pois)
	return out
}

func (f *fakeLoader) LoadDescription(ctx context.Context, id, lang string) (domain.Description, error) {
	if id != "castle" {
		return domain.Description{}, domain.ErrNotFound
	}
	return domain.Description{ID: id, Language: lang, Sections: []string{"one"}}, nil
}

type fakeStore struct {
	mu     sync.Mutex
	snap   domain.Snapshot
	stored bool
	puts   int
	putErr error
	getErr error
	block  chan struct{}
}

func (s *fakeStore) Put(ctx context.Context, snap domain.Snapshot) error {
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.puts++
	if s.putErr != nil {
		return s.putErr
	}
	s.snap, s.stored = snap, true
	return nil
}

func (s *fakeStore) GetAll(ctx context.Context) (domain.Snapshot, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return domain.Snapshot{}, false, s.getErr
	}
	return s.snap, s.stored, nil
}

func (s *fakeStore) putCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.puts
}

type fakeProbe struct {
	online bool
	err    error
}

func (p *fakeProbe) Online(ctx context.Context) (bool, error) { return p.online, p.err }

type fakeLabels struct {
	invalidated []string
	cleared     int
}

func (l *fakeLabels) Label(key, lang string) string { return key + "@" + lang }
func (l *fakeLabels) Invalidate(lang string)        { l.invalidated = append(l.invalidated, lang) }
func (l *fakeLabels) Clear()                        { l.cleared++ }

func samplePOIs() []domain.POI {
	pois := []domain.POI{
		{
			ID: "castle", Name: "Castle", Description: "Old castle", ImagePath: "castle.webp",
			MapURL:             "https://www.openstreetmap.org/#map=17/46.2833/15.0722",
			NavigationURL:      "https://maps.google.com/?q=castle",
			AppleNavigationURL: "https://maps.apple.com/?q=castle",
			Order:              0,
			Gallery:            []string{"castle1.webp", "castle3.webp"},
		},
		{
			ID: "church", Name: "Church", Description: "Parish church", ImagePath: "church.webp",
			MapURL:        "https://www.openstreetmap.org/#map=17/46.2811/15.0700",
			NavigationURL: "https://maps.google.com/?q=church",
			Order:         1,
		},
	}
	for i := range pois {
		catalog.Enrich(&pois[i])
	}
	return pois
}

func newService(l *fakeLoader, st *fakeStore, p *fakeProbe) (*app.CatalogService, *app.Synchronizer) {
	syn := app.NewSynchronizer(st, p, 7, time.Second)
	return app.NewCatalogService(l, &fakeLabels{}, syn), syn
}

// ---- tests ----

func TestGetCatalog_OnlineLoadsFreshAndSyncsOut(t *testing.T) {
	loader := &fakeLoader{pois: samplePOIs()}
	store := &fakeStore{}
	svc, syn := newService(loader, store, &fakeProbe{online: true})

	res := svc.GetCatalog(context.Background(), "DE")
	syn.Wait()

	if res.Source != domain.SourceFresh || res.Language != "DE" || len(res.Items) != 2 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if store.putCount() != 1 {
		t.Fatalf("expected one snapshot write, got %d", store.putCount())
	}
	snap, ok, _ := store.GetAll(context.Background())
	if !ok || len(snap.Records) != 2 {
		t.Fatalf("snapshot not stored: %+v", snap)
	}
	if snap.Meta.Language != "DE" || snap.Meta.Version != 7 || snap.Meta.WrittenAt.IsZero() || len(snap.Meta.ID) != 26 {
		t.Fatalf("unexpected meta: %+v", snap.Meta)
	}
}

func TestGetCatalog_OfflineServesSnapshotEvenAfterSourceChanges(t *testing.T) {
	loader := &fakeLoader{pois: samplePOIs()}
	store := &fakeStore{}
	probe := &fakeProbe{online: true}
	svc, syn := newService(loader, store, probe)

	svc.GetCatalog(context.Background(), "EN")
	syn.Wait()

	// source changes after the snapshot was taken
	loader.pois[0].Name = "SHOULD NOT SEE THIS"
	probe.online = false
	before := loader.calls

	res := svc.GetCatalog(context.Background(), "EN")
	if res.Source != domain.SourceCached {
		t.Fatalf("expected cached source, got %s", res.Source)
	}
	if loader.calls != before {
		t.Fatalf("offline path must not read the source")
	}
	if len(res.Items) != 2 || res.Items[0].Name != "Castle" {
		t.Fatalf("unexpected cached items: %+v", res.Items)
	}
}

func TestGetCatalog_OfflineReportsSnapshotLanguage(t *testing.T) {
	pois := samplePOIs()
	pois[0].Name = "Schloss"
	loader := &fakeLoader{pois: pois}
	conn := &fakeProbe{online: true}
	svc, syn := newService(loader, &fakeStore{}, conn)

	svc.GetCatalog(context.Background(), "DE")
	syn.Wait()
	conn.online = false

	res := svc.GetCatalog(context.Background(), "EN")
	if res.Source != domain.SourceCached || res.Language != "DE" {
		t.Fatalf("expected cached DE catalog, got %s/%s", res.Source, res.Language)
	}
	if res.Items[0].Name != "Schloss" {
		t.Fatalf("unexpected name %q", res.Items[0].Name)
	}

	_, found, err := svc.GetPOI(context.Background(), "castle", "EN")
	if err != nil || found.Language != "DE" {
		t.Fatalf("GetPOI language: %q (%v)", found.Language, err)
	}
}

func TestGetCatalog_OfflineWithoutSnapshotHasNoLanguage(t *testing.T) {
	svc, _ := newService(&fakeLoader{}, &fakeStore{}, &fakeProbe{online: false})
	if res := svc.GetCatalog(context.Background(), "NL"); res.Language != "" {
		t.Fatalf("expected no language for an empty cache, got %q", res.Language)
	}
}

func TestGetCatalog_ProbeErrorTreatedAsOnline(t *testing.T) {
	loader := &fakeLoader{pois: samplePOIs()}
	store := &fakeStore{}
	svc, syn := newService(loader, store, &fakeProbe{err: domain.ErrProbeUnavailable})

	res := svc.GetCatalog(context.Background(), "EN")
	syn.Wait()

	if res.Source != domain.SourceFresh || loader.calls != 1 {
		t.Fatalf("expected fresh load, got %+v (calls=%d)", res, loader.calls)
	}
	if store.putCount() != 1 {
		t.Fatalf("expected sync-out after fail-open, got %d writes", store.putCount())
	}
}

func TestGetCatalog_OfflineWithoutSnapshotIsEmpty(t *testing.T) {
	svc, _ := newService(&fakeLoader{pois: samplePOIs()}, &fakeStore{}, &fakeProbe{online: false})

	res := svc.GetCatalog(context.Background(), "EN")
	if res.Source != domain.SourceCached || res.Items == nil || len(res.Items) != 0 {
		t.Fatalf("expected empty non-nil cached list, got %+v", res)
	}
}

func TestGetCatalog_OfflineStorageFailureIsEmpty(t *testing.T) {
	store := &fakeStore{getErr: errors.New("disk gone")}
	svc, _ := newService(&fakeLoader{}, store, &fakeProbe{online: false})

	res := svc.GetCatalog(context.Background(), "EN")
	if len(res.Items) != 0 {
		t.Fatalf("expected empty list on storage failure, got %d", len(res.Items))
	}
}

func TestGetCatalog_WriteFailureNotPropagated(t *testing.T) {
	store := &fakeStore{putErr: errors.New("quota exceeded")}
	svc, syn := newService(&fakeLoader{pois: samplePOIs()}, store, &fakeProbe{online: true})

	res := svc.GetCatalog(context.Background(), "EN")
	syn.Wait()
	if len(res.Items) != 2 {
		t.Fatalf("fresh list must be returned despite write failure")
	}
}

func TestGetCatalog_EmptyFreshLoadKeepsSnapshot(t *testing.T) {
	store := &fakeStore{}
	svc, syn := newService(&fakeLoader{}, store, &fakeProbe{online: true})

	res := svc.GetCatalog(context.Background(), "EN")
	syn.Wait()
	if res.Source != domain.SourceFresh || len(res.Items) != 0 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if store.putCount() != 0 {
		t.Fatalf("empty load must not overwrite the snapshot")
	}
}

func TestSyncOut_ReturnsBeforeWriteCompletes(t *testing.T) {
	store := &fakeStore{block: make(chan struct{})}
	svc, syn := newService(&fakeLoader{pois: samplePOIs()}, store, &fakeProbe{online: true})

	done := make(chan domain.CatalogResult, 1)
	go func() { done <- svc.GetCatalog(context.Background(), "EN") }()

	select {
	case res := <-done:
		if len(res.Items) != 2 {
			t.Fatalf("unexpected items: %d", len(res.Items))
		}
	case <-time.After(2 * time.Second):
		t.Fatal("GetCatalog blocked on the snapshot write")
	}
	close(store.block)
	syn.Wait()
	if store.putCount() != 1 {
		t.Fatalf("expected write to finish after release")
	}
}

func TestSyncOut_SurvivesCancelledRequest(t *testing.T) {
	store := &fakeStore{}
	syn := app.NewSynchronizer(store, &fakeProbe{online: true}, 7, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	syn.SyncOut(ctx, "EN", samplePOIs())
	cancel()
	syn.Wait()

	if _, ok, _ := store.GetAll(context.Background()); !ok {
		t.Fatal("write should not depend on the request context")
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	store := &fakeStore{}
	syn := app.NewSynchronizer(store, nil, 7, time.Second)
	in := samplePOIs()

	syn.SyncOut(context.Background(), "EN", in)
	syn.Wait()
	out, meta := syn.LoadCached(context.Background())

	if meta.Language != "EN" || meta.Version != 7 {
		t.Fatalf("unexpected meta: %+v", meta)
	}
	if len(out) != len(in) {
		t.Fatalf("len: got %d want %d", len(out), len(in))
	}
	byID := map[string]domain.POI{}
	for _, p := range out {
		byID[p.ID] = p
	}
	for _, want := range in {
		got, ok := byID[want.ID]
		if !ok {
			t.Fatalf("missing %s", want.ID)
		}
		if got.Name != want.Name || got.Description != want.Description || got.ImagePath != want.ImagePath ||
			got.MapURL != want.MapURL || got.NavigationURL != want.NavigationURL ||
			got.AppleNavigationURL != want.AppleNavigationURL || got.Order != want.Order {
			t.Fatalf("field mismatch for %s:\n got %+v\nwant %+v", want.ID, got, want)
		}
		if got.Coords == nil || got.Geohash == "" {
			t.Fatalf("derived coordinates not rebuilt for %s", want.ID)
		}
		if !slices.Equal(got.Gallery, want.Gallery) {
			t.Fatalf("gallery for %s: got %v want %v", want.ID, got.Gallery, want.Gallery)
		}
	}
}

func TestLoadCached_LegacyAndBrokenRecords(t *testing.T) {
	store := &fakeStore{stored: true, snap: domain.Snapshot{
		Meta: domain.SnapshotMeta{Language: "EN", Version: 6},
		Records: []map[string]any{
			{"name": "castle", "displayName": "Castle", "imagePath": "/images/castle.webp", "order": float64(3),
				"images": []any{"castle1.webp", float64(2), " "}},
			{"description": "no id here"},
			{"id": "church", "name": "Church"},
		},
	}}
	syn := app.NewSynchronizer(store, nil, 7, time.Second)

	out, _ := syn.LoadCached(context.Background())
	if len(out) != 2 {
		t.Fatalf("expected 2 records, got %d: %+v", len(out), out)
	}
	// sorted by order: church (index 2) before castle (order 3)
	if out[0].ID != "church" || out[0].ImagePath != "church.webp" {
		t.Fatalf("unexpected first record: %+v", out[0])
	}
	if out[1].ID != "castle" || out[1].Name != "Castle" || out[1].ImagePath != "/images/castle.webp" {
		t.Fatalf("legacy record not mapped: %+v", out[1])
	}
	if !slices.Equal(out[1].Gallery, []string{"castle1.webp"}) || out[0].Gallery != nil {
		t.Fatalf("gallery: %v / %v", out[1].Gallery, out[0].Gallery)
	}
}

func TestGetPOI_NotFound(t *testing.T) {
	svc, _ := newService(&fakeLoader{pois: samplePOIs()}, &fakeStore{}, &fakeProbe{online: false})

	_, res, err := svc.GetPOI(context.Background(), "castle", "EN")
	if !errors.Is(err, domain.ErrNotFound) || res.Source != domain.SourceCached {
		t.Fatalf("expected not found from cache, got %v (%s)", err, res.Source)
	}
}

func TestNearby_UsesCurrentCatalog(t *testing.T) {
	svc, syn := newService(&fakeLoader{pois: samplePOIs()}, &fakeStore{}, &fakeProbe{online: true})
	defer syn.Wait()

	ns, err := svc.Nearby(context.Background(), "castle", "EN", 5)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(ns) != 1 || ns[0].POI.ID != "church" || ns[0].DistanceM <= 0 {
		t.Fatalf("unexpected neighbors: %+v", ns)
	}
}

func TestLabelsAndInvalidate(t *testing.T) {
	labels := &fakeLabels{}
	syn := app.NewSynchronizer(&fakeStore{}, nil, 7, time.Second)
	svc := app.NewCatalogService(&fakeLoader{}, labels, syn)

	if l := svc.Label("takeme", "DE"); l.Text != "takeme@DE" || l.Key != "takeme" || l.Language != "DE" {
		t.Fatalf("unexpected label: %+v", l)
	}
	svc.InvalidateTitles("SL")
	svc.InvalidateTitles("")
	if len(labels.invalidated) != 1 || labels.invalidated[0] != "SL" || labels.cleared != 1 {
		t.Fatalf("unexpected invalidation: %+v", labels)
	}
	if _, err := svc.Description(context.Background(), "nope", "EN"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
