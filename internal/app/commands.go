package app

import (
	"context"
	"errors"
	"fmt"

	"visit_polzela/internal/domain"
)

// ErrEmptyCatalog is returned when the source yielded no POIs at all.
var ErrEmptyCatalog = errors.New("catalog source is empty or unreadable")

// SnapshotService backs the one-shot snapshot command.
type SnapshotService struct {
	loader domain.CatalogLoader
	sync   *Synchronizer
}

func NewSnapshotService(l domain.CatalogLoader, s *Synchronizer) *SnapshotService {
	return &SnapshotService{loader: l, sync: s}
}

// Warm loads the catalog once for lang so its localization table is parsed
// and held by the title cache. Returns the number of POIs seen.
func (s *SnapshotService) Warm(ctx context.Context, lang string) (int, error) {
	pois := s.loader.LoadCatalog(ctx, lang)
	if len(pois) == 0 {
		return 0, fmt.Errorf("warm %s: %w", lang, ErrEmptyCatalog)
	}
	return len(pois), nil
}

// Publish loads lang and writes it as the stored snapshot, waiting for the
// write. An empty load never replaces what is stored.
func (s *SnapshotService) Publish(ctx context.Context, lang string) (int, error) {
	pois := s.loader.LoadCatalog(ctx, lang)
	if len(pois) == 0 {
		return 0, fmt.Errorf("publish %s: %w", lang, ErrEmptyCatalog)
	}
	if err := s.sync.Push(ctx, lang, pois); err != nil {
		return 0, fmt.Errorf("publish %s: %w", lang, err)
	}
	return len(pois), nil
}
