package app

import (
	"context"

	"visit_polzela/internal/adapters/observability"
	"visit_polzela/internal/catalog"
	"visit_polzela/internal/domain"
)

// Content is the read side of the flat-file catalog.
type Content interface {
	domain.CatalogLoader
	LoadDescription(ctx context.Context, id, lang string) (domain.Description, error)
}

// Labels resolves UI strings and drops cached localization tables.
type Labels interface {
	Label(key, lang string) string
	Invalidate(lang string)
	Clear()
}

type CatalogService struct {
	content Content
	labels  Labels
	sync    *Synchronizer
}

func NewCatalogService(c Content, l Labels, s *Synchronizer) *CatalogService {
	return &CatalogService{content: c, labels: l, sync: s}
}

// GetCatalog decides connectivity first, then either loads the source and
// mirrors it out, or serves the stored snapshot. The paths never mix.
func (s *CatalogService) GetCatalog(ctx context.Context, lang string) domain.CatalogResult {
	if s.sync.IsOnline(ctx) {
		pois := s.content.LoadCatalog(ctx, lang)
		// an empty load means the source was unreadable; keep the old snapshot
		if len(pois) > 0 {
			s.sync.SyncOut(ctx, lang, pois)
		}
		observability.ObserveCatalogLoad(string(domain.SourceFresh))
		return domain.CatalogResult{Language: lang, Source: domain.SourceFresh, Items: pois}
	}
	// cached records keep the language they were written in, whatever was asked
	pois, meta := s.sync.LoadCached(ctx)
	observability.ObserveCatalogLoad(string(domain.SourceCached))
	return domain.CatalogResult{Language: meta.Language, Source: domain.SourceCached, Items: pois}
}

// GetPOI looks id up in the current catalog. The returned result carries the
// catalog's language and source; its Items are not trimmed.
func (s *CatalogService) GetPOI(ctx context.Context, id, lang string) (domain.POI, domain.CatalogResult, error) {
	res := s.GetCatalog(ctx, lang)
	for _, p := range res.Items {
		if p.ID == id {
			return p, res, nil
		}
	}
	return domain.POI{}, res, domain.ErrNotFound
}

func (s *CatalogService) Nearby(ctx context.Context, id, lang string, limit int) ([]domain.Neighbor, error) {
	return catalog.Nearby(s.GetCatalog(ctx, lang).Items, id, limit)
}

func (s *CatalogService) Description(ctx context.Context, id, lang string) (domain.Description, error) {
	return s.content.LoadDescription(ctx, id, lang)
}

func (s *CatalogService) Label(key, lang string) domain.Label {
	return domain.Label{Key: key, Language: lang, Text: s.labels.Label(key, lang)}
}

// InvalidateTitles drops one language's table, or all of them for "".
func (s *CatalogService) InvalidateTitles(lang string) {
	if lang == "" {
		s.labels.Clear()
		return
	}
	s.labels.Invalidate(lang)
}
