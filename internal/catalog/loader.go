package catalog

import (
	"context"
	"errors"
	"io/fs"
	"path"
	"strconv"
	"strings"

	geohash "github.com/TomiHiltunen/geohash-golang"
	"github.com/rs/zerolog/log"

	"visit_polzela/internal/adapters/observability"
	"visit_polzela/internal/domain"
)

const (
	// CatalogFile holds one POI per line inside the data filesystem.
	CatalogFile = "pois.txt"
	imagesDir   = "images"
	galleryMax  = 3
)

// Loader turns the flat catalog files into POI records.
type Loader struct {
	fsys   fs.FS
	titles *TitleCache
}

func NewLoader(fsys fs.FS, titles *TitleCache) *Loader {
	return &Loader{fsys: fsys, titles: titles}
}

// LoadCatalog returns the POIs in file order with titles localized for lang.
// It never fails: bad lines are logged and skipped, an unreadable source
// yields an empty slice.
func (l *Loader) LoadCatalog(ctx context.Context, lang string) []domain.POI {
	lang = NormalizeLang(lang)
	if lang == "" {
		lang = DefaultLang
	}
	out := []domain.POI{}

	f, err := l.fsys.Open(CatalogFile)
	if err != nil {
		log.Error().Err(err).Str("file", CatalogFile).Msg("open catalog failed")
		return out
	}
	defer f.Close()

	titles := l.titles.Table(lang)
	seen := make(map[string]int)

	err = eachLine(f, func(lineNo int, line string) bool {
		if err := ctx.Err(); err != nil {
			log.Warn().Err(err).Int("line", lineNo).Msg("catalog load interrupted")
			return false
		}
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			return true
		}
		rec, err := ParseRecord(line)
		if err != nil {
			reason := "malformed"
			if errors.Is(err, ErrTooFewFields) {
				reason = "too_few_fields"
			}
			observability.ObserveCatalogLine(reason)
			log.Warn().Err(err).Int("line", lineNo).Msg("skipping catalog line")
			return true
		}
		if prev, dup := seen[rec.ID]; dup {
			observability.ObserveCatalogLine("duplicate")
			log.Warn().Str("id", rec.ID).Int("line", lineNo).Int("first_line", prev).Msg("duplicate POI identifier")
		} else {
			seen[rec.ID] = lineNo
		}
		observability.ObserveCatalogLine("ok")

		p := l.toPOI(rec, len(out))
		if t, ok := titles[rec.ID]; ok {
			p.Name = t
		}
		out = append(out, p)
		return true
	}, func(lineNo int) {
		observability.ObserveCatalogLine("too_long")
		log.Warn().Int("line", lineNo).Int("max_bytes", maxLineBytes).Msg("skipping overlong catalog line")
	})
	if err != nil {
		log.Error().Err(err).Int("pois", len(out)).Msg("catalog read failed; returning partial list")
	}
	return out
}

// Find returns the POI with id from a fresh load.
func (l *Loader) Find(ctx context.Context, id, lang string) (domain.POI, error) {
	for _, p := range l.LoadCatalog(ctx, lang) {
		if p.ID == id {
			return p, nil
		}
	}
	return domain.POI{}, domain.ErrNotFound
}

func (l *Loader) toPOI(rec Record, order int) domain.POI {
	p := domain.POI{
		ID:                 rec.ID,
		Name:               rec.DisplayName,
		Description:        rec.ShortDescription,
		ImagePath:          ImagePath(rec.ID),
		MapURL:             rec.MapURL,
		NavigationURL:      rec.NavigationURL,
		AppleNavigationURL: rec.AppleNavigationURL,
		Order:              order,
	}
	Enrich(&p)
	p.Gallery = l.gallery(rec.ID)
	return p
}

// Enrich fills the fields derived from MapURL.
func Enrich(p *domain.POI) {
	if p.MapURL == "" {
		return
	}
	c, err := ParseMapURL(p.MapURL)
	if err != nil {
		log.Debug().Err(err).Str("id", p.ID).Str("map_url", p.MapURL).Msg("no coordinates in map URL")
		return
	}
	p.Coords = &c
	p.Geohash = geohash.Encode(c.Lat, c.Lon)
}

// gallery lists the numbered extra images that exist next to the main one.
func (l *Loader) gallery(id string) []string {
	var out []string
	for i := 1; i <= galleryMax; i++ {
		name := id + strconv.Itoa(i) + ImageSuffix
		p := path.Join(imagesDir, name)
		if !fs.ValidPath(p) {
			return nil
		}
		if _, err := fs.Stat(l.fsys, p); err == nil {
			out = append(out, name)
		}
	}
	return out
}
