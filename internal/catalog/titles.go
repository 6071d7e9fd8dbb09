package catalog

import (
	"io/fs"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"visit_polzela/internal/adapters/observability"
)

const (
	// TitlesFile is the localization table inside the data filesystem.
	TitlesFile = "poititles.txt"
	// TakeMeKey is the row holding the navigation button label.
	TakeMeKey = "takeme"
)

var defaultLabels = map[string]string{
	TakeMeKey: "Take me there!",
}

// TitleTable maps POI identifier to its title in one language.
type TitleTable map[string]string

// TitleCache parses the localization file once per language and keeps the
// result until Invalidate or Clear is called. Safe for concurrent use.
type TitleCache struct {
	fsys fs.FS
	path string

	mu     sync.RWMutex
	tables map[string]TitleTable
	group  singleflight.Group
}

func NewTitleCache(fsys fs.FS) *TitleCache {
	return &TitleCache{fsys: fsys, path: TitlesFile, tables: map[string]TitleTable{}}
}

// Table returns the id -> title mapping for lang, parsing the file on a miss.
// An unreadable file yields an empty table that is not cached.
func (c *TitleCache) Table(lang string) TitleTable {
	lang = NormalizeLang(lang)
	if lang == "" {
		lang = DefaultLang
	}

	c.mu.RLock()
	t, ok := c.tables[lang]
	c.mu.RUnlock()
	if ok {
		observability.ObserveCache("titles", "hit")
		return t
	}
	observability.ObserveCache("titles", "miss")

	v, _, _ := c.group.Do(lang, func() (any, error) {
		t, err := c.parse(lang)
		if err != nil {
			log.Error().Err(err).Str("file", c.path).Str("lang", lang).Msg("read localization table failed")
			return TitleTable{}, nil
		}
		c.mu.Lock()
		c.tables[lang] = t
		c.mu.Unlock()
		return t, nil
	})
	return v.(TitleTable)
}

// ResolveTitle returns the title of id in lang, falling back to English.
func (c *TitleCache) ResolveTitle(id, lang string) (string, bool) {
	t, ok := c.Table(lang)[id]
	return t, ok
}

// Label returns a localized UI string keyed like a POI row (e.g. "takeme").
// Misses fall back to English, then to a built-in default, then to the key.
func (c *TitleCache) Label(key, lang string) string {
	if t, ok := c.ResolveTitle(key, lang); ok {
		return t
	}
	if d, ok := defaultLabels[key]; ok {
		return d
	}
	return key
}

func (c *TitleCache) Invalidate(lang string) {
	lang = NormalizeLang(lang)
	c.mu.Lock()
	delete(c.tables, lang)
	c.mu.Unlock()
	observability.ObserveCache("titles", "del")
}

func (c *TitleCache) Clear() {
	c.mu.Lock()
	c.tables = map[string]TitleTable{}
	c.mu.Unlock()
	observability.ObserveCache("titles", "clear")
}

// Cached lists languages currently held in memory.
func (c *TitleCache) Cached() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.tables))
	for l := range c.tables {
		out = append(out, l)
	}
	return out
}

func (c *TitleCache) parse(lang string) (TitleTable, error) {
	f, err := c.fsys.Open(c.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	out := TitleTable{}
	err = eachLine(f, func(_ int, line string) bool {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			return true
		}
		id, titles := parseTitleRow(line)
		if id == "" {
			return true
		}
		if t, ok := titles[lang]; ok {
			out[id] = t
		} else if t, ok := titles[DefaultLang]; ok {
			out[id] = t
		}
		return true
	}, func(no int) {
		log.Warn().Str("file", c.path).Int("line", no).Msg("skipping overlong localization row")
	})
	if err != nil {
		// keep what was read before the failure
		log.Warn().Err(err).Str("file", c.path).Msg("localization table read interrupted")
	}
	return out, nil
}
