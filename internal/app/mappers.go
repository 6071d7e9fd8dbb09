package app

import (
	"strconv"
	"strings"

	"visit_polzela/internal/catalog"
	"visit_polzela/internal/domain"
)

/********** alias registry (single source of truth) **********/

// Older snapshot layouts used name as the key and displayName as the title,
// and imagePath instead of mainImagePath. The first alias present wins.
var storedAliases = map[string][]string{
	"id":                 {"id", "name"},
	"name":               {"displayName", "name"},
	"description":        {"description", "shortDescription"},
	"mainImagePath":      {"mainImagePath", "imagePath"},
	"mapUrl":             {"mapUrl", "mapURL"},
	"navigationUrl":      {"navigationUrl", "navigationURL"},
	"appleNavigationUrl": {"appleNavigationUrl", "appleNavigationURL"},
	"order":              {"order", "position"},
	"gallery":            {"gallery", "images"},
}

/********** tiny helpers **********/

// lookupStr returns the string at key or "".
func lookupStr(m map[string]any, key string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}

// firstNonEmptyAlias: first non-empty string for a named alias set.
func firstNonEmptyAlias(m map[string]any, aliases map[string][]string, key string) string {
	for _, k := range aliases[key] {
		if s := strings.TrimSpace(lookupStr(m, k)); s != "" {
			return s
		}
	}
	return ""
}

// firstIntFlexible: int from several keys (float64/int/int64/string).
func firstIntFlexible(m map[string]any, keys ...string) (int, bool) {
	for _, k := range keys {
		switch v := m[k].(type) {
		case float64:
			return int(v), true
		case int:
			return v, true
		case int64:
			return int(v), true
		case string:
			if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
				return n, true
			}
		}
	}
	return 0, false
}

// stringsFlexible: string list from several keys. Decoded JSON arrays arrive
// as []any; non-string and blank entries are dropped.
func stringsFlexible(m map[string]any, keys ...string) []string {
	for _, k := range keys {
		var out []string
		switch v := m[k].(type) {
		case []string:
			for _, s := range v {
				if s = strings.TrimSpace(s); s != "" {
					out = append(out, s)
				}
			}
		case []any:
			for _, e := range v {
				if s, ok := e.(string); ok && strings.TrimSpace(s) != "" {
					out = append(out, strings.TrimSpace(s))
				}
			}
		default:
			continue
		}
		return out
	}
	return nil
}

/********** POI <-> stored record **********/

func storedFromPOI(p domain.POI) domain.StoredPOI {
	return domain.StoredPOI{
		ID:                 p.ID,
		Name:               p.Name,
		Description:        p.Description,
		MainImagePath:      p.ImagePath,
		MapURL:             p.MapURL,
		NavigationURL:      p.NavigationURL,
		AppleNavigationURL: p.AppleNavigationURL,
		Order:              p.Order,
		Gallery:            p.Gallery,
	}
}

func recordFromStored(s domain.StoredPOI) map[string]any {
	rec := map[string]any{
		"id":                 s.ID,
		"name":               s.Name,
		"description":        s.Description,
		"mainImagePath":      s.MainImagePath,
		"mapUrl":             s.MapURL,
		"navigationUrl":      s.NavigationURL,
		"appleNavigationUrl": s.AppleNavigationURL,
		"order":              s.Order,
	}
	if len(s.Gallery) > 0 {
		rec["gallery"] = s.Gallery
	}
	return rec
}

func recordsFromPOIs(pois []domain.POI) []map[string]any {
	out := make([]map[string]any, 0, len(pois))
	for _, p := range pois {
		out = append(out, recordFromStored(storedFromPOI(p)))
	}
	return out
}

// poiFromRecord rebuilds a POI field by field. Records without an id are
// rejected; every other missing field is left empty.
func poiFromRecord(m map[string]any, fallbackOrder int) (domain.POI, bool) {
	id := firstNonEmptyAlias(m, storedAliases, "id")
	if id == "" {
		return domain.POI{}, false
	}
	p := domain.POI{
		ID:                 id,
		Name:               firstNonEmptyAlias(m, storedAliases, "name"),
		Description:        firstNonEmptyAlias(m, storedAliases, "description"),
		ImagePath:          firstNonEmptyAlias(m, storedAliases, "mainImagePath"),
		MapURL:             firstNonEmptyAlias(m, storedAliases, "mapUrl"),
		NavigationURL:      firstNonEmptyAlias(m, storedAliases, "navigationUrl"),
		AppleNavigationURL: firstNonEmptyAlias(m, storedAliases, "appleNavigationUrl"),
		Order:              fallbackOrder,
		Gallery:            stringsFlexible(m, storedAliases["gallery"]...),
	}
	if n, ok := firstIntFlexible(m, storedAliases["order"]...); ok {
		p.Order = n
	}
	if p.ImagePath == "" {
		p.ImagePath = catalog.ImagePath(id)
	}
	catalog.Enrich(&p)
	return p, true
}
