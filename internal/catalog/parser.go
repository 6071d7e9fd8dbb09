package catalog

import (
	"errors"
	"fmt"
	"strings"
)

const (
	minFields = 6
	// ImageSuffix is appended to a POI identifier to form its image path.
	ImageSuffix = ".webp"
)

var (
	ErrTooFewFields = errors.New("catalog: too few fields")
	ErrEmptyID      = errors.New("catalog: empty identifier")
)

// Record is one raw line of pois.txt:
// id;displayName;shortDescription;mapUrl;navigationUrl;appleNavigationUrl
type Record struct {
	ID                 string
	DisplayName        string
	ShortDescription   string
	MapURL             string
	NavigationURL      string
	AppleNavigationURL string
}

func ParseRecord(line string) (Record, error) {
	parts := strings.Split(line, ";")
	if len(parts) < minFields {
		return Record{}, fmt.Errorf("%w: got %d, want %d", ErrTooFewFields, len(parts), minFields)
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if parts[0] == "" {
		return Record{}, ErrEmptyID
	}
	return Record{
		ID:                 parts[0],
		DisplayName:        parts[1],
		ShortDescription:   parts[2],
		MapURL:             parts[3],
		NavigationURL:      parts[4],
		AppleNavigationURL: parts[5],
	}, nil
}

// ImagePath derives the main image path from a POI identifier.
func ImagePath(id string) string { return id + ImageSuffix }

// parseTitleRow splits "id;EN:Castle;DE:Schloss" into the id and a
// code -> title map. Codes are upper-cased; the first title per code wins.
func parseTitleRow(line string) (string, map[string]string) {
	parts := strings.Split(line, ";")
	id := strings.TrimSpace(parts[0])
	if id == "" {
		return "", nil
	}
	titles := make(map[string]string, len(parts)-1)
	for _, p := range parts[1:] {
		p = strings.TrimSpace(p)
		i := strings.IndexByte(p, ':')
		if i < 2 || i > 3 {
			continue
		}
		code := strings.ToUpper(p[:i])
		if _, ok := titles[code]; ok {
			continue
		}
		if t := strings.TrimSpace(p[i+1:]); t != "" {
			titles[code] = t
		}
	}
	return id, titles
}
