package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/golang/geo/s2"

	"visit_polzela/internal/domain"
)

// earthRadiusM is the mean Earth radius used to turn s2 angles into metres.
const earthRadiusM = 6371008.8

var ErrBadMapURL = errors.New("catalog: map URL has no coordinates")

// ParseMapURL reads latitude and longitude from the last two path segments,
// e.g. https://www.openstreetmap.org/#map=17/46.2803/15.0726.
func ParseMapURL(raw string) (domain.Coords, error) {
	raw = strings.TrimSpace(raw)
	if i := strings.IndexAny(raw, "?&"); i >= 0 && i > strings.LastIndexByte(raw, '/') {
		raw = raw[:i]
	}
	parts := strings.Split(strings.TrimRight(raw, "/"), "/")
	if len(parts) < 3 {
		return domain.Coords{}, fmt.Errorf("%w: %q", ErrBadMapURL, raw)
	}
	lat, err := strconv.ParseFloat(parts[len(parts)-2], 64)
	if err != nil {
		return domain.Coords{}, fmt.Errorf("%w: %v", ErrBadMapURL, err)
	}
	lon, err := strconv.ParseFloat(parts[len(parts)-1], 64)
	if err != nil {
		return domain.Coords{}, fmt.Errorf("%w: %v", ErrBadMapURL, err)
	}
	if !s2.LatLngFromDegrees(lat, lon).IsValid() {
		return domain.Coords{}, fmt.Errorf("%w: out of range %f,%f", ErrBadMapURL, lat, lon)
	}
	return domain.Coords{Lat: lat, Lon: lon}, nil
}

// DistanceM is the great-circle distance between a and b in metres.
func DistanceM(a, b domain.Coords) float64 {
	return s2.LatLngFromDegrees(a.Lat, a.Lon).Distance(s2.LatLngFromDegrees(b.Lat, b.Lon)).Radians() * earthRadiusM
}

// Nearby ranks the other located POIs by distance from id, closest first.
func Nearby(pois []domain.POI, id string, limit int) ([]domain.Neighbor, error) {
	var ref *domain.POI
	for i := range pois {
		if pois[i].ID == id {
			ref = &pois[i]
			break
		}
	}
	if ref == nil {
		return nil, domain.ErrNotFound
	}
	if ref.Coords == nil {
		return nil, fmt.Errorf("%w: %s", ErrBadMapURL, id)
	}
	out := make([]domain.Neighbor, 0, len(pois))
	for _, p := range pois {
		if p.ID == id || p.Coords == nil {
			continue
		}
		out = append(out, domain.Neighbor{POI: p, DistanceM: DistanceM(*ref.Coords, *p.Coords)})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].DistanceM == out[j].DistanceM {
			return out[i].POI.Order < out[j].POI.Order
		}
		return out[i].DistanceM < out[j].DistanceM
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
