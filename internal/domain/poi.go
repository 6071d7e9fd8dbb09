package domain

import "time"

// POI is one catalog entry as served to the UI.
type POI struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	Description        string   `json:"description"`
	ImagePath          string   `json:"imagePath"`
	MapURL             string   `json:"mapUrl"`
	NavigationURL      string   `json:"navigationUrl"`
	AppleNavigationURL string   `json:"appleNavigationUrl,omitempty"`
	Order              int      `json:"order"`
	Coords             *Coords  `json:"coords,omitempty"`
	Geohash            string   `json:"geohash,omitempty"`
	Gallery            []string `json:"gallery,omitempty"`
}

type Coords struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// StoredPOI is the record shape persisted in a snapshot store, keyed by ID.
type StoredPOI struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	Description        string   `json:"description"`
	MainImagePath      string   `json:"mainImagePath"`
	MapURL             string   `json:"mapUrl"`
	NavigationURL      string   `json:"navigationUrl"`
	AppleNavigationURL string   `json:"appleNavigationUrl"`
	Order              int      `json:"order"`
	Gallery            []string `json:"gallery,omitempty"`
}

type SnapshotMeta struct {
	ID        string    `json:"id"`
	Language  string    `json:"language"`
	Version   int       `json:"version"`
	WrittenAt time.Time `json:"writtenAt"`
}

// Snapshot is a whole catalog copy. Records holds the raw JSON object of each
// stored record so readers can tolerate older field layouts.
type Snapshot struct {
	Meta    SnapshotMeta
	Records []map[string]any
}

// Description is a long POI text split into display sections.
type Description struct {
	ID       string   `json:"id"`
	Language string   `json:"language"`
	Sections []string `json:"sections"`
}

// Label is a localized UI string from the titles file (e.g. "takeme").
type Label struct {
	Key      string `json:"key"`
	Language string `json:"language"`
	Text     string `json:"text"`
}

// Neighbor is a POI with its great-circle distance from a reference POI.
type Neighbor struct {
	POI       POI     `json:"poi"`
	DistanceM float64 `json:"distanceMeters"`
}

type CatalogSource string

const (
	SourceFresh  CatalogSource = "fresh"
	SourceCached CatalogSource = "cached"
)

// CatalogResult is what one catalog request yields.
type CatalogResult struct {
	Language string        `json:"language"`
	Source   CatalogSource `json:"source"`
	Items    []POI         `json:"items"`
}
