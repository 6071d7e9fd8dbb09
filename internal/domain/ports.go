package domain

import "context"

// SnapshotStore persists the offline catalog copy. Put replaces the whole
// record set atomically.
type SnapshotStore interface {
	Put(ctx context.Context, s Snapshot) error
	// GetAll returns false when nothing has been stored yet.
	GetAll(ctx context.Context) (Snapshot, bool, error)
}

// ConnectivityProbe reports whether the network is reachable. An error means
// the signal itself could not be obtained.
type ConnectivityProbe interface {
	Online(ctx context.Context) (bool, error)
}

type CatalogLoader interface {
	LoadCatalog(ctx context.Context, lang string) []POI
}
