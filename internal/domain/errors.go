package domain

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrSnapshotEmpty    = errors.New("snapshot: empty")
	ErrProbeUnavailable = errors.New("connectivity: signal unavailable")
)
