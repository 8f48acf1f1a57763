// Package persistence stores engine snapshots in DuckDB so the engine can
// resume across restarts.
package persistence

import "github.com/aion-lab/aion-trading/internal/types"

// SnapshotStore loads and saves engine snapshots. Load reports whether a
// snapshot existed; a fresh store yields (zero, false, nil).
type SnapshotStore interface {
	Load() (types.EngineSnapshot, bool, error)
	Save(snapshot types.EngineSnapshot) error
	Close() error
}
