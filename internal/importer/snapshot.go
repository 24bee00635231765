package importer

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/chumjikim/retirement-risk-prediction/internal/domain"
)

// SnapshotFileName is the warm-start cache of the last successful parse,
// kept next to the session database in the data directory.
const SnapshotFileName = "session_snapshot.msgpack"

// snapshot holds the typed row sets of one successful parse so a restart
// can skip the CSV work when the sources have not changed.
type snapshot struct {
	SavedAt     time.Time                 `msgpack:"saved_at"`
	Predictions []domain.EntityPrediction `msgpack:"predictions"`
	Indicators  []domain.YearlyIndicator  `msgpack:"indicators"`
	Rejected    int                       `msgpack:"rejected"`
}

// writeSnapshot persists the parsed rows atomically (temp file + rename).
func writeSnapshot(path string, snap snapshot) error {
	data, err := msgpack.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to move snapshot into place: %w", err)
	}

	return nil
}

// readSnapshot loads a previously written snapshot.
func readSnapshot(path string) (snapshot, error) {
	var snap snapshot

	data, err := os.ReadFile(path)
	if err != nil {
		return snap, fmt.Errorf("failed to read snapshot: %w", err)
	}
	if err := msgpack.Unmarshal(data, &snap); err != nil {
		return snap, fmt.Errorf("failed to decode snapshot: %w", err)
	}

	return snap, nil
}

// snapshotIsFresh reports whether the snapshot exists and is newer than
// every local source file. Remote (object store) sources are never
// considered covered by a snapshot - they are fetched and parsed on every
// load.
func snapshotIsFresh(path string, sourcePaths ...string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}

	for _, src := range sourcePaths {
		srcInfo, err := os.Stat(src)
		if err != nil {
			return false
		}
		if srcInfo.ModTime().After(info.ModTime()) {
			return false
		}
	}

	return true
}

// snapshotPath returns the snapshot location inside the data directory.
func snapshotPath(dataDir string) string {
	return filepath.Join(dataDir, SnapshotFileName)
}
