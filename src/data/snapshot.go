package data

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/stake-plus/castlotto/src/lottery"
)

// DefaultSnapshotPath is where the accepted players are written.
const DefaultSnapshotPath = "players.json"

// SnapshotStore reads and writes the players snapshot consumed by the
// winner checker. Writes replace the whole file; the last writer wins.
type SnapshotStore struct {
	path string
}

// NewSnapshotStore creates a store for path.
func NewSnapshotStore(path string) *SnapshotStore {
	if path == "" {
		path = DefaultSnapshotPath
	}
	return &SnapshotStore{path: path}
}

// Path returns the snapshot file location.
func (s *SnapshotStore) Path() string {
	return s.path
}

// Write stores the accepted claims ordered by number.
func (s *SnapshotStore) Write(players []lottery.Claim) error {
	ordered := make([]lottery.Claim, len(players))
	copy(ordered, players)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Number < ordered[j].Number })

	body, err := json.MarshalIndent(ordered, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".players-*.json")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(body); err != nil {
		tmp.Close()
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close snapshot: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}

// Read loads the snapshot. Every entry must carry a valid two-digit number.
func (s *SnapshotStore) Read() ([]lottery.Claim, error) {
	body, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	var players []lottery.Claim
	if err := json.Unmarshal(body, &players); err != nil {
		return nil, fmt.Errorf("parse snapshot %s: %w", s.path, err)
	}
	for i, p := range players {
		if n, ok := lottery.ExtractNumber(p.Number); !ok || n != p.Number {
			return nil, fmt.Errorf("snapshot entry %d: invalid number %q", i, p.Number)
		}
	}
	return players, nil
}
