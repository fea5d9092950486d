// Package state persists the set of previously seen appointment slots
// between polling cycles.
//
// The on-disk format is a single JSON object {"slots": [...]}, sorted by
// (date, facility id) so the file is diffable and stable across saves.
// A missing or corrupt file is treated as an empty set: stale state must
// never brick the watcher.
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"visawatch/internal/slot"
)

type fileFormat struct {
	Slots []slot.Slot `json:"slots"`
}

// Load reads the persisted slot set from path.
//
// Absent or unparsable files yield an empty set, never an error. Individual
// malformed entries are skipped for the same reason.
func Load(path string) slot.Set {
	data, err := os.ReadFile(path)
	if err != nil {
		return slot.NewSet()
	}

	var raw struct {
		Slots []json.RawMessage `json:"slots"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return slot.NewSet()
	}

	set := slot.NewSet()
	for _, item := range raw.Slots {
		var s slot.Slot
		if err := json.Unmarshal(item, &s); err != nil {
			continue
		}
		if s.DateISO == "" {
			continue
		}
		set.Add(s)
	}
	return set
}

// Save writes the slot set to path atomically: the canonical sorted form is
// written to a temp file in the target directory, then renamed into place.
// A concurrent reader never sees a partial file; a crash mid-write leaves
// the previous version intact.
func Save(path string, set slot.Set) error {
	data, err := json.MarshalIndent(fileFormat{Slots: set.Sorted()}, "", "  ")
	if err != nil {
		return fmt.Errorf("state: marshal: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("state: create dir %q: %w", dir, err)
		}
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("state: create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("state: write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("state: close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("state: rename into place: %w", err)
	}
	return nil
}
