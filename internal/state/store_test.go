package state

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"visawatch/internal/slot"
)

func TestRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	sets := []slot.Set{
		slot.NewSet(),
		slot.NewSet(slot.Slot{DateISO: "2026-09-01", FacilityID: 1}),
		slot.NewSet(
			slot.Slot{DateISO: "2026-09-01", FacilityID: 1},
			slot.Slot{DateISO: "2026-09-01", FacilityID: 2},
			slot.Slot{DateISO: "2026-12-31", FacilityID: 1},
		),
	}
	for _, want := range sets {
		if err := Save(path, want); err != nil {
			t.Fatalf("Save: %v", err)
		}
		got := Load(path)
		if len(got) != len(want) {
			t.Fatalf("round trip size mismatch: got %d, want %d", len(got), len(want))
		}
		for s := range want {
			if !got.Contains(s) {
				t.Fatalf("round trip lost %v", s)
			}
		}
	}
}

func TestLoadMissingFileReturnsEmptySet(t *testing.T) {
	got := Load(filepath.Join(t.TempDir(), "absent.json"))
	if len(got) != 0 {
		t.Fatalf("expected empty set, got %d entries", len(got))
	}
}

func TestLoadCorruptFileReturnsEmptySet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if got := Load(path); len(got) != 0 {
		t.Fatalf("expected empty set from corrupt file, got %d entries", len(got))
	}
}

func TestLoadSkipsMalformedEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	raw := `{"slots":[{"date_iso":"2026-09-01","facility_id":1},{"date_iso":123},"bogus"]}`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	got := Load(path)
	if len(got) != 1 {
		t.Fatalf("expected 1 valid entry, got %d", len(got))
	}
	if !got.Contains(slot.Slot{DateISO: "2026-09-01", FacilityID: 1}) {
		t.Fatalf("valid entry missing")
	}
}

func TestSaveCreatesDirectoryAndWritesSorted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "state.json")
	set := slot.NewSet(
		slot.Slot{DateISO: "2026-10-01", FacilityID: 1},
		slot.Slot{DateISO: "2026-09-01", FacilityID: 2},
		slot.Slot{DateISO: "2026-09-01", FacilityID: 1},
	)
	if err := Save(path, set); err != nil {
		t.Fatalf("Save: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	var f fileFormat
	if err := json.Unmarshal(data, &f); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(f.Slots) != 3 {
		t.Fatalf("expected 3 slots, got %d", len(f.Slots))
	}
	for i := 1; i < len(f.Slots); i++ {
		if !f.Slots[i-1].Less(f.Slots[i]) {
			t.Fatalf("slots not in canonical order: %v before %v", f.Slots[i-1], f.Slots[i])
		}
	}
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")
	if err := Save(path, slot.NewSet(slot.Slot{DateISO: "2026-09-01", FacilityID: 1})); err != nil {
		t.Fatalf("Save: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "state.json" {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Fatalf("unexpected directory contents: %v", names)
	}
}
