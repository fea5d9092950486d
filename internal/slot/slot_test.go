package slot

import (
	"strings"
	"testing"
)

func TestDiff(t *testing.T) {
	a := NewSet(
		Slot{DateISO: "2026-09-01", FacilityID: 1},
		Slot{DateISO: "2026-09-02", FacilityID: 1},
		Slot{DateISO: "2026-09-02", FacilityID: 2},
	)
	b := NewSet(
		Slot{DateISO: "2026-09-02", FacilityID: 1},
		Slot{DateISO: "2026-10-01", FacilityID: 1},
	)

	diff := a.Diff(b)
	if len(diff) != 2 {
		t.Fatalf("expected 2 new slots, got %d", len(diff))
	}
	if !diff.Contains(Slot{DateISO: "2026-09-01", FacilityID: 1}) {
		t.Fatalf("missing 2026-09-01/1 in diff")
	}
	if !diff.Contains(Slot{DateISO: "2026-09-02", FacilityID: 2}) {
		t.Fatalf("missing 2026-09-02/2 in diff")
	}
	if diff.Contains(Slot{DateISO: "2026-09-02", FacilityID: 1}) {
		t.Fatalf("slot present in both sets leaked into diff")
	}
}

func TestDiffIdenticalSetsIsEmpty(t *testing.T) {
	a := NewSet(Slot{DateISO: "2026-09-01", FacilityID: 5})
	b := NewSet(Slot{DateISO: "2026-09-01", FacilityID: 5})
	if diff := a.Diff(b); len(diff) != 0 {
		t.Fatalf("expected empty diff, got %v", diff.Sorted())
	}
}

func TestSortedOrdersByDateThenFacility(t *testing.T) {
	set := NewSet(
		Slot{DateISO: "2026-09-02", FacilityID: 2},
		Slot{DateISO: "2026-09-01", FacilityID: 9},
		Slot{DateISO: "2026-09-02", FacilityID: 1},
	)
	got := set.Sorted()
	want := []Slot{
		{DateISO: "2026-09-01", FacilityID: 9},
		{DateISO: "2026-09-02", FacilityID: 1},
		{DateISO: "2026-09-02", FacilityID: 2},
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("position %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestFormat(t *testing.T) {
	set := NewSet(
		Slot{DateISO: "2026-09-02", FacilityID: 1},
		Slot{DateISO: "2026-09-01", FacilityID: 1},
	)
	out := set.Format()
	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), out)
	}
	if lines[0] != "• 2026-09-01 (facility_id=1)" {
		t.Fatalf("unexpected first line: %q", lines[0])
	}
	if lines[1] != "• 2026-09-02 (facility_id=1)" {
		t.Fatalf("unexpected second line: %q", lines[1])
	}
}
