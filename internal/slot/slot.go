// Package slot holds the appointment slot model shared by the scraper,
// the state store and the watcher core.
package slot

import (
	"fmt"
	"sort"
	"strings"
)

// Slot is a single available appointment date at a facility.
//
// The value is immutable and comparable; ordering is by (DateISO, FacilityID).
// DateISO is a calendar date in "YYYY-MM-DD" form, which sorts correctly
// as a plain string.
type Slot struct {
	DateISO    string `json:"date_iso"`
	FacilityID int    `json:"facility_id"`
}

// Less reports whether s orders before other.
func (s Slot) Less(other Slot) bool {
	if s.DateISO != other.DateISO {
		return s.DateISO < other.DateISO
	}
	return s.FacilityID < other.FacilityID
}

func (s Slot) String() string {
	return fmt.Sprintf("%s (facility_id=%d)", s.DateISO, s.FacilityID)
}

// Set is a set of slots keyed by value.
type Set map[Slot]struct{}

func NewSet(slots ...Slot) Set {
	set := make(Set, len(slots))
	for _, s := range slots {
		set[s] = struct{}{}
	}
	return set
}

func (set Set) Add(s Slot) { set[s] = struct{}{} }

func (set Set) Contains(s Slot) bool {
	_, ok := set[s]
	return ok
}

// Diff returns the slots present in set but not in other.
func (set Set) Diff(other Set) Set {
	out := make(Set)
	for s := range set {
		if !other.Contains(s) {
			out[s] = struct{}{}
		}
	}
	return out
}

// Sorted returns the set's slots ordered by (date, facility id).
func (set Set) Sorted() []Slot {
	out := make([]Slot, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

// Format renders the set as one bullet line per slot, date-sorted.
func (set Set) Format() string {
	lines := make([]string, 0, len(set))
	for _, s := range set.Sorted() {
		lines = append(lines, "• "+s.String())
	}
	return strings.Join(lines, "\n")
}
