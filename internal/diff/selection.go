package diff

import (
	"fmt"
	"sort"
)

// InvalidSelectionError reports a selection the current set cannot
// honor: toggling an id the set does not contain, or a single-table
// comparison pointed at a missing or self-referencing table.
type InvalidSelectionError struct {
	Reason string
}

func (e *InvalidSelectionError) Error() string {
	return "invalid selection: " + e.Reason
}

// Selection tracks which diffs of one Set are excluded from the sync
// script. A fresh Selection is built for every new Set; it holds no
// cached script, only membership.
type Selection struct {
	ids      map[string]struct{}
	excluded map[string]struct{}
}

// NewSelection returns a selection over the set's diff ids with
// nothing excluded.
func NewSelection(set *Set) *Selection {
	sel := &Selection{
		ids:      make(map[string]struct{}, len(set.Diffs)),
		excluded: make(map[string]struct{}),
	}
	for i := range set.Diffs {
		sel.ids[set.Diffs[i].ID] = struct{}{}
	}
	return sel
}

// Toggle flips the exclusion of one diff id. An id that is not part of
// the set is an error, never a silent insert.
func (s *Selection) Toggle(id string) error {
	if _, ok := s.ids[id]; !ok {
		return &InvalidSelectionError{Reason: fmt.Sprintf("unknown diff id %q", id)}
	}
	if _, excluded := s.excluded[id]; excluded {
		delete(s.excluded, id)
	} else {
		s.excluded[id] = struct{}{}
	}
	return nil
}

// SelectAll clears every exclusion.
func (s *Selection) SelectAll() {
	s.excluded = make(map[string]struct{})
}

// DeselectAll excludes every diff.
func (s *Selection) DeselectAll() {
	s.excluded = make(map[string]struct{}, len(s.ids))
	for id := range s.ids {
		s.excluded[id] = struct{}{}
	}
}

// IsExcluded reports whether the id is currently excluded.
func (s *Selection) IsExcluded(id string) bool {
	_, ok := s.excluded[id]
	return ok
}

// ExcludedIDs returns the excluded ids, sorted.
func (s *Selection) ExcludedIDs() []string {
	ids := make([]string, 0, len(s.excluded))
	for id := range s.excluded {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ExcludedCount returns how many diffs are excluded.
func (s *Selection) ExcludedCount() int {
	return len(s.excluded)
}
