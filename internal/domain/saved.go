package domain

import (
	"encoding/json"
	"sort"
)

// SavedSet is the collection of idiom IDs a learner bookmarked for review.
// It serializes as a JSON array of integers, the same shape the web client
// keeps in local storage.
type SavedSet map[int]struct{}

// NewSavedSet builds a set from ids, collapsing duplicates
func NewSavedSet(ids ...int) SavedSet {
	s := make(SavedSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has reports whether id is saved
func (s SavedSet) Has(id int) bool {
	_, ok := s[id]
	return ok
}

// Toggle adds id when absent and removes it when present.
// Returns true if id is saved after the call.
func (s SavedSet) Toggle(id int) bool {
	if s.Has(id) {
		delete(s, id)
		return false
	}
	s[id] = struct{}{}
	return true
}

// IDs returns saved ids in ascending order
func (s SavedSet) IDs() []int {
	ids := make([]int, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Clone returns an independent copy
func (s SavedSet) Clone() SavedSet {
	return NewSavedSet(s.IDs()...)
}

// MarshalJSON encodes the set as a sorted array of integers
func (s SavedSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.IDs())
}

// UnmarshalJSON decodes an array of integers
func (s *SavedSet) UnmarshalJSON(data []byte) error {
	var ids []int
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	*s = NewSavedSet(ids...)
	return nil
}
