package application

import (
	"fmt"
	"sort"
	"sync"
)

// CheckInStore holds the session's check-ins, newest first, and the favorited resource ids.
type CheckInStore struct {
	mu        sync.RWMutex
	checkIns  []CheckIn
	ids       map[string]struct{}
	favorites map[string]struct{}
}

// NewCheckInStore returns an empty store.
func NewCheckInStore() *CheckInStore {
	return &CheckInStore{
		ids:       make(map[string]struct{}),
		favorites: make(map[string]struct{}),
	}
}

// Append inserts the check-in at the head of the list. Ids are generated by the
// caller; a repeated id is a programming error and panics.
func (s *CheckInStore) Append(checkIn CheckIn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.ids[checkIn.ID]; exists {
		panic(fmt.Sprintf("application: duplicate check-in id %q", checkIn.ID))
	}
	s.ids[checkIn.ID] = struct{}{}

	s.checkIns = append(s.checkIns, CheckIn{})
	copy(s.checkIns[1:], s.checkIns)
	s.checkIns[0] = cloneCheckIn(checkIn)
}

// List returns a copy of all check-ins, most recent first.
func (s *CheckInStore) List() []CheckIn {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]CheckIn, len(s.checkIns))
	for i, checkIn := range s.checkIns {
		out[i] = cloneCheckIn(checkIn)
	}
	return out
}

// Latest returns the most recently appended check-in.
func (s *CheckInStore) Latest() (CheckIn, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.checkIns) == 0 {
		return CheckIn{}, false
	}
	return cloneCheckIn(s.checkIns[0]), true
}

// Len reports the number of stored check-ins.
func (s *CheckInStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.checkIns)
}

// ToggleFavorite adds the id when absent and removes it when present. Ids are not
// checked against the catalog. It reports whether the id is a favorite afterwards.
func (s *CheckInStore) ToggleFavorite(resourceID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.favorites[resourceID]; ok {
		delete(s.favorites, resourceID)
		return false
	}
	s.favorites[resourceID] = struct{}{}
	return true
}

// IsFavorite reports whether the resource id is in the favorites set.
func (s *CheckInStore) IsFavorite(resourceID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.favorites[resourceID]
	return ok
}

// Favorites returns the favorited ids in lexical order.
func (s *CheckInStore) Favorites() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.favorites))
	for id := range s.favorites {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
