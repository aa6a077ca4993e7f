// Package followup keeps the browser-local set of absence ids an admin has
// already followed up on. The set lives in a signed cookie and is advisory
// only: it hides rows from the follow-up list and never touches a count.
package followup

// DefaultMaxIDs keeps the signed cookie under the 4 KB browser limit.
const DefaultMaxIDs = 64

// AcknowledgmentStore is the read/write side the follow-up workflow uses.
type AcknowledgmentStore interface {
	Has(id string) bool
	Add(id string)
}

// Set is an insertion-ordered id set holding at most max ids; adding past
// the cap evicts the oldest.
type Set struct {
	ids   []string
	index map[string]struct{}
	max   int
}

var _ AcknowledgmentStore = (*Set)(nil)

// NewSet returns a set seeded with ids (oldest first). max <= 0 means DefaultMaxIDs.
func NewSet(max int, ids ...string) *Set {
	if max <= 0 {
		max = DefaultMaxIDs
	}
	s := &Set{index: make(map[string]struct{}, len(ids)), max: max}
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

// Has reports whether id was acknowledged.
func (s *Set) Has(id string) bool {
	_, ok := s.index[id]
	return ok
}

// Add acknowledges id. Empty ids and repeats are ignored.
func (s *Set) Add(id string) {
	if id == "" || s.Has(id) {
		return
	}
	s.ids = append(s.ids, id)
	s.index[id] = struct{}{}
	for len(s.ids) > s.max {
		s.dropOldest()
	}
}

func (s *Set) dropOldest() {
	delete(s.index, s.ids[0])
	s.ids = s.ids[1:]
}

// IDs returns the ids, oldest first.
func (s *Set) IDs() []string {
	return append([]string{}, s.ids...)
}

// Len returns the number of ids held.
func (s *Set) Len() int { return len(s.ids) }
