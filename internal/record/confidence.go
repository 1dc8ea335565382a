package record

import "sort"

// ConfidenceStore maps field paths to confidence scores (0–100). Each
// extraction pass owns its own store; the merge step owns the combined one.
type ConfidenceStore struct {
	scores map[string]float64
}

// NewConfidenceStore returns an empty ConfidenceStore.
func NewConfidenceStore() *ConfidenceStore {
	return &ConfidenceStore{scores: make(map[string]float64)}
}

// Record stores a score for a path, replacing any earlier score for the same
// path. Last writer wins, also across pages of the same pass.
func (s *ConfidenceStore) Record(path string, score float64) {
	s.scores[path] = score
}

// Get returns the stored score for path, or def if none was recorded.
func (s *ConfidenceStore) Get(path string, def float64) float64 {
	if score, ok := s.scores[path]; ok {
		return score
	}
	return def
}

// Delete removes a stored score. Used when a field is redacted.
func (s *ConfidenceStore) Delete(path string) {
	delete(s.scores, path)
}

// Len returns the number of recorded scores.
func (s *ConfidenceStore) Len() int {
	return len(s.scores)
}

// Average returns the mean of all recorded scores, or 0 if the store is
// empty. Reported to the user as the overall extraction quality.
func (s *ConfidenceStore) Average() float64 {
	if len(s.scores) == 0 {
		return 0
	}
	sum := 0.0
	for _, score := range s.scores {
		sum += score
	}
	return sum / float64(len(s.scores))
}

// Paths returns the recorded paths in sorted order.
func (s *ConfidenceStore) Paths() []string {
	paths := make([]string, 0, len(s.scores))
	for p := range s.scores {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Snapshot returns a copy of the underlying map, for serialization.
func (s *ConfidenceStore) Snapshot() map[string]float64 {
	out := make(map[string]float64, len(s.scores))
	for p, score := range s.scores {
		out[p] = score
	}
	return out
}

// FromMap builds a ConfidenceStore from an existing path → score map.
func FromMap(scores map[string]float64) *ConfidenceStore {
	s := NewConfidenceStore()
	for p, score := range scores {
		s.scores[p] = score
	}
	return s
}
