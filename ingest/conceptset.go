package ingest

// ConceptSet accumulates concept strings, dropping duplicates while
// preserving first-seen order.
type ConceptSet struct {
	seen  map[string]struct{}
	order []string
}

// NewConceptSet creates an empty concept set.
func NewConceptSet() *ConceptSet {
	return &ConceptSet{seen: make(map[string]struct{})}
}

// Add inserts concepts, ignoring any already present.
func (s *ConceptSet) Add(concepts ...string) {
	for _, concept := range concepts {
		if concept == "" {
			continue
		}
		if _, ok := s.seen[concept]; ok {
			continue
		}
		s.seen[concept] = struct{}{}
		s.order = append(s.order, concept)
	}
}

// Values returns the concepts in first-seen order.
func (s *ConceptSet) Values() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Len returns the number of distinct concepts.
func (s *ConceptSet) Len() int {
	return len(s.order)
}
