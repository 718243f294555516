package ml

// IndexMap is a bijective mapping between external string identifiers and
// dense non-negative integer indices. Indices are only meaningful within the
// model generation whose training produced the map.
type IndexMap struct {
	forward map[string]int
	reverse []string
}

// NewIndexMap builds a map assigning dense indices in first-seen order.
// Duplicate ids keep their first index.
func NewIndexMap(ids []string) *IndexMap {
	m := &IndexMap{
		forward: make(map[string]int, len(ids)),
		reverse: make([]string, 0, len(ids)),
	}
	for _, id := range ids {
		if _, ok := m.forward[id]; ok {
			continue
		}
		m.forward[id] = len(m.reverse)
		m.reverse = append(m.reverse, id)
	}
	return m
}

// Index returns the dense index for an external id.
func (m *IndexMap) Index(id string) (int, bool) {
	idx, ok := m.forward[id]
	return idx, ok
}

// ID returns the external id for a dense index.
func (m *IndexMap) ID(idx int) (string, bool) {
	if idx < 0 || idx >= len(m.reverse) {
		return "", false
	}
	return m.reverse[idx], true
}

func (m *IndexMap) Len() int {
	return len(m.reverse)
}

// IDs returns all external ids in index order.
func (m *IndexMap) IDs() []string {
	out := make([]string, len(m.reverse))
	copy(out, m.reverse)
	return out
}
