package ml

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIndexMap_DenseAndBijective(t *testing.T) {
	m := NewIndexMap([]string{"u1", "u2", "u1", "u3", "u2"})

	assert.Equal(t, 3, m.Len())
	assert.Equal(t, []string{"u1", "u2", "u3"}, m.IDs())

	// Forward and reverse agree for every index.
	for i := 0; i < m.Len(); i++ {
		id, ok := m.ID(i)
		assert.True(t, ok)
		idx, ok := m.Index(id)
		assert.True(t, ok)
		assert.Equal(t, i, idx)
	}
}

func TestIndexMap_FirstSeenOrder(t *testing.T) {
	m := NewIndexMap([]string{"b", "a", "c"})

	idx, ok := m.Index("b")
	assert.True(t, ok)
	assert.Equal(t, 0, idx)

	idx, ok = m.Index("c")
	assert.True(t, ok)
	assert.Equal(t, 2, idx)
}

func TestIndexMap_Missing(t *testing.T) {
	m := NewIndexMap([]string{"a"})

	_, ok := m.Index("zzz")
	assert.False(t, ok)

	_, ok = m.ID(-1)
	assert.False(t, ok)

	_, ok = m.ID(1)
	assert.False(t, ok)
}
