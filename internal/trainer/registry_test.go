package trainer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistry_GetOrCreate(t *testing.T) {
	dict := newFakeDict(fourPairs()...)
	registry := NewRegistry(dict, testThreshold, nil)

	first := registry.Get(100)
	assert.NotNil(t, first)
	assert.Same(t, first, registry.Get(100), "same conversation gets the same trainer")

	other := registry.Get(200)
	assert.NotSame(t, first, other, "conversations never share a trainer")
	assert.Equal(t, 2, registry.Len())
}
