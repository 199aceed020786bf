package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLRUIndex_InsertLookup(t *testing.T) {
	idx := newLRUIndex()
	e := &Entry{Key: "a", FullKey: "a", Value: "1"}
	idx.insert(e)

	got := idx.lookup("a")
	require.NotNil(t, got)
	assert.Equal(t, "1", got.Value)
	assert.Equal(t, 1, idx.size())
}

func TestLRUIndex_LookupMiss(t *testing.T) {
	idx := newLRUIndex()
	assert.Nil(t, idx.lookup("missing"))
}

func TestLRUIndex_EvictTailIsLeastRecentlyUsed(t *testing.T) {
	idx := newLRUIndex()
	idx.insert(&Entry{Key: "a", FullKey: "a"})
	idx.insert(&Entry{Key: "b", FullKey: "b"})
	idx.insert(&Entry{Key: "c", FullKey: "c"})

	// touch "a" so "b" becomes the least recently used.
	idx.touch(idx.lookup("a"))

	evicted := idx.evictTail()
	require.NotNil(t, evicted)
	assert.Equal(t, "b", evicted.Key)
	assert.Equal(t, 2, idx.size())
	assert.Nil(t, idx.lookup("b"))
}

func TestLRUIndex_EvictTailEmpty(t *testing.T) {
	idx := newLRUIndex()
	assert.Nil(t, idx.evictTail())
}

func TestLRUIndex_Remove(t *testing.T) {
	idx := newLRUIndex()
	e := &Entry{Key: "a", FullKey: "a"}
	idx.insert(e)
	idx.remove(e)

	assert.Nil(t, idx.lookup("a"))
	assert.Equal(t, 0, idx.size())
}

func TestLRUIndex_Keys(t *testing.T) {
	idx := newLRUIndex()
	idx.insert(&Entry{Key: "a", FullKey: "a"})
	idx.insert(&Entry{Key: "b", FullKey: "b"})

	keys := idx.keys()
	assert.ElementsMatch(t, []string{"a", "b"}, keys)
}
