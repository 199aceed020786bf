package store

import "container/list"

// lruIndex is an ordered mapping from full key to Entry, pairing a hash
// map (for O(1) lookup) with an intrusive doubly-linked list (for O(1)
// insert-at-head / move-to-head / evict-from-tail).
//
// lruIndex does not consult time and does not take any lock of its own —
// every method assumes the caller already holds the facade lock. It is
// split out as its own type because the facade, the reaper, and the
// compactor all need direct access to list order without going through
// Store's higher-level Get/Set semantics.
type lruIndex struct {
	items map[string]*list.Element // full key -> node
	order *list.List               // node.Value is *Entry, head = most recently used
}

func newLRUIndex() *lruIndex {
	return &lruIndex{
		items: make(map[string]*list.Element),
		order: list.New(),
	}
}

// lookup returns the entry for fullKey, or nil if absent. O(1).
func (l *lruIndex) lookup(fullKey string) *Entry {
	elem, ok := l.items[fullKey]
	if !ok {
		return nil
	}
	return elem.Value.(*Entry)
}

// insert prepends a new entry at the head. Precondition: e.FullKey is not
// already present.
func (l *lruIndex) insert(e *Entry) {
	elem := l.order.PushFront(e)
	l.items[e.FullKey] = elem
}

// touch moves an already-present entry's node to the head.
func (l *lruIndex) touch(e *Entry) {
	if elem, ok := l.items[e.FullKey]; ok {
		l.order.MoveToFront(elem)
	}
}

// remove detaches an entry from both the map and the order list.
func (l *lruIndex) remove(e *Entry) {
	if elem, ok := l.items[e.FullKey]; ok {
		l.order.Remove(elem)
		delete(l.items, e.FullKey)
	}
}

// evictTail detaches and returns the least-recently-used entry, or nil if
// the index is empty.
func (l *lruIndex) evictTail() *Entry {
	elem := l.order.Back()
	if elem == nil {
		return nil
	}
	e := elem.Value.(*Entry)
	l.order.Remove(elem)
	delete(l.items, e.FullKey)
	return e
}

// keys returns a snapshot of every full key currently indexed, in
// unspecified order. Used by compaction and namespace enumeration.
func (l *lruIndex) keys() []string {
	out := make([]string, 0, len(l.items))
	for k := range l.items {
		out = append(out, k)
	}
	return out
}

// size returns the number of live entries.
func (l *lruIndex) size() int {
	return len(l.items)
}
