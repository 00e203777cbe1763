package cache

// Cache defines a generic keyed store.
type Cache[K comparable, V any] interface {
	// Get retrieves a value from the cache.
	Get(key K) (V, bool)

	// Set stores a value in the cache.
	Set(key K, value V)

	// Size returns the current number of items in the cache.
	Size() int
}

// Table is an unbounded Cache backed by a map. Entries never expire and are
// never evicted, so the table grows for the lifetime of the process.
// It is not safe for concurrent use.
type Table[K comparable, V any] struct {
	items map[K]V
}

// NewTable creates an empty table.
func NewTable[K comparable, V any]() *Table[K, V] {
	return &Table[K, V]{items: make(map[K]V)}
}

// Get retrieves a value from the table.
func (t *Table[K, V]) Get(key K) (V, bool) {
	v, ok := t.items[key]
	return v, ok
}

// Set stores a value, replacing any previous one for the key.
func (t *Table[K, V]) Set(key K, value V) {
	t.items[key] = value
}

// Size returns the number of stored keys.
func (t *Table[K, V]) Size() int {
	return len(t.items)
}
