package observe

import (
	"sync"

	"github.com/vango-dev/reactive/pkg/reactive"
)

// Map is an observed associative container. It has map semantics for
// trigger fan-out: any mutation, including replacing an existing value,
// wakes whole-map readers, because map iteration observes values as well
// as the key set.
type Map[K comparable, V any] struct {
	engine *reactive.Engine

	mu      sync.RWMutex
	entries map[K]V
}

// NewMap creates an empty observed map.
func NewMap[K comparable, V any](opts ...Option) *Map[K, V] {
	c := buildConfig(opts)
	return &Map[K, V]{
		engine:  c.engine,
		entries: make(map[K]V),
	}
}

// SubjectKind implements reactive.Classifier.
func (m *Map[K, V]) SubjectKind() reactive.SubjectKind {
	return reactive.SubjectAssociative
}

// Get returns the value for key and subscribes the current runner to it.
func (m *Map[K, V]) Get(key K) (V, bool) {
	m.mu.RLock()
	v, ok := m.entries[key]
	m.mu.RUnlock()

	m.engine.Track(m, key, reactive.OpGet)
	return v, ok
}

// Has reports whether key exists and subscribes the current runner to it.
func (m *Map[K, V]) Has(key K) bool {
	m.mu.RLock()
	_, ok := m.entries[key]
	m.mu.RUnlock()

	m.engine.Track(m, key, reactive.OpHas)
	return ok
}

// Set writes key and triggers its subscribers and whole-map readers.
// Writing a value equal to the current one is a no-op.
func (m *Map[K, V]) Set(key K, value V) {
	m.mu.Lock()
	old, existed := m.entries[key]
	if existed && equals(old, value) {
		m.mu.Unlock()
		return
	}
	m.entries[key] = value
	m.mu.Unlock()

	kind := reactive.KindSet
	if !existed {
		kind = reactive.KindAdd
	}
	m.engine.Trigger(m, key, kind, old, value)
}

// Delete removes key if present and wakes its subscribers and whole-map
// readers.
func (m *Map[K, V]) Delete(key K) {
	m.mu.Lock()
	old, existed := m.entries[key]
	if !existed {
		m.mu.Unlock()
		return
	}
	delete(m.entries, key)
	m.mu.Unlock()

	m.engine.Trigger(m, key, reactive.KindDelete, old, nil)
}

// Len returns the entry count and subscribes the current runner to the
// map's shape.
func (m *Map[K, V]) Len() int {
	m.mu.RLock()
	n := len(m.entries)
	m.mu.RUnlock()

	m.engine.Track(m, reactive.IterateKey, reactive.OpIterate)
	return n
}

// Keys returns the keys in unspecified order and subscribes the current
// runner to the map's shape.
func (m *Map[K, V]) Keys() []K {
	m.mu.RLock()
	keys := make([]K, 0, len(m.entries))
	for k := range m.entries {
		keys = append(keys, k)
	}
	m.mu.RUnlock()

	m.engine.Track(m, reactive.IterateKey, reactive.OpIterate)
	return keys
}

// Range calls fn for each entry over a snapshot of the map and subscribes
// the current runner to the map's shape. fn returning false stops the
// iteration.
func (m *Map[K, V]) Range(fn func(key K, value V) bool) {
	m.mu.RLock()
	snapshot := make(map[K]V, len(m.entries))
	for k, v := range m.entries {
		snapshot[k] = v
	}
	m.mu.RUnlock()

	m.engine.Track(m, reactive.IterateKey, reactive.OpIterate)
	for k, v := range snapshot {
		if !fn(k, v) {
			return
		}
	}
}

// Clear removes all entries and wakes every subscriber of the map.
func (m *Map[K, V]) Clear() {
	m.mu.Lock()
	if len(m.entries) == 0 {
		m.mu.Unlock()
		return
	}
	old := m.entries
	m.entries = make(map[K]V)
	m.mu.Unlock()

	m.engine.Trigger(m, nil, reactive.KindClear, old, nil)
}

// Release drops the map's tracking records from its engine.
func (m *Map[K, V]) Release() {
	m.engine.Release(m)
}
