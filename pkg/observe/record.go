package observe

import (
	"sync"

	"github.com/vango-dev/reactive/pkg/reactive"
)

// Record is an observed string-keyed object. Unlike Map, it has object
// semantics for trigger fan-out: replacing an existing field's value does
// not wake whole-record readers, only additions and deletions do.
type Record struct {
	engine *reactive.Engine

	mu     sync.RWMutex
	fields map[string]any
}

// NewRecord creates an empty observed record.
func NewRecord(opts ...Option) *Record {
	c := buildConfig(opts)
	return &Record{
		engine: c.engine,
		fields: make(map[string]any),
	}
}

// SubjectKind implements reactive.Classifier.
func (r *Record) SubjectKind() reactive.SubjectKind {
	return reactive.SubjectObject
}

// Get returns the field's value (nil if absent) and subscribes the current
// runner to it.
func (r *Record) Get(key string) any {
	r.mu.RLock()
	v := r.fields[key]
	r.mu.RUnlock()

	// Track after releasing the value lock to keep the engine lock and the
	// container lock from ever being held together.
	r.engine.Track(r, key, reactive.OpGet)
	return v
}

// Has reports whether the field exists and subscribes the current runner
// to it.
func (r *Record) Has(key string) bool {
	r.mu.RLock()
	_, ok := r.fields[key]
	r.mu.RUnlock()

	r.engine.Track(r, key, reactive.OpHas)
	return ok
}

// Set writes a field and triggers its subscribers. Writing a value equal to
// the current one is a no-op. A write to a previously absent field is an
// addition and additionally wakes whole-record readers.
func (r *Record) Set(key string, value any) {
	r.mu.Lock()
	old, existed := r.fields[key]
	if existed && equals(old, value) {
		r.mu.Unlock()
		return
	}
	r.fields[key] = value
	r.mu.Unlock()

	kind := reactive.KindSet
	if !existed {
		kind = reactive.KindAdd
	}
	r.engine.Trigger(r, key, kind, old, value)
}

// Delete removes a field if present and wakes its subscribers and
// whole-record readers.
func (r *Record) Delete(key string) {
	r.mu.Lock()
	old, existed := r.fields[key]
	if !existed {
		r.mu.Unlock()
		return
	}
	delete(r.fields, key)
	r.mu.Unlock()

	r.engine.Trigger(r, key, reactive.KindDelete, old, nil)
}

// Len returns the number of fields and subscribes the current runner to
// the record's shape.
func (r *Record) Len() int {
	r.mu.RLock()
	n := len(r.fields)
	r.mu.RUnlock()

	r.engine.Track(r, reactive.IterateKey, reactive.OpIterate)
	return n
}

// Keys returns the field names in unspecified order and subscribes the
// current runner to the record's shape.
func (r *Record) Keys() []string {
	r.mu.RLock()
	keys := make([]string, 0, len(r.fields))
	for k := range r.fields {
		keys = append(keys, k)
	}
	r.mu.RUnlock()

	r.engine.Track(r, reactive.IterateKey, reactive.OpIterate)
	return keys
}

// Clear removes all fields and wakes every subscriber of the record.
func (r *Record) Clear() {
	r.mu.Lock()
	if len(r.fields) == 0 {
		r.mu.Unlock()
		return
	}
	old := r.fields
	r.fields = make(map[string]any)
	r.mu.Unlock()

	r.engine.Trigger(r, nil, reactive.KindClear, old, nil)
}

// Release drops the record's tracking records from its engine. Call it
// when the record is discarded for good; the record remains usable but
// prior subscriptions are gone.
func (r *Record) Release() {
	r.engine.Release(r)
}
