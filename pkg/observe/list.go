package observe

import (
	"fmt"
	"sync"

	"github.com/vango-dev/reactive/pkg/reactive"
)

// List is an observed sequence. Reads of individual indices subscribe per
// index; Len and Range subscribe to the length. Appends wake length
// subscribers, and truncation via SetLen additionally wakes subscribers of
// every dropped index.
type List[T any] struct {
	engine *reactive.Engine

	mu    sync.RWMutex
	items []T
}

// NewList creates an observed sequence seeded with the given items.
func NewList[T any](items []T, opts ...Option) *List[T] {
	c := buildConfig(opts)
	l := &List[T]{engine: c.engine}
	l.items = append(l.items, items...)
	return l
}

// SubjectKind implements reactive.Classifier.
func (l *List[T]) SubjectKind() reactive.SubjectKind {
	return reactive.SubjectSequence
}

// Get returns the element at index i and subscribes the current runner to
// it. It panics if i is out of range, like a slice access.
func (l *List[T]) Get(i int) T {
	l.mu.RLock()
	if i < 0 || i >= len(l.items) {
		n := len(l.items)
		l.mu.RUnlock()
		panic(fmt.Sprintf("observe: index %d out of range [0:%d]", i, n))
	}
	v := l.items[i]
	l.mu.RUnlock()

	l.engine.Track(l, i, reactive.OpGet)
	return v
}

// Set replaces the element at index i and triggers its subscribers.
// Writing a value equal to the current one is a no-op. It panics if i is
// out of range; use Append to grow.
func (l *List[T]) Set(i int, value T) {
	l.mu.Lock()
	if i < 0 || i >= len(l.items) {
		n := len(l.items)
		l.mu.Unlock()
		panic(fmt.Sprintf("observe: index %d out of range [0:%d]", i, n))
	}
	old := l.items[i]
	if equals(old, value) {
		l.mu.Unlock()
		return
	}
	l.items[i] = value
	l.mu.Unlock()

	l.engine.Trigger(l, i, reactive.KindSet, old, value)
}

// Append adds values at the end. Each append is an addition at its new
// index and wakes length subscribers.
func (l *List[T]) Append(values ...T) {
	for _, v := range values {
		l.mu.Lock()
		idx := len(l.items)
		l.items = append(l.items, v)
		l.mu.Unlock()

		l.engine.Trigger(l, idx, reactive.KindAdd, nil, v)
	}
}

// Len returns the element count and subscribes the current runner to the
// sequence's length.
func (l *List[T]) Len() int {
	l.mu.RLock()
	n := len(l.items)
	l.mu.RUnlock()

	l.engine.Track(l, reactive.LengthKey, reactive.OpIterate)
	return n
}

// SetLen resizes the sequence. Shrinking drops trailing elements and wakes
// their subscribers along with length subscribers; growing appends zero
// values and wakes length subscribers only.
func (l *List[T]) SetLen(n int) {
	if n < 0 {
		panic(fmt.Sprintf("observe: negative length %d", n))
	}

	l.mu.Lock()
	old := len(l.items)
	if n == old {
		l.mu.Unlock()
		return
	}
	if n < old {
		l.items = l.items[:n]
	} else {
		l.items = append(l.items, make([]T, n-old)...)
	}
	l.mu.Unlock()

	l.engine.Trigger(l, reactive.LengthKey, reactive.KindSet, old, n)
}

// Range calls fn for each element over a snapshot and subscribes the
// current runner to the length and to every index it visits. fn returning
// false stops the iteration.
func (l *List[T]) Range(fn func(i int, value T) bool) {
	l.mu.RLock()
	snapshot := make([]T, len(l.items))
	copy(snapshot, l.items)
	l.mu.RUnlock()

	l.engine.Track(l, reactive.LengthKey, reactive.OpIterate)
	for i, v := range snapshot {
		l.engine.Track(l, i, reactive.OpGet)
		if !fn(i, v) {
			return
		}
	}
}

// Values returns a copy of the elements and subscribes the current runner
// to the length and every index.
func (l *List[T]) Values() []T {
	l.mu.RLock()
	snapshot := make([]T, len(l.items))
	copy(snapshot, l.items)
	l.mu.RUnlock()

	l.engine.Track(l, reactive.LengthKey, reactive.OpIterate)
	for i := range snapshot {
		l.engine.Track(l, i, reactive.OpGet)
	}
	return snapshot
}

// Clear removes all elements and wakes every subscriber of the sequence.
func (l *List[T]) Clear() {
	l.mu.Lock()
	if len(l.items) == 0 {
		l.mu.Unlock()
		return
	}
	old := len(l.items)
	l.items = nil
	l.mu.Unlock()

	l.engine.Trigger(l, nil, reactive.KindClear, old, 0)
}

// Release drops the list's tracking records from its engine.
func (l *List[T]) Release() {
	l.engine.Release(l)
}
