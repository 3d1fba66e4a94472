// Package timeline records engine events in dispatch order.
//
// A Recorder implements reactive.Observer and keeps a bounded in-memory
// ring of track, trigger, and run events. Snapshots serialize to JSON and
// can be exported to a Store for offline inspection, e.g. by devtools.
package timeline

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	apperrors "github.com/vango-dev/reactive/internal/errors"
	"github.com/vango-dev/reactive/pkg/reactive"
)

// EventType classifies a recorded entry.
type EventType string

const (
	EventTrack   EventType = "track"
	EventTrigger EventType = "trigger"
	EventRun     EventType = "run"
)

// Labeler lets a subject control how it appears in recorded entries.
// Subjects without it are labeled by their Go type.
type Labeler interface {
	SubjectLabel() string
}

// Entry is one recorded engine event.
type Entry struct {
	Seq      uint64        `json:"seq"`
	Time     time.Time     `json:"time"`
	Type     EventType     `json:"type"`
	RunnerID uint64        `json:"runner_id"`
	Derived  bool          `json:"derived,omitempty"`
	Subject  string        `json:"subject,omitempty"`
	Key      string        `json:"key,omitempty"`
	Op       string        `json:"op,omitempty"`
	Kind     string        `json:"kind,omitempty"`
	Duration time.Duration `json:"duration,omitempty"`
	Error    string        `json:"error,omitempty"`
}

// Recorder is a bounded, concurrency-safe event ring. Register it on an
// engine with reactive.WithObserver.
type Recorder struct {
	mu      sync.Mutex
	seq     uint64
	entries []Entry
	start   int
	count   int
	sink    func(Entry)
}

// NewRecorder creates a recorder holding at most capacity entries; older
// entries are dropped first. Capacity below 1 defaults to 1024.
func NewRecorder(capacity int) *Recorder {
	if capacity < 1 {
		capacity = 1024
	}
	return &Recorder{
		entries: make([]Entry, capacity),
	}
}

// ObserveTrack implements reactive.Observer.
func (rec *Recorder) ObserveTrack(ev reactive.TrackEvent) {
	rec.append(Entry{
		Type:     EventTrack,
		RunnerID: ev.Runner.ID(),
		Derived:  ev.Runner.Derived(),
		Subject:  subjectLabel(ev.Subject),
		Key:      keyLabel(ev.Key),
		Op:       ev.Op.String(),
	})
}

// ObserveTrigger implements reactive.Observer.
func (rec *Recorder) ObserveTrigger(ev reactive.TriggerEvent) {
	rec.append(Entry{
		Type:     EventTrigger,
		RunnerID: ev.Runner.ID(),
		Derived:  ev.Runner.Derived(),
		Subject:  subjectLabel(ev.Subject),
		Key:      keyLabel(ev.Key),
		Kind:     ev.Kind.String(),
	})
}

// ObserveRun implements reactive.Observer.
func (rec *Recorder) ObserveRun(ev reactive.RunEvent) {
	e := Entry{
		Type:     EventRun,
		RunnerID: ev.Runner.ID(),
		Derived:  ev.Runner.Derived(),
		Duration: ev.Duration,
	}
	if ev.Err != nil {
		e.Error = ev.Err.Error()
	}
	rec.append(e)
}

// Tap registers a callback invoked with every entry as it is recorded.
// The callback runs on the engine's dispatching goroutine and must not
// block. At most one tap is supported; nil removes it.
func (rec *Recorder) Tap(fn func(Entry)) {
	rec.mu.Lock()
	rec.sink = fn
	rec.mu.Unlock()
}

func (rec *Recorder) append(e Entry) {
	rec.mu.Lock()
	rec.seq++
	e.Seq = rec.seq
	e.Time = time.Now()

	if rec.count < len(rec.entries) {
		rec.entries[(rec.start+rec.count)%len(rec.entries)] = e
		rec.count++
	} else {
		rec.entries[rec.start] = e
		rec.start = (rec.start + 1) % len(rec.entries)
	}
	sink := rec.sink
	rec.mu.Unlock()

	if sink != nil {
		sink(e)
	}
}

// Snapshot returns the recorded entries, oldest first.
func (rec *Recorder) Snapshot() []Entry {
	rec.mu.Lock()
	defer rec.mu.Unlock()

	out := make([]Entry, rec.count)
	for i := 0; i < rec.count; i++ {
		out[i] = rec.entries[(rec.start+i)%len(rec.entries)]
	}
	return out
}

// Reset discards all recorded entries. The sequence counter keeps
// increasing, so entry order stays comparable across resets.
func (rec *Recorder) Reset() {
	rec.mu.Lock()
	rec.start = 0
	rec.count = 0
	rec.mu.Unlock()
}

// MarshalJSON serializes the current snapshot.
func (rec *Recorder) MarshalJSON() ([]byte, error) {
	return json.Marshal(rec.Snapshot())
}

// Export writes the current snapshot to the store under name and returns
// the store's location for it.
func (rec *Recorder) Export(store Store, name string) (string, error) {
	data, err := rec.MarshalJSON()
	if err != nil {
		return "", apperrors.New("E020").Wrap(err)
	}
	loc, err := store.Save(name, bytes.NewReader(data))
	if err != nil {
		return "", apperrors.New("E021").Wrap(err)
	}
	return loc, nil
}

func subjectLabel(subject any) string {
	if l, ok := subject.(Labeler); ok {
		return l.SubjectLabel()
	}
	return fmt.Sprintf("%T", subject)
}

func keyLabel(key any) string {
	if key == nil {
		return ""
	}
	return fmt.Sprint(key)
}
