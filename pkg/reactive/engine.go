package reactive

import (
	"log/slog"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
)

// depSet is the set of runners subscribed to one (subject, key) pair.
// The engine lock guards membership; the set itself is thread-unsafe.
type depSet struct {
	subject any
	key     any
	runners mapset.Set[*Runner]
}

func newDepSet(subject, key any) *depSet {
	return &depSet{
		subject: subject,
		key:     key,
		runners: mapset.NewThreadUnsafeSet[*Runner](),
	}
}

// OnErrorFunc receives errors surfacing from runs the engine itself
// initiated (trigger dispatch and the initial run in NewRunner). Errors
// from a direct Run call go to its caller instead.
type OnErrorFunc func(r *Runner, err error)

// Engine is an independent tracking domain: a dependency store plus the
// per-goroutine tracking contexts operating against it. Engines are
// self-contained; runners and subjects from different engines never
// interact.
//
// The zero value is not usable; create engines with NewEngine.
type Engine struct {
	// mu guards store and every depSet and Runner.deps reachable from it.
	mu sync.Mutex

	// store maps subject identity -> key -> dependency-set. Subjects are
	// held strongly: records persist until the subject is Released or the
	// engine is garbage. Producers that destroy subjects should call
	// Release to drop their records.
	store map[any]map[any]*depSet

	// contexts holds per-goroutine *trackingContext values.
	contexts sync.Map

	observers []Observer
	onError   OnErrorFunc
}

// EngineOption configures an Engine at construction.
type EngineOption func(*Engine)

// WithOnError sets the handler for errors from engine-initiated runs.
// Without it, such errors are logged through slog.
func WithOnError(fn OnErrorFunc) EngineOption {
	return func(e *Engine) {
		e.onError = fn
	}
}

// WithObserver registers instrumentation observers (see package instrument).
func WithObserver(obs ...Observer) EngineOption {
	return func(e *Engine) {
		e.observers = append(e.observers, obs...)
	}
}

// NewEngine creates an empty tracking domain.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		store: make(map[any]map[any]*depSet),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Track records that the currently-running runner read (subject, key).
//
// It is a no-op when no runner is running on this goroutine or tracking is
// paused; reads outside any tracked computation are expected and common.
// Linking is idempotent per run: a runner reading the same key twice links
// once and fires its OnTrack hook once.
func (e *Engine) Track(subject, key any, op Op) {
	if subject == nil {
		return
	}

	tc := e.peek()
	if tc == nil || !tc.shouldTrack {
		return
	}
	r := tc.current()
	if r == nil {
		return
	}

	e.mu.Lock()
	keys := e.store[subject]
	if keys == nil {
		keys = make(map[any]*depSet)
		e.store[subject] = keys
	}
	ds := keys[key]
	if ds == nil {
		ds = newDepSet(subject, key)
		keys[key] = ds
	}

	linked := false
	if !ds.runners.Contains(r) {
		ds.runners.Add(r)
		r.deps = append(r.deps, ds)
		linked = true
	}
	e.mu.Unlock()

	if linked {
		ev := TrackEvent{Runner: r, Subject: subject, Key: key, Op: op}
		if r.onTrack != nil {
			r.onTrack(ev)
		}
		e.observeTrack(ev)
	}
}

// Trigger reports a mutation of (subject, key) and re-runs every subscribed
// runner, derived runners first, each at most once.
//
// Key resolution:
//   - KindClear selects every dependency-set of the subject.
//   - A set on LengthKey of a sequence subject selects the LengthKey set
//     plus every index at or beyond the new length (newValue), since those
//     entries are being dropped.
//   - Otherwise the affected key's set is selected; an add or delete, or a
//     set on an associative subject, additionally selects the subject's
//     iteration subscribers (IterateKey, or LengthKey for sequences).
//
// The runner currently running on this goroutine is excluded: a runner
// writing a key it also reads does not re-enter itself. Triggering a
// subject that was never tracked is a no-op. oldValue and newValue are
// diagnostic context passed through to hooks and observers; the engine only
// reads newValue as the new length on a sequence truncation.
func (e *Engine) Trigger(subject, key any, kind ChangeKind, oldValue, newValue any) {
	if subject == nil {
		return
	}

	var self *Runner
	if tc := e.peek(); tc != nil {
		self = tc.current()
	}

	e.mu.Lock()
	keys := e.store[subject]
	if keys == nil {
		e.mu.Unlock()
		return
	}

	skind := classify(subject)
	var contributing []*depSet

	switch {
	case kind == KindClear:
		for _, ds := range keys {
			contributing = append(contributing, ds)
		}

	case key == any(LengthKey) && skind == SubjectSequence:
		// The producer is trusted to pass the new length as newValue.
		newLen, _ := asIndex(newValue)
		for k, ds := range keys {
			if k == any(LengthKey) {
				contributing = append(contributing, ds)
				continue
			}
			if idx, ok := asIndex(k); ok && idx >= newLen {
				contributing = append(contributing, ds)
			}
		}

	default:
		if key != nil {
			if ds := keys[key]; ds != nil {
				contributing = append(contributing, ds)
			}
		}

		structural := kind == KindAdd || kind == KindDelete ||
			(kind == KindSet && skind == SubjectAssociative)
		if structural {
			marker := any(IterateKey)
			if skind == SubjectSequence {
				marker = any(LengthKey)
			}
			if ds := keys[marker]; ds != nil && any(key) != marker {
				contributing = append(contributing, ds)
			}
		}
	}

	// Two-phase candidate buckets, deduplicated by identity. Relative
	// order within a bucket is unspecified.
	var derived, plain []*Runner
	seen := make(map[*Runner]struct{})
	for _, ds := range contributing {
		ds.runners.Each(func(r *Runner) bool {
			if r == self {
				return false
			}
			if _, dup := seen[r]; dup {
				return false
			}
			seen[r] = struct{}{}
			if r.kind == runnerDerived {
				derived = append(derived, r)
			} else {
				plain = append(plain, r)
			}
			return false
		})
	}
	e.mu.Unlock()

	if len(derived) == 0 && len(plain) == 0 {
		return
	}

	ev := TriggerEvent{
		Subject:  subject,
		Key:      key,
		Kind:     kind,
		OldValue: oldValue,
		NewValue: newValue,
	}
	for _, r := range derived {
		e.dispatch(r, ev)
	}
	for _, r := range plain {
		e.dispatch(r, ev)
	}
}

// dispatch hands one selected runner its re-run: debug hook, then either
// the runner's scheduler or an immediate synchronous Run.
func (e *Engine) dispatch(r *Runner, ev TriggerEvent) {
	// A runner stopped by an earlier dispatch in the same wave is skipped;
	// Stop is terminal.
	if !r.active.Load() {
		return
	}

	ev.Runner = r
	if r.onTrigger != nil {
		r.onTrigger(ev)
	}
	e.observeTrigger(ev)

	if r.scheduler != nil {
		r.scheduler(r)
		return
	}
	if err := r.Run(); err != nil {
		e.reportError(r, err)
	}
}

// clearDeps removes the runner from every dependency-set it belongs to.
// Called before each run (re-derivation) and on Stop.
func (e *Engine) clearDeps(r *Runner) {
	e.mu.Lock()
	for _, ds := range r.deps {
		ds.runners.Remove(r)
	}
	r.deps = r.deps[:0]
	e.mu.Unlock()
}

// Release drops every tracking record for subject. Producers call it when
// a subject is destroyed; without it, records persist for the lifetime of
// the engine. Runners subbed to the subject simply stop receiving its
// triggers until a later run re-reads it.
func (e *Engine) Release(subject any) {
	e.mu.Lock()
	defer e.mu.Unlock()

	keys := e.store[subject]
	if keys == nil {
		return
	}
	delete(e.store, subject)

	for _, ds := range keys {
		ds.runners.Each(func(r *Runner) bool {
			for i, d := range r.deps {
				if d == ds {
					last := len(r.deps) - 1
					r.deps[i] = r.deps[last]
					r.deps = r.deps[:last]
					break
				}
			}
			return false
		})
		ds.runners.Clear()
	}
}

// Stats is a point-in-time size snapshot of the dependency store.
type Stats struct {
	// Subjects is the number of subjects with any tracking record.
	Subjects int

	// DepSets is the number of (subject, key) dependency-sets, including
	// ones whose membership is currently empty.
	DepSets int

	// Links is the total runner memberships across all dependency-sets.
	Links int
}

// Stats reports current dependency-store sizes.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()

	var s Stats
	s.Subjects = len(e.store)
	for _, keys := range e.store {
		s.DepSets += len(keys)
		for _, ds := range keys {
			s.Links += ds.runners.Cardinality()
		}
	}
	return s
}

func (e *Engine) reportError(r *Runner, err error) {
	if e.onError != nil {
		e.onError(r, err)
		return
	}
	slog.Warn("reactive: runner failed", "runner", r.id, "error", err)
}
