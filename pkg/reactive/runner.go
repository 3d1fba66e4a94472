package reactive

import (
	"sync/atomic"
	"time"
)

// runnerKind distinguishes derived runners from plain ones. Trigger
// dispatches every derived candidate before any plain candidate, so a stale
// derived value is recomputed before anything that reads it re-runs.
type runnerKind uint8

const (
	runnerPlain runnerKind = iota
	runnerDerived
)

// Runner is a re-runnable unit of work whose reads are automatically
// subscribed and which is re-invoked when any of its subscriptions change.
//
// A runner's dependency set is cleared and re-derived on every run. It stays
// active until Stop is called; a stopped runner still runs its work function
// when invoked directly, but with no tracking side effects.
type Runner struct {
	id     uint64
	engine *Engine

	// work is the underlying work function.
	work func() error

	// active is true from creation until Stop.
	active atomic.Bool

	// deps are the dependency-sets this runner currently belongs to.
	// A runner appears in a dependency-set iff that set appears here;
	// both sides are maintained together under the engine lock.
	deps []*depSet

	kind runnerKind

	// lazy suppresses the initial run in NewRunner.
	lazy bool

	// scheduler, when set, receives the runner instead of an immediate
	// re-run when a trigger selects it.
	scheduler func(*Runner)

	// Debug hooks.
	onTrack   func(TrackEvent)
	onTrigger func(TriggerEvent)
	onStop    func()
}

// ID returns the unique identifier for this runner.
func (r *Runner) ID() uint64 {
	return r.id
}

// Active reports whether the runner has not been stopped.
func (r *Runner) Active() bool {
	return r.active.Load()
}

// Derived reports whether the runner was created with the Derived option.
func (r *Runner) Derived() bool {
	return r.kind == runnerDerived
}

// Run invokes the work function under tracking.
//
// Prior dependency-set memberships are cleared first, so the subscriptions
// that survive the run are exactly the reads it performed. The runner is
// pushed onto the goroutine's tracking stack for the duration of the run
// and popped on every exit path, including panics.
//
// A stopped runner runs its work function with no tracking side effects.
// A runner already on the current goroutine's tracking stack is not
// re-entered; Run returns nil without invoking the work function.
//
// The work function's error is returned unchanged.
func (r *Runner) Run() (err error) {
	if !r.active.Load() {
		return r.work()
	}

	e := r.engine
	tc := e.context()
	if tc.onStack(r) {
		return nil
	}

	e.clearDeps(r)

	tc.pushRunner(r)
	start := time.Now()
	defer func() {
		tc.popRunner()
		e.releaseContext(tc)
		e.observeRun(RunEvent{Runner: r, Duration: time.Since(start), Err: err})
	}()

	err = r.work()
	return err
}

// Stop clears all of the runner's subscriptions and deactivates it.
// Stopping an already-stopped runner is a no-op. Triggers after Stop never
// re-run the runner; invoking it directly still runs the work function,
// untracked.
func (r *Runner) Stop() {
	if !r.active.CompareAndSwap(true, false) {
		return
	}

	r.engine.clearDeps(r)

	if r.onStop != nil {
		r.onStop()
	}
}

// NewRunner creates a runner for work within this engine and, unless the
// Lazy option is given, runs it immediately to derive its first dependency
// set. An error from that initial run is routed to the engine's error
// handler; use Lazy and call Run yourself to receive it directly.
func (e *Engine) NewRunner(work func() error, opts ...RunnerOption) *Runner {
	r := &Runner{
		id:     nextID(),
		engine: e,
		work:   work,
	}
	r.active.Store(true)

	for _, opt := range opts {
		opt.applyRunner(r)
	}

	if !r.lazy {
		if err := r.Run(); err != nil {
			e.reportError(r, err)
		}
	}

	return r
}
