package reactive

// RunnerOption is an option for configuring a Runner at creation.
type RunnerOption interface {
	isRunnerOption()
	applyRunner(r *Runner)
}

type runnerOptionFunc func(*Runner)

func (f runnerOptionFunc) isRunnerOption()       {}
func (f runnerOptionFunc) applyRunner(r *Runner) { f(r) }

// Lazy suppresses the immediate first run. The caller invokes the returned
// runner with Run when it wants the first dependency derivation (and the
// work function's error, if any).
func Lazy() RunnerOption {
	return runnerOptionFunc(func(r *Runner) {
		r.lazy = true
	})
}

// Derived marks the runner as a derived value for dispatch ordering.
// When a trigger selects both derived and plain runners, every derived
// runner is dispatched before any plain one, so dependents never observe a
// stale derived result within one notification wave.
func Derived() RunnerOption {
	return runnerOptionFunc(func(r *Runner) {
		r.kind = runnerDerived
	})
}

// WithScheduler diverts re-runs to fn. When a trigger selects the runner,
// fn receives it instead of an immediate synchronous Run; fn is wholly
// responsible for deciding when, and whether, to invoke it. The engine's
// derived-before-plain ordering applies to the hand-off to fn, not to
// whenever fn later executes the runner.
//
// Example (batched re-render):
//
//	queue := make(chan *reactive.Runner, 64)
//	r := reactive.NewRunner(render, reactive.WithScheduler(func(r *reactive.Runner) {
//	    queue <- r
//	}))
func WithScheduler(fn func(*Runner)) RunnerOption {
	return runnerOptionFunc(func(r *Runner) {
		r.scheduler = fn
	})
}

// OnTrack installs a debug hook fired when a read first links the runner to
// a dependency-set during a run. Re-reads of the same (subject, key) within
// one run do not fire it again.
func OnTrack(fn func(TrackEvent)) RunnerOption {
	return runnerOptionFunc(func(r *Runner) {
		r.onTrack = fn
	})
}

// OnTrigger installs a debug hook fired when a trigger selects the runner,
// before its scheduler or re-run.
func OnTrigger(fn func(TriggerEvent)) RunnerOption {
	return runnerOptionFunc(func(r *Runner) {
		r.onTrigger = fn
	})
}

// OnStop installs a debug hook fired once when the runner is stopped.
func OnStop(fn func()) RunnerOption {
	return runnerOptionFunc(func(r *Runner) {
		r.onStop = fn
	})
}
