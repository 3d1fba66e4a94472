package reactive

import "time"

// TrackEvent describes a read that linked a runner to a dependency-set.
type TrackEvent struct {
	Runner  *Runner
	Subject any
	Key     any
	Op      Op
}

// TriggerEvent describes a mutation that selected a runner for re-run.
// OldValue and NewValue carry whatever diagnostic context the producer
// supplied; the engine never interprets them except for the new length on a
// sequence truncation.
type TriggerEvent struct {
	Runner   *Runner
	Subject  any
	Key      any
	Kind     ChangeKind
	OldValue any
	NewValue any
}

// RunEvent describes one completed run of a runner.
type RunEvent struct {
	Runner   *Runner
	Duration time.Duration
	Err      error
}

// Observer receives engine-wide instrumentation events. Observers are
// registered at engine construction with WithObserver and must be fast;
// they are called synchronously on the tracking path.
type Observer interface {
	ObserveTrack(TrackEvent)
	ObserveTrigger(TriggerEvent)
	ObserveRun(RunEvent)
}

func (e *Engine) observeTrack(ev TrackEvent) {
	for _, o := range e.observers {
		o.ObserveTrack(ev)
	}
}

func (e *Engine) observeTrigger(ev TriggerEvent) {
	for _, o := range e.observers {
		o.ObserveTrigger(ev)
	}
}

func (e *Engine) observeRun(ev RunEvent) {
	for _, o := range e.observers {
		o.ObserveRun(ev)
	}
}
