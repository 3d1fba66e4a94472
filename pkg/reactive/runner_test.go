package reactive

import (
	"errors"
	"testing"
)

func TestLazyRunnerDoesNotRunOnCreate(t *testing.T) {
	e := NewEngine()
	subj := &testSubject{name: "obj"}

	runs := 0
	r := e.NewRunner(func() error {
		runs++
		e.Track(subj, "value", OpGet)
		return nil
	}, Lazy())

	if runs != 0 {
		t.Fatalf("lazy runner ran on create: %d runs", runs)
	}

	if err := r.Run(); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if runs != 1 {
		t.Fatalf("got %d runs after explicit Run, want 1", runs)
	}

	e.Trigger(subj, "value", KindSet, 1, 2)
	if runs != 2 {
		t.Errorf("lazy runner not re-run after trigger: %d runs", runs)
	}
}

func TestRunReturnsWorkError(t *testing.T) {
	e := NewEngine()
	boom := errors.New("boom")

	r := e.NewRunner(func() error {
		return boom
	}, Lazy())

	if err := r.Run(); !errors.Is(err, boom) {
		t.Errorf("work error not returned unchanged: %v", err)
	}
}

// A work-function error must not leave stale entries on the tracking
// stacks: tracking afterwards behaves exactly as before.
func TestErrorRestoresTrackingStacks(t *testing.T) {
	e := NewEngine()
	subj := &testSubject{name: "obj"}

	failing := e.NewRunner(func() error {
		e.Track(subj, "broken", OpGet)
		return errors.New("boom")
	}, Lazy())
	_ = failing.Run()

	// No runner should be current now: this read must not link anything.
	e.Track(subj, "loose", OpGet)

	s := e.Stats()
	if s.Links != 1 {
		t.Errorf("stack not restored after error, store: %+v", s)
	}
}

func TestPanicRestoresTrackingStacks(t *testing.T) {
	e := NewEngine()
	subj := &testSubject{name: "obj"}

	r := e.NewRunner(func() error {
		e.Track(subj, "value", OpGet)
		panic("work exploded")
	}, Lazy())

	func() {
		defer func() {
			if recover() == nil {
				t.Fatal("panic did not propagate")
			}
		}()
		_ = r.Run()
	}()

	e.Track(subj, "loose", OpGet)
	if s := e.Stats(); s.Links != 1 {
		t.Errorf("stack not restored after panic, store: %+v", s)
	}
}

// A runner that writes a key it also reads must not re-enter itself.
func TestSelfWriteGuard(t *testing.T) {
	e := NewEngine()
	subj := &testSubject{name: "counter"}

	runs := 0
	e.NewRunner(func() error {
		runs++
		if runs > 5 {
			t.Fatal("runaway self-trigger")
		}
		e.Track(subj, "n", OpGet)
		e.Trigger(subj, "n", KindSet, runs-1, runs)
		return nil
	})

	if runs != 1 {
		t.Errorf("self-write re-entered runner: %d runs", runs)
	}

	// An outside write still re-runs it.
	e.Trigger(subj, "n", KindSet, 1, 2)
	if runs != 2 {
		t.Errorf("outside trigger lost: %d runs", runs)
	}
}

// Only the currently-running runner is exempt. A different runner writing
// the same key during its own run does wake this one.
func TestSelfWriteGuardIsSingleHop(t *testing.T) {
	e := NewEngine()
	subj := &testSubject{name: "obj"}

	readerRuns := 0
	e.NewRunner(func() error {
		readerRuns++
		e.Track(subj, "n", OpGet)
		return nil
	})

	writer := e.NewRunner(func() error {
		e.Trigger(subj, "n", KindSet, 0, 1)
		return nil
	}, Lazy())

	if err := writer.Run(); err != nil {
		t.Fatal(err)
	}
	if readerRuns != 2 {
		t.Errorf("cross-runner trigger suppressed: %d reader runs", readerRuns)
	}
}

func TestRunWhileOnStackIsNoop(t *testing.T) {
	e := NewEngine()

	runs := 0
	var r *Runner
	r = e.NewRunner(func() error {
		runs++
		if runs == 1 {
			// Synchronous recursive invocation must not re-enter.
			if err := r.Run(); err != nil {
				return err
			}
		}
		return nil
	}, Lazy())

	if err := r.Run(); err != nil {
		t.Fatal(err)
	}
	if runs != 1 {
		t.Errorf("recursive Run re-entered runner: %d runs", runs)
	}
}

func TestStopIsTerminal(t *testing.T) {
	e := NewEngine()
	subj := &testSubject{name: "obj"}

	runs := 0
	stops := 0
	r := e.NewRunner(func() error {
		runs++
		e.Track(subj, "value", OpGet)
		return nil
	}, OnStop(func() {
		stops++
	}))

	if !r.Active() {
		t.Fatal("runner inactive before Stop")
	}

	r.Stop()
	r.Stop() // idempotent

	if r.Active() {
		t.Error("runner active after Stop")
	}
	if stops != 1 {
		t.Errorf("OnStop fired %d times, want 1", stops)
	}
	if s := e.Stats(); s.Links != 0 {
		t.Errorf("subscriptions survived Stop: %+v", s)
	}

	e.Trigger(subj, "value", KindSet, 1, 2)
	if runs != 1 {
		t.Errorf("stopped runner re-ran: %d runs", runs)
	}

	// Direct invocation still runs the work function, untracked.
	if err := r.Run(); err != nil {
		t.Fatal(err)
	}
	if runs != 2 {
		t.Errorf("stopped runner did not run directly: %d runs", runs)
	}
	if s := e.Stats(); s.Links != 0 {
		t.Errorf("stopped run created subscriptions: %+v", s)
	}

	e.Trigger(subj, "value", KindSet, 2, 3)
	if runs != 2 {
		t.Errorf("stopped runner's subscription revived: %d runs", runs)
	}
}

func TestSchedulerReceivesRunnerInsteadOfRun(t *testing.T) {
	e := NewEngine()
	subj := &testSubject{name: "obj"}

	runs := 0
	var queued []*Runner
	r := e.NewRunner(func() error {
		runs++
		e.Track(subj, "value", OpGet)
		return nil
	}, WithScheduler(func(r *Runner) {
		queued = append(queued, r)
	}))

	if runs != 1 {
		t.Fatalf("initial run bypassed: %d runs", runs)
	}

	e.Trigger(subj, "value", KindSet, 1, 2)
	if runs != 1 {
		t.Errorf("scheduler did not intercept re-run: %d runs", runs)
	}
	if len(queued) != 1 || queued[0] != r {
		t.Fatalf("scheduler received %v", queued)
	}

	// The scheduler decides when to invoke; a deferred Run re-subscribes.
	if err := queued[0].Run(); err != nil {
		t.Fatal(err)
	}
	if runs != 2 {
		t.Errorf("deferred run failed: %d runs", runs)
	}
}

func TestNestedRunnersRestoreAttribution(t *testing.T) {
	e := NewEngine()
	outer := &testSubject{name: "outer"}
	inner := &testSubject{name: "inner"}

	outerRuns := 0
	innerRuns := 0

	e.NewRunner(func() error {
		outerRuns++
		e.Track(outer, "before", OpGet)

		child := e.NewRunner(func() error {
			innerRuns++
			e.Track(inner, "value", OpGet)
			return nil
		}, Lazy())
		if err := child.Run(); err != nil {
			return err
		}

		// Attribution must revert to the outer runner here.
		e.Track(outer, "after", OpGet)
		return nil
	})

	if outerRuns != 1 || innerRuns != 1 {
		t.Fatalf("got outer=%d inner=%d runs", outerRuns, innerRuns)
	}

	e.Trigger(outer, "after", KindSet, 1, 2)
	if outerRuns != 2 {
		t.Errorf("read after nested run not attributed to outer: %d runs", outerRuns)
	}
	if innerRuns != 1 {
		t.Errorf("outer trigger ran inner: %d runs", innerRuns)
	}

	e.Trigger(inner, "value", KindSet, 1, 2)
	if innerRuns != 2 {
		t.Errorf("inner subscription missing: %d runs", innerRuns)
	}
}

func TestOnTriggerHookFiresBeforeDispatch(t *testing.T) {
	e := NewEngine()
	subj := &testSubject{name: "obj"}

	var events []TriggerEvent
	runsAtHook := -1
	runs := 0
	e.NewRunner(func() error {
		runs++
		e.Track(subj, "value", OpGet)
		return nil
	}, OnTrigger(func(ev TriggerEvent) {
		events = append(events, ev)
		runsAtHook = runs
	}))

	e.Trigger(subj, "value", KindSet, 1, 2)

	if len(events) != 1 {
		t.Fatalf("OnTrigger fired %d times, want 1", len(events))
	}
	ev := events[0]
	if ev.Subject != any(subj) || ev.Key != any("value") || ev.Kind != KindSet {
		t.Errorf("unexpected trigger event: %+v", ev)
	}
	if ev.OldValue != any(1) || ev.NewValue != any(2) {
		t.Errorf("diagnostic values not passed through: %+v", ev)
	}
	if runsAtHook != 1 {
		t.Errorf("OnTrigger fired after dispatch (runs=%d)", runsAtHook)
	}
	if runs != 2 {
		t.Errorf("dispatch did not follow hook: %d runs", runs)
	}
}

func TestRunnerAccessors(t *testing.T) {
	e := NewEngine()

	plain := e.NewRunner(func() error { return nil }, Lazy())
	derived := e.NewRunner(func() error { return nil }, Lazy(), Derived())

	if plain.Derived() {
		t.Error("plain runner reports derived")
	}
	if !derived.Derived() {
		t.Error("derived runner reports plain")
	}
	if plain.ID() == derived.ID() || plain.ID() == 0 {
		t.Errorf("bad IDs: %d %d", plain.ID(), derived.ID())
	}
}
