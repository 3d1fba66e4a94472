package reactive

import "github.com/petermattis/goid"

// trackingContext holds the reactive state for one goroutine within an
// Engine. Each goroutine has its own context, so concurrent callers of the
// same engine cannot corrupt each other's attribution.
type trackingContext struct {
	// runners is the stack of currently-running runners. Reads are
	// attributed to the top entry; nested runs restore the outer entry
	// when they finish.
	runners []*Runner

	// shouldTrack is the current tracking-enabled state. When false, Track
	// is a no-op even while a runner is on the stack.
	shouldTrack bool

	// trackStack holds suspended shouldTrack states pushed by
	// PauseTracking/EnableTracking. Independent of the runner stack.
	trackStack []bool
}

// context returns the tracking context for the current goroutine,
// creating it on first use.
func (e *Engine) context() *trackingContext {
	gid := goid.Get()

	if tc, ok := e.contexts.Load(gid); ok {
		return tc.(*trackingContext)
	}

	tc := &trackingContext{shouldTrack: true}
	e.contexts.Store(gid, tc)
	return tc
}

// peek returns the current goroutine's context without creating one.
// Track and Trigger use it: with no context there is nothing to attribute
// or exclude, so neither ever needs to allocate one.
func (e *Engine) peek() *trackingContext {
	if tc, ok := e.contexts.Load(goid.Get()); ok {
		return tc.(*trackingContext)
	}
	return nil
}

// releaseContext drops the current goroutine's context once it is back in
// its zero state, so long-lived engines don't accumulate an entry per
// goroutine that ever touched them.
func (e *Engine) releaseContext(tc *trackingContext) {
	if len(tc.runners) == 0 && len(tc.trackStack) == 0 && tc.shouldTrack {
		e.contexts.Delete(goid.Get())
	}
}

// current returns the runner reads are currently attributed to, or nil.
func (tc *trackingContext) current() *Runner {
	if len(tc.runners) == 0 {
		return nil
	}
	return tc.runners[len(tc.runners)-1]
}

// onStack reports whether r is anywhere on the runner stack.
func (tc *trackingContext) onStack(r *Runner) bool {
	for _, running := range tc.runners {
		if running == r {
			return true
		}
	}
	return false
}

// pushRunner puts r on top of the runner stack and enables tracking,
// saving the previous enabled state.
func (tc *trackingContext) pushRunner(r *Runner) {
	tc.pushTracking(true)
	tc.runners = append(tc.runners, r)
}

// popRunner removes the top runner and restores the saved enabled state.
// Callers must pair it with pushRunner via defer so an error inside the
// work function cannot leave stale entries on either stack.
func (tc *trackingContext) popRunner() {
	tc.runners = tc.runners[:len(tc.runners)-1]
	tc.popTracking()
}

// pushTracking saves the current enabled state and sets a new one.
func (tc *trackingContext) pushTracking(enabled bool) {
	tc.trackStack = append(tc.trackStack, tc.shouldTrack)
	tc.shouldTrack = enabled
}

// popTracking restores the most recently saved enabled state.
// With nothing saved, tracking reverts to the enabled default.
func (tc *trackingContext) popTracking() {
	if n := len(tc.trackStack); n > 0 {
		tc.shouldTrack = tc.trackStack[n-1]
		tc.trackStack = tc.trackStack[:n-1]
		return
	}
	tc.shouldTrack = true
}

// PauseTracking suspends read tracking for the current goroutine until the
// matching ResetTracking. Reads performed while paused do not subscribe the
// current runner. Pause/enable regions nest freely with each other and with
// runner execution.
func (e *Engine) PauseTracking() {
	e.context().pushTracking(false)
}

// EnableTracking re-enables read tracking for the current goroutine until
// the matching ResetTracking, even inside a paused region.
func (e *Engine) EnableTracking() {
	e.context().pushTracking(true)
}

// ResetTracking restores the tracking-enabled state saved by the most
// recent PauseTracking or EnableTracking. If there is nothing to restore,
// tracking is enabled, the default.
func (e *Engine) ResetTracking() {
	tc := e.context()
	tc.popTracking()
	e.releaseContext(tc)
}

// Untracked runs fn with read tracking paused.
//
// Example:
//
//	reactive.Untracked(func() {
//	    // Reads here won't subscribe the current runner.
//	    total := cart.Len()
//	    _ = total
//	})
func (e *Engine) Untracked(fn func()) {
	e.PauseTracking()
	defer e.ResetTracking()
	fn()
}
