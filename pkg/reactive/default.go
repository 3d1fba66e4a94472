package reactive

// defaultEngine backs the package-level functions. Programs that need an
// isolated tracking domain (tests, multiple independent apps in-process)
// create their own with NewEngine.
var defaultEngine = NewEngine()

// Default returns the package-level engine.
func Default() *Engine {
	return defaultEngine
}

// NewRunner creates a runner in the default engine. See Engine.NewRunner.
func NewRunner(work func() error, opts ...RunnerOption) *Runner {
	return defaultEngine.NewRunner(work, opts...)
}

// Track records a read in the default engine. See Engine.Track.
func Track(subject, key any, op Op) {
	defaultEngine.Track(subject, key, op)
}

// Trigger reports a mutation in the default engine. See Engine.Trigger.
func Trigger(subject, key any, kind ChangeKind, oldValue, newValue any) {
	defaultEngine.Trigger(subject, key, kind, oldValue, newValue)
}

// PauseTracking suspends read tracking in the default engine.
func PauseTracking() {
	defaultEngine.PauseTracking()
}

// EnableTracking re-enables read tracking in the default engine.
func EnableTracking() {
	defaultEngine.EnableTracking()
}

// ResetTracking restores the previous tracking-enabled state in the
// default engine.
func ResetTracking() {
	defaultEngine.ResetTracking()
}

// Untracked runs fn with read tracking paused in the default engine.
func Untracked(fn func()) {
	defaultEngine.Untracked(fn)
}

// Release drops all default-engine records for subject.
func Release(subject any) {
	defaultEngine.Release(subject)
}
