// Package reactive implements dependency tracking and effect scheduling
// for observed state.
//
// The engine records, for every (subject, key) pair read during a tracked
// computation, which computation performed the read. When a later write is
// reported for that pair, the engine re-runs every subscribed computation,
// derived computations first, each at most once per trigger.
//
// # Core Types
//
// Engine is an independent tracking domain. Most programs use the package
// default via the package-level functions:
//
//	r := reactive.NewRunner(func() error {
//	    reactive.Track(subject, "value", reactive.OpGet)
//	    return nil
//	})
//	reactive.Trigger(subject, "value", reactive.KindSet, 1, 2) // r re-runs
//
// Runner is a re-runnable unit of work. Its dependency set is re-derived
// from scratch on every run, so a branch no longer taken stops subscribing:
//
//	r := reactive.NewRunner(func() error {
//	    if flag.Get() {
//	        _ = obj.Get("a")
//	    } else {
//	        _ = obj.Get("b")
//	    }
//	    return nil
//	})
//
// # Producers
//
// The engine does not decide what counts as an observed read or write. A
// producer (such as package observe) calls Track on every read and Trigger
// on every mutation, passing the subject identity, the affected key (or the
// IterateKey/LengthKey sentinels for structural changes), and a change kind.
//
// # Re-entrancy
//
// All tracking and notification is synchronous. A runner whose own work
// writes a key it also reads is excluded from that trigger's candidates;
// this is the documented single-hop loop guard. Multi-hop cycles between
// distinct runners are the caller's responsibility.
//
// # Goroutines
//
// Tracking context is per-goroutine. A runner's reads are attributed to it
// only on the goroutine that invoked Run; spawning goroutines inside a work
// function does not carry tracking across.
package reactive
