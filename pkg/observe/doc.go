// Package observe provides observed containers: typed data structures whose
// reads and writes are reported to a reactive engine.
//
// Containers are the producer side of the engine boundary. Every read
// tracks the reading runner against the container identity and the key it
// touched; every mutation triggers the affected key with the right change
// kind, so structural changes (new key, deletion, truncation) wake
// whole-container readers and not just single-key readers.
//
//	user := observe.NewRecord()
//	user.Set("name", "ada")
//
//	r := reactive.NewRunner(func() error {
//	    fmt.Println("name is", user.Get("name"))
//	    return nil
//	})
//	user.Set("name", "grace") // r re-runs
//
// Writes are equality-gated: setting a key to a value equal to its current
// one does not trigger.
//
// All containers are safe for concurrent use. Tracking applies per
// goroutine: reads subscribe whatever runner is current on the calling
// goroutine.
package observe
