// Package errors provides structured, actionable error messages for the
// reactive engine and its tooling.
//
// Each error has a stable code (e.g., "E001") that maps to:
//   - A short message describing the error
//   - A detailed explanation
//   - A documentation URL
//
// # Error Categories
//
// Errors are organized into categories:
//   - engine: Runner and dispatch errors
//   - timeline: Recorder snapshot and export errors
//   - devtools: Event stream server errors
//   - config: Observer and server configuration errors
//
// # Usage
//
//	err := errors.New("E021").
//	    Wrap(saveErr).
//	    WithSuggestion("Check that the export directory is writable")
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR E021: Timeline export failed
//	//
//	//   Caused by: open /var/log/timeline: permission denied
//	//
//	//   The store rejected the snapshot. Check the store's location and
//	//   credentials.
//	//
//	//   Hint: Check that the export directory is writable
package errors
