package timeline

import "io"

// Store persists exported timeline snapshots.
type Store interface {
	// Save writes a snapshot under name and returns its location
	// (a file path, object key, or URL, depending on the store).
	Save(name string, data io.Reader) (string, error)
}
