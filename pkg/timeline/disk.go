package timeline

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// DiskStore saves timeline snapshots on the local filesystem.
type DiskStore struct {
	dir string
}

// NewDiskStore creates a store writing under dir, creating it if needed.
func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("timeline: create store dir: %w", err)
	}
	return &DiskStore{dir: dir}, nil
}

// Save writes the snapshot to a uniquely named JSON file and returns its
// path.
func (s *DiskStore) Save(name string, data io.Reader) (string, error) {
	path := filepath.Join(s.dir, name+"-"+randomSuffix()+".json")

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := io.Copy(f, data); err != nil {
		os.Remove(path)
		return "", err
	}
	return path, nil
}

// randomSuffix returns a short collision-resistant file name suffix.
func randomSuffix() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand only fails if the platform entropy source is broken.
		panic(err)
	}
	return hex.EncodeToString(b)
}
