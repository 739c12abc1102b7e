// Package home manages the regionsearch data directory layout.
//
// The data directory owns the persisted index files:
//
//	<root>/
//	  regions.ridx    (default index)
//	  <name>.ridx     (named datasets)
package home

import (
	"fmt"
	"os"
	"path/filepath"
)

// Dir represents a regionsearch data directory.
type Dir struct {
	root string
}

// New creates a Dir with an explicit root path.
func New(root string) Dir {
	return Dir{root: root}
}

// Default returns a Dir using the platform-appropriate default location:
//   - Linux:   ~/.config/regionsearch
//   - macOS:   ~/Library/Application Support/regionsearch
//   - Windows: %APPDATA%/regionsearch
func Default() (Dir, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return Dir{}, fmt.Errorf("determine config directory: %w", err)
	}
	return Dir{root: filepath.Join(base, "regionsearch")}, nil
}

// Root returns the data directory path.
func (d Dir) Root() string {
	return d.root
}

// IndexPath returns the path of a named index file under the data
// directory. An empty name selects the default dataset.
func (d Dir) IndexPath(name string) string {
	if name == "" {
		name = "regions"
	}
	return filepath.Join(d.root, name+".ridx")
}

// EnsureExists creates the data directory (and parents) if it doesn't exist.
func (d Dir) EnsureExists() error {
	if err := os.MkdirAll(d.root, 0o750); err != nil {
		return fmt.Errorf("create data directory %s: %w", d.root, err)
	}
	return nil
}
