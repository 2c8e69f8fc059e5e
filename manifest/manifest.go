// Package manifest handles verdin.toml runtime configuration.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Manifest represents a verdin.toml configuration file.
type Manifest struct {
	Project  Project  `toml:"project"`
	Dispatch Dispatch `toml:"dispatch"`
	Profile  Profile  `toml:"profile"`

	// Dir is the directory containing the verdin.toml file (set at load
	// time).
	Dir string `toml:"-"`
}

// Project contains project metadata.
type Project struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
}

// Dispatch tunes the call-site dispatch engine.
type Dispatch struct {
	// MaxDepth bounds specialized chain growth per call site; past it a
	// site dispatches generically. Zero means the engine default.
	MaxDepth int `toml:"max-depth"`

	// Trace enables debug logging of chain transitions.
	Trace bool `toml:"trace"`
}

// Profile configures dispatch profile snapshots.
type Profile struct {
	// Snapshot is the path profile snapshots are written to. Empty
	// disables snapshotting.
	Snapshot string `toml:"snapshot"`
}

// Load parses a verdin.toml file from the given directory.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, "verdin.toml")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	m.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}
	return &m, nil
}

// FindAndLoad walks up from startDir looking for a verdin.toml file, then
// loads and returns the manifest. Returns nil if none is found.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, "verdin.toml")
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return nil, nil
		}
		dir = parent
	}
}

// SnapshotPath returns the absolute snapshot output path, or "" when
// snapshotting is disabled.
func (m *Manifest) SnapshotPath() string {
	if m.Profile.Snapshot == "" {
		return ""
	}
	if filepath.IsAbs(m.Profile.Snapshot) {
		return m.Profile.Snapshot
	}
	return filepath.Join(m.Dir, m.Profile.Snapshot)
}
