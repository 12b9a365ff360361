package host

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// State is the persisted host state.
type State struct {
	Active string `toml:"active"`
}

// StateFile persists the host state as TOML.
type StateFile struct {
	path string
}

// NewStateFile creates a state file handle for path.
func NewStateFile(path string) *StateFile {
	return &StateFile{path: path}
}

// Load reads the state. A missing file yields the zero state.
func (f *StateFile) Load() (State, error) {
	var st State
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return st, nil
		}
		return st, err
	}
	if err := toml.Unmarshal(data, &st); err != nil {
		return State{}, err
	}
	return st, nil
}

// Save writes the state, creating parent directories as needed.
func (f *StateFile) Save(st State) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
		return err
	}
	data, err := toml.Marshal(st)
	if err != nil {
		return err
	}
	return os.WriteFile(f.path, data, 0644)
}
