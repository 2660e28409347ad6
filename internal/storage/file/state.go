// internal/storage/file/state.go
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"play_reviews/internal/domain"
)

// StateStore keeps one connector's state in a single JSON file. The key is
// ignored: the file path already identifies the connection.
type StateStore struct{ path string }

func New(path string) *StateStore { return &StateStore{path: path} }

func (s *StateStore) Load(_ context.Context, _ string) (domain.State, bool, error) {
	b, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.State{}, false, nil
	}
	if err != nil {
		return domain.State{}, false, err
	}
	var st domain.State
	if err := json.Unmarshal(b, &st); err != nil {
		return domain.State{}, false, fmt.Errorf("%w: %s: %v", domain.ErrInvalidState, s.path, err)
	}
	return st, true, nil
}

// Save writes through a temp file so a crash never leaves a half-written state.
func (s *StateStore) Save(_ context.Context, _ string, st domain.State) error {
	b, err := json.MarshalIndent(st, "", " ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".state-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}
