package prefs

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
)

const preferencesFileName = "preferences.json"

var _ Repo = (*FileRepo)(nil)

// FileRepo stores preferences as a JSON file under the app's data folder.
type FileRepo struct {
	mu   sync.RWMutex
	path string
}

type preferencesFile struct {
	Theme Theme `json:"theme"`
}

// NewFileRepo creates the repository, ensuring the data folder exists.
func NewFileRepo(dataFolder string) (*FileRepo, error) {
	if dataFolder == "" {
		return nil, errors.New("[NewFileRepo] dataFolder is required")
	}
	if err := os.MkdirAll(dataFolder, 0o755); err != nil {
		return nil, errors.Wrap(err, "[NewFileRepo] os.MkdirAll")
	}
	return &FileRepo{path: filepath.Join(dataFolder, preferencesFileName)}, nil
}

// Get returns the persisted theme, defaulting to light when nothing has been
// saved yet.
func (r *FileRepo) Get() (Theme, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	raw, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return ThemeLight, nil
		}
		return ThemeLight, errors.Wrap(err, "[FileRepo.Get] os.ReadFile")
	}

	var prefs preferencesFile
	if err := json.Unmarshal(raw, &prefs); err != nil {
		return ThemeLight, errors.Wrap(err, "[FileRepo.Get] json.Unmarshal")
	}
	if prefs.Theme == "" {
		return ThemeLight, nil
	}
	return prefs.Theme, nil
}

func (r *FileRepo) Set(theme Theme) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	raw, err := json.Marshal(preferencesFile{Theme: theme})
	if err != nil {
		return errors.Wrap(err, "[FileRepo.Set] json.Marshal")
	}
	if err := os.WriteFile(r.path, raw, 0o644); err != nil {
		return errors.Wrap(err, "[FileRepo.Set] os.WriteFile")
	}
	return nil
}
