package prefs

import "sync"

var _ Repo = (*InMemoryRepo)(nil)

// InMemoryRepo is a thread-safe in-memory implementation of the Repo
// interface, used in tests.
type InMemoryRepo struct {
	mu    sync.RWMutex
	theme Theme
}

func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{theme: ThemeLight}
}

func (r *InMemoryRepo) Get() (Theme, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.theme, nil
}

func (r *InMemoryRepo) Set(theme Theme) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.theme = theme
	return nil
}
