package flowstate

import (
	"sync"
	"time"

	"github.com/pkg/errors"
)

const defaultTTL = 15 * time.Minute

var _ Repo = (*InMemoryRepo)(nil)

// InMemoryRepo is a thread-safe in-memory implementation of the Repo
// interface. Entries older than the TTL are treated as not found.
type InMemoryRepo struct {
	mu     sync.RWMutex
	states map[string]*FlowState
	ttl    time.Duration
}

// NewInMemoryRepo creates a new in-memory federated flow-state repository
func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{
		states: make(map[string]*FlowState),
		ttl:    defaultTTL,
	}
}

// Upsert stores or updates a flow state
func (r *InMemoryRepo) Upsert(state string, flowState *FlowState) error {
	if state == "" {
		return errors.New("state cannot be empty")
	}
	if flowState == nil {
		return errors.New("flowState cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Store a copy to prevent external modifications
	stored := *flowState
	r.states[state] = &stored

	return nil
}

// Get retrieves a flow state by state parameter
func (r *InMemoryRepo) Get(state string) (*FlowState, error) {
	if state == "" {
		return nil, errors.New("state cannot be empty")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	flowState, exists := r.states[state]
	if !exists {
		return nil, errors.New("state not found")
	}
	if time.Since(flowState.CreatedAt) > r.ttl {
		return nil, errors.New("state expired")
	}

	found := *flowState
	return &found, nil
}

// Delete removes a flow state
func (r *InMemoryRepo) Delete(state string) error {
	if state == "" {
		return errors.New("state cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.states, state)
	return nil
}
