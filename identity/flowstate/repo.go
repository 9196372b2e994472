package flowstate

import "time"

// FlowState records one pending federated sign-in between the redirect to the
// upstream provider and the callback. Entries are consumed exactly once.
type FlowState struct {
	CodeVerifier string
	Nonce        string
	Intent       string // local path to return to after sign-in
	CreatedAt    time.Time
}

type Repo interface {
	Upsert(state string, flowState *FlowState) error
	Get(state string) (*FlowState, error)
	Delete(state string) error
}
