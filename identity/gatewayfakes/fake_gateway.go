package gatewayfakes

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-billdesk/identity"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

var _ identity.Gateway = (*FakeGateway)(nil)

type account struct {
	id           string
	email        string
	passwordHash string
	displayName  string
	photoURL     string
}

// FakeGateway is a complete in-memory identity provider for tests: bcrypt
// password store, duplicate-account detection, and session-change fan-out
// matching the Gateway contract (immediate callback on subscribe, callback on
// every change).
type FakeGateway struct {
	lock     sync.Mutex
	accounts map[string]*account // keyed by email
	current  *identity.Identity
	subs     map[int]identity.ChangeFunc
	nextSub  int

	flows map[string]string // state -> intent

	// FailNetwork makes every provider call fail as unreachable.
	FailNetwork bool

	// FederatedIdentity is returned by CompleteFederated. Defaults to a
	// generated identity when nil.
	FederatedIdentity *identity.Identity

	// ResetRequests records emails passed to SendPasswordReset.
	ResetRequests []string

	// SignOutCalls counts provider-side sign-out requests.
	SignOutCalls int
}

func NewFakeGateway() *FakeGateway {
	return &FakeGateway{
		accounts: make(map[string]*account),
		subs:     make(map[int]identity.ChangeFunc),
		flows:    make(map[string]string),
	}
}

// AddAccount registers a test account and returns its generated user ID.
func (g *FakeGateway) AddAccount(email, password, displayName, photoURL string) string {
	g.lock.Lock()
	defer g.lock.Unlock()

	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	id := uuid.New().String()
	g.accounts[email] = &account{
		id:           id,
		email:        email,
		passwordHash: string(hash),
		displayName:  displayName,
		photoURL:     photoURL,
	}
	return id
}

// EmitSessionChange simulates a provider-pushed session change.
func (g *FakeGateway) EmitSessionChange(id *identity.Identity) {
	g.lock.Lock()
	defer g.lock.Unlock()
	g.setCurrentLocked(id)
}

// Current returns the provider's current identity.
func (g *FakeGateway) Current() *identity.Identity {
	g.lock.Lock()
	defer g.lock.Unlock()
	return g.current.Clone()
}

func (g *FakeGateway) SignInWithPassword(_ context.Context, email, password string) (*identity.Identity, error) {
	g.lock.Lock()
	defer g.lock.Unlock()

	if g.FailNetwork {
		return nil, identity.NewAuthError(identity.ReasonUnreachable, "identity provider unreachable")
	}

	acc, ok := g.accounts[email]
	if !ok {
		return nil, identity.NewAuthError(identity.ReasonUnknownAccount, "no account for "+email)
	}
	if bcrypt.CompareHashAndPassword([]byte(acc.passwordHash), []byte(password)) != nil {
		return nil, identity.NewAuthError(identity.ReasonBadCredential, "wrong password")
	}

	id := g.identityForLocked(acc)
	g.setCurrentLocked(id)
	return id.Clone(), nil
}

func (g *FakeGateway) SignUpWithPassword(_ context.Context, email, password string, profile identity.ProfileUpdate) (*identity.Identity, error) {
	g.lock.Lock()
	defer g.lock.Unlock()

	if g.FailNetwork {
		return nil, identity.NewAuthError(identity.ReasonUnreachable, "identity provider unreachable")
	}
	if _, exists := g.accounts[email]; exists {
		return nil, identity.NewAuthError(identity.ReasonDuplicateAccount, "account already exists for "+email)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return nil, errors.Wrap(err, "bcrypt.GenerateFromPassword")
	}

	acc := &account{
		id:           uuid.New().String(),
		email:        email,
		passwordHash: string(hash),
	}
	if profile.DisplayName != nil {
		acc.displayName = *profile.DisplayName
	}
	if profile.PhotoURL != nil {
		acc.photoURL = *profile.PhotoURL
	}
	g.accounts[email] = acc

	id := g.identityForLocked(acc)
	g.setCurrentLocked(id)
	return id.Clone(), nil
}

func (g *FakeGateway) FederatedAuthURL(_ context.Context, intent string) (string, string, error) {
	g.lock.Lock()
	defer g.lock.Unlock()

	if g.FailNetwork {
		return "", "", identity.NewAuthError(identity.ReasonUnreachable, "identity provider unreachable")
	}

	state := uuid.New().String()
	g.flows[state] = intent
	return "https://fake-issuer.example.com/authorize?state=" + state, state, nil
}

func (g *FakeGateway) CompleteFederated(_ context.Context, state, code string) (*identity.Identity, string, error) {
	g.lock.Lock()
	defer g.lock.Unlock()

	intent, ok := g.flows[state]
	if !ok {
		return nil, "", identity.NewAuthError(identity.ReasonFlowCancelled, "unknown sign-in flow")
	}
	delete(g.flows, state)

	if code == "" {
		return nil, "", identity.NewAuthError(identity.ReasonFlowCancelled, "sign-in cancelled")
	}

	id := g.FederatedIdentity
	if id == nil {
		id = &identity.Identity{
			ID:          uuid.New().String(),
			DisplayName: "Federated User",
			Email:       "federated@example.com",
			AccessToken: "fake-federated-token-" + uuid.New().String(),
		}
	}
	g.setCurrentLocked(id)
	return id.Clone(), intent, nil
}

func (g *FakeGateway) SignOut(_ context.Context, _ string) error {
	g.lock.Lock()
	defer g.lock.Unlock()

	g.SignOutCalls++
	if g.FailNetwork {
		// The contract clears local state regardless of revocation outcome.
		g.setCurrentLocked(nil)
		return identity.NewAuthError(identity.ReasonUnreachable, "identity provider unreachable")
	}
	g.setCurrentLocked(nil)
	return nil
}

func (g *FakeGateway) SendPasswordReset(_ context.Context, email string) error {
	g.lock.Lock()
	defer g.lock.Unlock()

	if g.FailNetwork {
		return identity.NewAuthError(identity.ReasonUnreachable, "identity provider unreachable")
	}
	if _, ok := g.accounts[email]; !ok {
		return identity.NewAuthError(identity.ReasonUnknownAccount, "no account for "+email)
	}
	g.ResetRequests = append(g.ResetRequests, email)
	return nil
}

func (g *FakeGateway) UpdateProfile(_ context.Context, accessToken string, update identity.ProfileUpdate) error {
	g.lock.Lock()
	defer g.lock.Unlock()

	if g.FailNetwork {
		return identity.NewAuthError(identity.ReasonUnreachable, "identity provider unreachable")
	}
	if g.current == nil || accessToken == "" || accessToken != g.current.AccessToken {
		return identity.NewAuthError(identity.ReasonSignedOut, "no signed-in identity for credential")
	}

	if acc, ok := g.accounts[g.current.Email]; ok {
		if update.DisplayName != nil {
			acc.displayName = *update.DisplayName
		}
		if update.PhotoURL != nil {
			acc.photoURL = *update.PhotoURL
		}
	}

	merged := g.current.Clone()
	merged.Apply(update)
	g.setCurrentLocked(merged)
	return nil
}

func (g *FakeGateway) OnSessionChange(fn identity.ChangeFunc) identity.UnsubscribeFunc {
	g.lock.Lock()
	defer g.lock.Unlock()

	subID := g.nextSub
	g.nextSub++
	g.subs[subID] = fn
	fn(g.current.Clone())

	return func() {
		g.lock.Lock()
		defer g.lock.Unlock()
		delete(g.subs, subID)
	}
}

func (g *FakeGateway) identityForLocked(acc *account) *identity.Identity {
	return &identity.Identity{
		ID:          acc.id,
		DisplayName: acc.displayName,
		Email:       acc.email,
		PhotoURL:    acc.photoURL,
		AccessToken: "fake-token-" + uuid.New().String(),
	}
}

func (g *FakeGateway) setCurrentLocked(id *identity.Identity) {
	g.current = id.Clone()
	for _, fn := range g.subs {
		fn(g.current.Clone())
	}
}
