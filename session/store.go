// Package session holds the process-wide authentication state: the current
// identity (or none) and a resolving flag that stays true until the identity
// provider delivers its first session-change notification. Exactly one Store
// exists per running application; it is the only writer of session state and
// every other component reads snapshots through it.
package session

import (
	"context"
	"sync"

	"github.com/jrsteele09/go-billdesk/identity"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Store is the single source of truth for "who is logged in."
type Store struct {
	gateway identity.Gateway

	mu        sync.RWMutex
	identity  *identity.Identity
	resolving bool

	initOnce    sync.Once
	unsubscribe identity.UnsubscribeFunc
}

// NewStore creates a Store in the unresolved state: no identity, resolving
// until the gateway's first notification arrives via Initialize.
func NewStore(gateway identity.Gateway) (*Store, error) {
	if gateway == nil {
		return nil, errors.New("[NewStore] gateway is required")
	}
	return &Store{
		gateway:   gateway,
		resolving: true,
	}, nil
}

// Initialize subscribes to the gateway's session-change notifications. It is
// safe to call more than once; only the first call subscribes.
func (s *Store) Initialize() {
	s.initOnce.Do(func() {
		unsubscribe := s.gateway.OnSessionChange(s.apply)
		s.mu.Lock()
		s.unsubscribe = unsubscribe
		s.mu.Unlock()
	})
}

// Close releases the gateway subscription. Idempotent; safe on every
// teardown path.
func (s *Store) Close() {
	s.mu.Lock()
	unsubscribe := s.unsubscribe
	s.unsubscribe = nil
	s.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

// apply is the sole write path for gateway notifications. Updates are
// serialized by the store's lock in notification-arrival order
// (last-write-wins), and the first notification ends the resolving state.
func (s *Store) apply(id *identity.Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identity = id.Clone()
	s.resolving = false
}

// Current returns a snapshot of the session: the identity (or nil) and
// whether the initial provider callback is still outstanding. It never
// blocks; callers deciding access must treat resolving==true as unknown.
func (s *Store) Current() (*identity.Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity.Clone(), s.resolving
}

// Token returns the bearer credential of the current identity, or "" when
// signed out or unresolved. Read synchronously at call time so request
// stamping always reflects the session at dispatch.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity == nil {
		return ""
	}
	return s.identity.AccessToken
}

// SignIn authenticates with an email/password pair. While the call is
// outstanding the session is resolving; on success the identity is set
// optimistically from the immediate result (the gateway's own notification
// delivers the same value).
func (s *Store) SignIn(ctx context.Context, email, password string) (*identity.Identity, error) {
	s.setResolving(true)

	id, err := s.gateway.SignInWithPassword(ctx, email, password)
	if err != nil {
		s.setResolving(false)
		return nil, identity.AsAuthError(err, identity.ReasonBadCredential)
	}

	s.apply(id)
	return id, nil
}

// SignUp creates a new account with the given profile and signs it in.
func (s *Store) SignUp(ctx context.Context, email, password string, profile identity.ProfileUpdate) (*identity.Identity, error) {
	if err := identity.ValidateEmail(email); err != nil {
		return nil, identity.AsAuthError(err, identity.ReasonInvalidInput)
	}
	if err := identity.ValidatePasswordStrength(password); err != nil {
		return nil, identity.AsAuthError(err, identity.ReasonInvalidInput)
	}

	s.setResolving(true)

	id, err := s.gateway.SignUpWithPassword(ctx, email, password, profile)
	if err != nil {
		s.setResolving(false)
		return nil, identity.AsAuthError(err, identity.ReasonProviderRejected)
	}

	s.apply(id)
	return id, nil
}

// FederatedAuthURL starts a federated sign-in and returns the provider URL
// to redirect the user to. intent is the local path to return to afterwards.
func (s *Store) FederatedAuthURL(ctx context.Context, intent string) (string, error) {
	authURL, _, err := s.gateway.FederatedAuthURL(ctx, intent)
	if err != nil {
		return "", identity.AsAuthError(err, identity.ReasonProviderRejected)
	}
	return authURL, nil
}

// CompleteFederated finishes a federated sign-in and returns the identity
// and the recorded navigation intent.
func (s *Store) CompleteFederated(ctx context.Context, state, code string) (*identity.Identity, string, error) {
	s.setResolving(true)

	id, intent, err := s.gateway.CompleteFederated(ctx, state, code)
	if err != nil {
		s.setResolving(false)
		return nil, "", identity.AsAuthError(err, identity.ReasonFlowCancelled)
	}

	s.apply(id)
	return id, intent, nil
}

// UpdateProfile delegates display-name/photo changes to the gateway and, on
// success, merges the fields into the current identity locally: the gateway
// does not always re-emit a change notification for profile edits.
func (s *Store) UpdateProfile(ctx context.Context, update identity.ProfileUpdate) error {
	current, _ := s.Current()
	if current == nil {
		return identity.NewAuthError(identity.ReasonSignedOut, "no identity to update")
	}

	if err := s.gateway.UpdateProfile(ctx, current.AccessToken, update); err != nil {
		return identity.AsAuthError(err, identity.ReasonProviderRejected)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity != nil {
		s.identity.Apply(update)
	}
	return nil
}

// RequestPasswordReset asks the provider to send a reset link.
func (s *Store) RequestPasswordReset(ctx context.Context, email string) error {
	if err := identity.ValidateEmail(email); err != nil {
		return identity.AsAuthError(err, identity.ReasonInvalidInput)
	}
	if err := s.gateway.SendPasswordReset(ctx, email); err != nil {
		return identity.AsAuthError(err, identity.ReasonUnknownAccount)
	}
	return nil
}

// SignOut delegates to the gateway and clears the identity regardless of the
// gateway outcome. Calling it when already signed out is a no-op success.
func (s *Store) SignOut(ctx context.Context) error {
	current, _ := s.Current()
	if current == nil {
		return nil
	}

	if err := s.gateway.SignOut(ctx, current.AccessToken); err != nil {
		// Revocation failure does not keep the user signed in locally.
		log.Warn().Err(err).Msg("gateway sign-out failed; clearing session anyway")
	}

	s.apply(nil)
	return nil
}

func (s *Store) setResolving(resolving bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resolving = resolving
}
