package identity

import "context"

// ChangeFunc receives the provider's current identity, or nil when signed out.
type ChangeFunc func(*Identity)

// UnsubscribeFunc detaches a session-change subscription. Safe to call more
// than once.
type UnsubscribeFunc func()

// Gateway is the capability interface onto the external identity provider.
// Every operation may fail with an *AuthError carrying the provider-supplied
// reason, and none may be assumed to complete synchronously on the provider
// side: the authoritative session state arrives through OnSessionChange.
type Gateway interface {
	// SignInWithPassword authenticates with an email/password pair and
	// returns the resulting identity.
	SignInWithPassword(ctx context.Context, email, password string) (*Identity, error)

	// SignUpWithPassword creates a new account, applies the initial profile,
	// and returns the signed-in identity.
	SignUpWithPassword(ctx context.Context, email, password string, profile ProfileUpdate) (*Identity, error)

	// FederatedAuthURL starts a federated sign-in. The returned URL sends the
	// user to the upstream provider; intent is the local path to return to
	// after CompleteFederated. The state value ties the two phases together.
	FederatedAuthURL(ctx context.Context, intent string) (authURL string, state string, err error)

	// CompleteFederated finishes a federated sign-in with the state and code
	// returned by the provider. It returns the identity and the navigation
	// intent recorded by FederatedAuthURL.
	CompleteFederated(ctx context.Context, state, code string) (*Identity, string, error)

	// SignOut revokes the credential with the provider.
	SignOut(ctx context.Context, accessToken string) error

	// SendPasswordReset asks the provider to email a reset link.
	SendPasswordReset(ctx context.Context, email string) error

	// UpdateProfile changes the display name and/or photo of the identity
	// owning the credential.
	UpdateProfile(ctx context.Context, accessToken string, update ProfileUpdate) error

	// OnSessionChange registers fn to be invoked with the current identity
	// (or nil) immediately upon subscription and again on every subsequent
	// change. The returned func detaches the subscription.
	OnSessionChange(fn ChangeFunc) UnsubscribeFunc
}
