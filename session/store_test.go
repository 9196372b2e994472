package session_test

import (
	"context"
	"net/url"
	"testing"

	"github.com/jrsteele09/go-billdesk/identity"
	"github.com/jrsteele09/go-billdesk/identity/gatewayfakes"
	"github.com/jrsteele09/go-billdesk/internal/utils"
	"github.com/jrsteele09/go-billdesk/session"
	"github.com/stretchr/testify/require"
)

const (
	testEmail    = "jane.doe@example.com"
	testPassword = "Sup3rSecret"
	testName     = "Jane Doe"
	testPhotoURL = "https://example.com/jane.png"
)

// testFixture holds the store under test and its fake identity provider.
type testFixture struct {
	gateway *gatewayfakes.FakeGateway
	store   *session.Store
}

// setupTestFixture creates an initialized store backed by a fake gateway with
// one registered account.
func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	gateway := gatewayfakes.NewFakeGateway()
	gateway.AddAccount(testEmail, testPassword, testName, testPhotoURL)

	store, err := session.NewStore(gateway)
	require.NoError(t, err)
	store.Initialize()
	t.Cleanup(store.Close)

	return &testFixture{gateway: gateway, store: store}
}

func TestNewStore_RequiresGateway(t *testing.T) {
	_, err := session.NewStore(nil)

	require.Error(t, err)
	require.Contains(t, err.Error(), "gateway is required")
}

// TestInitialize_ResolvesOnFirstNotification tests that the store starts
// unresolved and the immediate subscription callback settles it.
func TestInitialize_ResolvesOnFirstNotification(t *testing.T) {
	gateway := gatewayfakes.NewFakeGateway()
	store, err := session.NewStore(gateway)
	require.NoError(t, err)

	_, resolving := store.Current()
	require.True(t, resolving, "Store should be resolving before Initialize")

	store.Initialize()
	defer store.Close()

	id, resolving := store.Current()
	require.False(t, resolving, "First gateway notification should end resolving")
	require.Nil(t, id, "No identity while signed out")
}

// TestInitialize_RestoredSession tests that a provider holding a restored
// session delivers it through the immediate callback.
func TestInitialize_RestoredSession(t *testing.T) {
	gateway := gatewayfakes.NewFakeGateway()
	gateway.EmitSessionChange(&identity.Identity{
		ID:          "user-1",
		Email:       testEmail,
		AccessToken: "restored-token",
	})

	store, err := session.NewStore(gateway)
	require.NoError(t, err)
	store.Initialize()
	defer store.Close()

	id, resolving := store.Current()
	require.False(t, resolving)
	require.NotNil(t, id)
	require.Equal(t, "restored-token", id.AccessToken)
	require.Equal(t, "restored-token", store.Token())
}

func TestSignIn_Success(t *testing.T) {
	f := setupTestFixture(t)

	id, err := f.store.SignIn(context.Background(), testEmail, testPassword)

	require.NoError(t, err)
	require.Equal(t, testEmail, id.Email)
	require.Equal(t, testName, id.DisplayName)

	current, resolving := f.store.Current()
	require.False(t, resolving)
	require.NotNil(t, current)
	require.NotEmpty(t, f.store.Token())
}

func TestSignIn_WrongPassword(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.store.SignIn(context.Background(), testEmail, "not-the-password")

	require.Error(t, err)
	var authErr *identity.AuthError
	require.ErrorAs(t, err, &authErr)
	require.Equal(t, identity.ReasonBadCredential, authErr.Reason)

	current, resolving := f.store.Current()
	require.Nil(t, current, "Failed sign-in should not set an identity")
	require.False(t, resolving, "Failed sign-in should settle the resolving state")
}

func TestSignIn_ProviderUnreachable(t *testing.T) {
	f := setupTestFixture(t)
	f.gateway.FailNetwork = true

	_, err := f.store.SignIn(context.Background(), testEmail, testPassword)

	require.Error(t, err)
	var authErr *identity.AuthError
	require.ErrorAs(t, err, &authErr)
	require.Equal(t, identity.ReasonUnreachable, authErr.Reason)
}

func TestSignUp_Success(t *testing.T) {
	f := setupTestFixture(t)

	id, err := f.store.SignUp(context.Background(), "new.user@example.com", "Passw0rdOk", identity.ProfileUpdate{
		DisplayName: utils.Ptr("New User"),
		PhotoURL:    utils.Ptr("https://example.com/new.png"),
	})

	require.NoError(t, err)
	require.Equal(t, "new.user@example.com", id.Email)
	require.Equal(t, "New User", id.DisplayName)
	require.Equal(t, "https://example.com/new.png", id.PhotoURL)
}

func TestSignUp_RejectsWeakPassword(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.store.SignUp(context.Background(), "new.user@example.com", "short", identity.ProfileUpdate{})

	require.Error(t, err)
	var authErr *identity.AuthError
	require.ErrorAs(t, err, &authErr)
	require.Equal(t, identity.ReasonInvalidInput, authErr.Reason)
}

func TestSignUp_RejectsDuplicateAccount(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.store.SignUp(context.Background(), testEmail, "Passw0rdOk", identity.ProfileUpdate{})

	require.Error(t, err)
	var authErr *identity.AuthError
	require.ErrorAs(t, err, &authErr)
	require.Equal(t, identity.ReasonDuplicateAccount, authErr.Reason)
}

// TestApply_LastWriteWins tests that provider notifications replace the
// session snapshot in arrival order.
func TestApply_LastWriteWins(t *testing.T) {
	f := setupTestFixture(t)

	f.gateway.EmitSessionChange(&identity.Identity{ID: "user-a", AccessToken: "token-a"})
	f.gateway.EmitSessionChange(&identity.Identity{ID: "user-b", AccessToken: "token-b"})

	id, _ := f.store.Current()
	require.NotNil(t, id)
	require.Equal(t, "user-b", id.ID)
	require.Equal(t, "token-b", f.store.Token())

	f.gateway.EmitSessionChange(nil)
	id, _ = f.store.Current()
	require.Nil(t, id, "A nil notification signs the session out")
	require.Empty(t, f.store.Token())
}

func TestSignOut_ClearsSession(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.store.SignIn(context.Background(), testEmail, testPassword)
	require.NoError(t, err)

	err = f.store.SignOut(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, f.gateway.SignOutCalls)

	id, resolving := f.store.Current()
	require.Nil(t, id)
	require.False(t, resolving)
	require.Empty(t, f.store.Token())
}

// TestSignOut_Idempotent tests that signing out while already signed out is a
// no-op success and does not reach the provider.
func TestSignOut_Idempotent(t *testing.T) {
	f := setupTestFixture(t)

	require.NoError(t, f.store.SignOut(context.Background()))
	require.NoError(t, f.store.SignOut(context.Background()))
	require.Equal(t, 0, f.gateway.SignOutCalls)
}

// TestSignOut_ClearsDespiteGatewayFailure tests that a failed provider
// revocation still clears the local session.
func TestSignOut_ClearsDespiteGatewayFailure(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.store.SignIn(context.Background(), testEmail, testPassword)
	require.NoError(t, err)

	f.gateway.FailNetwork = true
	err = f.store.SignOut(context.Background())

	require.NoError(t, err, "Revocation failure must not surface to the user")
	id, _ := f.store.Current()
	require.Nil(t, id)
}

func TestUpdateProfile_MergesLocally(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.store.SignIn(context.Background(), testEmail, testPassword)
	require.NoError(t, err)

	err = f.store.UpdateProfile(context.Background(), identity.ProfileUpdate{
		DisplayName: utils.Ptr("Jane Renamed"),
	})
	require.NoError(t, err)

	id, _ := f.store.Current()
	require.NotNil(t, id)
	require.Equal(t, "Jane Renamed", id.DisplayName)
	require.Equal(t, testPhotoURL, id.PhotoURL, "Fields not in the update are untouched")
}

func TestUpdateProfile_RequiresSession(t *testing.T) {
	f := setupTestFixture(t)

	err := f.store.UpdateProfile(context.Background(), identity.ProfileUpdate{
		DisplayName: utils.Ptr("Nobody"),
	})

	require.Error(t, err)
	var authErr *identity.AuthError
	require.ErrorAs(t, err, &authErr)
	require.Equal(t, identity.ReasonSignedOut, authErr.Reason)
}

func TestRequestPasswordReset(t *testing.T) {
	f := setupTestFixture(t)

	err := f.store.RequestPasswordReset(context.Background(), testEmail)
	require.NoError(t, err)
	require.Equal(t, []string{testEmail}, f.gateway.ResetRequests)

	err = f.store.RequestPasswordReset(context.Background(), "unknown@example.com")
	require.Error(t, err)
}

func TestCompleteFederated_ReturnsIntent(t *testing.T) {
	f := setupTestFixture(t)

	authURL, err := f.store.FederatedAuthURL(context.Background(), "/myBills")
	require.NoError(t, err)
	require.NotEmpty(t, authURL)

	state := f.gatewayStateFromURL(t, authURL)
	id, intent, err := f.store.CompleteFederated(context.Background(), state, "auth-code")

	require.NoError(t, err)
	require.NotNil(t, id)
	require.Equal(t, "/myBills", intent)

	current, _ := f.store.Current()
	require.NotNil(t, current)
	require.Equal(t, id.ID, current.ID)
}

func TestCompleteFederated_UnknownState(t *testing.T) {
	f := setupTestFixture(t)

	_, _, err := f.store.CompleteFederated(context.Background(), "bogus-state", "auth-code")

	require.Error(t, err)
	var authErr *identity.AuthError
	require.ErrorAs(t, err, &authErr)
	require.Equal(t, identity.ReasonFlowCancelled, authErr.Reason)

	_, resolving := f.store.Current()
	require.False(t, resolving, "Failed completion should settle the resolving state")
}

// gatewayStateFromURL pulls the state parameter back out of the fake
// provider's authorization URL.
func (f *testFixture) gatewayStateFromURL(t *testing.T, authURL string) string {
	t.Helper()

	parsed, err := url.Parse(authURL)
	require.NoError(t, err)
	state := parsed.Query().Get("state")
	require.NotEmpty(t, state)
	return state
}
