package identity

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/jrsteele09/go-billdesk/identity/flowstate"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"
)

const (
	stateGenerationLength    = 32
	verifierGenerationLength = 48
	defaultRequestTimeout    = 10 * time.Second
)

// HTTPGatewayConfig carries the endpoints and credentials for the external
// identity provider.
type HTTPGatewayConfig struct {
	BaseURL          string // identity provider REST API base
	OIDCIssuer       string // issuer for federated sign-in
	OIDCClientID     string
	OIDCClientSecret string
	RedirectURL      string // this application's callback URL
}

type oidcConfig struct {
	oidcProvider *oidc.Provider
	oauth2Config *oauth2.Config
	oidcVerifier *oidc.IDTokenVerifier
}

// HTTPGateway adapts the external identity provider's REST API and its OIDC
// federated sign-in flow to the Gateway interface. It tracks the provider's
// current identity and pushes changes to OnSessionChange subscribers.
type HTTPGateway struct {
	config     HTTPGatewayConfig
	httpClient *http.Client
	flows      flowstate.Repo
	notifier   *sessionNotifier
	nowTime    func() time.Time

	oidcLock   sync.Mutex
	oidcCached *oidcConfig
}

var _ Gateway = (*HTTPGateway)(nil)

// HTTPGatewayOption defines a function type to modify the HTTPGateway instance.
type HTTPGatewayOption func(*HTTPGateway)

// WithHTTPClient overrides the HTTP client (primarily for testing).
func WithHTTPClient(client *http.Client) HTTPGatewayOption {
	return func(g *HTTPGateway) {
		g.httpClient = client
	}
}

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) HTTPGatewayOption {
	return func(g *HTTPGateway) {
		g.nowTime = nowFunc
	}
}

// WithRestoredToken seeds the gateway with a credential persisted from an
// earlier run, so subscribers see the restored identity rather than nil.
func WithRestoredToken(rawToken string) HTTPGatewayOption {
	return func(g *HTTPGateway) {
		if id, err := FromAccessToken(rawToken); err == nil {
			g.notifier.current = id
		}
	}
}

// NewHTTPGateway creates a gateway with a tuned HTTP transport.
func NewHTTPGateway(config HTTPGatewayConfig, flows flowstate.Repo, options ...HTTPGatewayOption) (*HTTPGateway, error) {
	if config.BaseURL == "" {
		return nil, errors.New("[NewHTTPGateway] BaseURL is required")
	}
	if flows == nil {
		return nil, errors.New("[NewHTTPGateway] flows repo is required")
	}

	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 20,
		IdleConnTimeout:     90 * time.Second,
	}

	gateway := &HTTPGateway{
		config: config,
		httpClient: &http.Client{
			Timeout:   defaultRequestTimeout,
			Transport: transport,
		},
		flows:    flows,
		notifier: newSessionNotifier(),
		nowTime:  time.Now,
	}

	for _, opt := range options {
		opt(gateway)
	}

	return gateway, nil
}

// accountResponse is the provider's account payload shape.
type accountResponse struct {
	LocalID     string `json:"localId"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	PhotoURL    string `json:"photoUrl"`
	IDToken     string `json:"idToken"`
}

type providerError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (g *HTTPGateway) SignInWithPassword(ctx context.Context, email, password string) (*Identity, error) {
	var account accountResponse
	err := g.post(ctx, "/v1/accounts:signInWithPassword", "", map[string]string{
		"email":    email,
		"password": password,
	}, &account)
	if err != nil {
		return nil, errors.Wrap(err, "[SignInWithPassword]")
	}

	id := g.identityFromAccount(account)
	g.notifier.set(id)
	return id.Clone(), nil
}

func (g *HTTPGateway) SignUpWithPassword(ctx context.Context, email, password string, profile ProfileUpdate) (*Identity, error) {
	body := map[string]string{
		"email":    email,
		"password": password,
	}
	if profile.DisplayName != nil {
		body["displayName"] = *profile.DisplayName
	}
	if profile.PhotoURL != nil {
		body["photoUrl"] = *profile.PhotoURL
	}

	var account accountResponse
	if err := g.post(ctx, "/v1/accounts:signUp", "", body, &account); err != nil {
		return nil, errors.Wrap(err, "[SignUpWithPassword]")
	}

	id := g.identityFromAccount(account)
	id.Apply(profile)
	g.notifier.set(id)
	return id.Clone(), nil
}

func (g *HTTPGateway) SignOut(ctx context.Context, accessToken string) error {
	err := g.post(ctx, "/v1/accounts:signOut", accessToken, map[string]string{}, nil)

	// The local view is cleared even when revocation fails: the caller is
	// signing out either way.
	g.notifier.set(nil)

	if err != nil {
		return errors.Wrap(err, "[SignOut]")
	}
	return nil
}

func (g *HTTPGateway) SendPasswordReset(ctx context.Context, email string) error {
	err := g.post(ctx, "/v1/accounts:sendOobCode", "", map[string]string{
		"requestType": "PASSWORD_RESET",
		"email":       email,
	}, nil)
	if err != nil {
		return errors.Wrap(err, "[SendPasswordReset]")
	}
	return nil
}

func (g *HTTPGateway) UpdateProfile(ctx context.Context, accessToken string, update ProfileUpdate) error {
	if accessToken == "" {
		return NewAuthError(ReasonSignedOut, "no credential to update profile with")
	}

	body := map[string]string{}
	if update.DisplayName != nil {
		body["displayName"] = *update.DisplayName
	}
	if update.PhotoURL != nil {
		body["photoUrl"] = *update.PhotoURL
	}

	if err := g.post(ctx, "/v1/accounts:update", accessToken, body, nil); err != nil {
		return errors.Wrap(err, "[UpdateProfile]")
	}

	// The provider does not re-emit a change notification for profile edits,
	// so push the merged identity to subscribers here.
	if current := g.notifier.snapshot(); current != nil {
		current.Apply(update)
		g.notifier.set(current)
	}
	return nil
}

func (g *HTTPGateway) FederatedAuthURL(ctx context.Context, intent string) (string, string, error) {
	cfg, err := g.getOidcConfig(ctx)
	if err != nil {
		return "", "", errors.Wrap(err, "[FederatedAuthURL]")
	}

	state := generateRandomString(stateGenerationLength)
	verifier := generateRandomString(verifierGenerationLength)
	nonce := generateRandomString(stateGenerationLength)

	if err := g.flows.Upsert(state, &flowstate.FlowState{
		CodeVerifier: verifier,
		Nonce:        nonce,
		Intent:       intent,
		CreatedAt:    g.nowTime(),
	}); err != nil {
		return "", "", errors.Wrap(err, "[FederatedAuthURL] flows.Upsert")
	}

	authURL := cfg.oauth2Config.AuthCodeURL(state,
		oauth2.SetAuthURLParam("code_challenge", generateCodeChallenge(verifier)),
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
		oauth2.SetAuthURLParam("nonce", nonce),
	)
	return authURL, state, nil
}

func (g *HTTPGateway) CompleteFederated(ctx context.Context, state, code string) (*Identity, string, error) {
	if state == "" || code == "" {
		return nil, "", NewAuthError(ReasonFlowCancelled, "missing state or code")
	}

	flow, err := g.flows.Get(state)
	if err != nil {
		return nil, "", WrapAuthError(err, ReasonFlowCancelled, "unknown or expired sign-in flow")
	}
	// Consume the state before the exchange so a replayed callback fails.
	if err := g.flows.Delete(state); err != nil {
		return nil, "", errors.Wrap(err, "[CompleteFederated] flows.Delete")
	}

	cfg, err := g.getOidcConfig(ctx)
	if err != nil {
		return nil, "", errors.Wrap(err, "[CompleteFederated]")
	}

	oauth2Token, err := cfg.oauth2Config.Exchange(ctx, code,
		oauth2.SetAuthURLParam("code_verifier", flow.CodeVerifier),
	)
	if err != nil {
		return nil, "", WrapAuthError(err, ReasonProviderRejected, "token exchange failed")
	}

	rawIDToken, ok := oauth2Token.Extra("id_token").(string)
	if !ok {
		return nil, "", NewAuthError(ReasonProviderRejected, "no ID token in response")
	}

	idToken, err := cfg.oidcVerifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, "", WrapAuthError(err, ReasonProviderRejected, "ID token verification failed")
	}

	var claims struct {
		Nonce   string `json:"nonce"`
		Sub     string `json:"sub"`
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, "", WrapAuthError(err, ReasonProviderRejected, "failed to extract claims")
	}
	if claims.Nonce != flow.Nonce {
		return nil, "", NewAuthError(ReasonProviderRejected, "invalid nonce")
	}

	accessToken := oauth2Token.AccessToken
	if accessToken == "" {
		accessToken = rawIDToken
	}

	id := &Identity{
		ID:          claims.Sub,
		DisplayName: claims.Name,
		Email:       claims.Email,
		PhotoURL:    claims.Picture,
		AccessToken: accessToken,
	}
	g.notifier.set(id)
	return id.Clone(), flow.Intent, nil
}

func (g *HTTPGateway) OnSessionChange(fn ChangeFunc) UnsubscribeFunc {
	return g.notifier.subscribe(fn)
}

func (g *HTTPGateway) identityFromAccount(account accountResponse) *Identity {
	id := &Identity{
		ID:          account.LocalID,
		DisplayName: account.DisplayName,
		Email:       account.Email,
		PhotoURL:    account.PhotoURL,
		AccessToken: account.IDToken,
	}
	// Fill gaps from the credential's claims when the provider returned a JWT.
	if claimed, err := FromAccessToken(account.IDToken); err == nil {
		if id.ID == "" {
			id.ID = claimed.ID
		}
		if id.Email == "" {
			id.Email = claimed.Email
		}
		if id.DisplayName == "" {
			id.DisplayName = claimed.DisplayName
		}
		if id.PhotoURL == "" {
			id.PhotoURL = claimed.PhotoURL
		}
	}
	return id
}

func (g *HTTPGateway) getOidcConfig(ctx context.Context) (*oidcConfig, error) {
	g.oidcLock.Lock()
	defer g.oidcLock.Unlock()
	if g.oidcCached != nil {
		return g.oidcCached, nil
	}

	if g.config.OIDCIssuer == "" || g.config.OIDCClientID == "" {
		return nil, NewAuthError(ReasonProviderRejected, "federated sign-in is not configured")
	}

	provider, err := oidc.NewProvider(ctx, g.config.OIDCIssuer)
	if err != nil {
		return nil, errors.Wrap(err, "[getOidcConfig] oidc.NewProvider")
	}

	g.oidcCached = &oidcConfig{
		oidcProvider: provider,
		oauth2Config: &oauth2.Config{
			ClientID:     g.config.OIDCClientID,
			ClientSecret: g.config.OIDCClientSecret,
			Endpoint:     provider.Endpoint(),
			RedirectURL:  g.config.RedirectURL,
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		},
		oidcVerifier: provider.Verifier(&oidc.Config{
			ClientID: g.config.OIDCClientID,
		}),
	}
	return g.oidcCached, nil
}

// post sends a JSON request to the provider and decodes the response into out
// (when non-nil). Provider error payloads are mapped onto the AuthError
// taxonomy.
func (g *HTTPGateway) post(ctx context.Context, path, accessToken string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return errors.Wrap(err, "json.Marshal")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.config.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return errors.Wrap(err, "http.NewRequestWithContext")
	}
	req.Header.Set("Content-Type", "application/json")
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return WrapAuthError(err, ReasonUnreachable, "identity provider unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var perr providerError
		_ = json.Unmarshal(raw, &perr)
		return NewAuthError(reasonFromProviderCode(perr.Error.Message, resp.StatusCode), providerMessage(perr.Error.Message, resp.StatusCode))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return WrapAuthError(err, ReasonProviderRejected, "malformed provider response")
	}
	return nil
}

func reasonFromProviderCode(code string, status int) Reason {
	switch code {
	case "INVALID_LOGIN_CREDENTIALS", "INVALID_PASSWORD", "INVALID_EMAIL":
		return ReasonBadCredential
	case "EMAIL_EXISTS":
		return ReasonDuplicateAccount
	case "EMAIL_NOT_FOUND", "USER_NOT_FOUND":
		return ReasonUnknownAccount
	}
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return ReasonBadCredential
	}
	return ReasonProviderRejected
}

func providerMessage(code string, status int) string {
	if code != "" {
		return code
	}
	return http.StatusText(status)
}

// generateRandomString creates a random base64url string
func generateRandomString(length int) string {
	b := make([]byte, length)
	rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}

// generateCodeChallenge creates a PKCE code challenge from a verifier
func generateCodeChallenge(verifier string) string {
	hash := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(hash[:])
}
