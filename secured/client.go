// Package secured provides the HTTP client used for every protected call to
// the remote bills service. Each outgoing request is stamped with the bearer
// credential the session holds at dispatch time, and an unauthenticated or
// forbidden response forces a sign-out and signals the caller to navigate to
// the re-authentication entry point.
package secured

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const defaultRequestTimeout = 15 * time.Second

// ErrAuthorizationFailure reports that a secured call received an
// unauthenticated or forbidden response. By the time a caller sees it, the
// session has already been torn down and the redirect signal fired; callers
// stop their work rather than surfacing an error page.
var ErrAuthorizationFailure = errors.New("authorization failure")

// RequestError is any other non-2xx outcome on a secured call. It is
// propagated to the caller unmodified for per-operation handling and never
// triggers a sign-out.
type RequestError struct {
	Status int
	Body   string
	Err    error
}

func (e *RequestError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("request failed: %v", e.Err)
	}
	return fmt.Sprintf("request failed: status %d", e.Status)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// Doer issues HTTP requests (implemented by *http.Client; injectable for
// testing).
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// CredentialSource yields the session's bearer credential at call time, or ""
// when signed out or unresolved. Implemented by *session.Store. Reading
// through it on every dispatch, rather than caching at construction, is what
// keeps a stale credential from outliving a sign-out.
type CredentialSource interface {
	Token() string
}

// SignOutFunc tears the session down after a credential rejection.
type SignOutFunc func(ctx context.Context) error

// RedirectFunc signals that the user must be sent to the re-authentication
// entry point.
type RedirectFunc func()

// Client is a secured HTTP client bound to a fixed base address.
type Client struct {
	baseURL  string
	doer     Doer
	creds    CredentialSource
	signOut  SignOutFunc
	redirect RedirectFunc
}

// ClientOption defines a function type to modify the Client instance.
type ClientOption func(*Client)

// WithDoer overrides the underlying HTTP client (primarily for testing).
func WithDoer(doer Doer) ClientOption {
	return func(c *Client) {
		c.doer = doer
	}
}

// New creates a secured client for the given base address.
func New(baseURL string, creds CredentialSource, signOut SignOutFunc, redirect RedirectFunc, options ...ClientOption) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("[secured.New] baseURL is required")
	}
	if creds == nil {
		return nil, errors.New("[secured.New] credential source is required")
	}

	client := &Client{
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		doer:     &http.Client{Timeout: defaultRequestTimeout},
		creds:    creds,
		signOut:  signOut,
		redirect: redirect,
	}

	for _, opt := range options {
		opt(client)
	}

	return client, nil
}

// Do issues a request against the base address. The caller owns the response
// body on success. When the response is 401 or 403 the body is consumed, the
// session is torn down, the redirect signal fires exactly once, and
// ErrAuthorizationFailure is returned.
func (c *Client) Do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Wrap(err, "[Client.Do] json.Marshal")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, errors.Wrap(err, "[Client.Do] http.NewRequestWithContext")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	// Snapshot of the session at dispatch: non-empty means signed in. A call
	// issued before the session has resolved goes out unauthenticated rather
	// than blocking; the server's rejection, if any, takes the standard path.
	if token := c.creds.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.doer.Do(req)
	if err != nil {
		return nil, &RequestError{Err: errors.Wrap(err, "[Client.Do] doer.Do")}
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		drainAndClose(resp.Body)
		c.handleAuthorizationFailure(ctx, method, path, resp.StatusCode)
		return nil, ErrAuthorizationFailure
	}

	return resp, nil
}

// DoJSON issues a request and decodes a 2xx JSON response into out (when
// non-nil). Non-2xx responses other than 401/403 become a *RequestError.
func (c *Client) DoJSON(ctx context.Context, method, path string, body, out any) error {
	resp, err := c.Do(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &RequestError{Status: resp.StatusCode, Body: string(raw)}
	}

	if out == nil {
		drainAndClose(resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &RequestError{Status: resp.StatusCode, Err: errors.Wrap(err, "[Client.DoJSON] decode")}
	}
	return nil
}

func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.DoJSON(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.DoJSON(ctx, http.MethodPost, path, body, out)
}

func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.DoJSON(ctx, http.MethodPut, path, body, out)
}

func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.DoJSON(ctx, http.MethodDelete, path, nil, out)
}

// handleAuthorizationFailure runs once per failing response: one sign-out,
// one redirect signal, however many other calls are in flight. Sign-out is
// idempotent, so a response racing a sign-out that already happened is safe.
func (c *Client) handleAuthorizationFailure(ctx context.Context, method, path string, status int) {
	log.Warn().
		Str("method", method).
		Str("path", path).
		Int("status", status).
		Msg("secured call rejected; tearing down session")

	if c.signOut != nil {
		if err := c.signOut(ctx); err != nil {
			log.Error().Err(err).Msg("sign-out after authorization failure")
		}
	}
	if c.redirect != nil {
		c.redirect()
	}
}

func drainAndClose(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(body, 4096))
	_ = body.Close()
}
