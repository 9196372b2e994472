package identity

import (
	"errors"
	"fmt"
)

// Reason classifies why an identity-provider operation failed.
type Reason string

const (
	ReasonBadCredential    Reason = "bad_credential"
	ReasonDuplicateAccount Reason = "duplicate_account"
	ReasonUnknownAccount   Reason = "unknown_account"
	ReasonInvalidInput     Reason = "invalid_input"
	ReasonFlowCancelled    Reason = "flow_cancelled"
	ReasonSignedOut        Reason = "signed_out"
	ReasonProviderRejected Reason = "provider_rejected"
	ReasonUnreachable      Reason = "provider_unreachable"
)

// AuthError is any identity-provider operation failure. It is surfaced to the
// initiating caller for user-facing messaging and never retried automatically.
type AuthError struct {
	Reason  Reason
	Message string
	Err     error
}

func NewAuthError(reason Reason, message string) *AuthError {
	return &AuthError{Reason: reason, Message: message}
}

func WrapAuthError(err error, reason Reason, message string) *AuthError {
	return &AuthError{Reason: reason, Message: message, Err: err}
}

func (e *AuthError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Reason, e.Message)
	}
	return string(e.Reason)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// AsAuthError extracts an *AuthError from err's chain, or wraps err with the
// fallback reason so callers always see the AuthError taxonomy.
func AsAuthError(err error, fallback Reason) *AuthError {
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return authErr
	}
	return &AuthError{Reason: fallback, Message: err.Error(), Err: err}
}
