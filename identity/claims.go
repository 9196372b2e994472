package identity

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-billdesk/internal/utils"
	"github.com/pkg/errors"
)

// FromAccessToken normalizes a provider-issued bearer credential into an
// Identity by decoding its claims. The token is decoded without signature
// verification: this process is the credential holder, not a resource server,
// and the claims are only used for display. The remote services verify the
// signature themselves.
func FromAccessToken(rawToken string) (*Identity, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(rawToken, claims); err != nil {
		return nil, errors.Wrap(err, "[FromAccessToken] ParseUnverified")
	}

	id := &Identity{AccessToken: rawToken}
	if sub, err := claims.GetSubject(); err == nil {
		id.ID = sub
	}
	id.DisplayName = utils.Value(stringClaim(claims, "name"))
	id.Email = utils.Value(stringClaim(claims, "email"))
	id.PhotoURL = utils.Value(stringClaim(claims, "picture"))

	if id.ID == "" && id.Email == "" {
		return nil, errors.New("[FromAccessToken] token carries no identity claims")
	}
	return id, nil
}

func stringClaim(claims jwt.MapClaims, key string) *string {
	if v, ok := claims[key]; ok {
		if s, ok := v.(string); ok {
			return utils.Ptr(s)
		}
	}
	return nil
}
