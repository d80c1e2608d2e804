// Package jwt reads identifying claims from bearer tokens for audit correlation.
//
// Tokens are NOT verified here; the results must only be used for logging.
package jwt

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/eco2-team/backend/domains/data-shield/internal/constants"
)

// JWT claim keys
const (
	ClaimSub = "sub"
	ClaimJTI = "jti"
)

// ErrNoBearer is returned when the header does not carry a bearer token.
var ErrNoBearer = errors.New(constants.ErrMissingBearer)

// Identity holds the claims used to correlate audit entries.
type Identity struct {
	Subject string
	JTI     string
}

// Peek parses an Authorization header value without checking the signature.
func Peek(authHeader string) (Identity, error) {
	tokenString, ok := bearerToken(authHeader)
	if !ok {
		return Identity{}, ErrNoBearer
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return Identity{}, fmt.Errorf(constants.ErrInvalidToken, err)
	}

	sub, _ := claims[ClaimSub].(string)
	jti, _ := claims[ClaimJTI].(string)
	return Identity{
		Subject: strings.TrimSpace(sub),
		JTI:     strings.TrimSpace(jti),
	}, nil
}

func bearerToken(header string) (string, bool) {
	for _, prefix := range []string{constants.BearerPrefix, constants.BearerPrefixLower} {
		if rest, found := strings.CutPrefix(header, prefix); found {
			rest = strings.TrimSpace(rest)
			return rest, rest != ""
		}
	}
	return "", false
}
