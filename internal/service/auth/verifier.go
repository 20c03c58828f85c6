package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken covers every credential failure; handlers only need to
// know the handshake must be refused.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the identity attached to a verified credential.
type Claims struct {
	UserID string
	Locale string // optional stored locale preference
}

// Verifier checks an opaque handshake credential. Token issuance lives
// elsewhere; this service only consumes tokens.
type Verifier interface {
	Verify(token string) (Claims, error)
}

// JWTVerifier validates HMAC-signed bearer tokens.
type JWTVerifier struct {
	secret []byte
}

// NewJWTVerifier builds a verifier over a shared HMAC secret.
func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret)}
}

// Verify parses and validates the token, returning the subject and any
// stored locale preference.
func (v *JWTVerifier) Verify(token string) (Claims, error) {
	if token == "" {
		return Claims{}, ErrInvalidToken
	}

	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil || !parsed.Valid {
		return Claims{}, ErrInvalidToken
	}

	mapClaims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, ErrInvalidToken
	}

	sub, _ := mapClaims.GetSubject()
	if sub == "" {
		return Claims{}, ErrInvalidToken
	}

	loc, _ := mapClaims["locale"].(string)
	return Claims{UserID: sub, Locale: loc}, nil
}
