// Package auth issues and validates reviewer tokens. Reviewers exchange the
// shared reviewer secret for a short-lived JWT that guards the decision and
// audit endpoints.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	dErrors "hsaonboard/pkg/domain-errors"
)

// Claims are the reviewer token claims.
type Claims struct {
	Subject string
}

// Issuer signs and validates reviewer JWTs with an HMAC key.
type Issuer struct {
	signingKey []byte
	secretHash string
	tokenTTL   time.Duration
}

// NewIssuer constructs an Issuer. secretHash is the bcrypt hash of the shared
// reviewer secret; when empty, token issuance is disabled.
func NewIssuer(signingKey, secretHash string) *Issuer {
	return &Issuer{
		signingKey: []byte(signingKey),
		secretHash: secretHash,
		tokenTTL:   time.Hour,
	}
}

// Issue verifies the presented reviewer secret and returns a signed token.
func (i *Issuer) Issue(subject, secret string, now time.Time) (string, error) {
	if i.secretHash == "" {
		return "", dErrors.New(dErrors.CodeUnauthorized, "reviewer access is not configured")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(i.secretHash), []byte(secret)); err != nil {
		return "", dErrors.New(dErrors.CodeUnauthorized, "invalid reviewer secret")
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": subject,
		"iat": now.Unix(),
		"exp": now.Add(i.tokenTTL).Unix(),
	})
	signed, err := token.SignedString(i.signingKey)
	if err != nil {
		return "", dErrors.Wrap(dErrors.CodeInternal, "could not sign token", err)
	}
	return signed, nil
}

// ValidateToken parses and validates a reviewer JWT.
func (i *Issuer) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "unexpected signing method")
		}
		return i.signingKey, nil
	})
	if err != nil || !token.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid or expired token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "token missing subject")
	}
	return &Claims{Subject: sub}, nil
}
