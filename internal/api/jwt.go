package api

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lyonms2/Portal-Hunter-Awakening-sub000/internal/keys"
)

// DefaultTokenTTL is the lifetime of tokens minted by IssueToken when the
// caller passes a zero ttl.
const DefaultTokenTTL = 24 * time.Hour

const tokenIssuer = "portal-hunter-arena"

var (
	errEmptySecret    = errors.New("session secret is empty")
	errMissingSubject = errors.New("token has no subject")
	errReservedUser   = errors.New("user id is reserved for AI opponents")
)

type sessionClaims struct {
	Name string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// IssueToken signs an HS256 session token for userID.
func IssueToken(secret []byte, userID, name string, ttl time.Duration) (string, error) {
	if len(secret) == 0 {
		return "", errEmptySecret
	}
	if strings.TrimSpace(userID) == "" {
		return "", errMissingSubject
	}
	if keys.IsAIUserID(userID) {
		return "", errReservedUser
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	now := time.Now()
	claims := sessionClaims{
		Name: name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// parseSession validates signature, algorithm and expiry and returns the
// claims.
func parseSession(secret []byte, token string) (*sessionClaims, error) {
	if len(secret) == 0 {
		return nil, errEmptySecret
	}
	claims := &sessionClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	if claims.Subject == "" {
		return nil, errMissingSubject
	}
	if keys.IsAIUserID(claims.Subject) {
		return nil, errReservedUser
	}
	return claims, nil
}
