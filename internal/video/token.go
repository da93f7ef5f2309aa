package video

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var errMissingCredentials = errors.New("video: api key and secret required")

// SignUserToken signs a provider-compatible user credential: HS256 with
// issuer = API key, subject = user ID, issued-at and expiry claims.
func SignUserToken(apiKey, secret, userID string, ttl time.Duration) (string, error) {
	if apiKey == "" || secret == "" {
		return "", errMissingCredentials
	}
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    apiKey,
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseUserToken validates a user token and returns its claims. Used in
// tests and by tooling; the provider performs its own verification.
func ParseUserToken(secret, tokenString string) (*jwt.RegisteredClaims, error) {
	var claims jwt.RegisteredClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("video: unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("video: invalid token")
	}
	return &claims, nil
}
