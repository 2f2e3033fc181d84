// Package auth carries the authenticated caller through request contexts.
package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const contextCallerKey contextKey = "caller"

// WithCaller returns a context carrying the authenticated user id.
func WithCaller(ctx context.Context, userId string) context.Context {
	return context.WithValue(ctx, contextCallerKey, userId)
}

// CallerFrom returns the authenticated user id, if any.
func CallerFrom(ctx context.Context) (string, bool) {
	userId, ok := ctx.Value(contextCallerKey).(string)
	if !ok || strings.TrimSpace(userId) == "" {
		return "", false
	}
	return userId, true
}

// IssueToken signs an HS256 token whose subject is userId.
func IssueToken(userId string, secret []byte, ttl time.Duration) (string, error) {
	if strings.TrimSpace(userId) == "" {
		return "", errors.New("missing subject")
	}
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userId,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ParseTokenSubject validates an HMAC-signed token and returns its subject.
func ParseTokenSubject(tokenString string, secret []byte) (string, error) {
	claims := jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return secret, nil
	})
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", errors.New("invalid token")
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return "", errors.New("missing subject")
	}
	return claims.Subject, nil
}
