// Package session issues and validates the signed, stateless session tokens
// carried in the NestAway auth cookie.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	Issuer   = "nestaway-api"
	Audience = "nestaway-client"
)

var (
	// ErrMissingToken is returned when no token was presented.
	ErrMissingToken = errors.New("session token required")
	// ErrInvalidToken covers bad signatures, wrong issuer/audience and expiry.
	ErrInvalidToken = errors.New("invalid or expired session token")
)

// Claims are the registered JWT claims of a session; Subject is the user id.
type Claims struct {
	jwt.RegisteredClaims
}

// Token is an issued session.
type Token struct {
	Value     string
	ExpiresAt time.Time
}

// Manager signs and verifies HS256 session tokens.
type Manager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewManager returns a Manager. ttl is the fixed session lifetime.
func NewManager(secret string, ttl time.Duration) *Manager {
	return &Manager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// TTL reports the session lifetime.
func (m *Manager) TTL() time.Duration { return m.ttl }

// Issue creates a token bound to userID.
func (m *Manager) Issue(userID string) (Token, error) {
	if len(m.secret) == 0 {
		return Token{}, fmt.Errorf("JWT secret not configured")
	}
	now := m.now()
	exp := now.Add(m.ttl)
	claims := Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   userID,
		Issuer:    Issuer,
		Audience:  jwt.ClaimStrings{Audience},
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
		ID:        fmt.Sprintf("%d-%s", now.Unix(), uuid.NewString()[:8]),
	}}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return Token{}, fmt.Errorf("sign session: %w", err)
	}
	return Token{Value: signed, ExpiresAt: exp}, nil
}

// Parse validates signature, issuer, audience and expiry and returns the subject user id.
func (m *Manager) Parse(token string) (string, error) {
	if token == "" {
		return "", ErrMissingToken
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	},
		jwt.WithIssuer(Issuer),
		jwt.WithAudience(Audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !parsed.Valid {
		return "", ErrInvalidToken
	}
	if claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
