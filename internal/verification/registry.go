// Package verification holds the short-lived email verification codes.
package verification

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// CodeLength is the number of digits in a verification code.
const CodeLength = 6

// Retention keeps an expired entry around after its expiry so that a late
// attempt reports "Code expired" rather than "No verification code found".
const Retention = time.Hour

// Entry is the active challenge for one email address.
type Entry struct {
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired reports whether the entry is no longer valid at now.
func (e Entry) Expired(now time.Time) bool {
	return now.After(e.ExpiresAt)
}

// Registry maps a normalized email to its active code. Put overwrites any
// previous entry for the same email, so only the latest code validates.
type Registry interface {
	Put(ctx context.Context, email string, entry Entry) error
	// Get returns (nil, nil) when email has no entry.
	Get(ctx context.Context, email string) (*Entry, error)
	Delete(ctx context.Context, email string) error
}

// GenerateCode returns a uniformly random zero-padded numeric code.
func GenerateCode() (string, error) {
	limit := new(big.Int).Exp(big.NewInt(10), big.NewInt(CodeLength), nil)
	n, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", CodeLength, n.Int64()), nil
}

func retentionFor(entry Entry, now time.Time) time.Duration {
	ttl := entry.ExpiresAt.Sub(now) + Retention
	if ttl <= 0 {
		return Retention
	}
	return ttl
}
