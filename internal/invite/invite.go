// Package invite implements the invite-token lifecycle: generation,
// time-boxed expiry, and single-use redemption into an RSVP.
package invite

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidToken indicates a token that was never issued.
	ErrInvalidToken = errors.New("invalid invite token")
	// ErrTokenExpired indicates a token past its expiry window.
	ErrTokenExpired = errors.New("invite token expired")
	// ErrAlreadyRedeemed indicates a token that has already been consumed.
	ErrAlreadyRedeemed = errors.New("invite token already redeemed")

	// ErrInviteNotFound is reported by a Store when no invite matches a token.
	ErrInviteNotFound = errors.New("invite not found")
	// ErrDuplicateToken is reported by a Store on a token collision.
	ErrDuplicateToken = errors.New("duplicate invite token")
	// ErrAlreadyConsumed is reported by a Store when the conditional
	// consume update matched no row because the invite was already used.
	ErrAlreadyConsumed = errors.New("invite already consumed")
)

// Invite is a one-time, time-boxed grant for a guest to RSVP to an event.
type Invite struct {
	Token      string
	EventID    int64
	GuestEmail string
	CreatedAt  time.Time
	Consumed   bool
}

// RSVP links a guest identity to an event, created exactly once per invite.
type RSVP struct {
	EventID  int64
	UserID   int64
	Approved bool
}

// GenerateToken returns a 128-bit random token, hex-encoded.
func GenerateToken() (string, error) {
	b := make([]byte, 16)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// Expired reports whether an invite created at createdAt is past the
// expiry window at the given instant. Time only advances, so once this
// returns true for an invite it returns true forever.
func Expired(createdAt, now time.Time, window time.Duration) bool {
	return now.Sub(createdAt) > window
}
