package model

import (
	"fmt"
	"strconv"
	"strings"
)

// IdentityKind distinguishes registered users from guests
type IdentityKind string

const (
	KindRegistered IdentityKind = "registered"
	KindGuest      IdentityKind = "guest"
)

// Identity is the canonical identity used for all anti-cheat and
// leaderboard bookkeeping. For registered users the externally verified
// user id is itself canonical; guests get a server-assigned number.
type Identity struct {
	Kind        IdentityKind
	UserID      string // set when Kind == KindRegistered
	GuestNumber int64  // set when Kind == KindGuest
}

// Registered creates a registered identity from a verified user id
func Registered(userID string) Identity {
	return Identity{Kind: KindRegistered, UserID: userID}
}

// Guest creates a guest identity from a canonical guest number
func Guest(number int64) Identity {
	return Identity{Kind: KindGuest, GuestNumber: number}
}

// Key returns the stable bookkeeping key for this identity.
// Rate limit buckets, pattern history, and leaderboard grouping
// are all keyed on this value.
func (i Identity) Key() string {
	if i.Kind == KindRegistered {
		return "user:" + i.UserID
	}
	return "guest:" + strconv.FormatInt(i.GuestNumber, 10)
}

// DisplayName returns the public label for this identity.
// Guest labels derive from the canonical number, never from the
// raw ephemeral token.
func (i Identity) DisplayName() string {
	if i.Kind == KindRegistered {
		return i.UserID
	}
	return fmt.Sprintf("Guest_%d", i.GuestNumber)
}

// IdentityFromKey parses a bookkeeping key back into an Identity
func IdentityFromKey(key string) (Identity, error) {
	switch {
	case strings.HasPrefix(key, "user:"):
		return Registered(strings.TrimPrefix(key, "user:")), nil
	case strings.HasPrefix(key, "guest:"):
		n, err := strconv.ParseInt(strings.TrimPrefix(key, "guest:"), 10, 64)
		if err != nil {
			return Identity{}, fmt.Errorf("invalid guest identity key %q: %w", key, err)
		}
		return Guest(n), nil
	default:
		return Identity{}, fmt.Errorf("invalid identity key %q", key)
	}
}
