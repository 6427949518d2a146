package domain

import (
	"context"
	"time"
)

// Claims is the identity subset carried by a session token.
type Claims struct {
	Account   string
	Name      string
	Head      string
	ExpiresAt time.Time
}

// Session is an admitted request's credential: the raw token and what it decoded to.
type Session struct {
	Token  string
	Claims Claims
}

// RevocationList is the set of token strings that must be rejected
// regardless of signature validity.
type RevocationList interface {
	// Revoke marks token as invalid. expiresAt is the token's own expiry and
	// bounds how long the entry has to be kept. It reports true only for the
	// call that inserted the entry; revoking again changes nothing and
	// reports false.
	Revoke(ctx context.Context, token string, expiresAt time.Time) (bool, error)
	IsRevoked(ctx context.Context, token string) (bool, error)
	// Prune drops entries whose token expired before now and reports how many.
	Prune(ctx context.Context, now time.Time) (int, error)
}
