package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/msomdec/account-service/internal/domain"
)

// DefaultTokenTTL is the validity window of a session token.
const DefaultTokenTTL = 30 * time.Minute

// expiredTokenTTL backdates the token handed out on logout and deletion.
const expiredTokenTTL = -10 * time.Second

type sessionClaims struct {
	Account string `json:"account,omitempty"`
	Name    string `json:"name,omitempty"`
	Head    string `json:"head,omitempty"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 session tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer creates a TokenIssuer. A non-positive ttl selects DefaultTokenTTL.
func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenIssuer{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// WithClock returns a copy of the issuer that reads time from now.
func (ti *TokenIssuer) WithClock(now func() time.Time) *TokenIssuer {
	cp := *ti
	cp.now = now
	return &cp
}

// TTL returns the validity window used by Issue.
func (ti *TokenIssuer) TTL() time.Duration {
	return ti.ttl
}

// Issue signs claims with the issuer's validity window.
func (ti *TokenIssuer) Issue(claims domain.Claims) (string, error) {
	return ti.IssueWithTTL(claims, ti.ttl)
}

// IssueWithTTL signs claims valid for ttl from now. A negative ttl produces
// a token that is already expired.
func (ti *TokenIssuer) IssueWithTTL(claims domain.Claims, ttl time.Duration) (string, error) {
	now := ti.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
		Account: claims.Account,
		Name:    claims.Name,
		Head:    claims.Head,
		RegisteredClaims: jwt.RegisteredClaims{
			// A unique ID keeps a re-minted token distinct from the one it
			// replaces, even within the same second.
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})

	signed, err := token.SignedString(ti.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Expired returns an identity-less token that is already past its expiry.
// Clients receive it as the "no longer authenticated" signal.
func (ti *TokenIssuer) Expired() (string, error) {
	return ti.IssueWithTTL(domain.Claims{}, expiredTokenTTL)
}

// Verify checks signature and expiry and returns the decoded claims.
// It fails with domain.ErrExpired or domain.ErrInvalidSignature.
func (ti *TokenIssuer) Verify(tokenString string) (domain.Claims, error) {
	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return ti.secret, nil
	},
		jwt.WithTimeFunc(ti.now),
		jwt.WithExpirationRequired(),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.Claims{}, domain.ErrExpired
		}
		return domain.Claims{}, domain.ErrInvalidSignature
	}
	if !token.Valid {
		return domain.Claims{}, domain.ErrInvalidSignature
	}

	return domain.Claims{
		Account:   claims.Account,
		Name:      claims.Name,
		Head:      claims.Head,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
