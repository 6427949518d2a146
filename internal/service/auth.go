package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/msomdec/account-service/internal/domain"
)

// AuthService runs the session lifecycle: login, verification, refresh,
// and the credential-affecting actions that retire the token they consumed.
type AuthService struct {
	users   *UserService
	tokens  *TokenIssuer
	revoked domain.RevocationList
}

// NewAuthService creates a new AuthService.
func NewAuthService(users *UserService, tokens *TokenIssuer, revoked domain.RevocationList) *AuthService {
	return &AuthService{
		users:   users,
		tokens:  tokens,
		revoked: revoked,
	}
}

// Login verifies credentials and returns a fresh session token.
func (s *AuthService) Login(ctx context.Context, account, password string) (string, error) {
	user, err := s.users.VerifyCredentials(ctx, account, password)
	if err != nil {
		return "", err
	}

	token, err := s.tokens.Issue(claimsFor(user))
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return token, nil
}

// Authenticate checks a raw token against the revocation list and then
// verifies it. The revocation check comes first so a revoked token is
// rejected the same way whatever its signature.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.Session, error) {
	revoked, err := s.revoked.IsRevoked(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		return nil, domain.ErrRevoked
	}

	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}
	return &domain.Session{Token: token, Claims: claims}, nil
}

// Status confirms the session's user still exists, retires the consumed
// token and returns a replacement.
func (s *AuthService) Status(ctx context.Context, session *domain.Session) (string, error) {
	user, err := s.users.FindByAccount(ctx, session.Claims.Account)
	if err != nil {
		return "", err
	}
	if err := s.retire(ctx, session); err != nil {
		return "", err
	}

	token, err := s.tokens.Issue(claimsFor(user))
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return token, nil
}

// UpdateProfile applies in to user id on behalf of the session's user,
// retires the consumed token and returns the updated record with a token
// minted from it. The token is claimed after validation and before the
// write, so of several callers sharing one token only one changes the record.
func (s *AuthService) UpdateProfile(ctx context.Context, session *domain.Session, id string, in UpdateInput) (*domain.User, string, error) {
	if err := s.authorize(ctx, session, id); err != nil {
		return nil, "", err
	}
	patch, err := s.users.patchFor(in)
	if err != nil {
		return nil, "", err
	}
	if err := s.retire(ctx, session); err != nil {
		return nil, "", err
	}

	user, err := s.users.applyPatch(ctx, id, patch)
	if err != nil {
		return nil, "", err
	}

	token, err := s.tokens.Issue(claimsFor(user))
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}
	return user, token, nil
}

// DeleteAccount removes user id on behalf of the session's user, retires the
// consumed token and returns an already-expired token.
func (s *AuthService) DeleteAccount(ctx context.Context, session *domain.Session, id string) (string, error) {
	if err := s.authorize(ctx, session, id); err != nil {
		return "", err
	}
	if err := s.retire(ctx, session); err != nil {
		return "", err
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return "", err
	}
	return s.expired()
}

// Logout retires the consumed token and returns an already-expired token.
func (s *AuthService) Logout(ctx context.Context, session *domain.Session) (string, error) {
	if err := s.retire(ctx, session); err != nil {
		return "", err
	}
	return s.expired()
}

// authorize reports domain.ErrNotFound if id does not exist and
// domain.ErrForbidden if it belongs to someone other than the session's user.
func (s *AuthService) authorize(ctx context.Context, session *domain.Session, id string) error {
	target, err := s.users.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if target.Account != session.Claims.Account {
		return domain.ErrForbidden
	}
	return nil
}

// retire revokes the session's token. Only the first caller to retire a
// given token succeeds; every later one gets domain.ErrRevoked.
func (s *AuthService) retire(ctx context.Context, session *domain.Session) error {
	inserted, err := s.revoked.Revoke(ctx, session.Token, session.Claims.ExpiresAt)
	if err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	if !inserted {
		return domain.ErrRevoked
	}
	return nil
}

func (s *AuthService) expired() (string, error) {
	token, err := s.tokens.Expired()
	if err != nil {
		return "", fmt.Errorf("issue expired token: %w", err)
	}
	return token, nil
}

func claimsFor(user *domain.User) domain.Claims {
	return domain.Claims{
		Account: user.Account,
		Name:    user.Name,
		Head:    user.Head,
	}
}

// IsAuthError reports whether err means the caller holds no valid session.
func IsAuthError(err error) bool {
	return errors.Is(err, domain.ErrUnauthenticated) ||
		errors.Is(err, domain.ErrRevoked) ||
		errors.Is(err, domain.ErrExpired) ||
		errors.Is(err, domain.ErrInvalidSignature)
}
