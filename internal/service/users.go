package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"

	"github.com/msomdec/account-service/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

// maxPasswordBytes is the longest input bcrypt accepts.
const maxPasswordBytes = 72

// RegisterInput holds the fields of a new account.
type RegisterInput struct {
	Account  string
	Password string
	Name     string
	Mail     string
	Head     string
}

// UpdateInput holds profile changes. Empty fields are left unchanged.
// Mail is accepted for form compatibility but never applied.
type UpdateInput struct {
	Password string
	Name     string
	Mail     string
	Head     string
}

// UserService is the user directory: lookups, registration, profile
// changes and credential checks.
type UserService struct {
	users      domain.UserRepository
	bcryptCost int
	// dummyHash is compared against when the account does not exist, so a
	// miss costs the same as a wrong password.
	dummyHash []byte
}

// NewUserService creates a new UserService.
func NewUserService(users domain.UserRepository, bcryptCost int) (*UserService, error) {
	dummy, err := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash dummy password: %w", err)
	}
	return &UserService{
		users:      users,
		bcryptCost: bcryptCost,
		dummyHash:  dummy,
	}, nil
}

// ListAll returns every user record.
func (s *UserService) ListAll(ctx context.Context) ([]domain.User, error) {
	return s.users.List(ctx)
}

// FindByID looks a user up by id.
func (s *UserService) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

// FindByAccount looks a user up by account name.
func (s *UserService) FindByAccount(ctx context.Context, account string) (*domain.User, error) {
	return s.users.GetByAccount(ctx, account)
}

// Create registers an account and returns its new id.
func (s *UserService) Create(ctx context.Context, in RegisterInput) (string, error) {
	if in.Account == "" || in.Password == "" || in.Mail == "" {
		return "", fmt.Errorf("%w: account, password, and mail are required", domain.ErrInvalidInput)
	}
	addr, err := mail.ParseAddress(in.Mail)
	if err != nil {
		return "", fmt.Errorf("%w: mail is not a valid address", domain.ErrInvalidInput)
	}
	// Only a bare address is stored, so display-name forms cannot register a
	// mailbox twice.
	if addr.Address != in.Mail {
		return "", fmt.Errorf("%w: mail must be a bare address such as %s", domain.ErrInvalidInput, addr.Address)
	}

	hash, err := s.hash(in.Password)
	if err != nil {
		return "", err
	}

	user := &domain.User{
		Account:      in.Account,
		PasswordHash: hash,
		Name:         in.Name,
		Mail:         in.Mail,
		Head:         in.Head,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return "", fmt.Errorf("create user: %w", err)
	}
	return user.ID, nil
}

// Update overwrites the supplied mutable fields of user id.
func (s *UserService) Update(ctx context.Context, id string, in UpdateInput) (*domain.User, error) {
	patch, err := s.patchFor(in)
	if err != nil {
		return nil, err
	}
	return s.applyPatch(ctx, id, patch)
}

// patchFor validates in and hashes its password, touching no records.
func (s *UserService) patchFor(in UpdateInput) (domain.UserPatch, error) {
	var patch domain.UserPatch
	if in.Password != "" {
		hash, err := s.hash(in.Password)
		if err != nil {
			return domain.UserPatch{}, err
		}
		patch.PasswordHash = &hash
	}
	if in.Name != "" {
		patch.Name = &in.Name
	}
	if in.Head != "" {
		patch.Head = &in.Head
	}
	return patch, nil
}

func (s *UserService) applyPatch(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error) {
	user, err := s.users.Update(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

// Delete removes user id.
func (s *UserService) Delete(ctx context.Context, id string) error {
	if err := s.users.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

// VerifyCredentials returns the user whose account and password both match,
// or domain.ErrInvalidCredentials.
func (s *UserService) VerifyCredentials(ctx context.Context, account, password string) (*domain.User, error) {
	user, err := s.users.GetByAccount(ctx, account)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	return user, nil
}

func (s *UserService) hash(password string) (string, error) {
	if len(password) > maxPasswordBytes {
		return "", fmt.Errorf("%w: password must be at most %d bytes", domain.ErrInvalidInput, maxPasswordBytes)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
