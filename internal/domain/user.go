package domain

import "context"

// User is a registered account. ID, Account and Mail are fixed at creation.
type User struct {
	ID           string
	Account      string
	PasswordHash string
	Name         string
	Mail         string
	Head         string // avatar reference
}

// UserPatch carries the mutable fields of an update. Nil fields are left as they are.
type UserPatch struct {
	PasswordHash *string
	Name         *string
	Head         *string
}

// UserRepository defines persistence operations for users.
// Create, Update and Delete check and mutate atomically.
type UserRepository interface {
	List(ctx context.Context) ([]User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	GetByAccount(ctx context.Context, account string) (*User, error)
	Create(ctx context.Context, user *User) error
	Update(ctx context.Context, id string, patch UserPatch) (*User, error)
	Delete(ctx context.Context, id string) error
}
