package jsonfile

import (
	"context"

	"github.com/google/uuid"
	"github.com/msomdec/account-service/internal/domain"
)

// UserRepository implements domain.UserRepository on top of a Store.
type UserRepository struct {
	store *Store
}

// NewUserRepository creates a UserRepository backed by store.
func NewUserRepository(store *Store) *UserRepository {
	return &UserRepository{store: store}
}

func (r *UserRepository) List(ctx context.Context) ([]domain.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	users := make([]domain.User, len(r.store.users))
	for i, rec := range r.store.users {
		users[i] = rec.toDomain()
	}
	return users, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.find(func(rec record) bool { return rec.ID == id })
}

func (r *UserRepository) GetByAccount(ctx context.Context, account string) (*domain.User, error) {
	return r.find(func(rec record) bool { return rec.Account == account })
}

func (r *UserRepository) find(match func(record) bool) (*domain.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	i := r.store.indexOf(match)
	if i < 0 {
		return nil, domain.ErrNotFound
	}
	user := r.store.users[i].toDomain()
	return &user, nil
}

// Create assigns user a fresh ID and appends it. The account check runs
// before the mail check.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	var id string
	err := r.store.mutate(func() error {
		if r.store.indexOf(func(rec record) bool { return rec.Account == user.Account }) >= 0 {
			return domain.ErrDuplicateAccount
		}
		if r.store.indexOf(func(rec record) bool { return rec.Mail == user.Mail }) >= 0 {
			return domain.ErrDuplicateEmail
		}

		id = r.newID()
		rec := fromDomain(*user)
		rec.ID = id
		r.store.users = append(r.store.users, rec)
		return nil
	})
	if err != nil {
		return err
	}

	user.ID = id
	return nil
}

// newID must be called with the store lock held.
func (r *UserRepository) newID() string {
	for {
		id := uuid.NewString()
		if r.store.indexOf(func(rec record) bool { return rec.ID == id }) < 0 {
			return id
		}
	}
}

func (r *UserRepository) Update(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error) {
	var updated domain.User
	err := r.store.mutate(func() error {
		i := r.store.indexOf(func(rec record) bool { return rec.ID == id })
		if i < 0 {
			return domain.ErrNotFound
		}

		rec := &r.store.users[i]
		if patch.PasswordHash != nil {
			rec.PasswordHash = *patch.PasswordHash
		}
		if patch.Name != nil {
			rec.Name = *patch.Name
		}
		if patch.Head != nil {
			rec.Head = *patch.Head
		}
		updated = rec.toDomain()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	return r.store.mutate(func() error {
		i := r.store.indexOf(func(rec record) bool { return rec.ID == id })
		if i < 0 {
			return domain.ErrNotFound
		}
		r.store.users = append(r.store.users[:i:i], r.store.users[i+1:]...)
		return nil
	})
}

func (rec record) toDomain() domain.User {
	return domain.User{
		ID:           rec.ID,
		Account:      rec.Account,
		PasswordHash: rec.PasswordHash,
		Name:         rec.Name,
		Mail:         rec.Mail,
		Head:         rec.Head,
	}
}

func fromDomain(u domain.User) record {
	return record{
		ID:           u.ID,
		Account:      u.Account,
		PasswordHash: u.PasswordHash,
		Name:         u.Name,
		Mail:         u.Mail,
		Head:         u.Head,
	}
}
