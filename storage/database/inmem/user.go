package inmemdb

import (
	"context"

	"github.com/Bhaskar-J-Pathak/Acad-AI/core/user"
)

// userRepository mirrors the SQL schema: ids are primary keys and emails are unique.
type userRepository struct {
	db *userTable
}

var _ user.Repository = (*userRepository)(nil)

func NewUserRepository(db *DB) user.Repository {
	return &userRepository{db: db.user}
}

func (repo *userRepository) CheckEmailUniqueness(_ context.Context, email string, excludedIDs ...string) error {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	id, ok := repo.db.byEmail[email]
	if !ok {
		return nil
	}
	for _, excl := range excludedIDs {
		if id == excl {
			return nil
		}
	}
	return user.ErrEmailExists
}

func (repo *userRepository) CreateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, taken := repo.db.byEmail[usr.Email]; taken {
		return user.User{}, user.ErrEmailExists
	}
	repo.db.table[usr.ID] = usr
	repo.db.byEmail[usr.Email] = usr.ID
	return usr, nil
}

func (repo *userRepository) GetUserByID(_ context.Context, id string) (user.User, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if usr, ok := repo.db.table[id]; ok {
		return usr, nil
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) GetUserByEmail(_ context.Context, email string) (user.User, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if id, ok := repo.db.byEmail[email]; ok {
		return repo.db.table[id], nil
	}
	return user.User{}, user.ErrNotFound
}

// UpdateUser replaces the stored user, moving its email index entry when the email changed.
func (repo *userRepository) UpdateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	old, ok := repo.db.table[usr.ID]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	if old.Email != usr.Email {
		if _, taken := repo.db.byEmail[usr.Email]; taken {
			return user.User{}, user.ErrEmailExists
		}
		delete(repo.db.byEmail, old.Email)
		repo.db.byEmail[usr.Email] = usr.ID
	}
	repo.db.table[usr.ID] = usr
	return usr, nil
}

func (repo *userRepository) DeleteUserByID(_ context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if usr, ok := repo.db.table[id]; ok {
		delete(repo.db.byEmail, usr.Email)
		delete(repo.db.table, id)
	}
	return nil
}
