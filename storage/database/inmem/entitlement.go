package inmemdb

import (
	"context"

	"github.com/Bhaskar-J-Pathak/Acad-AI/core/entitlement"
)

type entitlementRepository struct {
	db *entitlementTable
}

var _ entitlement.Repository = (*entitlementRepository)(nil)

func NewEntitlementRepository(db *DB) entitlement.Repository {
	return &entitlementRepository{db: db.entitlement}
}

func (repo *entitlementRepository) GetEntitlement(_ context.Context, userID string) (entitlement.Entitlement, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if ent, ok := repo.db.table[userID]; ok {
		return *ent, nil
	}
	return entitlement.Entitlement{}, entitlement.ErrNotFound
}

func (repo *entitlementRepository) CreateEntitlement(_ context.Context, ent entitlement.Entitlement) (entitlement.Entitlement, bool, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if existing, ok := repo.db.table[ent.UserID]; ok {
		return *existing, false, nil
	}
	repo.db.table[ent.UserID] = &ent
	return ent, true, nil
}

func (repo *entitlementRepository) DeleteEntitlement(_ context.Context, userID string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	delete(repo.db.table, userID)
	return nil
}
