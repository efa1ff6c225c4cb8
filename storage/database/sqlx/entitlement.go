package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/Bhaskar-J-Pathak/Acad-AI/core/entitlement"
)

type entitlementRow struct {
	UserID    string      `db:"user_id"`
	Source    string      `db:"source"`
	Reference null.String `db:"reference"`
	GrantedAt time.Time   `db:"granted_at"`
}

func (row entitlementRow) toEntitlement() entitlement.Entitlement {
	return entitlement.Entitlement{
		UserID:    row.UserID,
		Source:    row.Source,
		Reference: row.Reference.String,
		GrantedAt: row.GrantedAt.UTC(),
	}
}

type entitlementRepository struct {
	db *sqlx.DB
}

var _ entitlement.Repository = (*entitlementRepository)(nil)

func NewEntitlementRepository(db *sqlx.DB) entitlement.Repository {
	return &entitlementRepository{db: db}
}

func (repo *entitlementRepository) GetEntitlement(ctx context.Context, userID string) (entitlement.Entitlement, error) {
	var row entitlementRow
	query := repo.db.Rebind("SELECT user_id, source, reference, granted_at FROM entitlements WHERE user_id = ?")
	if err := repo.db.GetContext(ctx, &row, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entitlement.Entitlement{}, entitlement.ErrNotFound
		}
		return entitlement.Entitlement{}, errors.Wrap(err, "selecting entitlement")
	}
	return row.toEntitlement(), nil
}

func (repo *entitlementRepository) CreateEntitlement(ctx context.Context, ent entitlement.Entitlement) (entitlement.Entitlement, bool, error) {
	row := entitlementRow{
		UserID:    ent.UserID,
		Source:    ent.Source,
		Reference: null.NewString(ent.Reference, ent.Reference != ""),
		GrantedAt: ent.GrantedAt.UTC(),
	}
	res, err := repo.db.NamedExecContext(ctx,
		"INSERT INTO entitlements (user_id, source, reference, granted_at) "+
			"VALUES (:user_id, :source, :reference, :granted_at) "+
			"ON CONFLICT (user_id) DO NOTHING",
		row,
	)
	if err != nil {
		return entitlement.Entitlement{}, false, errors.Wrap(err, "inserting entitlement")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return entitlement.Entitlement{}, false, errors.Wrap(err, "inserting entitlement")
	}
	if n == 0 {
		existing, err := repo.GetEntitlement(ctx, ent.UserID)
		return existing, false, err
	}
	return row.toEntitlement(), true, nil
}

func (repo *entitlementRepository) DeleteEntitlement(ctx context.Context, userID string) error {
	if _, err := repo.db.ExecContext(ctx, repo.db.Rebind("DELETE FROM entitlements WHERE user_id = ?"), userID); err != nil {
		return errors.Wrap(err, "deleting entitlement")
	}
	return nil
}
