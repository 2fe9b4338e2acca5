package sqlxrepos

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/admin"
)

type adminRow struct {
	ID           int       `db:"id"`
	Username     string    `db:"username"`
	IsActive     bool      `db:"is_active"`
	PasswordHash []byte    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (r adminRow) domain() admin.Admin {
	return admin.Admin{
		ID:           r.ID,
		Username:     r.Username,
		IsActive:     r.IsActive,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

type adminRepository struct {
	exec core.DBExecutor
}

var _ admin.Repository = (*adminRepository)(nil) // interface compliance check

func NewAdminRepository(exec core.DBExecutor) *adminRepository {
	return &adminRepository{exec: exec}
}

func (repo adminRepository) CheckUsernameUniqueness(ctx context.Context, username string, exec ...core.DBExecutor) error {
	var exists bool
	err := getExec(repo.exec, exec).GetContext(
		ctx, &exists, `SELECT EXISTS (SELECT 1 FROM admin WHERE username = $1)`, username)
	if err != nil {
		return errors.Wrap(err, "checking admin uniqueness")
	}
	if exists {
		return admin.ErrUsernameExists
	}
	return nil
}

func (repo adminRepository) CreateAdmin(ctx context.Context, adm admin.Admin, exec ...core.DBExecutor) (admin.Admin, error) {
	err := getExec(repo.exec, exec).QueryRowxContext(
		ctx,
		`INSERT INTO admin (username, password_hash, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		adm.Username, adm.PasswordHash, adm.IsActive, adm.CreatedAt.UTC(), adm.UpdatedAt.UTC(),
	).Scan(&adm.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return admin.Admin{}, admin.ErrUsernameExists
		}
		return admin.Admin{}, errors.Wrap(err, "inserting admin")
	}
	return adm, nil
}

func (repo adminRepository) GetAdminByID(ctx context.Context, id int, exec ...core.DBExecutor) (admin.Admin, error) {
	var row adminRow
	err := getExec(repo.exec, exec).GetContext(ctx, &row, `SELECT * FROM admin WHERE id = $1`, id)
	if err != nil {
		return admin.Admin{}, trapNoRowsErr(err, admin.ErrNotFound, "finding admin by ID")
	}
	return row.domain(), nil
}

func (repo adminRepository) GetAdminByUsername(ctx context.Context, username string, exec ...core.DBExecutor) (admin.Admin, error) {
	var row adminRow
	err := getExec(repo.exec, exec).GetContext(ctx, &row, `SELECT * FROM admin WHERE username = $1`, username)
	if err != nil {
		return admin.Admin{}, trapNoRowsErr(err, admin.ErrNotFound, "finding admin by username")
	}
	return row.domain(), nil
}

func (repo adminRepository) UpdateAdmin(ctx context.Context, adm admin.Admin, exec ...core.DBExecutor) (admin.Admin, error) {
	res, err := getExec(repo.exec, exec).ExecContext(
		ctx,
		`UPDATE admin SET username = $1, password_hash = $2, is_active = $3, updated_at = $4 WHERE id = $5`,
		adm.Username, adm.PasswordHash, adm.IsActive, adm.UpdatedAt.UTC(), adm.ID,
	)
	if err != nil {
		return admin.Admin{}, errors.Wrap(err, "updating admin")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return admin.Admin{}, admin.ErrNotFound
	}
	return adm, nil
}

func (repo adminRepository) DeleteAdminByUsername(ctx context.Context, username string, exec ...core.DBExecutor) error {
	res, err := getExec(repo.exec, exec).ExecContext(ctx, `DELETE FROM admin WHERE username = $1`, username)
	if err != nil {
		return errors.Wrap(err, "deleting admin")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return admin.ErrNotFound
	}
	return nil
}
