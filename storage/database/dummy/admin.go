package dummydb

import (
	"context"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/admin"
)

type adminRepository struct {
	db *adminTable
}

var _ admin.Repository = (*adminRepository)(nil) // interface compliance check

func NewAdminRepository(db *DB) *adminRepository {
	return &adminRepository{db: db.admin}
}

func (repo *adminRepository) CheckUsernameUniqueness(_ context.Context, username string, _ ...core.DBExecutor) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, adm := range repo.db.table {
		if adm.Username == username {
			return admin.ErrUsernameExists
		}
	}
	return nil
}

func (repo *adminRepository) CreateAdmin(_ context.Context, adm admin.Admin, _ ...core.DBExecutor) (admin.Admin, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, a := range repo.db.table {
		if a.Username == adm.Username {
			return admin.Admin{}, admin.ErrUsernameExists
		}
	}

	repo.db.seq++
	adm.ID = repo.db.seq
	repo.db.table[adm.ID] = &adm
	return adm, nil
}

func (repo *adminRepository) GetAdminByID(_ context.Context, id int, _ ...core.DBExecutor) (admin.Admin, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if adm, ok := repo.db.table[id]; ok {
		return *adm, nil
	}
	return admin.Admin{}, admin.ErrNotFound
}

func (repo *adminRepository) GetAdminByUsername(_ context.Context, username string, _ ...core.DBExecutor) (admin.Admin, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, adm := range repo.db.table {
		if adm.Username == username {
			return *adm, nil
		}
	}
	return admin.Admin{}, admin.ErrNotFound
}

func (repo *adminRepository) UpdateAdmin(_ context.Context, adm admin.Admin, _ ...core.DBExecutor) (admin.Admin, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[adm.ID]; !ok {
		return admin.Admin{}, admin.ErrNotFound
	}
	repo.db.table[adm.ID] = &adm
	return adm, nil
}

func (repo *adminRepository) DeleteAdminByUsername(_ context.Context, username string, _ ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for id, adm := range repo.db.table {
		if adm.Username == username {
			delete(repo.db.table, id)
			return nil
		}
	}
	return admin.ErrNotFound
}
