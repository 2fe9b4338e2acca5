package admin

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
)

var (
	ErrNotFound       = errors.New("admin not found")
	ErrUsernameExists = errors.New("an admin with this username already exists")
)

type (
	Repository interface {
		CheckUsernameUniqueness(ctx context.Context, username string, exec ...core.DBExecutor) error
		CreateAdmin(ctx context.Context, adm Admin, exec ...core.DBExecutor) (Admin, error)
		GetAdminByID(ctx context.Context, id int, exec ...core.DBExecutor) (Admin, error)
		GetAdminByUsername(ctx context.Context, username string, exec ...core.DBExecutor) (Admin, error)
		UpdateAdmin(ctx context.Context, adm Admin, exec ...core.DBExecutor) (Admin, error)
		DeleteAdminByUsername(ctx context.Context, username string, exec ...core.DBExecutor) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create registers a new, deactivated Admin. Activation is a separate,
// deliberate step so that a freshly bootstrapped account holds no power yet.
func (svc *Service) Create(ctx context.Context, na NewAdmin) (Admin, error) {
	if err := svc.repo.CheckUsernameUniqueness(ctx, na.Username); err != nil {
		return Admin{}, err
	}

	now := time.Now().UTC()
	adm := Admin{
		Username:  na.Username,
		IsActive:  false,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := adm.SetPassword(na.Password); err != nil {
		return Admin{}, errors.Wrap(err, "hashing password")
	}
	return svc.repo.CreateAdmin(ctx, adm)
}

func (svc *Service) GetByID(ctx context.Context, id int) (Admin, error) {
	return svc.repo.GetAdminByID(ctx, id)
}

func (svc *Service) GetByUsername(ctx context.Context, uname string) (Admin, error) {
	return svc.repo.GetAdminByUsername(ctx, core.CleanString(uname, true /* lower */))
}

// SetActive flips the is_active gate on an Admin account.
func (svc *Service) SetActive(ctx context.Context, uname string, active bool) (Admin, error) {
	adm, err := svc.GetByUsername(ctx, uname)
	if err != nil {
		return Admin{}, err
	}
	adm.IsActive = active
	adm.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateAdmin(ctx, adm)
}

func (svc *Service) Delete(ctx context.Context, uname string) error {
	return svc.repo.DeleteAdminByUsername(ctx, core.CleanString(uname, true /* lower */))
}
