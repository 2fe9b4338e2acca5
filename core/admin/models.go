package admin

import (
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/shule/core"
)

// Admin is a back-office account. It is only ever created from the CLI,
// starts deactivated and must be activated before it may mutate any
// course, student or grade data.
type Admin struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	IsActive     bool      `json:"is_active"`
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
}

func (adm *Admin) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	adm.PasswordHash = hash
	return nil
}

func (adm *Admin) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(adm.PasswordHash, []byte(pwd))
}

// NewAdmin contains information needed to create a new Admin.
type NewAdmin struct {
	Username string `json:"username" validate:"required,min=3,alphanum_"`
	Password string `json:"password" validate:"required,min=8"`
}

func (na *NewAdmin) Validate(validate *validator.Validate) error {
	na.Username = core.CleanString(na.Username, true /* lower */)
	return validate.Struct(na)
}
