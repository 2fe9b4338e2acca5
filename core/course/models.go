package course

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/shule/core"
)

type Course struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Lecturer    string    `json:"lecturer"`
	Credits     int       `json:"credits"`
	CreatedAt   time.Time `json:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at"` // UTC
}

// NewCourse contains information needed to create a new Course.
type NewCourse struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description" validate:"required"`
	Lecturer    string `json:"lecturer" validate:"required"`
	Credits     int    `json:"credits" validate:"required,gt=0"`
}

func (nc *NewCourse) Validate(validate *validator.Validate) error {
	nc.Name = core.CleanString(nc.Name)
	nc.Description = core.CleanString(nc.Description)
	nc.Lecturer = core.CleanString(nc.Lecturer)
	return validate.Struct(nc)
}

// UpdateCourse replaces all mutable Course fields; partial updates are
// not supported on this payload, matching PUT semantics.
type UpdateCourse struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description" validate:"required"`
	Lecturer    string `json:"lecturer" validate:"required"`
	Credits     int    `json:"credits" validate:"required,gt=0"`
}

func (uc *UpdateCourse) Validate(validate *validator.Validate) error {
	uc.Name = core.CleanString(uc.Name)
	uc.Description = core.CleanString(uc.Description)
	uc.Lecturer = core.CleanString(uc.Lecturer)
	return validate.Struct(uc)
}
