package sqlxrepos

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/student"
)

type studentRow struct {
	ID           int       `db:"id"`
	FullName     string    `db:"full_name"`
	Email        string    `db:"email"`
	PasswordHash []byte    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (r studentRow) domain() student.Student {
	return student.Student{
		ID:           r.ID,
		FullName:     r.FullName,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

type studentRepository struct {
	exec core.DBExecutor
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(exec core.DBExecutor) *studentRepository {
	return &studentRepository{exec: exec}
}

func (repo studentRepository) CheckEmailUniqueness(ctx context.Context, email string, excludedStudents []student.Student, exec ...core.DBExecutor) error {
	query := `SELECT EXISTS (SELECT 1 FROM student WHERE email = $1`
	args := []interface{}{email}
	if len(excludedStudents) > 0 {
		ids := make([]string, 0, len(excludedStudents))
		for _, std := range excludedStudents {
			args = append(args, std.ID)
			ids = append(ids, fmt.Sprintf("$%d", len(args)))
		}
		query += fmt.Sprintf(" AND id NOT IN (%s)", strings.Join(ids, ","))
	}
	query += ")"

	var exists bool
	if err := getExec(repo.exec, exec).GetContext(ctx, &exists, query, args...); err != nil {
		return errors.Wrap(err, "checking student uniqueness")
	}
	if exists {
		return student.ErrEmailExists
	}
	return nil
}

func (repo studentRepository) CreateStudent(ctx context.Context, std student.Student, exec ...core.DBExecutor) (student.Student, error) {
	err := getExec(repo.exec, exec).QueryRowxContext(
		ctx,
		`INSERT INTO student (full_name, email, password_hash, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		std.FullName, std.Email, std.PasswordHash, std.CreatedAt.UTC(), std.UpdatedAt.UTC(),
	).Scan(&std.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return student.Student{}, student.ErrEmailExists
		}
		return student.Student{}, errors.Wrap(err, "inserting student")
	}
	return std, nil
}

func (repo studentRepository) QueryAllStudents(ctx context.Context, exec ...core.DBExecutor) ([]student.Student, error) {
	var rows []studentRow
	if err := getExec(repo.exec, exec).SelectContext(ctx, &rows, `SELECT * FROM student ORDER BY id`); err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	students := make([]student.Student, 0, len(rows))
	for _, row := range rows {
		students = append(students, row.domain())
	}
	return students, nil
}

func (repo studentRepository) GetStudentByID(ctx context.Context, id int, exec ...core.DBExecutor) (student.Student, error) {
	var row studentRow
	err := getExec(repo.exec, exec).GetContext(ctx, &row, `SELECT * FROM student WHERE id = $1`, id)
	if err != nil {
		return student.Student{}, trapNoRowsErr(err, student.ErrNotFound, "finding student by ID")
	}
	return row.domain(), nil
}

func (repo studentRepository) GetStudentByEmail(ctx context.Context, email string, exec ...core.DBExecutor) (student.Student, error) {
	var row studentRow
	err := getExec(repo.exec, exec).GetContext(ctx, &row, `SELECT * FROM student WHERE email = $1`, email)
	if err != nil {
		return student.Student{}, trapNoRowsErr(err, student.ErrNotFound, "finding student by email")
	}
	return row.domain(), nil
}

func (repo studentRepository) UpdateStudent(ctx context.Context, std student.Student, exec ...core.DBExecutor) (student.Student, error) {
	res, err := getExec(repo.exec, exec).ExecContext(
		ctx,
		`UPDATE student SET full_name = $1, email = $2, password_hash = $3, updated_at = $4 WHERE id = $5`,
		std.FullName, std.Email, std.PasswordHash, std.UpdatedAt.UTC(), std.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return student.Student{}, student.ErrEmailExists
		}
		return student.Student{}, errors.Wrap(err, "updating student")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return student.Student{}, student.ErrNotFound
	}
	return std, nil
}

func (repo studentRepository) DeleteStudentByID(ctx context.Context, id int, exec ...core.DBExecutor) error {
	res, err := getExec(repo.exec, exec).ExecContext(ctx, `DELETE FROM student WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting student")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return student.ErrNotFound
	}
	return nil
}
