package sqlxrepos

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/course"
)

type courseRow struct {
	ID          int       `db:"id"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
	Lecturer    string    `db:"lecturer"`
	Credits     int       `db:"credits"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (r courseRow) domain() course.Course {
	return course.Course{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Lecturer:    r.Lecturer,
		Credits:     r.Credits,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

type courseRepository struct {
	exec core.DBExecutor
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(exec core.DBExecutor) *courseRepository {
	return &courseRepository{exec: exec}
}

func (repo courseRepository) CreateCourse(ctx context.Context, crs course.Course, exec ...core.DBExecutor) (course.Course, error) {
	err := getExec(repo.exec, exec).QueryRowxContext(
		ctx,
		`INSERT INTO course (name, description, lecturer, credits, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		crs.Name, crs.Description, crs.Lecturer, crs.Credits, crs.CreatedAt.UTC(), crs.UpdatedAt.UTC(),
	).Scan(&crs.ID)
	if err != nil {
		return course.Course{}, errors.Wrap(err, "inserting course")
	}
	return crs, nil
}

func (repo courseRepository) QueryAllCourses(ctx context.Context, exec ...core.DBExecutor) ([]course.Course, error) {
	var rows []courseRow
	if err := getExec(repo.exec, exec).SelectContext(ctx, &rows, `SELECT * FROM course ORDER BY id`); err != nil {
		return nil, errors.Wrap(err, "querying courses")
	}
	courses := make([]course.Course, 0, len(rows))
	for _, row := range rows {
		courses = append(courses, row.domain())
	}
	return courses, nil
}

func (repo courseRepository) GetCourseByID(ctx context.Context, id int, exec ...core.DBExecutor) (course.Course, error) {
	var row courseRow
	err := getExec(repo.exec, exec).GetContext(ctx, &row, `SELECT * FROM course WHERE id = $1`, id)
	if err != nil {
		return course.Course{}, trapNoRowsErr(err, course.ErrNotFound, "finding course by ID")
	}
	return row.domain(), nil
}

func (repo courseRepository) UpdateCourse(ctx context.Context, crs course.Course, exec ...core.DBExecutor) (course.Course, error) {
	res, err := getExec(repo.exec, exec).ExecContext(
		ctx,
		`UPDATE course SET name = $1, description = $2, lecturer = $3, credits = $4, updated_at = $5 WHERE id = $6`,
		crs.Name, crs.Description, crs.Lecturer, crs.Credits, crs.UpdatedAt.UTC(), crs.ID,
	)
	if err != nil {
		return course.Course{}, errors.Wrap(err, "updating course")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return course.Course{}, course.ErrNotFound
	}
	return crs, nil
}

func (repo courseRepository) DeleteCourseByID(ctx context.Context, id int, exec ...core.DBExecutor) error {
	res, err := getExec(repo.exec, exec).ExecContext(ctx, `DELETE FROM course WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting course")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return course.ErrNotFound
	}
	return nil
}
