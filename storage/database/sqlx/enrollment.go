package sqlxrepos

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/enroll"
)

type enrollmentRow struct {
	ID        int          `db:"id"`
	StudentID int          `db:"student_id"`
	CourseID  int          `db:"course_id"`
	Grade     null.Float64 `db:"grade"`
	CreatedAt time.Time    `db:"created_at"`
	UpdatedAt time.Time    `db:"updated_at"`
}

func (r enrollmentRow) domain() enroll.Enrollment {
	return enroll.Enrollment{
		ID:        r.ID,
		StudentID: r.StudentID,
		CourseID:  r.CourseID,
		Grade:     r.Grade,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

type transcriptRow struct {
	CourseName        string       `db:"course_name"`
	CourseDescription string       `db:"course_description"`
	Credits           int          `db:"credits"`
	Grade             null.Float64 `db:"grade"`
}

type enrollmentRepository struct {
	db core.DB
}

var _ enroll.Repository = (*enrollmentRepository)(nil) // interface compliance check

func NewEnrollmentRepository(db core.DB) *enrollmentRepository {
	return &enrollmentRepository{db: db}
}

// Enroll runs the conflict check and the insert in one transaction so
// concurrent enrolls of the same pair cannot both succeed; the UNIQUE
// constraint backs the check against races.
func (repo enrollmentRepository) Enroll(ctx context.Context, studentID, courseID int) (enroll.Enrollment, error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return enroll.Enrollment{}, errors.Wrap(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	var exists bool
	err = tx.GetContext(
		ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM enrollment WHERE student_id = $1 AND course_id = $2)`,
		studentID, courseID)
	if err != nil {
		return enroll.Enrollment{}, errors.Wrap(err, "checking enrollment")
	}
	if exists {
		return enroll.Enrollment{}, enroll.ErrAlreadyEnrolled
	}

	now := time.Now().UTC()
	e := enroll.Enrollment{
		StudentID: studentID,
		CourseID:  courseID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err = tx.QueryRowxContext(
		ctx,
		`INSERT INTO enrollment (student_id, course_id, grade, created_at, updated_at)
		 VALUES ($1, $2, NULL, $3, $4) RETURNING id`,
		studentID, courseID, now, now,
	).Scan(&e.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return enroll.Enrollment{}, enroll.ErrAlreadyEnrolled
		}
		return enroll.Enrollment{}, errors.Wrap(err, "inserting enrollment")
	}

	if err = tx.Commit(); err != nil {
		return enroll.Enrollment{}, errors.Wrap(err, "committing enrollment")
	}
	return e, nil
}

func (repo enrollmentRepository) Unenroll(ctx context.Context, studentID, courseID int) error {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(
		ctx, `DELETE FROM enrollment WHERE student_id = $1 AND course_id = $2`, studentID, courseID)
	if err != nil {
		return errors.Wrap(err, "deleting enrollment")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return enroll.ErrNotEnrolled
	}

	return errors.Wrap(tx.Commit(), "committing unenrollment")
}

func (repo enrollmentRepository) GetEnrollment(ctx context.Context, studentID, courseID int, exec ...core.DBExecutor) (enroll.Enrollment, error) {
	var row enrollmentRow
	err := getExec(repo.db, exec).GetContext(
		ctx, &row, `SELECT * FROM enrollment WHERE student_id = $1 AND course_id = $2`, studentID, courseID)
	if err != nil {
		return enroll.Enrollment{}, trapNoRowsErr(err, enroll.ErrNotEnrolled, "finding enrollment")
	}
	return row.domain(), nil
}

func (repo enrollmentRepository) SetEnrollmentGrade(ctx context.Context, studentID, courseID int, grade float64, exec ...core.DBExecutor) (enroll.Enrollment, error) {
	var row enrollmentRow
	err := getExec(repo.db, exec).GetContext(
		ctx, &row,
		`UPDATE enrollment SET grade = $1, updated_at = $2 WHERE student_id = $3 AND course_id = $4 RETURNING *`,
		grade, time.Now().UTC(), studentID, courseID)
	if err != nil {
		return enroll.Enrollment{}, trapNoRowsErr(err, enroll.ErrNotEnrolled, "setting grade")
	}
	return row.domain(), nil
}

func (repo enrollmentRepository) QueryStudentTranscript(ctx context.Context, studentID int, exec ...core.DBExecutor) ([]enroll.TranscriptEntry, error) {
	var rows []transcriptRow
	err := getExec(repo.db, exec).SelectContext(
		ctx, &rows,
		`SELECT c.name AS course_name, c.description AS course_description, c.credits, e.grade
		 FROM enrollment e JOIN course c ON c.id = e.course_id
		 WHERE e.student_id = $1
		 ORDER BY e.id`,
		studentID)
	if err != nil {
		return nil, errors.Wrap(err, "querying transcript")
	}
	entries := make([]enroll.TranscriptEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, enroll.TranscriptEntry{
			CourseName:        row.CourseName,
			CourseDescription: row.CourseDescription,
			Credits:           row.Credits,
			Grade:             row.Grade,
		})
	}
	return entries, nil
}
