package enroll

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/course"
	"github.com/trezcool/shule/core/student"
)

var (
	// ErrNotFound fires when the referenced student or course does not exist.
	ErrNotFound = errors.New("student or course not found")

	ErrAlreadyEnrolled = errors.New("student is already enrolled in this course")
	ErrNotEnrolled     = errors.New("student is not enrolled in this course")
	ErrInvalidGrade    = errors.New("invalid grade")
)

type (
	Repository interface {
		// Enroll atomically records membership of the (student, course) pair:
		// the conflict check and the insert happen as one unit.
		// Returns ErrAlreadyEnrolled if the pair is already enrolled.
		Enroll(ctx context.Context, studentID, courseID int) (Enrollment, error)
		// Unenroll atomically discards the pair's membership and its grade.
		// Returns ErrNotEnrolled if the pair is not enrolled.
		Unenroll(ctx context.Context, studentID, courseID int) error
		GetEnrollment(ctx context.Context, studentID, courseID int, exec ...core.DBExecutor) (Enrollment, error)
		SetEnrollmentGrade(ctx context.Context, studentID, courseID int, grade float64, exec ...core.DBExecutor) (Enrollment, error)
		QueryStudentTranscript(ctx context.Context, studentID int, exec ...core.DBExecutor) ([]TranscriptEntry, error)
	}

	Service struct {
		repo        Repository
		studentRepo student.Repository
		courseRepo  course.Repository
	}
)

func NewService(repo Repository, studentRepo student.Repository, courseRepo course.Repository) *Service {
	return &Service{
		repo:        repo,
		studentRepo: studentRepo,
		courseRepo:  courseRepo,
	}
}

// checkPairExists verifies both referenced entities before any mutation;
// a dangling id fails with ErrNotFound rather than a FK violation.
func (svc *Service) checkPairExists(ctx context.Context, studentID, courseID int) error {
	if _, err := svc.studentRepo.GetStudentByID(ctx, studentID); err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return ErrNotFound
		}
		return errors.Wrap(err, "finding student")
	}
	if _, err := svc.courseRepo.GetCourseByID(ctx, courseID); err != nil {
		if errors.Cause(err) == course.ErrNotFound {
			return ErrNotFound
		}
		return errors.Wrap(err, "finding course")
	}
	return nil
}

// Enroll transitions the (student, course) pair to Enrolled.
func (svc *Service) Enroll(ctx context.Context, studentID, courseID int) (Enrollment, error) {
	if err := svc.checkPairExists(ctx, studentID, courseID); err != nil {
		return Enrollment{}, err
	}
	return svc.repo.Enroll(ctx, studentID, courseID)
}

// Unenroll transitions the pair back to NotEnrolled. The grade is gone for
// good; re-enrolling starts from a clean, ungraded membership.
func (svc *Service) Unenroll(ctx context.Context, studentID, courseID int) error {
	if err := svc.checkPairExists(ctx, studentID, courseID); err != nil {
		return err
	}
	return svc.repo.Unenroll(ctx, studentID, courseID)
}

// SetGrade overwrites the pair's grade in place; no history is kept.
// The pair must be Enrolled and the grade within [MinGrade, MaxGrade].
func (svc *Service) SetGrade(ctx context.Context, studentID, courseID int, grade float64) (Enrollment, error) {
	if grade < MinGrade || grade > MaxGrade {
		return Enrollment{}, ErrInvalidGrade
	}
	return svc.repo.SetEnrollmentGrade(ctx, studentID, courseID, grade)
}

// Transcript returns all of the student's enrollments joined with their courses.
func (svc *Service) Transcript(ctx context.Context, studentID int) ([]TranscriptEntry, error) {
	return svc.repo.QueryStudentTranscript(ctx, studentID)
}
