package dummydb

import (
	"context"
	"sort"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/enroll"
)

type enrollmentRepository struct {
	db *DB
}

var _ enroll.Repository = (*enrollmentRepository)(nil) // interface compliance check

func NewEnrollmentRepository(db *DB) *enrollmentRepository {
	return &enrollmentRepository{db: db}
}

// find must be called with at least a read lock held.
func (repo *enrollmentRepository) find(studentID, courseID int) *enroll.Enrollment {
	for _, e := range repo.db.enrollment.table {
		if e.StudentID == studentID && e.CourseID == courseID {
			return e
		}
	}
	return nil
}

func (repo *enrollmentRepository) Enroll(_ context.Context, studentID, courseID int) (enroll.Enrollment, error) {
	repo.db.enrollment.Lock()
	defer repo.db.enrollment.Unlock()

	if repo.find(studentID, courseID) != nil {
		return enroll.Enrollment{}, enroll.ErrAlreadyEnrolled
	}

	now := time.Now().UTC()
	repo.db.enrollment.seq++
	e := enroll.Enrollment{
		ID:        repo.db.enrollment.seq,
		StudentID: studentID,
		CourseID:  courseID,
		Grade:     null.Float64{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	repo.db.enrollment.table[e.ID] = &e
	return e, nil
}

func (repo *enrollmentRepository) Unenroll(_ context.Context, studentID, courseID int) error {
	repo.db.enrollment.Lock()
	defer repo.db.enrollment.Unlock()

	e := repo.find(studentID, courseID)
	if e == nil {
		return enroll.ErrNotEnrolled
	}
	delete(repo.db.enrollment.table, e.ID)
	return nil
}

func (repo *enrollmentRepository) GetEnrollment(_ context.Context, studentID, courseID int, _ ...core.DBExecutor) (enroll.Enrollment, error) {
	repo.db.enrollment.RLock()
	defer repo.db.enrollment.RUnlock()

	if e := repo.find(studentID, courseID); e != nil {
		return *e, nil
	}
	return enroll.Enrollment{}, enroll.ErrNotEnrolled
}

func (repo *enrollmentRepository) SetEnrollmentGrade(_ context.Context, studentID, courseID int, grade float64, _ ...core.DBExecutor) (enroll.Enrollment, error) {
	repo.db.enrollment.Lock()
	defer repo.db.enrollment.Unlock()

	e := repo.find(studentID, courseID)
	if e == nil {
		return enroll.Enrollment{}, enroll.ErrNotEnrolled
	}
	e.Grade = null.Float64From(grade)
	e.UpdatedAt = time.Now().UTC()
	return *e, nil
}

func (repo *enrollmentRepository) QueryStudentTranscript(_ context.Context, studentID int, _ ...core.DBExecutor) ([]enroll.TranscriptEntry, error) {
	repo.db.enrollment.RLock()
	defer repo.db.enrollment.RUnlock()
	repo.db.course.RLock()
	defer repo.db.course.RUnlock()

	enrollments := make([]enroll.Enrollment, 0)
	for _, e := range repo.db.enrollment.table {
		if e.StudentID == studentID {
			enrollments = append(enrollments, *e)
		}
	}
	sort.Slice(enrollments, func(i, j int) bool { return enrollments[i].ID < enrollments[j].ID })

	entries := make([]enroll.TranscriptEntry, 0, len(enrollments))
	for _, e := range enrollments {
		crs, ok := repo.db.course.table[e.CourseID]
		if !ok {
			continue
		}
		entries = append(entries, enroll.TranscriptEntry{
			CourseName:        crs.Name,
			CourseDescription: crs.Description,
			Credits:           crs.Credits,
			Grade:             e.Grade,
		})
	}
	return entries, nil
}
