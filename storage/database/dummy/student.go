package dummydb

import (
	"context"
	"sort"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/student"
)

type studentRepository struct {
	db *DB
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *DB) *studentRepository {
	return &studentRepository{db: db}
}

func (repo *studentRepository) CheckEmailUniqueness(_ context.Context, email string, excludedStudents []student.Student, _ ...core.DBExecutor) error {
	repo.db.student.RLock()
	defer repo.db.student.RUnlock()

	excluded := make(map[int]bool, len(excludedStudents))
	for _, std := range excludedStudents {
		excluded[std.ID] = true
	}

	for _, std := range repo.db.student.table {
		if std.Email == email && !excluded[std.ID] {
			return student.ErrEmailExists
		}
	}
	return nil
}

func (repo *studentRepository) CreateStudent(_ context.Context, std student.Student, _ ...core.DBExecutor) (student.Student, error) {
	repo.db.student.Lock()
	defer repo.db.student.Unlock()

	for _, s := range repo.db.student.table {
		if s.Email == std.Email {
			return student.Student{}, student.ErrEmailExists
		}
	}

	repo.db.student.seq++
	std.ID = repo.db.student.seq
	repo.db.student.table[std.ID] = &std
	return std, nil
}

func (repo *studentRepository) QueryAllStudents(_ context.Context, _ ...core.DBExecutor) ([]student.Student, error) {
	repo.db.student.RLock()
	defer repo.db.student.RUnlock()

	students := make([]student.Student, 0, len(repo.db.student.table))
	for _, std := range repo.db.student.table {
		students = append(students, *std)
	}
	sort.Slice(students, func(i, j int) bool { return students[i].ID < students[j].ID })
	return students, nil
}

func (repo *studentRepository) GetStudentByID(_ context.Context, id int, _ ...core.DBExecutor) (student.Student, error) {
	repo.db.student.RLock()
	defer repo.db.student.RUnlock()

	if std, ok := repo.db.student.table[id]; ok {
		return *std, nil
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) GetStudentByEmail(_ context.Context, email string, _ ...core.DBExecutor) (student.Student, error) {
	repo.db.student.RLock()
	defer repo.db.student.RUnlock()

	for _, std := range repo.db.student.table {
		if std.Email == email {
			return *std, nil
		}
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) UpdateStudent(_ context.Context, std student.Student, _ ...core.DBExecutor) (student.Student, error) {
	repo.db.student.Lock()
	defer repo.db.student.Unlock()

	if _, ok := repo.db.student.table[std.ID]; !ok {
		return student.Student{}, student.ErrNotFound
	}
	repo.db.student.table[std.ID] = &std
	return std, nil
}

func (repo *studentRepository) DeleteStudentByID(_ context.Context, id int, _ ...core.DBExecutor) error {
	repo.db.student.Lock()
	defer repo.db.student.Unlock()

	if _, ok := repo.db.student.table[id]; !ok {
		return student.ErrNotFound
	}
	delete(repo.db.student.table, id)

	// emulate ON DELETE CASCADE
	repo.db.enrollment.Lock()
	defer repo.db.enrollment.Unlock()
	for eid, e := range repo.db.enrollment.table {
		if e.StudentID == id {
			delete(repo.db.enrollment.table, eid)
		}
	}
	return nil
}
