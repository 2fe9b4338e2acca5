package dummydb

import (
	"context"
	"sort"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/course"
)

type courseRepository struct {
	db *DB
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *DB) *courseRepository {
	return &courseRepository{db: db}
}

func (repo *courseRepository) CreateCourse(_ context.Context, crs course.Course, _ ...core.DBExecutor) (course.Course, error) {
	repo.db.course.Lock()
	defer repo.db.course.Unlock()

	repo.db.course.seq++
	crs.ID = repo.db.course.seq
	repo.db.course.table[crs.ID] = &crs
	return crs, nil
}

func (repo *courseRepository) QueryAllCourses(_ context.Context, _ ...core.DBExecutor) ([]course.Course, error) {
	repo.db.course.RLock()
	defer repo.db.course.RUnlock()

	courses := make([]course.Course, 0, len(repo.db.course.table))
	for _, crs := range repo.db.course.table {
		courses = append(courses, *crs)
	}
	sort.Slice(courses, func(i, j int) bool { return courses[i].ID < courses[j].ID })
	return courses, nil
}

func (repo *courseRepository) GetCourseByID(_ context.Context, id int, _ ...core.DBExecutor) (course.Course, error) {
	repo.db.course.RLock()
	defer repo.db.course.RUnlock()

	if crs, ok := repo.db.course.table[id]; ok {
		return *crs, nil
	}
	return course.Course{}, course.ErrNotFound
}

func (repo *courseRepository) UpdateCourse(_ context.Context, crs course.Course, _ ...core.DBExecutor) (course.Course, error) {
	repo.db.course.Lock()
	defer repo.db.course.Unlock()

	if _, ok := repo.db.course.table[crs.ID]; !ok {
		return course.Course{}, course.ErrNotFound
	}
	repo.db.course.table[crs.ID] = &crs
	return crs, nil
}

func (repo *courseRepository) DeleteCourseByID(_ context.Context, id int, _ ...core.DBExecutor) error {
	repo.db.course.Lock()
	defer repo.db.course.Unlock()

	if _, ok := repo.db.course.table[id]; !ok {
		return course.ErrNotFound
	}
	delete(repo.db.course.table, id)

	// emulate ON DELETE CASCADE
	repo.db.enrollment.Lock()
	defer repo.db.enrollment.Unlock()
	for eid, e := range repo.db.enrollment.table {
		if e.CourseID == id {
			delete(repo.db.enrollment.table, eid)
		}
	}
	return nil
}
