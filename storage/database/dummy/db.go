// Package dummydb is an in-memory implementation of the domain
// repositories; it backs tests and toolless local hacking.
package dummydb

import (
	"sync"

	"github.com/trezcool/shule/core/admin"
	"github.com/trezcool/shule/core/course"
	"github.com/trezcool/shule/core/enroll"
	"github.com/trezcool/shule/core/student"
)

type (
	DB struct {
		admin      *adminTable
		student    *studentTable
		course     *courseTable
		enrollment *enrollmentTable
	}

	adminTable struct {
		sync.RWMutex
		seq   int
		table map[int]*admin.Admin
	}

	studentTable struct {
		sync.RWMutex
		seq   int
		table map[int]*student.Student
	}

	courseTable struct {
		sync.RWMutex
		seq   int
		table map[int]*course.Course
	}

	enrollmentTable struct {
		sync.RWMutex
		seq   int
		table map[int]*enroll.Enrollment
	}
)

func Open() *DB {
	return &DB{
		admin:      &adminTable{table: make(map[int]*admin.Admin)},
		student:    &studentTable{table: make(map[int]*student.Student)},
		course:     &courseTable{table: make(map[int]*course.Course)},
		enrollment: &enrollmentTable{table: make(map[int]*enroll.Enrollment)},
	}
}

// Reset truncates all tables; tests call it between runs.
func (db *DB) Reset() {
	db.admin.Lock()
	db.admin.seq = 0
	db.admin.table = make(map[int]*admin.Admin)
	db.admin.Unlock()

	db.student.Lock()
	db.student.seq = 0
	db.student.table = make(map[int]*student.Student)
	db.student.Unlock()

	db.course.Lock()
	db.course.seq = 0
	db.course.table = make(map[int]*course.Course)
	db.course.Unlock()

	db.enrollment.Lock()
	db.enrollment.seq = 0
	db.enrollment.table = make(map[int]*enroll.Enrollment)
	db.enrollment.Unlock()
}
