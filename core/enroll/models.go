package enroll

import (
	"time"

	"github.com/volatiletech/null/v8"
)

// Grade bounds, inclusive.
const (
	MinGrade = 0.0
	MaxGrade = 5.0
)

// Enrollment records one student's registration in one course, with its
// numeric grade. The row's existence IS course membership: there is no
// separate join table that could drift out of sync. A (student, course)
// pair is unique; the grade is null until an admin sets it.
type Enrollment struct {
	ID        int          `json:"id"`
	StudentID int          `json:"student_id"`
	CourseID  int          `json:"course_id"`
	Grade     null.Float64 `json:"grade"`
	CreatedAt time.Time    `json:"created_at"` // UTC
	UpdatedAt time.Time    `json:"updated_at"` // UTC
}

// TranscriptEntry is one line of a student's transcript: an enrollment
// joined with its course.
type TranscriptEntry struct {
	CourseName        string       `json:"course_name"`
	CourseDescription string       `json:"course_description"`
	Credits           int          `json:"credits"`
	Grade             null.Float64 `json:"grade"`
}

// ComputeGPA returns the credit-weighted grade average over the given
// transcript. An ungraded enrollment contributes nothing to the numerator
// but its credits still count in the denominator. The second return value
// is false when the student has no enrollments, so callers can render "N/A"
// instead of a misleading zero.
func ComputeGPA(entries []TranscriptEntry) (float64, bool) {
	if len(entries) == 0 {
		return 0, false
	}

	var points, credits float64
	for _, e := range entries {
		credits += float64(e.Credits)
		if e.Grade.Valid {
			points += e.Grade.Float64 * float64(e.Credits)
		}
	}
	if credits == 0 {
		return 0, false
	}
	return points / credits, true
}
