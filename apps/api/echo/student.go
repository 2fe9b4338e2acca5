package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/shule/core/enroll"
	"github.com/trezcool/shule/core/student"
)

type studentApi struct {
	deps ServerDeps
}

func registerStudentAPI(e *echo.Echo, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := studentApi{deps: deps}

	g := e.Group("/students", jwt)
	g.GET("", api.query, principalMiddleware(deps))
	g.POST("", api.create, activeAdminMiddleware(deps))

	dg := g.Group("/student/:id")
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy, activeAdminMiddleware(deps))
}

// Handlers

func (api *studentApi) query(ctx echo.Context) error {
	students, err := api.deps.StudentSvc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying students")
	}

	items := make([]StudentListItem, 0, len(students))
	for _, std := range students {
		items = append(items, StudentListItem{ID: std.ID, FullName: std.FullName, Email: std.Email})
	}
	return ctx.JSON(http.StatusOK, items)
}

func (api *studentApi) create(ctx echo.Context) error {
	var data student.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	std, err := api.deps.StudentSvc.Create(ctx.Request().Context(), data)
	if err != nil {
		if errors.Cause(err) == student.ErrEmailExists {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return errors.Wrap(err, "creating student")
	}
	return ctx.JSON(http.StatusCreated, std)
}

func (api *studentApi) retrieve(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}

	p, err := getContextPrincipal(ctx, api.deps)
	if err != nil {
		return errors.Wrap(err, "getting context principal")
	}
	if !p.CanActOnStudent(id) {
		return errHttpForbidden
	}

	reqCtx := ctx.Request().Context()
	std, err := api.deps.StudentSvc.GetByID(reqCtx, id)
	if err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding student by ID")
	}

	transcript, err := api.deps.EnrollSvc.Transcript(reqCtx, id)
	if err != nil {
		return errors.Wrap(err, "querying transcript")
	}

	resp := StudentDetailResponse{
		ID:          std.ID,
		FullName:    std.FullName,
		Email:       std.Email,
		Enrollments: make([]EnrollmentItem, 0, len(transcript)),
	}
	for _, entry := range transcript {
		resp.Enrollments = append(resp.Enrollments, EnrollmentItem{
			CourseName:        entry.CourseName,
			CourseDescription: entry.CourseDescription,
			Grade:             entry.Grade,
		})
	}
	if gpa, ok := enroll.ComputeGPA(transcript); ok {
		resp.GPA = null.Float64From(gpa)
	}
	return ctx.JSON(http.StatusOK, resp)
}

func (api *studentApi) update(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}

	p, err := getContextPrincipal(ctx, api.deps)
	if err != nil {
		return errors.Wrap(err, "getting context principal")
	}
	// any admin may edit a student's record, active or not; students may
	// only edit their own
	allowed := p.IsAdmin() || (p.Student != nil && p.Student.ID == id)
	if !allowed {
		return errHttpForbidden
	}

	reqCtx := ctx.Request().Context()
	std, err := api.deps.StudentSvc.GetByID(reqCtx, id)
	if err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding student by ID")
	}

	var data student.UpdateStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateStudent")
	}
	if err := data.Validate(std, api.deps.Validate); err != nil {
		return err
	}

	std, err = api.deps.StudentSvc.Update(reqCtx, id, data)
	if err != nil {
		switch errors.Cause(err) {
		case student.ErrNotFound:
			return errHttpNotFound
		case student.ErrEmailExists:
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return errors.Wrap(err, "updating student")
	}
	return ctx.JSON(http.StatusOK, std)
}

func (api *studentApi) destroy(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}

	reqCtx := ctx.Request().Context()
	if _, err := api.deps.StudentSvc.GetByID(reqCtx, id); err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding student by ID")
	}
	if err := api.deps.StudentSvc.Delete(reqCtx, id); err != nil {
		return errors.Wrap(err, "deleting student")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"message": "student deleted"})
}

type (
	StudentListItem struct {
		ID       int    `json:"id"`
		FullName string `json:"full_name"`
		Email    string `json:"email"`
	}

	EnrollmentItem struct {
		CourseName        string       `json:"course_name"`
		CourseDescription string       `json:"course_description"`
		Grade             null.Float64 `json:"grade"`
	}

	StudentDetailResponse struct {
		ID          int              `json:"id"`
		FullName    string           `json:"full_name"`
		Email       string           `json:"email"`
		Enrollments []EnrollmentItem `json:"enrollments"`
		GPA         null.Float64     `json:"gpa"`
	}
)
