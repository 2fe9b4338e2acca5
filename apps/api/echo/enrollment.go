package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core/enroll"
)

type enrollmentApi struct {
	deps ServerDeps
}

func registerEnrollmentAPI(e *echo.Echo, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := enrollmentApi{deps: deps}

	g := e.Group("/enrollments", jwt)
	g.POST("/enroll/:student_id/:course_id", api.enroll)
	g.DELETE("/unenroll/:student_id/:course_id", api.unenroll)
	g.POST("/add-grade", api.addGrade, activeAdminMiddleware(deps))
}

// Handlers

func (api *enrollmentApi) enroll(ctx echo.Context) error {
	studentID, courseID, err := api.authorizePair(ctx)
	if err != nil {
		return err
	}

	enr, err := api.deps.EnrollSvc.Enroll(ctx.Request().Context(), studentID, courseID)
	if err != nil {
		switch errors.Cause(err) {
		case enroll.ErrNotFound:
			return errHttpNotFound
		case enroll.ErrAlreadyEnrolled:
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return errors.Wrap(err, "enrolling student")
	}
	return ctx.JSON(http.StatusOK, enr)
}

func (api *enrollmentApi) unenroll(ctx echo.Context) error {
	studentID, courseID, err := api.authorizePair(ctx)
	if err != nil {
		return err
	}

	if err := api.deps.EnrollSvc.Unenroll(ctx.Request().Context(), studentID, courseID); err != nil {
		switch errors.Cause(err) {
		case enroll.ErrNotFound:
			return errHttpNotFound
		case enroll.ErrNotEnrolled:
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return errors.Wrap(err, "unenrolling student")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"message": "student unenrolled"})
}

func (api *enrollmentApi) addGrade(ctx echo.Context) error {
	var data AddGradeRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AddGradeRequest")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	enr, err := api.deps.EnrollSvc.SetGrade(ctx.Request().Context(), data.StudentID, data.CourseID, *data.Grade)
	if err != nil {
		switch errors.Cause(err) {
		case enroll.ErrNotEnrolled, enroll.ErrNotFound:
			return errHttpNotFound
		case enroll.ErrInvalidGrade:
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return errors.Wrap(err, "setting grade")
	}
	return ctx.JSON(http.StatusOK, enr)
}

// authorizePair parses both path ids and checks that the caller may manage
// this student's enrollments.
func (api *enrollmentApi) authorizePair(ctx echo.Context) (studentID, courseID int, err error) {
	if studentID, err = pathID(ctx, "student_id"); err != nil {
		return 0, 0, err
	}
	if courseID, err = pathID(ctx, "course_id"); err != nil {
		return 0, 0, err
	}

	p, err := getContextPrincipal(ctx, api.deps)
	if err != nil {
		return 0, 0, errors.Wrap(err, "getting context principal")
	}
	if !p.CanActOnStudent(studentID) {
		return 0, 0, errHttpForbidden
	}
	return studentID, courseID, nil
}

type AddGradeRequest struct {
	StudentID int      `json:"student_id" validate:"required"`
	CourseID  int      `json:"course_id" validate:"required"`
	Grade     *float64 `json:"grade" validate:"required"`
}

func (gr *AddGradeRequest) Validate(validate *validator.Validate) error {
	return validate.Struct(gr)
}
