package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/admin"
	"github.com/trezcool/shule/core/student"
)

type authApi struct {
	deps ServerDeps
}

func registerAuthAPI(e *echo.Echo, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := authApi{deps: deps}

	g := e.Group("/auth")

	// un-authed endpoints
	g.POST("/register", api.register)
	g.POST("/login", api.login)
	g.POST("/login/admin", api.loginAdmin)

	// authed endpoints
	ag := g.Group("", jwt)
	ag.POST("/refresh", api.refreshToken)
	ag.POST("/logout", api.logout, principalMiddleware(deps))
}

// Handlers

func (api *authApi) register(ctx echo.Context) error {
	var data student.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	std, err := api.deps.StudentSvc.Register(ctx.Request().Context(), data)
	if err != nil {
		if errors.Cause(err) == student.ErrEmailExists {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return errors.Wrap(err, "registering student")
	}
	return ctx.JSON(http.StatusCreated, std)
}

func (api *authApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	std, err := api.deps.StudentSvc.GetByEmail(ctx.Request().Context(), data.Email)
	if err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			// same response for unknown email and bad password
			return errInvalidCredentials
		}
		return errors.Wrap(err, "finding student by email")
	}
	if err = std.CheckPassword(data.Password); err != nil {
		return errInvalidCredentials
	}

	return api.respondWithTokens(ctx, KindStudent, std.ID)
}

func (api *authApi) loginAdmin(ctx echo.Context) error {
	var data AdminLoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AdminLoginRequest")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	adm, err := api.deps.AdminSvc.GetByUsername(ctx.Request().Context(), data.Username)
	if err != nil {
		if errors.Cause(err) == admin.ErrNotFound {
			return errInvalidCredentials
		}
		return errors.Wrap(err, "finding admin by username")
	}
	if err = adm.CheckPassword(data.Password); err != nil {
		return errInvalidCredentials
	}

	// a deactivated admin may still log in; mutating routes check IsActive
	return api.respondWithTokens(ctx, KindAdmin, adm.ID)
}

func (api *authApi) refreshToken(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	if !claims.Refresh {
		return errRefreshTokenRequired
	}

	// the subject must still exist
	p, err := resolvePrincipal(ctx, api.deps, claims)
	if err != nil {
		return err
	}

	var kind string
	var id int
	switch {
	case p.Admin != nil:
		kind, id = KindAdmin, p.Admin.ID
	default:
		kind, id = KindStudent, p.Student.ID
	}

	token, err := GenerateToken(api.deps.Conf, newClaims(api.deps.Conf, kind, id, false))
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusOK, RefreshResponse{AccessToken: token})
}

func (api *authApi) logout(ctx echo.Context) error {
	// stateless tokens: nothing to revoke server-side. The endpoint exists
	// so clients have a uniform logout call; they drop their tokens.
	return ctx.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

func (api *authApi) respondWithTokens(ctx echo.Context, kind string, id int) error {
	conf := api.deps.Conf

	access, err := GenerateToken(conf, newClaims(conf, kind, id, false))
	if err != nil {
		return errors.Wrap(err, "generating access token")
	}
	refresh, err := GenerateToken(conf, newClaims(conf, kind, id, true))
	if err != nil {
		return errors.Wrap(err, "generating refresh token")
	}

	return ctx.JSON(http.StatusOK, LoginResponse{
		Message:      "login successful",
		AccessToken:  access,
		RefreshToken: refresh,
	})
}

type (
	LoginRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	AdminLoginRequest struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		Message      string `json:"message"`
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}

	RefreshResponse struct {
		AccessToken string `json:"access_token"`
	}
)

func (lr *LoginRequest) Validate(validate *validator.Validate) error {
	lr.Email = core.CleanString(lr.Email, true /* lower */)
	return validate.Struct(lr)
}

func (lr *AdminLoginRequest) Validate(validate *validator.Validate) error {
	lr.Username = core.CleanString(lr.Username, true /* lower */)
	return validate.Struct(lr)
}
