package echoapi

import (
	"strconv"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/admin"
	"github.com/trezcool/shule/core/student"
)

// Principal kinds. Admins and students live in separate tables with
// overlapping ids, so every token pins the table it was issued against.
const (
	KindAdmin   = "admin"
	KindStudent = "student"
)

const (
	jwtContextKey       = "userToken"
	principalContextKey = "principal"
)

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	Kind    string `json:"kind"`
	Refresh bool   `json:"refresh,omitempty"`
}

// newJWTConfig returns the JWT auth middleware config.
func newJWTConfig(conf *core.Config) middleware.JWTConfig {
	return middleware.JWTConfig{
		SigningKey:    conf.SecretKey,
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    jwtContextKey,
		Claims:        new(Claims),
	}
}

func newClaims(conf *core.Config, kind string, id int, refresh bool) *Claims {
	now := time.Now()
	delta := conf.Server.JWTAccessExpirationDelta
	if refresh {
		delta = conf.Server.JWTRefreshExpirationDelta
	}
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Id:        uuid.New().String(),
			Issuer:    conf.AppName,
			Subject:   strconv.Itoa(id),
			Audience:  "Shule",
			ExpiresAt: now.Add(delta).Unix(),
			IssuedAt:  now.Unix(),
		},
		Kind:    kind,
		Refresh: refresh,
	}
}

// GenerateToken generates a signed JWT token string representing the Claims.
func GenerateToken(conf *core.Config, claims *Claims) (string, error) {
	method := jwt.GetSigningMethod(middleware.AlgorithmHS256)
	token := jwt.NewWithClaims(method, claims)

	ss, err := token.SignedString(conf.SecretKey)
	if err != nil {
		return "", errors.New("signing token")
	}
	return ss, nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(jwtContextKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

// Principal is the authenticated caller: exactly one of Admin or Student
// is set.
type Principal struct {
	Admin   *admin.Admin
	Student *student.Student
}

func (p Principal) IsAdmin() bool       { return p.Admin != nil }
func (p Principal) IsActiveAdmin() bool { return p.Admin != nil && p.Admin.IsActive }

// CanActOnStudent reports whether the caller may touch the given student's
// record or enrollments: an active admin may, and the student themself may.
func (p Principal) CanActOnStudent(studentID int) bool {
	if p.IsActiveAdmin() {
		return true
	}
	return p.Student != nil && p.Student.ID == studentID
}

// getContextPrincipal resolves the token's subject against the table its
// Kind claim pins, and caches the result on the echo.Context for the rest
// of the request.
func getContextPrincipal(ctx echo.Context, deps ServerDeps) (Principal, error) {
	if p, ok := ctx.Get(principalContextKey).(Principal); ok {
		return p, nil
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return Principal{}, errors.Wrap(err, "getting context claims")
	}
	if claims.Refresh {
		// refresh tokens only buy new access tokens
		return Principal{}, errUnauthorized
	}

	p, err := resolvePrincipal(ctx, deps, claims)
	if err != nil {
		return Principal{}, err
	}
	ctx.Set(principalContextKey, p)
	return p, nil
}

// resolvePrincipal looks the claims' subject up in the table pinned by
// their Kind. A token whose subject no longer exists is dead.
func resolvePrincipal(ctx echo.Context, deps ServerDeps, claims Claims) (Principal, error) {
	id, err := strconv.Atoi(claims.Subject)
	if err != nil {
		return Principal{}, errUnauthorized
	}

	reqCtx := ctx.Request().Context()
	var p Principal
	switch claims.Kind {
	case KindAdmin:
		adm, err := deps.AdminSvc.GetByID(reqCtx, id)
		if err != nil {
			if errors.Cause(err) == admin.ErrNotFound {
				return Principal{}, errUnauthorized
			}
			return Principal{}, errors.Wrap(err, "finding admin by ID")
		}
		p.Admin = &adm
	case KindStudent:
		std, err := deps.StudentSvc.GetByID(reqCtx, id)
		if err != nil {
			if errors.Cause(err) == student.ErrNotFound {
				return Principal{}, errUnauthorized
			}
			return Principal{}, errors.Wrap(err, "finding student by ID")
		}
		p.Student = &std
	default:
		return Principal{}, errUnauthorized
	}
	return p, nil
}
