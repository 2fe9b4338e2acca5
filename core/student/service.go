package student

import (
	"context"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
)

var (
	ErrNotFound    = errors.New("student not found")
	ErrEmailExists = errors.New("a student with this email already exists")
)

type (
	Repository interface {
		CheckEmailUniqueness(ctx context.Context, email string, excludedStudents []Student, exec ...core.DBExecutor) error
		CreateStudent(ctx context.Context, std Student, exec ...core.DBExecutor) (Student, error)
		QueryAllStudents(ctx context.Context, exec ...core.DBExecutor) ([]Student, error)
		GetStudentByID(ctx context.Context, id int, exec ...core.DBExecutor) (Student, error)
		GetStudentByEmail(ctx context.Context, email string, exec ...core.DBExecutor) (Student, error)
		UpdateStudent(ctx context.Context, std Student, exec ...core.DBExecutor) (Student, error)
		DeleteStudentByID(ctx context.Context, id int, exec ...core.DBExecutor) error
	}

	Service struct {
		repo    Repository
		mailSvc core.EmailService
		conf    *core.Config
	}
)

func NewService(repo Repository, mailSvc core.EmailService, conf *core.Config) *Service {
	return &Service{
		repo:    repo,
		mailSvc: mailSvc,
		conf:    conf,
	}
}

// Create adds a new Student record with a hashed password.
// The plaintext password is never persisted.
func (svc *Service) Create(ctx context.Context, ns NewStudent) (Student, error) {
	if err := svc.repo.CheckEmailUniqueness(ctx, ns.Email, nil); err != nil {
		return Student{}, err
	}

	now := time.Now().UTC()
	std := Student{
		FullName:  ns.FullName,
		Email:     ns.Email,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := std.SetPassword(ns.Password); err != nil {
		return Student{}, errors.Wrap(err, "hashing password")
	}
	return svc.repo.CreateStudent(ctx, std)
}

// Register is the self-service path: it creates the Student and sends
// them a welcome email.
func (svc *Service) Register(ctx context.Context, ns NewStudent) (Student, error) {
	std, err := svc.Create(ctx, ns)
	if err != nil {
		return Student{}, err
	}
	svc.sendWelcomeMail(std)
	return std, nil
}

func (svc *Service) QueryAll(ctx context.Context) ([]Student, error) {
	return svc.repo.QueryAllStudents(ctx)
}

func (svc *Service) GetByID(ctx context.Context, id int) (Student, error) {
	return svc.repo.GetStudentByID(ctx, id)
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (Student, error) {
	return svc.repo.GetStudentByEmail(ctx, core.CleanString(email, true /* lower */))
}

func (svc *Service) Update(ctx context.Context, id int, us UpdateStudent) (Student, error) {
	std, err := svc.repo.GetStudentByID(ctx, id)
	if err != nil {
		return Student{}, err
	}
	if us.Email != std.Email {
		if err = svc.repo.CheckEmailUniqueness(ctx, us.Email, []Student{std}); err != nil {
			return Student{}, err
		}
	}

	std.FullName = us.FullName
	std.Email = us.Email
	std.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateStudent(ctx, std)
}

func (svc *Service) Delete(ctx context.Context, id int) error {
	return svc.repo.DeleteStudentByID(ctx, id)
}

func (svc *Service) sendWelcomeMail(std Student) {
	svc.mailSvc.SendMessages(
		&core.EmailMessage{
			To:           []mail.Address{{Name: std.FullName, Address: std.Email}},
			Subject:      "Welcome",
			TemplateName: "welcome",
			TemplateData: struct{ FullName string }{std.FullName},
		},
	)
}
