// Package signup registers new student accounts: validates the application,
// creates the user and its profile atomically, stores the uploaded ID scan,
// and runs the free-text fields through moderation.
package signup

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/crypto/bcrypt"

	dErrors "github.com/eima40x4c/CampusCard/pkg/domain-errors"

	"github.com/eima40x4c/CampusCard/internal/audit"
	"github.com/eima40x4c/CampusCard/internal/blob"
	"github.com/eima40x4c/CampusCard/internal/domain"
	"github.com/eima40x4c/CampusCard/internal/moderation"
	"github.com/eima40x4c/CampusCard/internal/platform/metrics"
	"github.com/eima40x4c/CampusCard/internal/platform/middleware"
	"github.com/eima40x4c/CampusCard/internal/storage"
)

var tracer = otel.Tracer("campuscard/signup")

const birthDateLayout = "2006-01-02"

// Request is a signup application.
type Request struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	BirthDate    string `json:"birth_date"`
	NationalID   string `json:"national_id"`
	Year         int    `json:"year"`
	FacultyID    int64  `json:"faculty_id"`
	DepartmentID int64  `json:"department_id"`
	Bio          string `json:"bio"`
	Interests    string `json:"interests"`
	Phone        string `json:"phone"`
}

// Validate checks field shape. Cross-entity rules (faculty, department, year
// range) are checked by the service against reference data.
func (r Request) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(8, 72)),
		validation.Field(&r.FirstName, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.LastName, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.BirthDate, validation.Date(birthDateLayout)),
		validation.Field(&r.NationalID, validation.Required, validation.Length(5, 30)),
		validation.Field(&r.Year, validation.Required, validation.Min(1)),
		validation.Field(&r.FacultyID, validation.Required),
		validation.Field(&r.DepartmentID, validation.Required),
	)
}

// Upload is an ID scan attached to the application.
type Upload struct {
	ContentType string
	Ext         string
	Body        io.Reader
}

type Service struct {
	users       storage.UserStore
	profiles    storage.ProfileStore
	faculties   storage.FacultyStore
	departments storage.DepartmentStore
	tx          storage.TxRunner
	blobs       blob.Store
	moderation  *moderation.Service
	recorder    audit.Recorder
	metrics     *metrics.Metrics
	logger      *slog.Logger
}

type Option func(*Service)

func WithBlobStore(store blob.Store) Option {
	return func(s *Service) { s.blobs = store }
}

func WithModeration(m *moderation.Service) Option {
	return func(s *Service) { s.moderation = m }
}

func WithRecorder(recorder audit.Recorder) Option {
	return func(s *Service) { s.recorder = recorder }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func New(
	users storage.UserStore,
	profiles storage.ProfileStore,
	faculties storage.FacultyStore,
	departments storage.DepartmentStore,
	tx storage.TxRunner,
	opts ...Option,
) *Service {
	s := &Service{
		users:       users,
		profiles:    profiles,
		faculties:   faculties,
		departments: departments,
		tx:          tx,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates a PENDING student account with its profile in one
// transaction. The ID scan upload and the moderation scan run after the
// transaction commits so slow external I/O never holds a row lock.
func (s *Service) Register(ctx context.Context, req Request, scan *Upload) (*domain.User, error) {
	ctx, span := tracer.Start(ctx, "signup.Register", trace.WithAttributes(
		attribute.String("email", req.Email),
	))
	defer span.End()

	if err := req.Validate(); err != nil {
		return nil, dErrors.New(dErrors.CodeValidation, err.Error())
	}

	faculty, err := s.faculties.FindByID(ctx, req.FacultyID)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return nil, dErrors.New(dErrors.CodeValidation, "unknown faculty")
		}
		return nil, err
	}
	department, err := s.departments.FindByID(ctx, req.DepartmentID)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return nil, dErrors.New(dErrors.CodeValidation, "unknown department")
		}
		return nil, err
	}
	if department.FacultyID != faculty.ID {
		return nil, dErrors.New(dErrors.CodeValidation, "department does not belong to faculty")
	}
	if req.Year > faculty.Years {
		return nil, dErrors.Newf(dErrors.CodeValidation, "year must be between 1 and %d", faculty.Years)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}

	user := &domain.User{
		Email:        req.Email,
		PasswordHash: string(hash),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		NationalID:   req.NationalID,
		Role:         domain.RoleStudent,
		Status:       domain.StatusPending,
		Year:         req.Year,
		FacultyID:    req.FacultyID,
		DepartmentID: req.DepartmentID,
	}
	if req.BirthDate != "" {
		birthDate, err := time.Parse(birthDateLayout, req.BirthDate)
		if err != nil {
			return nil, dErrors.New(dErrors.CodeValidation, "birth_date must be YYYY-MM-DD")
		}
		user.BirthDate = &birthDate
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.users.Create(ctx, user); err != nil {
			return err
		}
		return s.profiles.Create(ctx, &domain.Profile{
			UserID:     user.ID,
			Bio:        req.Bio,
			Interests:  req.Interests,
			Phone:      req.Phone,
			Visibility: domain.VisibilityPublic,
		})
	})
	if err != nil {
		return nil, err
	}

	if scan != nil {
		s.storeScan(ctx, user, scan)
	}
	if s.moderation != nil {
		s.moderation.FlagViolations(ctx, user.ID, map[string]string{
			"bio":       req.Bio,
			"interests": req.Interests,
		})
	}
	if s.metrics != nil {
		s.metrics.Registrations.Inc()
	}
	if s.recorder != nil {
		s.recorder.Record(ctx, audit.Event{
			Action:    audit.ActionUserRegistered,
			UserID:    user.ID,
			Email:     user.Email,
			RequestID: middleware.GetRequestID(ctx),
		})
	}
	return user, nil
}

// storeScan uploads the ID scan and links it to the user. Best-effort: a
// storage failure leaves the account registered without evidence, which the
// reviewer will see.
func (s *Service) storeScan(ctx context.Context, user *domain.User, scan *Upload) {
	if s.blobs == nil {
		return
	}
	key := fmt.Sprintf("users/%d/national-id%s", user.ID, scan.Ext)
	url, err := s.blobs.Put(ctx, key, scan.ContentType, scan.Body)
	if err != nil {
		s.logger.ErrorContext(ctx, "ID scan upload failed",
			"user_id", user.ID,
			"error", err,
		)
		return
	}
	if err := s.users.SetNationalIDScanURL(ctx, user.ID, url); err != nil {
		s.logger.ErrorContext(ctx, "failed to link ID scan",
			"user_id", user.ID,
			"error", err,
		)
		return
	}
	user.NationalIDScanURL = url
}
