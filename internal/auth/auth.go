// Package auth authenticates users by email or national ID and mints session
// tokens. Tokens are stateless: no revocation list exists, so a token stays
// valid until expiry regardless of later account changes.
package auth

import (
	"context"
	"log/slog"
	"regexp"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/crypto/bcrypt"

	dErrors "github.com/eima40x4c/CampusCard/pkg/domain-errors"

	"github.com/eima40x4c/CampusCard/internal/audit"
	"github.com/eima40x4c/CampusCard/internal/domain"
	"github.com/eima40x4c/CampusCard/internal/jwttoken"
	"github.com/eima40x4c/CampusCard/internal/platform/metrics"
	"github.com/eima40x4c/CampusCard/internal/platform/middleware"
	"github.com/eima40x4c/CampusCard/internal/storage"
)

var tracer = otel.Tracer("campuscard/auth")

// emailPattern decides whether a login identifier is resolved by email or by
// national ID.
var emailPattern = regexp.MustCompile(`^[A-Za-z0-9+_.-]+@(.+)$`)

// LoginResult is a successful authentication.
type LoginResult struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

type Service struct {
	users    storage.UserStore
	tokens   *jwttoken.JWTService
	recorder audit.Recorder
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

type Option func(*Service)

func WithRecorder(recorder audit.Recorder) Option {
	return func(s *Service) { s.recorder = recorder }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func New(users storage.UserStore, tokens *jwttoken.JWTService, opts ...Option) *Service {
	s := &Service{
		users:  users,
		tokens: tokens,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Login resolves the identifier, checks the password, and mints a session
// token. An unknown identifier fails with NotFound before any password
// comparison happens.
func (s *Service) Login(ctx context.Context, identifier, password, userAgent string) (*LoginResult, error) {
	ctx, span := tracer.Start(ctx, "auth.Login", trace.WithSpanKind(trace.SpanKindInternal))
	defer span.End()

	user, err := s.resolve(ctx, identifier)
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		if s.metrics != nil {
			s.metrics.LoginFailures.Inc()
		}
		s.logger.WarnContext(ctx, "login failed - wrong password",
			"user_id", user.ID,
			"request_id", middleware.GetRequestID(ctx),
		)
		if s.recorder != nil {
			s.recorder.Record(ctx, audit.Event{
				Action:    audit.ActionLoginFailed,
				UserID:    user.ID,
				Email:     user.Email,
				Device:    DescribeDevice(userAgent),
				RequestID: middleware.GetRequestID(ctx),
			})
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
	}

	token, err := s.tokens.Mint(user)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to mint session token")
	}

	if s.metrics != nil {
		s.metrics.Logins.Inc()
	}
	if s.recorder != nil {
		s.recorder.Record(ctx, audit.Event{
			Action:    audit.ActionUserLogin,
			UserID:    user.ID,
			Email:     user.Email,
			Device:    DescribeDevice(userAgent),
			RequestID: middleware.GetRequestID(ctx),
		})
	}
	return &LoginResult{Token: token, User: user}, nil
}

func (s *Service) resolve(ctx context.Context, identifier string) (*domain.User, error) {
	if emailPattern.MatchString(identifier) {
		return s.users.FindByEmail(ctx, identifier)
	}
	return s.users.FindByNationalID(ctx, identifier)
}
