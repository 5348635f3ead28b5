// Package verification manages the email verification token lifecycle:
// issuing single-use tokens and redeeming them within their validity window.
package verification

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"log/slog"
	"time"

	dErrors "github.com/eima40x4c/CampusCard/pkg/domain-errors"

	"github.com/eima40x4c/CampusCard/internal/audit"
	"github.com/eima40x4c/CampusCard/internal/notify"
	"github.com/eima40x4c/CampusCard/internal/platform/metrics"
	"github.com/eima40x4c/CampusCard/internal/platform/middleware"
	"github.com/eima40x4c/CampusCard/internal/storage"
)

type Service struct {
	users    storage.UserStore
	notifier notify.Notifier
	recorder audit.Recorder
	metrics  *metrics.Metrics
	logger   *slog.Logger
	ttl      time.Duration
	now      func() time.Time
}

type Option func(*Service)

func WithNotifier(notifier notify.Notifier) Option {
	return func(s *Service) { s.notifier = notifier }
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

// WithClock overrides the time source for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func New(users storage.UserStore, ttl time.Duration, opts ...Option) *Service {
	s := &Service{
		users:  users,
		logger: slog.Default(),
		ttl:    ttl,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Issue generates a fresh verification token for an unverified user, replacing
// any earlier token, and emails it out. The token is returned so transport
// layers can surface it in development setups without a mail provider.
func (s *Service) Issue(ctx context.Context, userID int64) (string, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if user.EmailVerified {
		return "", dErrors.New(dErrors.CodeInvalidState, "email already verified")
	}

	token, err := newToken()
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate verification token")
	}

	applied, err := s.users.SetVerificationToken(ctx, userID, token, s.now())
	if err != nil {
		return "", err
	}
	if !applied {
		// Lost a race against a concurrent redemption.
		return "", dErrors.New(dErrors.CodeInvalidState, "email already verified")
	}

	if s.notifier != nil {
		if err := s.notifier.SendVerification(ctx, user.Email, token); err != nil {
			s.logger.ErrorContext(ctx, "verification email delivery failed",
				"user_id", userID,
				"error", err,
			)
		}
	}
	if s.metrics != nil {
		s.metrics.VerificationsIssued.Inc()
	}
	if s.recorder != nil {
		s.recorder.Record(ctx, audit.Event{
			Action:    audit.ActionVerificationIssued,
			UserID:    userID,
			Email:     user.Email,
			RequestID: middleware.GetRequestID(ctx),
		})
	}
	return token, nil
}

// Redeem marks the user's email verified if the presented token matches the
// stored one and was issued within the validity window. A token can only be
// redeemed once; reissuing invalidates earlier tokens.
func (s *Service) Redeem(ctx context.Context, userID int64, token string) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.EmailVerified {
		return dErrors.New(dErrors.CodeInvalidState, "email already verified")
	}
	if user.VerificationToken == "" ||
		subtle.ConstantTimeCompare([]byte(user.VerificationToken), []byte(token)) != 1 {
		return dErrors.New(dErrors.CodeTokenInvalid, "verification token is invalid")
	}
	if user.VerificationIssuedAt == nil || s.now().After(user.VerificationIssuedAt.Add(s.ttl)) {
		return dErrors.New(dErrors.CodeTokenExpired, "verification token has expired")
	}

	applied, err := s.users.RedeemVerificationToken(ctx, userID, token)
	if err != nil {
		return err
	}
	if !applied {
		return dErrors.New(dErrors.CodeInvalidState, "email already verified")
	}

	if s.recorder != nil {
		s.recorder.Record(ctx, audit.Event{
			Action:    audit.ActionEmailVerified,
			UserID:    userID,
			Email:     user.Email,
			RequestID: middleware.GetRequestID(ctx),
		})
	}
	return nil
}

func newToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
