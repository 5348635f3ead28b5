// Package lifecycle is the sole mutator of the user review state machine:
// PENDING accounts are approved or rejected by an admin, roles are reassigned,
// and the dashboard aggregates read-side counts.
package lifecycle

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	dErrors "github.com/eima40x4c/CampusCard/pkg/domain-errors"

	"github.com/eima40x4c/CampusCard/internal/audit"
	"github.com/eima40x4c/CampusCard/internal/domain"
	"github.com/eima40x4c/CampusCard/internal/notify"
	"github.com/eima40x4c/CampusCard/internal/platform/metrics"
	"github.com/eima40x4c/CampusCard/internal/platform/middleware"
	"github.com/eima40x4c/CampusCard/internal/storage"
)

var tracer = otel.Tracer("campuscard/lifecycle")

type Service struct {
	users    storage.UserStore
	notifier notify.Notifier
	recorder audit.Recorder
	metrics  *metrics.Metrics
	logger   *slog.Logger
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

func New(users storage.UserStore, opts ...Option) *Service {
	s := &Service{
		users:  users,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Approve moves a PENDING user with a verified email to APPROVED. The
// precondition check and the write are one atomic store operation, so two
// concurrent decisions cannot both succeed.
func (s *Service) Approve(ctx context.Context, userID, reviewerID int64) error {
	ctx, span := tracer.Start(ctx, "lifecycle.Approve", trace.WithAttributes(
		attribute.Int64("user.id", userID),
		attribute.Int64("reviewer.id", reviewerID),
	))
	defer span.End()

	applied, err := s.users.TransitionStatus(ctx, userID, domain.StatusApproved, nil, true)
	if err != nil {
		return err
	}
	if !applied {
		return s.classifyTransitionFailure(ctx, userID, true)
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	if s.notifier != nil {
		if err := s.notifier.SendDecision(ctx, user.Email, true, ""); err != nil {
			s.logger.ErrorContext(ctx, "approval email delivery failed",
				"user_id", userID,
				"error", err,
			)
		}
	}
	if s.metrics != nil {
		s.metrics.Approvals.Inc()
	}
	if s.recorder != nil {
		s.recorder.Record(ctx, audit.Event{
			Action:    audit.ActionUserApproved,
			UserID:    userID,
			Email:     user.Email,
			ActorID:   reviewerID,
			RequestID: middleware.GetRequestID(ctx),
		})
	}
	return nil
}

// Reject moves a PENDING user to REJECTED, recording an optional reason.
// Rejection does not require a verified email.
func (s *Service) Reject(ctx context.Context, userID, reviewerID int64, reason *string) error {
	ctx, span := tracer.Start(ctx, "lifecycle.Reject", trace.WithAttributes(
		attribute.Int64("user.id", userID),
		attribute.Int64("reviewer.id", reviewerID),
	))
	defer span.End()

	applied, err := s.users.TransitionStatus(ctx, userID, domain.StatusRejected, reason, false)
	if err != nil {
		return err
	}
	if !applied {
		return s.classifyTransitionFailure(ctx, userID, false)
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	if s.notifier != nil {
		var reasonText string
		if reason != nil {
			reasonText = *reason
		}
		if err := s.notifier.SendDecision(ctx, user.Email, false, reasonText); err != nil {
			s.logger.ErrorContext(ctx, "rejection email delivery failed",
				"user_id", userID,
				"error", err,
			)
		}
	}
	if s.metrics != nil {
		s.metrics.Rejections.Inc()
	}
	if s.recorder != nil {
		event := audit.Event{
			Action:    audit.ActionUserRejected,
			UserID:    userID,
			Email:     user.Email,
			ActorID:   reviewerID,
			RequestID: middleware.GetRequestID(ctx),
		}
		if reason != nil {
			event.Reason = *reason
		}
		s.recorder.Record(ctx, event)
	}
	return nil
}

// ChangeRole reassigns a user's role. Admins may never change their own role.
func (s *Service) ChangeRole(ctx context.Context, userID int64, newRole string, actingAdminID int64) error {
	if userID == actingAdminID {
		return dErrors.New(dErrors.CodeForbidden, "admins cannot change their own role")
	}
	role, err := domain.ParseRole(newRole)
	if err != nil {
		return err
	}
	if err := s.users.UpdateRole(ctx, userID, role); err != nil {
		return err
	}

	if s.recorder != nil {
		s.recorder.Record(ctx, audit.Event{
			Action:    audit.ActionRoleChanged,
			UserID:    userID,
			ActorID:   actingAdminID,
			Reason:    "role set to " + string(role),
			RequestID: middleware.GetRequestID(ctx),
		})
	}
	return nil
}

// Dashboard aggregates account counts along each dimension independently.
func (s *Service) Dashboard(ctx context.Context) (*domain.DashboardStats, error) {
	stats := &domain.DashboardStats{}

	var err error
	if stats.TotalUsers, err = s.users.Count(ctx); err != nil {
		return nil, err
	}
	if stats.PendingApprovals, err = s.users.CountByStatus(ctx, domain.StatusPending); err != nil {
		return nil, err
	}
	if stats.ApprovedUsers, err = s.users.CountByStatus(ctx, domain.StatusApproved); err != nil {
		return nil, err
	}
	if stats.RejectedUsers, err = s.users.CountByStatus(ctx, domain.StatusRejected); err != nil {
		return nil, err
	}
	if stats.Students, err = s.users.CountByRole(ctx, domain.RoleStudent); err != nil {
		return nil, err
	}
	if stats.Admins, err = s.users.CountByRole(ctx, domain.RoleAdmin); err != nil {
		return nil, err
	}
	if stats.VerifiedEmails, err = s.users.CountByEmailVerified(ctx, true); err != nil {
		return nil, err
	}
	if stats.UnverifiedEmails, err = s.users.CountByEmailVerified(ctx, false); err != nil {
		return nil, err
	}
	return stats, nil
}

// ListPending returns the accounts awaiting review.
func (s *Service) ListPending(ctx context.Context) ([]*domain.User, error) {
	return s.users.ListByStatus(ctx, domain.StatusPending)
}

// ListAll returns every account.
func (s *Service) ListAll(ctx context.Context) ([]*domain.User, error) {
	return s.users.List(ctx)
}

// Get returns one account by ID.
func (s *Service) Get(ctx context.Context, userID int64) (*domain.User, error) {
	return s.users.FindByID(ctx, userID)
}

// classifyTransitionFailure re-reads the record to produce a precise message
// for a transition whose atomic precondition failed. The re-read is advisory
// only; the transition itself already lost.
func (s *Service) classifyTransitionFailure(ctx context.Context, userID int64, requireVerified bool) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.Status != domain.StatusPending {
		return dErrors.Newf(dErrors.CodeInvalidState, "user is %s, not pending review", user.Status)
	}
	if requireVerified && !user.EmailVerified {
		return dErrors.New(dErrors.CodeInvalidState, "email must be verified before approval")
	}
	return dErrors.New(dErrors.CodeInvalidState, "user state changed concurrently")
}
