// Package profile serves and updates user profiles, enforcing the visibility
// rules on reads and running free-text edits through moderation.
package profile

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"

	dErrors "github.com/eima40x4c/CampusCard/pkg/domain-errors"

	"github.com/eima40x4c/CampusCard/internal/audit"
	"github.com/eima40x4c/CampusCard/internal/blob"
	"github.com/eima40x4c/CampusCard/internal/domain"
	"github.com/eima40x4c/CampusCard/internal/moderation"
	"github.com/eima40x4c/CampusCard/internal/platform/middleware"
	"github.com/eima40x4c/CampusCard/internal/storage"
)

// Viewer identifies who is asking for a profile. A nil viewer is an
// unauthenticated request.
type Viewer struct {
	UserID int64
	Role   domain.Role
	Status domain.Status
}

// UpdateRequest carries the owner-editable profile fields.
type UpdateRequest struct {
	Bio        string `json:"bio"`
	Phone      string `json:"phone"`
	LinkedIn   string `json:"linkedin"`
	GitHub     string `json:"github"`
	Interests  string `json:"interests"`
	Visibility string `json:"visibility"`
}

type Service struct {
	profiles   storage.ProfileStore
	users      storage.UserStore
	blobs      blob.Store
	moderation *moderation.Service
	recorder   audit.Recorder
	logger     *slog.Logger
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

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func New(profiles storage.ProfileStore, users storage.UserStore, opts ...Option) *Service {
	s := &Service{
		profiles: profiles,
		users:    users,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns a user's profile if the viewer may see it. Owners and admins
// always may; otherwise visibility decides: public profiles are open to
// anyone, students-only profiles need an approved authenticated viewer, and
// private profiles are closed.
func (s *Service) Get(ctx context.Context, userID int64, viewer *Viewer) (*domain.Profile, error) {
	profile, err := s.profiles.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if viewer != nil && (viewer.UserID == userID || viewer.Role == domain.RoleAdmin) {
		return profile, nil
	}

	switch profile.Visibility {
	case domain.VisibilityPublic:
		return profile, nil
	case domain.VisibilityStudentsOnly:
		if viewer != nil && viewer.Status == domain.StatusApproved {
			return profile, nil
		}
		return nil, dErrors.New(dErrors.CodeForbidden, "profile is visible to approved students only")
	default:
		return nil, dErrors.New(dErrors.CodeForbidden, "profile is private")
	}
}

// Update overwrites the owner-editable fields of the caller's own profile.
// Free-text fields are moderation-scanned after the write; a hit flags the
// content but never rolls the update back.
func (s *Service) Update(ctx context.Context, ownerID int64, req UpdateRequest) (*domain.Profile, error) {
	visibility, err := domain.ParseVisibility(req.Visibility)
	if err != nil {
		return nil, err
	}

	profile, err := s.profiles.FindByUserID(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	profile.Bio = req.Bio
	profile.Phone = req.Phone
	profile.LinkedIn = req.LinkedIn
	profile.GitHub = req.GitHub
	profile.Interests = req.Interests
	profile.Visibility = visibility

	if err := s.profiles.Update(ctx, profile); err != nil {
		return nil, err
	}

	if s.moderation != nil {
		s.moderation.FlagViolations(ctx, ownerID, map[string]string{
			"bio":       req.Bio,
			"interests": req.Interests,
		})
	}
	if s.recorder != nil {
		s.recorder.Record(ctx, audit.Event{
			Action:    audit.ActionProfileUpdated,
			UserID:    ownerID,
			RequestID: middleware.GetRequestID(ctx),
		})
	}
	return profile, nil
}

// SetPhoto stores an uploaded profile photo and links it to the profile.
func (s *Service) SetPhoto(ctx context.Context, ownerID int64, contentType, ext string, body io.Reader) (*domain.Profile, error) {
	if s.blobs == nil {
		return nil, dErrors.New(dErrors.CodeInvalidState, "photo storage is not configured")
	}

	profile, err := s.profiles.FindByUserID(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("users/%d/photo%s", ownerID, ext)
	url, err := s.blobs.Put(ctx, key, contentType, body)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store photo")
	}

	// A replaced photo with a different extension leaves the old object
	// behind; remove it best-effort.
	if oldExt := path.Ext(profile.PhotoURL); profile.PhotoURL != "" && oldExt != ext {
		oldKey := fmt.Sprintf("users/%d/photo%s", ownerID, oldExt)
		if err := s.blobs.Delete(ctx, oldKey); err != nil {
			s.logger.WarnContext(ctx, "failed to remove replaced photo",
				"user_id", ownerID,
				"error", err,
			)
		}
	}

	profile.PhotoURL = url
	if err := s.profiles.Update(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}
