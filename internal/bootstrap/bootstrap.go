// Package bootstrap runs one-time startup initialization, currently the
// idempotent admin account seed.
package bootstrap

import (
	"context"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	dErrors "github.com/eima40x4c/CampusCard/pkg/domain-errors"

	"github.com/eima40x4c/CampusCard/internal/domain"
	"github.com/eima40x4c/CampusCard/internal/storage"
)

// SeedAdmin ensures exactly one admin account exists for the configured
// email. The guard is the uniqueness check on email, so repeated startups
// are no-ops. With no password configured the seed is skipped entirely.
func SeedAdmin(ctx context.Context, users storage.UserStore, profiles storage.ProfileStore,
	tx storage.TxRunner, email, password string, logger *slog.Logger) error {

	if password == "" {
		logger.WarnContext(ctx, "admin seed skipped - no password configured")
		return nil
	}

	_, err := users.FindByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !dErrors.HasCode(err, dErrors.CodeNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash admin password")
	}

	admin := &domain.User{
		Email:         email,
		PasswordHash:  string(hash),
		FirstName:     "System",
		LastName:      "Administrator",
		NationalID:    "admin:" + email,
		Role:          domain.RoleAdmin,
		Status:        domain.StatusApproved,
		EmailVerified: true,
		Year:          1,
	}

	err = tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := users.Create(ctx, admin); err != nil {
			return err
		}
		return profiles.Create(ctx, &domain.Profile{
			UserID:     admin.ID,
			Visibility: domain.VisibilityPrivate,
		})
	})
	if err != nil {
		// A concurrent replica may have won the race; that still satisfies
		// the invariant.
		if dErrors.HasCode(err, dErrors.CodeConflict) {
			return nil
		}
		return err
	}

	logger.InfoContext(ctx, "admin account seeded", "email", email, "user_id", admin.ID)
	return nil
}
