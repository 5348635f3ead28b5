package bootstrap

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/eima40x4c/CampusCard/internal/domain"
	"github.com/eima40x4c/CampusCard/internal/storage/memory"
)

const (
	seedEmail    = "admin@campuscard.local"
	seedPassword = "bootstrap-secret"
)

func newStores() (*memory.UserStore, *memory.ProfileStore, *memory.TxRunner) {
	users := memory.NewUserStore()
	profiles := memory.NewProfileStore(users, memory.NewFacultyStore(nil), memory.NewDepartmentStore(nil))
	return users, profiles, memory.NewTxRunner()
}

func Test_SeedAdmin_CreatesApprovedAdmin(t *testing.T) {
	users, profiles, tx := newStores()

	err := SeedAdmin(context.Background(), users, profiles, tx, seedEmail, seedPassword, slog.Default())
	require.NoError(t, err)

	admin, err := users.FindByEmail(context.Background(), seedEmail)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, admin.Role)
	assert.Equal(t, domain.StatusApproved, admin.Status)
	assert.True(t, admin.EmailVerified)
	assert.NoError(t, bcrypt.CompareHashAndPassword(
		[]byte(admin.PasswordHash), []byte(seedPassword)))

	profile, err := profiles.FindByUserID(context.Background(), admin.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.VisibilityPrivate, profile.Visibility)
}

func Test_SeedAdmin_Idempotent(t *testing.T) {
	users, profiles, tx := newStores()

	require.NoError(t, SeedAdmin(context.Background(), users, profiles, tx, seedEmail, seedPassword, slog.Default()))
	require.NoError(t, SeedAdmin(context.Background(), users, profiles, tx, seedEmail, "other-password", slog.Default()))

	count, err := users.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	// The second run must not overwrite the original credentials.
	admin, err := users.FindByEmail(context.Background(), seedEmail)
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword(
		[]byte(admin.PasswordHash), []byte(seedPassword)))
}

func Test_SeedAdmin_SkippedWithoutPassword(t *testing.T) {
	users, profiles, tx := newStores()

	require.NoError(t, SeedAdmin(context.Background(), users, profiles, tx, seedEmail, "", slog.Default()))

	count, err := users.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}
