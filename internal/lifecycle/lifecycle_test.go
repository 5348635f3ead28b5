package lifecycle

import (
	"context"
	"sync"
	"testing"

	dErrors "github.com/eima40x4c/CampusCard/pkg/domain-errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eima40x4c/CampusCard/internal/audit"
	"github.com/eima40x4c/CampusCard/internal/domain"
	"github.com/eima40x4c/CampusCard/internal/storage/memory"
)

const reviewerID = int64(1000)

func newTestService(t *testing.T) (*Service, *memory.UserStore, *audit.MemoryRecorder) {
	t.Helper()
	users := memory.NewUserStore()
	recorder := audit.NewMemoryRecorder()
	return New(users, WithRecorder(recorder)), users, recorder
}

func seedUser(t *testing.T, users *memory.UserStore, status domain.Status, verified bool) *domain.User {
	t.Helper()
	user := &domain.User{
		Email:         "applicant@university.edu",
		NationalID:    "29901011234567",
		Role:          domain.RoleStudent,
		Status:        status,
		EmailVerified: verified,
	}
	require.NoError(t, users.Create(context.Background(), user))
	return user
}

func Test_Approve_PendingVerified(t *testing.T) {
	svc, users, recorder := newTestService(t)
	user := seedUser(t, users, domain.StatusPending, true)

	require.NoError(t, svc.Approve(context.Background(), user.ID, reviewerID))

	stored, err := users.FindByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, stored.Status)
	assert.Nil(t, stored.RejectionReason)

	events := recorder.Events()
	require.Len(t, events, 1)
	assert.Equal(t, audit.ActionUserApproved, events[0].Action)
	assert.Equal(t, reviewerID, events[0].ActorID)
}

func Test_Approve_UnverifiedEmail(t *testing.T) {
	svc, users, _ := newTestService(t)
	user := seedUser(t, users, domain.StatusPending, false)

	err := svc.Approve(context.Background(), user.ID, reviewerID)
	require.True(t, dErrors.HasCode(err, dErrors.CodeInvalidState))

	stored, err := users.FindByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, stored.Status)
}

func Test_Approve_NotPending(t *testing.T) {
	for _, status := range []domain.Status{domain.StatusApproved, domain.StatusRejected} {
		t.Run(string(status), func(t *testing.T) {
			svc, users, _ := newTestService(t)
			user := seedUser(t, users, status, true)

			err := svc.Approve(context.Background(), user.ID, reviewerID)
			require.True(t, dErrors.HasCode(err, dErrors.CodeInvalidState))
		})
	}
}

func Test_Approve_UnknownUser(t *testing.T) {
	svc, _, _ := newTestService(t)

	err := svc.Approve(context.Background(), 999, reviewerID)
	require.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func Test_Approve_ConcurrentDecisions(t *testing.T) {
	svc, users, _ := newTestService(t)
	user := seedUser(t, users, domain.StatusPending, true)

	const attempts = 8
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := range attempts {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = svc.Approve(context.Background(), user.ID, reviewerID)
		}(i)
	}
	wg.Wait()

	var succeeded, invalidState int
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case dErrors.HasCode(err, dErrors.CodeInvalidState):
			invalidState++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, attempts-1, invalidState)
}

func Test_Reject_PendingUnverified(t *testing.T) {
	svc, users, recorder := newTestService(t)
	user := seedUser(t, users, domain.StatusPending, false)

	reason := "ID scan unreadable"
	require.NoError(t, svc.Reject(context.Background(), user.ID, reviewerID, &reason))

	stored, err := users.FindByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRejected, stored.Status)
	require.NotNil(t, stored.RejectionReason)
	assert.Equal(t, reason, *stored.RejectionReason)

	events := recorder.Events()
	require.Len(t, events, 1)
	assert.Equal(t, audit.ActionUserRejected, events[0].Action)
	assert.Equal(t, reason, events[0].Reason)
}

func Test_Reject_NilReason(t *testing.T) {
	svc, users, _ := newTestService(t)
	user := seedUser(t, users, domain.StatusPending, true)

	require.NoError(t, svc.Reject(context.Background(), user.ID, reviewerID, nil))

	stored, err := users.FindByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRejected, stored.Status)
	assert.Nil(t, stored.RejectionReason)
}

func Test_Reject_NotPending(t *testing.T) {
	svc, users, _ := newTestService(t)
	user := seedUser(t, users, domain.StatusApproved, true)

	err := svc.Reject(context.Background(), user.ID, reviewerID, nil)
	require.True(t, dErrors.HasCode(err, dErrors.CodeInvalidState))
}

func Test_ChangeRole_SelfChangeForbidden(t *testing.T) {
	svc, users, _ := newTestService(t)
	admin := seedUser(t, users, domain.StatusApproved, true)

	err := svc.ChangeRole(context.Background(), admin.ID, "admin", admin.ID)
	require.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))
}

func Test_ChangeRole_InvalidRole(t *testing.T) {
	svc, users, _ := newTestService(t)
	user := seedUser(t, users, domain.StatusApproved, true)

	err := svc.ChangeRole(context.Background(), user.ID, "superuser", reviewerID)
	require.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func Test_ChangeRole_Succeeds(t *testing.T) {
	svc, users, recorder := newTestService(t)
	user := seedUser(t, users, domain.StatusApproved, true)

	require.NoError(t, svc.ChangeRole(context.Background(), user.ID, "admin", reviewerID))

	stored, err := users.FindByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, stored.Role)

	events := recorder.Events()
	require.Len(t, events, 1)
	assert.Equal(t, audit.ActionRoleChanged, events[0].Action)
}

func Test_Dashboard_Counts(t *testing.T) {
	svc, users, _ := newTestService(t)
	ctx := context.Background()

	seed := []struct {
		email    string
		nid      string
		role     domain.Role
		status   domain.Status
		verified bool
	}{
		{"a@u.edu", "n1", domain.RoleStudent, domain.StatusPending, false},
		{"b@u.edu", "n2", domain.RoleStudent, domain.StatusApproved, true},
		{"c@u.edu", "n3", domain.RoleStudent, domain.StatusRejected, true},
		{"d@u.edu", "n4", domain.RoleAdmin, domain.StatusApproved, true},
	}
	for _, u := range seed {
		require.NoError(t, users.Create(ctx, &domain.User{
			Email: u.email, NationalID: u.nid, Role: u.role,
			Status: u.status, EmailVerified: u.verified,
		}))
	}

	stats, err := svc.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), stats.TotalUsers)
	assert.Equal(t, int64(1), stats.PendingApprovals)
	assert.Equal(t, int64(2), stats.ApprovedUsers)
	assert.Equal(t, int64(1), stats.RejectedUsers)
	assert.Equal(t, int64(3), stats.Students)
	assert.Equal(t, int64(1), stats.Admins)
	assert.Equal(t, int64(3), stats.VerifiedEmails)
	assert.Equal(t, int64(1), stats.UnverifiedEmails)
}
