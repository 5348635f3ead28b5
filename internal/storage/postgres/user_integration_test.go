//go:build integration

package postgres_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/eima40x4c/CampusCard/internal/domain"
	"github.com/eima40x4c/CampusCard/internal/storage/postgres"
	dErrors "github.com/eima40x4c/CampusCard/pkg/domain-errors"
	"github.com/eima40x4c/CampusCard/pkg/testutil/containers"
)

type UserStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *postgres.UserStore
}

func TestUserStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(UserStoreSuite))
}

func (s *UserStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.Require().NoError(postgres.EnsureSchema(context.Background(), s.postgres.DB))
	s.store = postgres.NewUserStore(s.postgres.DB)
}

func (s *UserStoreSuite) TearDownSuite() {
	if s.postgres != nil {
		_ = s.postgres.Close(context.Background())
	}
}

func (s *UserStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "users"))
}

func newTestUser() *domain.User {
	unique := uuid.NewString()
	return &domain.User{
		Email:        unique + "@uni.edu",
		PasswordHash: "$2a$10$not.a.real.hash.but.long.enough.for.the.column",
		FirstName:    "Test",
		LastName:     "Student",
		NationalID:   unique,
		Role:         domain.RoleStudent,
		Status:       domain.StatusPending,
	}
}

func (s *UserStoreSuite) TestCreateAndFind() {
	ctx := context.Background()
	user := newTestUser()

	s.Require().NoError(s.store.Create(ctx, user))
	s.Require().NotZero(user.ID)
	s.Require().False(user.CreatedAt.IsZero())

	byID, err := s.store.FindByID(ctx, user.ID)
	s.Require().NoError(err)
	s.Equal(user.Email, byID.Email)
	s.Equal(domain.StatusPending, byID.Status)
	s.False(byID.EmailVerified)

	_, err = s.store.FindByEmail(ctx, "missing-"+user.Email)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	// Email lookup is case-insensitive.
	byEmail, err := s.store.FindByEmail(ctx, strings.ToUpper(user.Email))
	s.Require().NoError(err)
	s.Equal(user.ID, byEmail.ID)

	byNID, err := s.store.FindByNationalID(ctx, user.NationalID)
	s.Require().NoError(err)
	s.Equal(user.ID, byNID.ID)
}

func (s *UserStoreSuite) TestUniqueConstraints() {
	ctx := context.Background()
	user := newTestUser()
	s.Require().NoError(s.store.Create(ctx, user))

	sameEmail := newTestUser()
	sameEmail.Email = user.Email
	err := s.store.Create(ctx, sameEmail)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))

	sameNID := newTestUser()
	sameNID.NationalID = user.NationalID
	err = s.store.Create(ctx, sameNID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
}

func (s *UserStoreSuite) TestVerificationTokenLifecycle() {
	ctx := context.Background()
	user := newTestUser()
	s.Require().NoError(s.store.Create(ctx, user))

	applied, err := s.store.SetVerificationToken(ctx, user.ID, "token-one", time.Now())
	s.Require().NoError(err)
	s.True(applied)

	// Wrong token never verifies.
	applied, err = s.store.RedeemVerificationToken(ctx, user.ID, "token-two")
	s.Require().NoError(err)
	s.False(applied)

	applied, err = s.store.RedeemVerificationToken(ctx, user.ID, "token-one")
	s.Require().NoError(err)
	s.True(applied)

	// Single use: the token is cleared on redemption.
	applied, err = s.store.RedeemVerificationToken(ctx, user.ID, "token-one")
	s.Require().NoError(err)
	s.False(applied)

	// Verified accounts never get a new token.
	applied, err = s.store.SetVerificationToken(ctx, user.ID, "token-three", time.Now())
	s.Require().NoError(err)
	s.False(applied)

	verified, err := s.store.FindByID(ctx, user.ID)
	s.Require().NoError(err)
	s.True(verified.EmailVerified)
	s.Empty(verified.VerificationToken)
	s.Nil(verified.VerificationIssuedAt)
}

func (s *UserStoreSuite) TestTransitionStatus() {
	ctx := context.Background()
	user := newTestUser()
	s.Require().NoError(s.store.Create(ctx, user))

	// Approval is gated on a verified email.
	applied, err := s.store.TransitionStatus(ctx, user.ID, domain.StatusApproved, nil, true)
	s.Require().NoError(err)
	s.False(applied)

	s.verify(ctx, user.ID)

	applied, err = s.store.TransitionStatus(ctx, user.ID, domain.StatusApproved, nil, true)
	s.Require().NoError(err)
	s.True(applied)

	// Decisions are final.
	applied, err = s.store.TransitionStatus(ctx, user.ID, domain.StatusRejected, nil, false)
	s.Require().NoError(err)
	s.False(applied)
}

func (s *UserStoreSuite) TestRejectKeepsReason() {
	ctx := context.Background()
	user := newTestUser()
	s.Require().NoError(s.store.Create(ctx, user))

	reason := "national ID scan is unreadable"
	applied, err := s.store.TransitionStatus(ctx, user.ID, domain.StatusRejected, &reason, false)
	s.Require().NoError(err)
	s.True(applied)

	rejected, err := s.store.FindByID(ctx, user.ID)
	s.Require().NoError(err)
	s.Equal(domain.StatusRejected, rejected.Status)
	s.Require().NotNil(rejected.RejectionReason)
	s.Equal(reason, *rejected.RejectionReason)
}

// TestConcurrentDecisions verifies that racing approve/reject calls resolve to
// exactly one applied transition.
func (s *UserStoreSuite) TestConcurrentDecisions() {
	ctx := context.Background()
	user := newTestUser()
	s.Require().NoError(s.store.Create(ctx, user))
	s.verify(ctx, user.ID)

	const goroutines = 32
	var wg sync.WaitGroup
	var appliedCount atomic.Int32

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		to := domain.StatusApproved
		if i%2 == 1 {
			to = domain.StatusRejected
		}
		go func(to domain.Status) {
			defer wg.Done()
			applied, err := s.store.TransitionStatus(ctx, user.ID, to, nil, to == domain.StatusApproved)
			if err == nil && applied {
				appliedCount.Add(1)
			}
		}(to)
	}
	wg.Wait()

	s.Equal(int32(1), appliedCount.Load(), "exactly one decision should win")
}

func (s *UserStoreSuite) TestCounts() {
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		s.Require().NoError(s.store.Create(ctx, newTestUser()))
	}
	approved := newTestUser()
	s.Require().NoError(s.store.Create(ctx, approved))
	s.verify(ctx, approved.ID)
	applied, err := s.store.TransitionStatus(ctx, approved.ID, domain.StatusApproved, nil, true)
	s.Require().NoError(err)
	s.Require().True(applied)

	total, err := s.store.Count(ctx)
	s.Require().NoError(err)
	s.Equal(int64(4), total)

	pending, err := s.store.CountByStatus(ctx, domain.StatusPending)
	s.Require().NoError(err)
	s.Equal(int64(3), pending)

	verified, err := s.store.CountByEmailVerified(ctx, true)
	s.Require().NoError(err)
	s.Equal(int64(1), verified)
}

func (s *UserStoreSuite) verify(ctx context.Context, userID int64) {
	s.T().Helper()
	token := fmt.Sprintf("verify-%d", userID)
	applied, err := s.store.SetVerificationToken(ctx, userID, token, time.Now())
	s.Require().NoError(err)
	s.Require().True(applied)
	applied, err = s.store.RedeemVerificationToken(ctx, userID, token)
	s.Require().NoError(err)
	s.Require().True(applied)
}
