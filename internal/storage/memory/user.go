// Package memory provides in-memory store implementations used by unit tests
// and the dev mode of the server. The conditional-update methods hold the
// store mutex for the whole check-then-write, giving the same atomicity the
// PostgreSQL stores get from single conditional UPDATEs.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/eima40x4c/CampusCard/internal/domain"
	dErrors "github.com/eima40x4c/CampusCard/pkg/domain-errors"
)

// UserStore is a mutex-guarded map of users keyed by ID.
type UserStore struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*domain.User
}

func NewUserStore() *UserStore {
	return &UserStore{nextID: 1, users: make(map[int64]*domain.User)}
}

func (s *UserStore) Create(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return dErrors.New(dErrors.CodeConflict, "email already registered")
		}
		if existing.NationalID == user.NationalID {
			return dErrors.New(dErrors.CodeConflict, "national ID already registered")
		}
	}

	now := time.Now()
	user.ID = s.nextID
	s.nextID++
	user.CreatedAt = now
	user.UpdatedAt = now
	s.users[user.ID] = cloneUser(user)
	return nil
}

func (s *UserStore) FindByID(_ context.Context, id int64) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
	}
	return cloneUser(user), nil
}

func (s *UserStore) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if strings.EqualFold(user.Email, email) {
			return cloneUser(user), nil
		}
	}
	return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
}

func (s *UserStore) FindByNationalID(_ context.Context, nationalID string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.NationalID == nationalID {
			return cloneUser(user), nil
		}
	}
	return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
}

func (s *UserStore) List(_ context.Context) ([]*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*domain.User, 0, len(s.users))
	for _, user := range s.users {
		out = append(out, cloneUser(user))
	}
	return out, nil
}

func (s *UserStore) ListByStatus(_ context.Context, status domain.Status) ([]*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.User
	for _, user := range s.users {
		if user.Status == status {
			out = append(out, cloneUser(user))
		}
	}
	return out, nil
}

func (s *UserStore) TransitionStatus(_ context.Context, userID int64, to domain.Status, reason *string, requireVerified bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return false, dErrors.New(dErrors.CodeNotFound, "user not found")
	}
	if user.Status != domain.StatusPending {
		return false, nil
	}
	if requireVerified && !user.EmailVerified {
		return false, nil
	}

	user.Status = to
	user.RejectionReason = reason
	user.UpdatedAt = time.Now()
	return true, nil
}

func (s *UserStore) UpdateRole(_ context.Context, userID int64, role domain.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return dErrors.New(dErrors.CodeNotFound, "user not found")
	}
	user.Role = role
	user.UpdatedAt = time.Now()
	return nil
}

func (s *UserStore) SetVerificationToken(_ context.Context, userID int64, token string, issuedAt time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return false, dErrors.New(dErrors.CodeNotFound, "user not found")
	}
	if user.EmailVerified {
		return false, nil
	}
	user.VerificationToken = token
	user.VerificationIssuedAt = &issuedAt
	user.UpdatedAt = time.Now()
	return true, nil
}

func (s *UserStore) RedeemVerificationToken(_ context.Context, userID int64, token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return false, dErrors.New(dErrors.CodeNotFound, "user not found")
	}
	if user.EmailVerified || user.VerificationToken == "" || user.VerificationToken != token {
		return false, nil
	}
	user.EmailVerified = true
	user.VerificationToken = ""
	user.VerificationIssuedAt = nil
	user.UpdatedAt = time.Now()
	return true, nil
}

func (s *UserStore) SetNationalIDScanURL(_ context.Context, userID int64, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return dErrors.New(dErrors.CodeNotFound, "user not found")
	}
	user.NationalIDScanURL = url
	user.UpdatedAt = time.Now()
	return nil
}

func (s *UserStore) Count(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.users)), nil
}

func (s *UserStore) CountByStatus(_ context.Context, status domain.Status) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, user := range s.users {
		if user.Status == status {
			n++
		}
	}
	return n, nil
}

func (s *UserStore) CountByRole(_ context.Context, role domain.Role) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, user := range s.users {
		if user.Role == role {
			n++
		}
	}
	return n, nil
}

func (s *UserStore) CountByEmailVerified(_ context.Context, verified bool) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, user := range s.users {
		if user.EmailVerified == verified {
			n++
		}
	}
	return n, nil
}

func cloneUser(u *domain.User) *domain.User {
	out := *u
	if u.BirthDate != nil {
		bd := *u.BirthDate
		out.BirthDate = &bd
	}
	if u.VerificationIssuedAt != nil {
		at := *u.VerificationIssuedAt
		out.VerificationIssuedAt = &at
	}
	if u.RejectionReason != nil {
		r := *u.RejectionReason
		out.RejectionReason = &r
	}
	return &out
}
