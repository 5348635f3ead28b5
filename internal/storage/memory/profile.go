package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/eima40x4c/CampusCard/internal/domain"
	dErrors "github.com/eima40x4c/CampusCard/pkg/domain-errors"
)

// ProfileStore keeps profiles keyed by user ID. The directory listing joins
// against the user and reference stores the same way the SQL store does.
type ProfileStore struct {
	mu          sync.Mutex
	nextID      int64
	byUserID    map[int64]*domain.Profile
	users       *UserStore
	faculties   *FacultyStore
	departments *DepartmentStore
}

func NewProfileStore(users *UserStore, faculties *FacultyStore, departments *DepartmentStore) *ProfileStore {
	return &ProfileStore{
		nextID:      1,
		byUserID:    make(map[int64]*domain.Profile),
		users:       users,
		faculties:   faculties,
		departments: departments,
	}
}

func (s *ProfileStore) Create(_ context.Context, profile *domain.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byUserID[profile.UserID]; exists {
		return dErrors.New(dErrors.CodeConflict, "profile already exists for user")
	}
	profile.ID = s.nextID
	s.nextID++
	profile.UpdatedAt = time.Now()
	clone := *profile
	s.byUserID[profile.UserID] = &clone
	return nil
}

func (s *ProfileStore) FindByUserID(_ context.Context, userID int64) (*domain.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	profile, ok := s.byUserID[userID]
	if !ok {
		return nil, dErrors.New(dErrors.CodeNotFound, "profile not found")
	}
	clone := *profile
	return &clone, nil
}

func (s *ProfileStore) Update(_ context.Context, profile *domain.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.byUserID[profile.UserID]
	if !ok {
		return dErrors.New(dErrors.CodeNotFound, "profile not found")
	}
	clone := *profile
	clone.ID = existing.ID
	clone.UpdatedAt = time.Now()
	s.byUserID[profile.UserID] = &clone
	return nil
}

func (s *ProfileStore) ListPublicDirectory(ctx context.Context) ([]domain.DirectoryEntry, error) {
	s.mu.Lock()
	profiles := make([]*domain.Profile, 0, len(s.byUserID))
	for _, p := range s.byUserID {
		clone := *p
		profiles = append(profiles, &clone)
	}
	s.mu.Unlock()

	var entries []domain.DirectoryEntry
	for _, p := range profiles {
		if p.Visibility != domain.VisibilityPublic {
			continue
		}
		user, err := s.users.FindByID(ctx, p.UserID)
		if err != nil {
			continue
		}
		if user.Status != domain.StatusApproved || user.Role != domain.RoleStudent {
			continue
		}
		entry := domain.DirectoryEntry{
			UserID:    user.ID,
			FirstName: user.FirstName,
			LastName:  user.LastName,
			Year:      user.Year,
			Bio:       p.Bio,
			Interests: p.Interests,
			PhotoURL:  p.PhotoURL,
		}
		if f, err := s.faculties.FindByID(ctx, user.FacultyID); err == nil {
			entry.Faculty = f.Name
		}
		if d, err := s.departments.FindByID(ctx, user.DepartmentID); err == nil {
			entry.Department = d.Name
		}
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].UserID < entries[j].UserID })
	return entries, nil
}
