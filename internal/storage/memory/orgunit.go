package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/eima40x4c/CampusCard/internal/domain"
	dErrors "github.com/eima40x4c/CampusCard/pkg/domain-errors"
)

// FacultyStore serves faculty reference data seeded at construction.
type FacultyStore struct {
	mu   sync.Mutex
	byID map[int64]domain.Faculty
}

func NewFacultyStore(faculties []domain.Faculty) *FacultyStore {
	byID := make(map[int64]domain.Faculty, len(faculties))
	for _, f := range faculties {
		byID[f.ID] = f
	}
	return &FacultyStore{byID: byID}
}

func (s *FacultyStore) FindByID(_ context.Context, id int64) (*domain.Faculty, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.byID[id]
	if !ok {
		return nil, dErrors.New(dErrors.CodeNotFound, "faculty not found")
	}
	return &f, nil
}

func (s *FacultyStore) List(_ context.Context) ([]domain.Faculty, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Faculty, 0, len(s.byID))
	for _, f := range s.byID {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// DepartmentStore serves department reference data seeded at construction.
type DepartmentStore struct {
	mu   sync.Mutex
	byID map[int64]domain.Department
}

func NewDepartmentStore(departments []domain.Department) *DepartmentStore {
	byID := make(map[int64]domain.Department, len(departments))
	for _, d := range departments {
		byID[d.ID] = d
	}
	return &DepartmentStore{byID: byID}
}

func (s *DepartmentStore) FindByID(_ context.Context, id int64) (*domain.Department, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.byID[id]
	if !ok {
		return nil, dErrors.New(dErrors.CodeNotFound, "department not found")
	}
	return &d, nil
}

func (s *DepartmentStore) ListByFaculty(_ context.Context, facultyID int64) ([]domain.Department, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Department
	for _, d := range s.byID {
		if d.FacultyID == facultyID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
