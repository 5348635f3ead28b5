// Package directory serves the public, unauthenticated read surface: the
// faculty/department reference data and the opt-in student directory.
package directory

import (
	"context"

	"github.com/eima40x4c/CampusCard/internal/domain"
	"github.com/eima40x4c/CampusCard/internal/storage"
)

type Service struct {
	faculties   storage.FacultyStore
	departments storage.DepartmentStore
	profiles    storage.ProfileStore
}

func New(faculties storage.FacultyStore, departments storage.DepartmentStore, profiles storage.ProfileStore) *Service {
	return &Service{
		faculties:   faculties,
		departments: departments,
		profiles:    profiles,
	}
}

// Faculties lists all faculties.
func (s *Service) Faculties(ctx context.Context) ([]domain.Faculty, error) {
	return s.faculties.List(ctx)
}

// Departments lists the departments of one faculty. The faculty must exist.
func (s *Service) Departments(ctx context.Context, facultyID int64) ([]domain.Department, error) {
	if _, err := s.faculties.FindByID(ctx, facultyID); err != nil {
		return nil, err
	}
	return s.departments.ListByFaculty(ctx, facultyID)
}

// Students lists approved students whose profiles are public.
func (s *Service) Students(ctx context.Context) ([]domain.DirectoryEntry, error) {
	return s.profiles.ListPublicDirectory(ctx)
}
