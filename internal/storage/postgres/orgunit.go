package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/eima40x4c/CampusCard/internal/domain"
)

// FacultyStore reads faculty reference data.
type FacultyStore struct {
	db *sql.DB
}

func NewFacultyStore(db *sql.DB) *FacultyStore { return &FacultyStore{db: db} }

func (s *FacultyStore) FindByID(ctx context.Context, id int64) (*domain.Faculty, error) {
	var f domain.Faculty
	err := q(ctx, s.db).QueryRowContext(ctx,
		`SELECT id, name, years FROM faculties WHERE id = $1`, id,
	).Scan(&f.ID, &f.Name, &f.Years)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, notFound("faculty")
		}
		return nil, fmt.Errorf("find faculty: %w", err)
	}
	return &f, nil
}

func (s *FacultyStore) List(ctx context.Context) ([]domain.Faculty, error) {
	rows, err := q(ctx, s.db).QueryContext(ctx, `SELECT id, name, years FROM faculties ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list faculties: %w", err)
	}
	defer rows.Close()

	var faculties []domain.Faculty
	for rows.Next() {
		var f domain.Faculty
		if err := rows.Scan(&f.ID, &f.Name, &f.Years); err != nil {
			return nil, fmt.Errorf("scan faculty: %w", err)
		}
		faculties = append(faculties, f)
	}
	return faculties, rows.Err()
}

// DepartmentStore reads department reference data.
type DepartmentStore struct {
	db *sql.DB
}

func NewDepartmentStore(db *sql.DB) *DepartmentStore { return &DepartmentStore{db: db} }

func (s *DepartmentStore) FindByID(ctx context.Context, id int64) (*domain.Department, error) {
	var d domain.Department
	err := q(ctx, s.db).QueryRowContext(ctx,
		`SELECT id, name, description, faculty_id FROM departments WHERE id = $1`, id,
	).Scan(&d.ID, &d.Name, &d.Description, &d.FacultyID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, notFound("department")
		}
		return nil, fmt.Errorf("find department: %w", err)
	}
	return &d, nil
}

func (s *DepartmentStore) ListByFaculty(ctx context.Context, facultyID int64) ([]domain.Department, error) {
	rows, err := q(ctx, s.db).QueryContext(ctx,
		`SELECT id, name, description, faculty_id FROM departments WHERE faculty_id = $1 ORDER BY id`,
		facultyID)
	if err != nil {
		return nil, fmt.Errorf("list departments: %w", err)
	}
	defer rows.Close()

	var departments []domain.Department
	for rows.Next() {
		var d domain.Department
		if err := rows.Scan(&d.ID, &d.Name, &d.Description, &d.FacultyID); err != nil {
			return nil, fmt.Errorf("scan department: %w", err)
		}
		departments = append(departments, d)
	}
	return departments, rows.Err()
}
