package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/eima40x4c/CampusCard/internal/domain"
	dErrors "github.com/eima40x4c/CampusCard/pkg/domain-errors"
)

// ProfileStore persists the 1:1 user profiles.
type ProfileStore struct {
	db *sql.DB
}

func NewProfileStore(db *sql.DB) *ProfileStore { return &ProfileStore{db: db} }

func (s *ProfileStore) Create(ctx context.Context, profile *domain.Profile) error {
	query := `
		INSERT INTO profiles (user_id, photo_url, bio, phone, linkedin, github, interests, visibility)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, updated_at
	`
	err := q(ctx, s.db).QueryRowContext(ctx, query,
		profile.UserID,
		profile.PhotoURL,
		profile.Bio,
		profile.Phone,
		profile.LinkedIn,
		profile.GitHub,
		profile.Interests,
		profile.Visibility,
	).Scan(&profile.ID, &profile.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return dErrors.New(dErrors.CodeConflict, "profile already exists for user")
		}
		return fmt.Errorf("create profile: %w", err)
	}
	return nil
}

func (s *ProfileStore) FindByUserID(ctx context.Context, userID int64) (*domain.Profile, error) {
	query := `
		SELECT id, user_id, photo_url, bio, phone, linkedin, github, interests, visibility, updated_at
		FROM profiles
		WHERE user_id = $1
	`
	var p domain.Profile
	err := q(ctx, s.db).QueryRowContext(ctx, query, userID).Scan(
		&p.ID, &p.UserID, &p.PhotoURL, &p.Bio, &p.Phone, &p.LinkedIn,
		&p.GitHub, &p.Interests, &p.Visibility, &p.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, notFound("profile")
		}
		return nil, fmt.Errorf("find profile: %w", err)
	}
	return &p, nil
}

func (s *ProfileStore) Update(ctx context.Context, profile *domain.Profile) error {
	query := `
		UPDATE profiles
		SET photo_url = $2, bio = $3, phone = $4, linkedin = $5, github = $6,
		    interests = $7, visibility = $8, updated_at = NOW()
		WHERE user_id = $1
	`
	result, err := q(ctx, s.db).ExecContext(ctx, query,
		profile.UserID,
		profile.PhotoURL,
		profile.Bio,
		profile.Phone,
		profile.LinkedIn,
		profile.GitHub,
		profile.Interests,
		profile.Visibility,
	)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update profile rows affected: %w", err)
	}
	if rows == 0 {
		return notFound("profile")
	}
	return nil
}

func (s *ProfileStore) ListPublicDirectory(ctx context.Context) ([]domain.DirectoryEntry, error) {
	query := `
		SELECT u.id, u.first_name, u.last_name, f.name, d.name, u.study_year,
		       p.bio, p.interests, p.photo_url
		FROM profiles p
		JOIN users u ON u.id = p.user_id
		JOIN faculties f ON f.id = u.faculty_id
		JOIN departments d ON d.id = u.department_id
		WHERE u.status = 'approved'
		  AND u.role = 'student'
		  AND p.visibility = 'public'
		ORDER BY u.id
	`
	rows, err := q(ctx, s.db).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list public directory: %w", err)
	}
	defer rows.Close()

	var entries []domain.DirectoryEntry
	for rows.Next() {
		var e domain.DirectoryEntry
		if err := rows.Scan(&e.UserID, &e.FirstName, &e.LastName, &e.Faculty,
			&e.Department, &e.Year, &e.Bio, &e.Interests, &e.PhotoURL); err != nil {
			return nil, fmt.Errorf("scan directory entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
