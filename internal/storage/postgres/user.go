package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/eima40x4c/CampusCard/internal/domain"
	dErrors "github.com/eima40x4c/CampusCard/pkg/domain-errors"
)

// UserStore persists users in PostgreSQL. Status transitions and token
// redemption are single conditional UPDATEs so concurrent decisions cannot
// both succeed.
type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore { return &UserStore{db: db} }

const userColumns = `
	id, email, password_hash, first_name, last_name, birth_date, national_id,
	national_id_scan_url, role, status, email_verified, verification_token,
	verification_issued_at, rejection_reason, study_year, faculty_id,
	department_id, created_at, updated_at
`

func (s *UserStore) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (
			email, password_hash, first_name, last_name, birth_date, national_id,
			national_id_scan_url, role, status, email_verified, study_year,
			faculty_id, department_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NULLIF($12, 0), NULLIF($13, 0))
		RETURNING id, created_at, updated_at
	`
	err := q(ctx, s.db).QueryRowContext(ctx, query,
		user.Email,
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		user.BirthDate,
		user.NationalID,
		user.NationalIDScanURL,
		user.Role,
		user.Status,
		user.EmailVerified,
		user.Year,
		user.FacultyID,
		user.DepartmentID,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return dErrors.New(dErrors.CodeConflict, "email or national ID already registered")
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *UserStore) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	return s.findBy(ctx, "id = $1", id)
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.findBy(ctx, "LOWER(email) = LOWER($1)", email)
}

func (s *UserStore) FindByNationalID(ctx context.Context, nationalID string) (*domain.User, error) {
	return s.findBy(ctx, "national_id = $1", nationalID)
}

func (s *UserStore) findBy(ctx context.Context, where string, arg any) (*domain.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE %s`, userColumns, where)
	user, err := scanUser(q(ctx, s.db).QueryRowContext(ctx, query, arg))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, notFound("user")
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

func (s *UserStore) List(ctx context.Context) ([]*domain.User, error) {
	return s.list(ctx, fmt.Sprintf(`SELECT %s FROM users ORDER BY created_at DESC`, userColumns))
}

func (s *UserStore) ListByStatus(ctx context.Context, status domain.Status) ([]*domain.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE status = $1 ORDER BY created_at DESC`, userColumns)
	return s.list(ctx, query, status)
}

func (s *UserStore) list(ctx context.Context, query string, args ...any) ([]*domain.User, error) {
	rows, err := q(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (s *UserStore) TransitionStatus(ctx context.Context, userID int64, to domain.Status, reason *string, requireVerified bool) (bool, error) {
	query := `
		UPDATE users
		SET status = $2, rejection_reason = $3, updated_at = NOW()
		WHERE id = $1
		  AND status = 'pending'
		  AND ($4 = FALSE OR email_verified = TRUE)
	`
	result, err := q(ctx, s.db).ExecContext(ctx, query, userID, to, reason, requireVerified)
	if err != nil {
		return false, fmt.Errorf("transition status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("transition status rows affected: %w", err)
	}
	return rows > 0, nil
}

func (s *UserStore) UpdateRole(ctx context.Context, userID int64, role domain.Role) error {
	result, err := q(ctx, s.db).ExecContext(ctx,
		`UPDATE users SET role = $2, updated_at = NOW() WHERE id = $1`, userID, role)
	if err != nil {
		return fmt.Errorf("update role: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update role rows affected: %w", err)
	}
	if rows == 0 {
		return notFound("user")
	}
	return nil
}

func (s *UserStore) SetVerificationToken(ctx context.Context, userID int64, token string, issuedAt time.Time) (bool, error) {
	query := `
		UPDATE users
		SET verification_token = $2, verification_issued_at = $3, updated_at = NOW()
		WHERE id = $1 AND email_verified = FALSE
	`
	result, err := q(ctx, s.db).ExecContext(ctx, query, userID, token, issuedAt)
	if err != nil {
		return false, fmt.Errorf("set verification token: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("set verification token rows affected: %w", err)
	}
	return rows > 0, nil
}

func (s *UserStore) RedeemVerificationToken(ctx context.Context, userID int64, token string) (bool, error) {
	query := `
		UPDATE users
		SET email_verified = TRUE, verification_token = NULL,
		    verification_issued_at = NULL, updated_at = NOW()
		WHERE id = $1 AND email_verified = FALSE AND verification_token = $2
	`
	result, err := q(ctx, s.db).ExecContext(ctx, query, userID, token)
	if err != nil {
		return false, fmt.Errorf("redeem verification token: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("redeem verification token rows affected: %w", err)
	}
	return rows > 0, nil
}

func (s *UserStore) SetNationalIDScanURL(ctx context.Context, userID int64, url string) error {
	result, err := q(ctx, s.db).ExecContext(ctx,
		`UPDATE users SET national_id_scan_url = $2, updated_at = NOW() WHERE id = $1`, userID, url)
	if err != nil {
		return fmt.Errorf("set national id scan url: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("set national id scan url rows affected: %w", err)
	}
	if rows == 0 {
		return notFound("user")
	}
	return nil
}

func (s *UserStore) Count(ctx context.Context) (int64, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM users`)
}

func (s *UserStore) CountByStatus(ctx context.Context, status domain.Status) (int64, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM users WHERE status = $1`, status)
}

func (s *UserStore) CountByRole(ctx context.Context, role domain.Role) (int64, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM users WHERE role = $1`, role)
}

func (s *UserStore) CountByEmailVerified(ctx context.Context, verified bool) (int64, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM users WHERE email_verified = $1`, verified)
}

func (s *UserStore) count(ctx context.Context, query string, args ...any) (int64, error) {
	var n int64
	if err := q(ctx, s.db).QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

type userRow interface {
	Scan(dest ...any) error
}

func scanUser(row userRow) (*domain.User, error) {
	var user domain.User
	var birthDate, verificationIssuedAt sql.NullTime
	var verificationToken, rejectionReason sql.NullString
	var facultyID, departmentID sql.NullInt64
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.FirstName,
		&user.LastName,
		&birthDate,
		&user.NationalID,
		&user.NationalIDScanURL,
		&user.Role,
		&user.Status,
		&user.EmailVerified,
		&verificationToken,
		&verificationIssuedAt,
		&rejectionReason,
		&user.Year,
		&facultyID,
		&departmentID,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if birthDate.Valid {
		user.BirthDate = &birthDate.Time
	}
	if verificationIssuedAt.Valid {
		user.VerificationIssuedAt = &verificationIssuedAt.Time
	}
	user.VerificationToken = verificationToken.String
	if rejectionReason.Valid {
		user.RejectionReason = &rejectionReason.String
	}
	user.FacultyID = facultyID.Int64
	user.DepartmentID = departmentID.Int64
	return &user, nil
}
