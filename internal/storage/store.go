// Package storage defines the persistence interfaces consumed by the domain
// services. Stores are interface-driven so in-memory and PostgreSQL
// implementations can be swapped without rewiring business code. Stores are
// pure I/O: preconditions and state rules belong to the services, with the
// exception of the conditional-update methods that exist precisely to make
// check-then-act transitions atomic.
package storage

import (
	"context"
	"time"

	"github.com/eima40x4c/CampusCard/internal/domain"
)

// UserStore persists identity records. Absence is reported as a
// CodeNotFound domain error, distinct from transport failures.
type UserStore interface {
	// Create assigns ID and timestamps. Duplicate email or national ID
	// surfaces as CodeConflict.
	Create(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByNationalID(ctx context.Context, nationalID string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	ListByStatus(ctx context.Context, status domain.Status) ([]*domain.User, error)

	// TransitionStatus moves a PENDING user to the target status in a single
	// atomic conditional update. requireVerified adds the email-verified
	// precondition (used by approval). reason is stored for rejections and
	// cleared otherwise. applied=false means the precondition no longer held
	// when the write landed; the caller classifies why.
	TransitionStatus(ctx context.Context, userID int64, to domain.Status, reason *string, requireVerified bool) (applied bool, err error)

	UpdateRole(ctx context.Context, userID int64, role domain.Role) error

	// SetVerificationToken stores a fresh token+issuance timestamp, replacing
	// any previous token. applied=false when the email is already verified.
	SetVerificationToken(ctx context.Context, userID int64, token string, issuedAt time.Time) (applied bool, err error)

	// RedeemVerificationToken marks the email verified and clears the token,
	// conditional on the stored token still matching and the email not being
	// verified yet. The condition makes redemption single-use under races.
	RedeemVerificationToken(ctx context.Context, userID int64, token string) (applied bool, err error)

	SetNationalIDScanURL(ctx context.Context, userID int64, url string) error

	Count(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context, status domain.Status) (int64, error)
	CountByRole(ctx context.Context, role domain.Role) (int64, error)
	CountByEmailVerified(ctx context.Context, verified bool) (int64, error)
}

// ProfileStore persists the 1:1 profile records.
type ProfileStore interface {
	Create(ctx context.Context, profile *domain.Profile) error
	FindByUserID(ctx context.Context, userID int64) (*domain.Profile, error)
	Update(ctx context.Context, profile *domain.Profile) error
	// ListPublicDirectory returns approved students with public profiles,
	// joined with the listable user fields.
	ListPublicDirectory(ctx context.Context) ([]domain.DirectoryEntry, error)
}

// BannedWordStore persists the normalized moderation word set.
type BannedWordStore interface {
	// Add expects an already-normalized word; duplicates are CodeConflict.
	Add(ctx context.Context, word string) (*domain.BannedWord, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]domain.BannedWord, error)
}

// FlaggedContentStore is the append-only moderation audit log.
type FlaggedContentStore interface {
	Append(ctx context.Context, userID int64, content string) (*domain.FlaggedContent, error)
	List(ctx context.Context) ([]domain.FlaggedContent, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.FlaggedContent, error)
	Delete(ctx context.Context, id int64) error
}

// FacultyStore reads faculty reference data.
type FacultyStore interface {
	FindByID(ctx context.Context, id int64) (*domain.Faculty, error)
	List(ctx context.Context) ([]domain.Faculty, error)
}

// DepartmentStore reads department reference data.
type DepartmentStore interface {
	FindByID(ctx context.Context, id int64) (*domain.Department, error)
	ListByFaculty(ctx context.Context, facultyID int64) ([]domain.Department, error)
}

// TxRunner executes fn inside a single transaction. Stores participating in
// the same operation observe the transaction through the context.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}
