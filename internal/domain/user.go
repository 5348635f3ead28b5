// Package domain holds the core entities of the CampusCard identity service.
// Persistence lives in the storage layer; these types carry no I/O.
package domain

import (
	"time"

	dErrors "github.com/eima40x4c/CampusCard/pkg/domain-errors"
)

// Role is the closed set of account roles.
type Role string

const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

// ParseRole validates a role string from the transport boundary.
// Unknown values map to a validation error, never a panic deep in services.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleStudent, RoleAdmin:
		return Role(s), nil
	}
	return "", dErrors.Newf(dErrors.CodeValidation, "invalid role %q: must be student or admin", s)
}

func (r Role) String() string { return string(r) }

// Status is the three-state lifecycle of a registered identity.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// ParseStatus validates a status string from the transport boundary.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusApproved, StatusRejected:
		return Status(s), nil
	}
	return "", dErrors.Newf(dErrors.CodeValidation, "invalid status %q", s)
}

func (s Status) String() string { return string(s) }

// User is the primary identity record. The lifecycle service is the sole
// mutator of Status, RejectionReason, EmailVerified and the verification
// token fields.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	BirthDate    *time.Time
	NationalID   string
	// NationalIDScanURL is an opaque blob-store URL; reviewers compare the
	// scan against the profile photo before approving.
	NationalIDScanURL string
	Role              Role
	Status            Status
	EmailVerified     bool
	// VerificationToken is present only while a token has been issued and
	// not yet consumed or expired. Reissuing replaces it.
	VerificationToken    string
	VerificationIssuedAt *time.Time
	RejectionReason      *string
	Year                 int
	FacultyID            int64
	DepartmentID         int64
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

// DashboardStats are the read-side counts shown on the admin overview.
// Each dimension is counted independently, not cross-tabulated.
type DashboardStats struct {
	TotalUsers       int64 `json:"total_users"`
	PendingApprovals int64 `json:"pending_approvals"`
	ApprovedUsers    int64 `json:"approved_users"`
	RejectedUsers    int64 `json:"rejected_users"`
	Students         int64 `json:"students"`
	Admins           int64 `json:"admins"`
	VerifiedEmails   int64 `json:"verified_emails"`
	UnverifiedEmails int64 `json:"unverified_emails"`
}
