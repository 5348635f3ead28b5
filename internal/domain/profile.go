package domain

import (
	"time"

	dErrors "github.com/eima40x4c/CampusCard/pkg/domain-errors"
)

// Visibility controls who may read a profile.
type Visibility string

const (
	VisibilityPublic       Visibility = "public"
	VisibilityStudentsOnly Visibility = "students_only"
	VisibilityPrivate      Visibility = "private"
)

// ParseVisibility validates a visibility string from the transport boundary.
func ParseVisibility(s string) (Visibility, error) {
	switch Visibility(s) {
	case VisibilityPublic, VisibilityStudentsOnly, VisibilityPrivate:
		return Visibility(s), nil
	}
	return "", dErrors.Newf(dErrors.CodeValidation, "invalid visibility %q", s)
}

func (v Visibility) String() string { return string(v) }

// Profile is the 1:1 companion of a User. It is created atomically with its
// user and never exists without one. Bio and Interests are moderation-scan
// targets.
type Profile struct {
	ID         int64      `json:"id"`
	UserID     int64      `json:"user_id"`
	PhotoURL   string     `json:"photo_url,omitempty"`
	Bio        string     `json:"bio,omitempty"`
	Phone      string     `json:"phone,omitempty"`
	LinkedIn   string     `json:"linkedin,omitempty"`
	GitHub     string     `json:"github,omitempty"`
	Interests  string     `json:"interests,omitempty"`
	Visibility Visibility `json:"visibility"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// DirectoryEntry is a public-directory row: an approved student whose profile
// is public, joined with the fields safe to list.
type DirectoryEntry struct {
	UserID     int64  `json:"user_id"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Faculty    string `json:"faculty"`
	Department string `json:"department"`
	Year       int    `json:"year"`
	Bio        string `json:"bio,omitempty"`
	Interests  string `json:"interests,omitempty"`
	PhotoURL   string `json:"photo_url,omitempty"`
}
