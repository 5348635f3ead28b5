package httptransport

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	dErrors "github.com/eima40x4c/CampusCard/pkg/domain-errors"
	"github.com/eima40x4c/CampusCard/pkg/platform/httputil"

	"github.com/eima40x4c/CampusCard/internal/domain"
)

// userView is the client-facing account shape. Credentials and verification
// secrets never leave the service.
type userView struct {
	ID                int64     `json:"id"`
	Email             string    `json:"email"`
	FirstName         string    `json:"first_name"`
	LastName          string    `json:"last_name"`
	BirthDate         *string   `json:"birth_date,omitempty"`
	NationalID        string    `json:"national_id,omitempty"`
	NationalIDScanURL string    `json:"national_id_scan_url,omitempty"`
	Role              string    `json:"role"`
	Status            string    `json:"status"`
	EmailVerified     bool      `json:"email_verified"`
	RejectionReason   *string   `json:"rejection_reason,omitempty"`
	Year              int       `json:"year,omitempty"`
	FacultyID         int64     `json:"faculty_id,omitempty"`
	DepartmentID      int64     `json:"department_id,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

func userResponse(user *domain.User) userView {
	view := userView{
		ID:                user.ID,
		Email:             user.Email,
		FirstName:         user.FirstName,
		LastName:          user.LastName,
		NationalID:        user.NationalID,
		NationalIDScanURL: user.NationalIDScanURL,
		Role:              string(user.Role),
		Status:            string(user.Status),
		EmailVerified:     user.EmailVerified,
		RejectionReason:   user.RejectionReason,
		Year:              user.Year,
		FacultyID:         user.FacultyID,
		DepartmentID:      user.DepartmentID,
		CreatedAt:         user.CreatedAt,
	}
	if user.BirthDate != nil {
		bd := user.BirthDate.Format("2006-01-02")
		view.BirthDate = &bd
	}
	return view
}

func userResponses(users []*domain.User) []userView {
	out := make([]userView, 0, len(users))
	for _, user := range users {
		out = append(out, userResponse(user))
	}
	return out
}

// idParam parses a chi URL parameter as an int64 ID.
func idParam(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		httputil.WriteError(w, dErrors.Newf(dErrors.CodeBadRequest, "invalid %s", name))
		return 0, false
	}
	return id, true
}
