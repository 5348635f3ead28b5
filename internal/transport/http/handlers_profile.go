package httptransport

import (
	"encoding/json"
	"net/http"
	"path/filepath"

	dErrors "github.com/eima40x4c/CampusCard/pkg/domain-errors"
	"github.com/eima40x4c/CampusCard/pkg/platform/httputil"

	"github.com/eima40x4c/CampusCard/internal/platform/middleware"
	"github.com/eima40x4c/CampusCard/internal/profile"
)

const maxPhotoBody = 5 << 20

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity := middleware.GetIdentity(ctx)

	user, err := h.users.FindByID(ctx, identity.UserID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, userResponse(user))
}

func (h *Handler) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := idParam(w, r, "userID")
	if !ok {
		return
	}

	viewer, err := h.viewer(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	p, err := h.profiles.Get(ctx, userID, viewer)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity := middleware.GetIdentity(ctx)

	var req profile.UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	updated, err := h.profiles.Update(ctx, identity.UserID, req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, updated)
}

func (h *Handler) handleUploadPhoto(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity := middleware.GetIdentity(ctx)

	if err := r.ParseMultipartForm(maxPhotoBody); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid multipart body"))
		return
	}
	file, header, err := r.FormFile("photo")
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "photo file part is required"))
		return
	}
	defer file.Close()

	updated, err := h.profiles.SetPhoto(ctx, identity.UserID,
		header.Header.Get("Content-Type"), filepath.Ext(header.Filename), file)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, updated)
}

// viewer builds the profile visibility context from the request identity.
// Anonymous requests yield a nil viewer.
func (h *Handler) viewer(r *http.Request) (*profile.Viewer, error) {
	identity := middleware.GetIdentity(r.Context())
	if identity == nil {
		return nil, nil
	}
	user, err := h.users.FindByID(r.Context(), identity.UserID)
	if err != nil {
		// The token outlived the account; treat as anonymous.
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile.Viewer{
		UserID: user.ID,
		Role:   user.Role,
		Status: user.Status,
	}, nil
}
