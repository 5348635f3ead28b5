package httptransport

import (
	"encoding/json"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	dErrors "github.com/eima40x4c/CampusCard/pkg/domain-errors"
	"github.com/eima40x4c/CampusCard/pkg/platform/httputil"

	"github.com/eima40x4c/CampusCard/internal/platform/middleware"
	"github.com/eima40x4c/CampusCard/internal/signup"
)

// maxSignupBody bounds the multipart signup request, dominated by the ID scan.
const maxSignupBody = 10 << 20

// handleSignup accepts either a JSON body or a multipart form with an
// "application" JSON part and an optional "national_id_scan" file part.
func (h *Handler) handleSignup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req signup.Request
	var scan *signup.Upload

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxSignupBody); err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid multipart body"))
			return
		}
		if err := json.Unmarshal([]byte(r.FormValue("application")), &req); err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid application payload"))
			return
		}
		if file, header, err := r.FormFile("national_id_scan"); err == nil {
			defer file.Close()
			scan = &signup.Upload{
				ContentType: header.Header.Get("Content-Type"),
				Ext:         filepath.Ext(header.Filename),
				Body:        file,
			}
		}
	} else {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
			return
		}
	}

	user, err := h.signup.Register(ctx, req, scan)
	if err != nil {
		h.logger.WarnContext(ctx, "signup rejected",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, userResponse(user))
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		Identifier string `json:"identifier"`
		Password   string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	result, err := h.auth.Login(ctx, req.Identifier, req.Password, r.UserAgent())
	if err != nil {
		h.logger.WarnContext(ctx, "login failed",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"token": result.Token,
		"user":  userResponse(result.User),
	})
}

// handleIssueVerification issues a fresh token for the caller's own account.
func (h *Handler) handleIssueVerification(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity := middleware.GetIdentity(ctx)

	token, err := h.verification.Issue(ctx, identity.UserID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	// The token travels by email; the response only confirms issuance.
	_ = token
	httputil.WriteJSON(w, http.StatusAccepted, map[string]string{
		"status": "verification email sent",
	})
}

// handleRedeemVerification redeems a token for the caller's own account.
func (h *Handler) handleRedeemVerification(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity := middleware.GetIdentity(ctx)

	var req struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	if err := h.verification.Redeem(ctx, identity.UserID, req.Token); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "email verified"})
}

// handleVerifyLink redeems a token from an emailed link, no session required.
func (h *Handler) handleVerifyLink(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := strconv.ParseInt(r.URL.Query().Get("uid"), 10, 64)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid uid"))
		return
	}
	token := r.URL.Query().Get("token")

	if err := h.verification.Redeem(ctx, userID, token); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "email verified"})
}
