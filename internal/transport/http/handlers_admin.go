package httptransport

import (
	"encoding/json"
	"net/http"

	dErrors "github.com/eima40x4c/CampusCard/pkg/domain-errors"
	"github.com/eima40x4c/CampusCard/pkg/platform/httputil"

	"github.com/eima40x4c/CampusCard/internal/platform/middleware"
)

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.lifecycle.Dashboard(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, stats)
}

func (h *Handler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.lifecycle.ListAll(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, userResponses(users))
}

func (h *Handler) handleListPending(w http.ResponseWriter, r *http.Request) {
	users, err := h.lifecycle.ListPending(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, userResponses(users))
}

func (h *Handler) handleGetUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := idParam(w, r, "userID")
	if !ok {
		return
	}
	user, err := h.lifecycle.Get(r.Context(), userID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, userResponse(user))
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := idParam(w, r, "userID")
	if !ok {
		return
	}
	reviewer := middleware.GetIdentity(ctx)

	if err := h.lifecycle.Approve(ctx, userID, reviewer.UserID); err != nil {
		h.logger.WarnContext(ctx, "approval failed",
			"request_id", middleware.GetRequestID(ctx),
			"user_id", userID,
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "approved"})
}

func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := idParam(w, r, "userID")
	if !ok {
		return
	}
	reviewer := middleware.GetIdentity(ctx)

	var req struct {
		Reason *string `json:"reason"`
	}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
			return
		}
	}

	if err := h.lifecycle.Reject(ctx, userID, reviewer.UserID, req.Reason); err != nil {
		h.logger.WarnContext(ctx, "rejection failed",
			"request_id", middleware.GetRequestID(ctx),
			"user_id", userID,
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "rejected"})
}

func (h *Handler) handleChangeRole(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := idParam(w, r, "userID")
	if !ok {
		return
	}
	actor := middleware.GetIdentity(ctx)

	var req struct {
		Role string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	if err := h.lifecycle.ChangeRole(ctx, userID, req.Role, actor.UserID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "role updated"})
}

func (h *Handler) handleListBannedWords(w http.ResponseWriter, r *http.Request) {
	words, err := h.moderation.ListWords(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, words)
}

func (h *Handler) handleAddBannedWord(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Word string `json:"word"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	entry, err := h.moderation.AddWord(r.Context(), req.Word)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, entry)
}

func (h *Handler) handleDeleteBannedWord(w http.ResponseWriter, r *http.Request) {
	wordID, ok := idParam(w, r, "wordID")
	if !ok {
		return
	}
	if err := h.moderation.DeleteWord(r.Context(), wordID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleListFlagged(w http.ResponseWriter, r *http.Request) {
	entries, err := h.moderation.ListFlagged(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, entries)
}

func (h *Handler) handleListFlaggedByUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := idParam(w, r, "userID")
	if !ok {
		return
	}
	entries, err := h.moderation.ListFlaggedByUser(r.Context(), userID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, entries)
}

func (h *Handler) handleDeleteFlagged(w http.ResponseWriter, r *http.Request) {
	entryID, ok := idParam(w, r, "entryID")
	if !ok {
		return
	}
	if err := h.moderation.DeleteFlagged(r.Context(), entryID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
