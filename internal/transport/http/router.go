// Package httptransport is the thin HTTP layer. Handlers decode requests,
// delegate to the domain services, and translate domain errors to the JSON
// error envelope. No business logic lives here.
package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/eima40x4c/CampusCard/internal/auth"
	"github.com/eima40x4c/CampusCard/internal/directory"
	"github.com/eima40x4c/CampusCard/internal/lifecycle"
	"github.com/eima40x4c/CampusCard/internal/moderation"
	"github.com/eima40x4c/CampusCard/internal/platform/middleware"
	"github.com/eima40x4c/CampusCard/internal/profile"
	"github.com/eima40x4c/CampusCard/internal/signup"
	"github.com/eima40x4c/CampusCard/internal/storage"
	"github.com/eima40x4c/CampusCard/internal/verification"
)

// Handler bundles the services behind the HTTP surface.
type Handler struct {
	logger       *slog.Logger
	validator    middleware.TokenValidator
	signup       *signup.Service
	auth         *auth.Service
	verification *verification.Service
	lifecycle    *lifecycle.Service
	moderation   *moderation.Service
	profiles     *profile.Service
	directory    *directory.Service
	users        storage.UserStore
}

func NewHandler(
	logger *slog.Logger,
	validator middleware.TokenValidator,
	signupSvc *signup.Service,
	authSvc *auth.Service,
	verificationSvc *verification.Service,
	lifecycleSvc *lifecycle.Service,
	moderationSvc *moderation.Service,
	profileSvc *profile.Service,
	directorySvc *directory.Service,
	users storage.UserStore,
) *Handler {
	return &Handler{
		logger:       logger,
		validator:    validator,
		signup:       signupSvc,
		auth:         authSvc,
		verification: verificationSvc,
		lifecycle:    lifecycleSvc,
		moderation:   moderationSvc,
		profiles:     profileSvc,
		directory:    directorySvc,
		users:        users,
	}
}

// NewRouter wires all endpoints with the shared middleware stack.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging(h.logger))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Public surface.
	r.Post("/auth/signup", h.handleSignup)
	r.Post("/auth/login", h.handleLogin)
	r.Get("/auth/verify", h.handleVerifyLink)
	r.Get("/directory/faculties", h.handleListFaculties)
	r.Get("/directory/faculties/{facultyID}/departments", h.handleListDepartments)
	r.Get("/directory/students", h.handleListStudents)

	// Profile reads are open but the response depends on who is asking.
	r.With(middleware.OptionalAuth(h.validator)).
		Get("/profiles/{userID}", h.handleGetProfile)

	// Authenticated surface.
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.validator, h.logger))
		r.Get("/me", h.handleMe)
		r.Put("/me/profile", h.handleUpdateProfile)
		r.Post("/me/photo", h.handleUploadPhoto)
		r.Post("/auth/verification", h.handleIssueVerification)
		r.Post("/auth/verification/redeem", h.handleRedeemVerification)
	})

	// Admin surface.
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.validator, h.logger))
		r.Use(middleware.RequireAdmin(h.logger))
		r.Get("/admin/dashboard", h.handleDashboard)
		r.Get("/admin/users", h.handleListUsers)
		r.Get("/admin/users/pending", h.handleListPending)
		r.Get("/admin/users/{userID}", h.handleGetUser)
		r.Post("/admin/users/{userID}/approve", h.handleApprove)
		r.Post("/admin/users/{userID}/reject", h.handleReject)
		r.Post("/admin/users/{userID}/role", h.handleChangeRole)
		r.Get("/admin/banned-words", h.handleListBannedWords)
		r.Post("/admin/banned-words", h.handleAddBannedWord)
		r.Delete("/admin/banned-words/{wordID}", h.handleDeleteBannedWord)
		r.Get("/admin/flagged-content", h.handleListFlagged)
		r.Get("/admin/users/{userID}/flagged-content", h.handleListFlaggedByUser)
		r.Delete("/admin/flagged-content/{entryID}", h.handleDeleteFlagged)
	})

	return r
}
