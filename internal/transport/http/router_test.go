package httptransport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/eima40x4c/CampusCard/internal/auth"
	"github.com/eima40x4c/CampusCard/internal/blob"
	"github.com/eima40x4c/CampusCard/internal/bootstrap"
	"github.com/eima40x4c/CampusCard/internal/directory"
	"github.com/eima40x4c/CampusCard/internal/domain"
	"github.com/eima40x4c/CampusCard/internal/jwttoken"
	"github.com/eima40x4c/CampusCard/internal/lifecycle"
	"github.com/eima40x4c/CampusCard/internal/moderation"
	"github.com/eima40x4c/CampusCard/internal/profile"
	"github.com/eima40x4c/CampusCard/internal/signup"
	"github.com/eima40x4c/CampusCard/internal/storage/memory"
	"github.com/eima40x4c/CampusCard/internal/verification"
)

const (
	adminEmail    = "admin@campus.edu"
	adminPassword = "seed-admin-secret"
)

type RouterSuite struct {
	suite.Suite
	ctx context.Context
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupSuite() {
	s.ctx = context.Background()
}

// testEnv wires the full router against in-memory stores so requests exercise
// the real middleware chain, handlers and services.
type testEnv struct {
	router     http.Handler
	users      *memory.UserStore
	verify     *verification.Service
	moderation *moderation.Service
}

func (s *RouterSuite) newEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	users := memory.NewUserStore()
	faculties := memory.NewFacultyStore([]domain.Faculty{
		{ID: 1, Name: "Engineering", Years: 5},
	})
	departments := memory.NewDepartmentStore([]domain.Department{
		{ID: 1, Name: "Computer Science", FacultyID: 1},
	})
	profiles := memory.NewProfileStore(users, faculties, departments)
	tx := memory.NewTxRunner()

	tokens := jwttoken.NewJWTService("router-test-signing-key", "campuscard", time.Hour)
	moderationSvc := moderation.New(memory.NewBannedWordStore(), memory.NewFlaggedContentStore(),
		moderation.WithLogger(logger))
	signupSvc := signup.New(users, profiles, faculties, departments, tx,
		signup.WithBlobStore(blob.NewMemoryStore()),
		signup.WithModeration(moderationSvc),
		signup.WithLogger(logger))
	authSvc := auth.New(users, tokens, auth.WithLogger(logger))
	verificationSvc := verification.New(users, 24*time.Hour, verification.WithLogger(logger))
	lifecycleSvc := lifecycle.New(users, lifecycle.WithLogger(logger))
	profileSvc := profile.New(profiles, users,
		profile.WithModeration(moderationSvc), profile.WithLogger(logger))
	directorySvc := directory.New(faculties, departments, profiles)

	require.NoError(t, bootstrap.SeedAdmin(s.ctx, users, profiles, tx, adminEmail, adminPassword, logger))

	handler := NewHandler(logger, tokens,
		signupSvc, authSvc, verificationSvc, lifecycleSvc, moderationSvc,
		profileSvc, directorySvc, users)

	return &testEnv{
		router:     NewRouter(handler),
		users:      users,
		verify:     verificationSvc,
		moderation: moderationSvc,
	}
}

func (s *RouterSuite) TestSignupAndLogin() {
	env := s.newEnv(s.T())

	s.T().Run("signup creates a pending account - 201", func(t *testing.T) {
		status, raw := s.do(t, env, http.MethodPost, "/auth/signup", "", validSignup("jane.doe@uni.edu", "29904171234567"))

		require.Equal(t, http.StatusCreated, status)
		body := decodeMap(t, raw)
		assert.Equal(t, "pending", body["status"])
		assert.Equal(t, "student", body["role"])
		assert.Equal(t, false, body["email_verified"])
		assert.NotContains(t, string(raw), "password")
	})

	s.T().Run("rejects malformed json - 400", func(t *testing.T) {
		status, raw := s.do(t, env, http.MethodPost, "/auth/signup", "", "{bad-json")

		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "bad_request", decodeMap(t, raw)["error"])
	})

	s.T().Run("rejects missing fields - 400", func(t *testing.T) {
		req := validSignup("", "29904171234568")
		delete(req, "email")

		status, raw := s.do(t, env, http.MethodPost, "/auth/signup", "", req)

		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "validation", decodeMap(t, raw)["error"])
	})

	s.T().Run("duplicate email - 409", func(t *testing.T) {
		status, raw := s.do(t, env, http.MethodPost, "/auth/signup", "", validSignup("jane.doe@uni.edu", "29904179999999"))

		assert.Equal(t, http.StatusConflict, status)
		assert.Equal(t, "conflict", decodeMap(t, raw)["error"])
	})

	s.T().Run("login by email issues a token even while pending", func(t *testing.T) {
		status, raw := s.do(t, env, http.MethodPost, "/auth/login", "", map[string]string{
			"identifier": "jane.doe@uni.edu",
			"password":   "hunter2-strong",
		})

		require.Equal(t, http.StatusOK, status)
		body := decodeMap(t, raw)
		assert.NotEmpty(t, body["token"])
	})

	s.T().Run("login by national id", func(t *testing.T) {
		status, _ := s.do(t, env, http.MethodPost, "/auth/login", "", map[string]string{
			"identifier": "29904171234567",
			"password":   "hunter2-strong",
		})

		assert.Equal(t, http.StatusOK, status)
	})

	s.T().Run("wrong password - 401", func(t *testing.T) {
		status, raw := s.do(t, env, http.MethodPost, "/auth/login", "", map[string]string{
			"identifier": "jane.doe@uni.edu",
			"password":   "wrong-password",
		})

		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, "unauthorized", decodeMap(t, raw)["error"])
	})

	s.T().Run("unknown identifier - 404", func(t *testing.T) {
		status, raw := s.do(t, env, http.MethodPost, "/auth/login", "", map[string]string{
			"identifier": "nobody@uni.edu",
			"password":   "hunter2-strong",
		})

		assert.Equal(t, http.StatusNotFound, status)
		assert.Equal(t, "not_found", decodeMap(t, raw)["error"])
	})
}

func (s *RouterSuite) TestVerificationLink() {
	env := s.newEnv(s.T())
	userID := s.mustSignup(s.T(), env, "mark.lee@uni.edu", "30001011234567")

	token, err := env.verify.Issue(s.ctx, userID)
	s.Require().NoError(err)

	s.T().Run("wrong token - 401", func(t *testing.T) {
		status, raw := s.do(t, env, http.MethodGet,
			fmt.Sprintf("/auth/verify?uid=%d&token=%s", userID, "deadbeefdeadbeefdeadbeefdeadbeef"), "", nil)

		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, "token_invalid", decodeMap(t, raw)["error"])
	})

	s.T().Run("invalid uid - 400", func(t *testing.T) {
		status, _ := s.do(t, env, http.MethodGet, "/auth/verify?uid=abc&token="+token, "", nil)

		assert.Equal(t, http.StatusBadRequest, status)
	})

	s.T().Run("valid token verifies the email", func(t *testing.T) {
		status, raw := s.do(t, env, http.MethodGet,
			fmt.Sprintf("/auth/verify?uid=%d&token=%s", userID, token), "", nil)

		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, "email verified", decodeMap(t, raw)["status"])

		user, err := env.users.FindByID(s.ctx, userID)
		require.NoError(t, err)
		assert.True(t, user.EmailVerified)
	})

	s.T().Run("token is single use - 409", func(t *testing.T) {
		status, raw := s.do(t, env, http.MethodGet,
			fmt.Sprintf("/auth/verify?uid=%d&token=%s", userID, token), "", nil)

		assert.Equal(t, http.StatusConflict, status)
		assert.Equal(t, "invalid_state", decodeMap(t, raw)["error"])
	})
}

func (s *RouterSuite) TestAdminLifecycle() {
	env := s.newEnv(s.T())
	adminToken := s.login(s.T(), env, adminEmail, adminPassword)

	studentID := s.mustSignup(s.T(), env, "amr.salah@uni.edu", "30105051234567")
	studentToken := s.login(s.T(), env, "amr.salah@uni.edu", "hunter2-strong")

	s.T().Run("student cannot reach the admin surface - 403", func(t *testing.T) {
		status, raw := s.do(t, env, http.MethodGet, "/admin/users", studentToken, nil)

		assert.Equal(t, http.StatusForbidden, status)
		assert.Equal(t, "forbidden", decodeMap(t, raw)["error"])
	})

	s.T().Run("anonymous cannot reach the admin surface - 401", func(t *testing.T) {
		status, _ := s.do(t, env, http.MethodGet, "/admin/users", "", nil)

		assert.Equal(t, http.StatusUnauthorized, status)
	})

	s.T().Run("approving an unverified account - 409", func(t *testing.T) {
		status, raw := s.do(t, env, http.MethodPost,
			fmt.Sprintf("/admin/users/%d/approve", studentID), adminToken, nil)

		assert.Equal(t, http.StatusConflict, status)
		assert.Equal(t, "invalid_state", decodeMap(t, raw)["error"])
	})

	s.T().Run("approving a verified pending account - 200", func(t *testing.T) {
		s.mustVerify(t, env, studentID)

		status, raw := s.do(t, env, http.MethodPost,
			fmt.Sprintf("/admin/users/%d/approve", studentID), adminToken, nil)

		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, "approved", decodeMap(t, raw)["status"])

		status, raw = s.do(t, env, http.MethodGet,
			fmt.Sprintf("/admin/users/%d", studentID), adminToken, nil)
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, "approved", decodeMap(t, raw)["status"])
	})

	s.T().Run("decisions are final - 409", func(t *testing.T) {
		status, raw := s.do(t, env, http.MethodPost,
			fmt.Sprintf("/admin/users/%d/approve", studentID), adminToken, nil)

		assert.Equal(t, http.StatusConflict, status)
		assert.Equal(t, "invalid_state", decodeMap(t, raw)["error"])
	})

	s.T().Run("rejecting a pending account records the reason", func(t *testing.T) {
		rejectedID := s.mustSignup(t, env, "sara.adel@uni.edu", "30203031234567")

		status, raw := s.do(t, env, http.MethodPost,
			fmt.Sprintf("/admin/users/%d/reject", rejectedID), adminToken,
			map[string]string{"reason": "national ID scan is unreadable"})

		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, "rejected", decodeMap(t, raw)["status"])

		status, raw = s.do(t, env, http.MethodGet,
			fmt.Sprintf("/admin/users/%d", rejectedID), adminToken, nil)
		require.Equal(t, http.StatusOK, status)
		body := decodeMap(t, raw)
		assert.Equal(t, "rejected", body["status"])
		assert.Equal(t, "national ID scan is unreadable", body["rejection_reason"])
	})

	s.T().Run("pending queue lists only pending accounts", func(t *testing.T) {
		pendingID := s.mustSignup(t, env, "omar.tarek@uni.edu", "30304041234567")

		status, raw := s.do(t, env, http.MethodGet, "/admin/users/pending", adminToken, nil)

		require.Equal(t, http.StatusOK, status)
		var users []map[string]any
		require.NoError(t, json.Unmarshal(raw, &users))
		require.Len(t, users, 1)
		assert.Equal(t, float64(pendingID), users[0]["id"])
	})

	s.T().Run("dashboard reflects the decisions", func(t *testing.T) {
		status, raw := s.do(t, env, http.MethodGet, "/admin/dashboard", adminToken, nil)

		require.Equal(t, http.StatusOK, status)
		body := decodeMap(t, raw)
		// Seeded admin, one approved, one rejected, one pending.
		assert.Equal(t, float64(4), body["total_users"])
		assert.Equal(t, float64(2), body["approved_users"])
		assert.Equal(t, float64(1), body["rejected_users"])
		assert.Equal(t, float64(1), body["pending_approvals"])
	})

	s.T().Run("admins cannot change their own role - 403", func(t *testing.T) {
		admin, err := env.users.FindByEmail(s.ctx, adminEmail)
		require.NoError(t, err)

		status, raw := s.do(t, env, http.MethodPost,
			fmt.Sprintf("/admin/users/%d/role", admin.ID), adminToken,
			map[string]string{"role": "student"})

		assert.Equal(t, http.StatusForbidden, status)
		assert.Equal(t, "forbidden", decodeMap(t, raw)["error"])
	})

	s.T().Run("promoting a student - 200", func(t *testing.T) {
		status, raw := s.do(t, env, http.MethodPost,
			fmt.Sprintf("/admin/users/%d/role", studentID), adminToken,
			map[string]string{"role": "admin"})

		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, "role updated", decodeMap(t, raw)["status"])
	})
}

func (s *RouterSuite) TestBannedWordAdmin() {
	env := s.newEnv(s.T())
	adminToken := s.login(s.T(), env, adminEmail, adminPassword)

	var wordID int64

	s.T().Run("words are normalized on add - 201", func(t *testing.T) {
		status, raw := s.do(t, env, http.MethodPost, "/admin/banned-words", adminToken,
			map[string]string{"word": "  SpAm  "})

		require.Equal(t, http.StatusCreated, status)
		body := decodeMap(t, raw)
		assert.Equal(t, "spam", body["word"])
		wordID = int64(body["id"].(float64))
	})

	s.T().Run("duplicates conflict after normalization - 409", func(t *testing.T) {
		status, raw := s.do(t, env, http.MethodPost, "/admin/banned-words", adminToken,
			map[string]string{"word": "Spam"})

		assert.Equal(t, http.StatusConflict, status)
		assert.Equal(t, "conflict", decodeMap(t, raw)["error"])
	})

	s.T().Run("blank word - 400", func(t *testing.T) {
		status, _ := s.do(t, env, http.MethodPost, "/admin/banned-words", adminToken,
			map[string]string{"word": "   "})

		assert.Equal(t, http.StatusBadRequest, status)
	})

	s.T().Run("list includes the word", func(t *testing.T) {
		status, raw := s.do(t, env, http.MethodGet, "/admin/banned-words", adminToken, nil)

		require.Equal(t, http.StatusOK, status)
		var words []domain.BannedWord
		require.NoError(t, json.Unmarshal(raw, &words))
		require.Len(t, words, 1)
		assert.Equal(t, "spam", words[0].Word)
	})

	s.T().Run("delete - 204, then 404", func(t *testing.T) {
		status, _ := s.do(t, env, http.MethodDelete,
			fmt.Sprintf("/admin/banned-words/%d", wordID), adminToken, nil)
		assert.Equal(t, http.StatusNoContent, status)

		status, _ = s.do(t, env, http.MethodDelete,
			fmt.Sprintf("/admin/banned-words/%d", wordID), adminToken, nil)
		assert.Equal(t, http.StatusNotFound, status)
	})
}

func (s *RouterSuite) TestModerationFlagsSignupContent() {
	env := s.newEnv(s.T())
	adminToken := s.login(s.T(), env, adminEmail, adminPassword)

	_, err := env.moderation.AddWord(s.ctx, "casino")
	s.Require().NoError(err)

	req := validSignup("nour.hany@uni.edu", "30406061234567")
	req["bio"] = "Part-time casino enthusiast"

	status, _ := s.do(s.T(), env, http.MethodPost, "/auth/signup", "", req)
	s.Require().Equal(http.StatusCreated, status, "flagged content must not block signup")

	userID := s.mustFindID(s.T(), env, "nour.hany@uni.edu")

	s.T().Run("flagged content is visible to admins", func(t *testing.T) {
		status, raw := s.do(t, env, http.MethodGet,
			fmt.Sprintf("/admin/users/%d/flagged-content", userID), adminToken, nil)

		require.Equal(t, http.StatusOK, status)
		var entries []domain.FlaggedContent
		require.NoError(t, json.Unmarshal(raw, &entries))
		require.Len(t, entries, 1)
		assert.Contains(t, entries[0].Content, "[Field: bio]")
		assert.Contains(t, entries[0].Content, "casino")
	})

	s.T().Run("entries can be dismissed - 204", func(t *testing.T) {
		status, raw := s.do(t, env, http.MethodGet, "/admin/flagged-content", adminToken, nil)
		require.Equal(t, http.StatusOK, status)
		var entries []domain.FlaggedContent
		require.NoError(t, json.Unmarshal(raw, &entries))
		require.Len(t, entries, 1)

		status, _ = s.do(t, env, http.MethodDelete,
			fmt.Sprintf("/admin/flagged-content/%d", entries[0].ID), adminToken, nil)
		assert.Equal(t, http.StatusNoContent, status)
	})
}

func (s *RouterSuite) TestProfileVisibility() {
	env := s.newEnv(s.T())
	adminToken := s.login(s.T(), env, adminEmail, adminPassword)

	ownerID := s.mustSignup(s.T(), env, "laila.m@uni.edu", "30507071234567")
	s.mustVerify(s.T(), env, ownerID)
	status, _ := s.do(s.T(), env, http.MethodPost,
		fmt.Sprintf("/admin/users/%d/approve", ownerID), adminToken, nil)
	s.Require().Equal(http.StatusOK, status)
	ownerToken := s.login(s.T(), env, "laila.m@uni.edu", "hunter2-strong")

	s.mustSignup(s.T(), env, "pending.p@uni.edu", "30608081234567")
	pendingToken := s.login(s.T(), env, "pending.p@uni.edu", "hunter2-strong")

	profilePath := fmt.Sprintf("/profiles/%d", ownerID)

	s.T().Run("public profiles are readable anonymously", func(t *testing.T) {
		status, raw := s.do(t, env, http.MethodGet, profilePath, "", nil)

		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, "public", decodeMap(t, raw)["visibility"])
	})

	s.T().Run("students_only hides from anonymous and pending viewers", func(t *testing.T) {
		status, _ := s.do(t, env, http.MethodPut, "/me/profile", ownerToken,
			map[string]string{"visibility": "students_only", "bio": "Robotics club"})
		require.Equal(t, http.StatusOK, status)

		status, raw := s.do(t, env, http.MethodGet, profilePath, "", nil)
		assert.Equal(t, http.StatusForbidden, status)
		assert.Equal(t, "forbidden", decodeMap(t, raw)["error"])

		status, _ = s.do(t, env, http.MethodGet, profilePath, pendingToken, nil)
		assert.Equal(t, http.StatusForbidden, status)
	})

	s.T().Run("private profiles stay readable by owner and admins", func(t *testing.T) {
		status, _ := s.do(t, env, http.MethodPut, "/me/profile", ownerToken,
			map[string]string{"visibility": "private"})
		require.Equal(t, http.StatusOK, status)

		status, _ = s.do(t, env, http.MethodGet, profilePath, ownerToken, nil)
		assert.Equal(t, http.StatusOK, status)

		status, _ = s.do(t, env, http.MethodGet, profilePath, adminToken, nil)
		assert.Equal(t, http.StatusOK, status)

		status, _ = s.do(t, env, http.MethodGet, profilePath, "", nil)
		assert.Equal(t, http.StatusForbidden, status)
	})

	s.T().Run("unknown profile - 404", func(t *testing.T) {
		status, _ := s.do(t, env, http.MethodGet, "/profiles/9999", adminToken, nil)

		assert.Equal(t, http.StatusNotFound, status)
	})

	s.T().Run("/me requires a session - 401", func(t *testing.T) {
		status, _ := s.do(t, env, http.MethodGet, "/me", "", nil)
		assert.Equal(t, http.StatusUnauthorized, status)

		status, raw := s.do(t, env, http.MethodGet, "/me", ownerToken, nil)
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, "laila.m@uni.edu", decodeMap(t, raw)["email"])
	})
}

func (s *RouterSuite) TestDirectory() {
	env := s.newEnv(s.T())
	adminToken := s.login(s.T(), env, adminEmail, adminPassword)

	listedID := s.mustSignup(s.T(), env, "listed.s@uni.edu", "30709091234567")
	s.mustVerify(s.T(), env, listedID)
	status, _ := s.do(s.T(), env, http.MethodPost,
		fmt.Sprintf("/admin/users/%d/approve", listedID), adminToken, nil)
	s.Require().Equal(http.StatusOK, status)

	// Pending accounts never show up in the directory.
	s.mustSignup(s.T(), env, "unlisted.s@uni.edu", "30810101234567")

	s.T().Run("faculties and departments are public", func(t *testing.T) {
		status, raw := s.do(t, env, http.MethodGet, "/directory/faculties", "", nil)
		require.Equal(t, http.StatusOK, status)
		var faculties []domain.Faculty
		require.NoError(t, json.Unmarshal(raw, &faculties))
		require.Len(t, faculties, 1)
		assert.Equal(t, "Engineering", faculties[0].Name)

		status, raw = s.do(t, env, http.MethodGet, "/directory/faculties/1/departments", "", nil)
		require.Equal(t, http.StatusOK, status)
		var departments []domain.Department
		require.NoError(t, json.Unmarshal(raw, &departments))
		require.Len(t, departments, 1)
		assert.Equal(t, "Computer Science", departments[0].Name)
	})

	s.T().Run("unknown faculty - 404", func(t *testing.T) {
		status, _ := s.do(t, env, http.MethodGet, "/directory/faculties/99/departments", "", nil)

		assert.Equal(t, http.StatusNotFound, status)
	})

	s.T().Run("directory lists approved public students only", func(t *testing.T) {
		status, raw := s.do(t, env, http.MethodGet, "/directory/students", "", nil)

		require.Equal(t, http.StatusOK, status)
		var entries []domain.DirectoryEntry
		require.NoError(t, json.Unmarshal(raw, &entries))
		require.Len(t, entries, 1)
		assert.Equal(t, listedID, entries[0].UserID)
		assert.Equal(t, "Engineering", entries[0].Faculty)
		assert.Equal(t, "Computer Science", entries[0].Department)
	})
}

func (s *RouterSuite) TestSignupMultipart() {
	env := s.newEnv(s.T())

	var buf bytes.Buffer
	mw := multipartWriter(s.T(), &buf, validSignup("scan.upload@uni.edu", "30911111234567"))

	req := httptest.NewRequest(http.MethodPost, "/auth/signup", &buf)
	req.Header.Set("Content-Type", mw)
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)

	s.Require().Equal(http.StatusCreated, rr.Code)
	body := decodeMap(s.T(), rr.Body.Bytes())
	s.Assert().Equal("pending", body["status"])
	s.Assert().NotEmpty(body["national_id_scan_url"])
}

func (s *RouterSuite) TestHealthz() {
	env := s.newEnv(s.T())

	status, raw := s.do(s.T(), env, http.MethodGet, "/healthz", "", nil)

	s.Require().Equal(http.StatusOK, status)
	s.Assert().Equal("ok", decodeMap(s.T(), raw)["status"])
}

func validSignup(email, nationalID string) map[string]any {
	return map[string]any{
		"email":         email,
		"password":      "hunter2-strong",
		"first_name":    "Jane",
		"last_name":     "Doe",
		"birth_date":    "2002-04-17",
		"national_id":   nationalID,
		"year":          3,
		"faculty_id":    1,
		"department_id": 1,
	}
}

// do issues a request against the router. A string body is sent raw, anything
// else is JSON-encoded.
func (s *RouterSuite) do(t *testing.T, env *testEnv, method, path, token string, body any) (int, []byte) {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		encoded, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)

	raw, err := io.ReadAll(rr.Body)
	require.NoError(t, err)
	return rr.Code, raw
}

func (s *RouterSuite) mustSignup(t *testing.T, env *testEnv, email, nationalID string) int64 {
	t.Helper()
	status, _ := s.do(t, env, http.MethodPost, "/auth/signup", "", validSignup(email, nationalID))
	require.Equal(t, http.StatusCreated, status)
	return s.mustFindID(t, env, email)
}

func (s *RouterSuite) mustFindID(t *testing.T, env *testEnv, email string) int64 {
	t.Helper()
	user, err := env.users.FindByEmail(s.ctx, email)
	require.NoError(t, err)
	return user.ID
}

func (s *RouterSuite) mustVerify(t *testing.T, env *testEnv, userID int64) {
	t.Helper()
	token, err := env.verify.Issue(s.ctx, userID)
	require.NoError(t, err)
	require.NoError(t, env.verify.Redeem(s.ctx, userID, token))
}

func (s *RouterSuite) login(t *testing.T, env *testEnv, identifier, password string) string {
	t.Helper()
	status, raw := s.do(t, env, http.MethodPost, "/auth/login", "", map[string]string{
		"identifier": identifier,
		"password":   password,
	})
	require.Equal(t, http.StatusOK, status)
	token, _ := decodeMap(t, raw)["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func decodeMap(t *testing.T, raw []byte) map[string]any {
	t.Helper()
	body := map[string]any{}
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}

func multipartWriter(t *testing.T, buf *bytes.Buffer, application map[string]any) string {
	t.Helper()
	w := multipart.NewWriter(buf)

	payload, err := json.Marshal(application)
	require.NoError(t, err)
	require.NoError(t, w.WriteField("application", string(payload)))

	part, err := w.CreateFormFile("national_id_scan", "scan.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("not-a-real-png"))
	require.NoError(t, err)

	require.NoError(t, w.Close())
	return w.FormDataContentType()
}
