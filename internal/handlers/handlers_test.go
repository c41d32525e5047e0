package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/tjgf2022/logkeeper-roles-hub/internal/policy"
	"github.com/tjgf2022/logkeeper-roles-hub/internal/services"
	"github.com/tjgf2022/logkeeper-roles-hub/internal/store"
	"github.com/tjgf2022/logkeeper-roles-hub/types"
	"golang.org/x/crypto/bcrypt"
)

const (
	testJWTSecret = "test-secret"
	testPassword  = "testpass123"
)

// testEnv wires the routers over in-memory repositories, mirroring the
// production route layout without a database.
type testEnv struct {
	router *chi.Mux
	users  *fakeUsers
	logs   *fakeLogs
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	users := &fakeUsers{nextID: 4, users: []types.User{
		{ID: 1, Username: "张超管", Email: "super@worklog.com", Name: "张超管", Role: types.RoleSuper, Status: types.UserStatusActive, Protected: true, PasswordHash: string(hash)},
		{ID: 2, Username: "李管理", Email: "admin@worklog.com", Name: "李管理", Role: types.RoleAdmin, Status: types.UserStatusActive, Department: "产品部", PasswordHash: string(hash)},
		{ID: 3, Username: "王员工", Email: "user@worklog.com", Name: "王员工", Role: types.RoleUser, Status: types.UserStatusActive, Department: "技术部", PasswordHash: string(hash)},
	}}
	logs := &fakeLogs{nextID: 4, logs: []types.WorkLog{
		{ID: 1, Title: "完成项目需求分析报告", Content: "需求分析", AuthorID: 2, AuthorName: "李管理", AuthorRole: types.RoleAdmin, Status: types.LogStatusCompleted, Priority: types.LogPriorityHigh},
		{ID: 2, Title: "客户沟通会议纪要", Content: "会议纪要", AuthorID: 3, AuthorName: "王员工", AuthorRole: types.RoleUser, Status: types.LogStatusInProgress, Priority: types.LogPriorityMedium},
		{ID: 3, Title: "平台巡检", Content: "权限检查", AuthorID: 1, AuthorName: "张超管", AuthorRole: types.RoleSuper, Status: types.LogStatusPending, Priority: types.LogPriorityLow},
	}}

	identity := services.NewIdentityService(users, testJWTSecret, time.Hour)
	userService := services.NewUserService(users)
	logService := services.NewWorkLogService(logs, nil)
	summaryService := services.NewSummaryService(logs, users)
	archiveService := services.NewArchiveService(logs, nil)

	auth := RequireAuth(identity)

	router := chi.NewRouter()
	router.Get("/healthz", Healthz)
	router.Route("/auth", func(r chi.Router) {
		AuthRouter(r, identity, userService, 30)
	})
	router.With(auth).Get("/navigation", Navigation)
	router.Route("/logs", func(r chi.Router) {
		WorkLogRouter(r, logService, auth)
	})
	router.Route("/users", func(r chi.Router) {
		UserRouter(r, userService, auth)
	})
	router.Route("/dashboard", func(r chi.Router) {
		DashboardRouter(r, summaryService, auth)
	})
	router.Route("/settings", func(r chi.Router) {
		SettingsRouter(r, archiveService, auth)
	})

	return &testEnv{router: router, users: users, logs: logs}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func (e *testEnv) login(t *testing.T, email string) string {
	t.Helper()

	rr := e.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    email,
		"password": testPassword,
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("login %s: status %d, body %s", email, rr.Code, rr.Body.String())
	}
	var resp SessionResponse
	decodeBody(t, rr, &resp)
	if resp.Token == "" {
		t.Fatalf("login %s: empty token", email)
	}
	return resp.Token
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, value any) {
	t.Helper()
	if err := json.NewDecoder(rr.Body).Decode(value); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func assertStatus(t *testing.T, rr *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rr.Code != want {
		t.Fatalf("status %d, want %d; body: %s", rr.Code, want, rr.Body.String())
	}
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)
	rr := env.do(t, http.MethodGet, "/healthz", "", nil)
	assertStatus(t, rr, http.StatusOK)
}

func TestLoginReturnsSessionAndNavigation(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    "admin@worklog.com",
		"password": testPassword,
	})
	assertStatus(t, rr, http.StatusOK)

	var resp SessionResponse
	decodeBody(t, rr, &resp)
	if resp.Session.Role != types.RoleAdmin {
		t.Errorf("expected admin role, got %s", resp.Session.Role)
	}
	if !hasDestination(resp.Navigation, "/users") {
		t.Errorf("admin navigation missing /users: %+v", resp.Navigation)
	}
	if hasDestination(resp.Navigation, "/settings") {
		t.Errorf("admin navigation must not include /settings: %+v", resp.Navigation)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    "admin@worklog.com",
		"password": "wrong",
	})
	assertStatus(t, rr, http.StatusUnauthorized)
}

func TestRegisterCreatesRegularAccount(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"username": "新同事",
		"email":    "new@worklog.com",
		"password": testPassword,
	})
	assertStatus(t, rr, http.StatusCreated)

	var resp SessionResponse
	decodeBody(t, rr, &resp)
	if resp.Session.Role != types.RoleUser {
		t.Errorf("registered accounts start as user, got %s", resp.Session.Role)
	}

	rr = env.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"username": "新同事",
		"email":    "new@worklog.com",
		"password": testPassword,
	})
	assertStatus(t, rr, http.StatusConflict)
}

func TestMeRequiresAuth(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodGet, "/auth/me", "", nil)
	assertStatus(t, rr, http.StatusUnauthorized)

	rr = env.do(t, http.MethodGet, "/auth/me", "garbage-token", nil)
	assertStatus(t, rr, http.StatusUnauthorized)

	token := env.login(t, "user@worklog.com")
	rr = env.do(t, http.MethodGet, "/auth/me", token, nil)
	assertStatus(t, rr, http.StatusOK)
}

func TestNavigationPerRole(t *testing.T) {
	env := newTestEnv(t)

	var resp struct {
		Items []policy.Destination `json:"items"`
	}

	rr := env.do(t, http.MethodGet, "/navigation", env.login(t, "user@worklog.com"), nil)
	assertStatus(t, rr, http.StatusOK)
	decodeBody(t, rr, &resp)
	if hasDestination(resp.Items, "/users") || hasDestination(resp.Items, "/settings") {
		t.Errorf("regular user navigation too broad: %+v", resp.Items)
	}
	if !hasDestination(resp.Items, "/dashboard") {
		t.Errorf("regular user navigation missing /dashboard: %+v", resp.Items)
	}

	rr = env.do(t, http.MethodGet, "/navigation", env.login(t, "super@worklog.com"), nil)
	assertStatus(t, rr, http.StatusOK)
	decodeBody(t, rr, &resp)
	if !hasDestination(resp.Items, "/settings") {
		t.Errorf("super navigation missing /settings: %+v", resp.Items)
	}
}

func TestLogListVisibilityAndFilters(t *testing.T) {
	env := newTestEnv(t)

	var resp WorkLogListResponse

	rr := env.do(t, http.MethodGet, "/logs/", env.login(t, "user@worklog.com"), nil)
	assertStatus(t, rr, http.StatusOK)
	decodeBody(t, rr, &resp)
	if resp.Total != 1 || resp.Items[0].AuthorID != 3 {
		t.Errorf("regular user should see only their own entry: %+v", resp.Items)
	}

	adminToken := env.login(t, "admin@worklog.com")
	rr = env.do(t, http.MethodGet, "/logs/", adminToken, nil)
	assertStatus(t, rr, http.StatusOK)
	decodeBody(t, rr, &resp)
	if resp.Total != 3 {
		t.Errorf("admin should see all 3 entries, got %d", resp.Total)
	}

	rr = env.do(t, http.MethodGet, "/logs/?q=客户", adminToken, nil)
	assertStatus(t, rr, http.StatusOK)
	decodeBody(t, rr, &resp)
	if resp.Total != 1 || resp.Items[0].ID != 2 {
		t.Errorf("query filter mismatch: %+v", resp.Items)
	}

	rr = env.do(t, http.MethodGet, "/logs/?status=completed&priority=high", adminToken, nil)
	assertStatus(t, rr, http.StatusOK)
	decodeBody(t, rr, &resp)
	if resp.Total != 1 || resp.Items[0].ID != 1 {
		t.Errorf("categorical filter mismatch: %+v", resp.Items)
	}

	rr = env.do(t, http.MethodGet, "/logs/?status=all&priority=all", adminToken, nil)
	assertStatus(t, rr, http.StatusOK)
	decodeBody(t, rr, &resp)
	if resp.Total != 3 {
		t.Errorf("all sentinel should match everything, got %d", resp.Total)
	}
}

func TestLogCreateStampsAuthor(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, "user@worklog.com")

	rr := env.do(t, http.MethodPost, "/logs/", token, map[string]any{
		"title":   "新建日志",
		"content": "今天的进展",
	})
	assertStatus(t, rr, http.StatusCreated)

	var created types.WorkLog
	decodeBody(t, rr, &created)
	if created.AuthorID != 3 || created.AuthorRole != types.RoleUser {
		t.Errorf("author not stamped from session: %+v", created)
	}
	if created.Status != types.LogStatusPending || created.Priority != types.LogPriorityMedium {
		t.Errorf("expected pending/medium defaults, got %s/%s", created.Status, created.Priority)
	}
}

func TestLogMutationPermissions(t *testing.T) {
	env := newTestEnv(t)
	userToken := env.login(t, "user@worklog.com")
	adminToken := env.login(t, "admin@worklog.com")
	superToken := env.login(t, "super@worklog.com")

	edit := map[string]any{"title": "改", "content": "改"}

	// A regular user may edit only their own entry and delete nothing.
	assertStatus(t, env.do(t, http.MethodPut, "/logs/1", userToken, edit), http.StatusForbidden)
	assertStatus(t, env.do(t, http.MethodPut, "/logs/2", userToken, edit), http.StatusOK)
	assertStatus(t, env.do(t, http.MethodDelete, "/logs/2", userToken, nil), http.StatusForbidden)
	assertStatus(t, env.do(t, http.MethodGet, "/logs/1", userToken, nil), http.StatusForbidden)

	// An admin cannot delete a super's entry; a super can delete any.
	assertStatus(t, env.do(t, http.MethodDelete, "/logs/3", adminToken, nil), http.StatusForbidden)
	assertStatus(t, env.do(t, http.MethodDelete, "/logs/2", adminToken, nil), http.StatusNoContent)
	assertStatus(t, env.do(t, http.MethodDelete, "/logs/3", superToken, nil), http.StatusNoContent)

	assertStatus(t, env.do(t, http.MethodGet, "/logs/99", adminToken, nil), http.StatusNotFound)
}

func TestUserListVisibility(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodGet, "/users/", env.login(t, "user@worklog.com"), nil)
	assertStatus(t, rr, http.StatusForbidden)

	var resp UserListResponse
	rr = env.do(t, http.MethodGet, "/users/", env.login(t, "admin@worklog.com"), nil)
	assertStatus(t, rr, http.StatusOK)
	decodeBody(t, rr, &resp)
	for _, user := range resp.Items {
		if user.Role == types.RoleSuper {
			t.Errorf("admin list must not include super accounts: %+v", user)
		}
	}
	if resp.Total != 2 {
		t.Errorf("admin should see 2 accounts, got %d", resp.Total)
	}

	rr = env.do(t, http.MethodGet, "/users/", env.login(t, "super@worklog.com"), nil)
	assertStatus(t, rr, http.StatusOK)
	decodeBody(t, rr, &resp)
	if resp.Total != 3 {
		t.Errorf("super should see all accounts, got %d", resp.Total)
	}
}

func TestRoleAssignmentIsSuperOnly(t *testing.T) {
	env := newTestEnv(t)
	adminToken := env.login(t, "admin@worklog.com")
	superToken := env.login(t, "super@worklog.com")

	promote := map[string]string{"role": "admin"}

	assertStatus(t, env.do(t, http.MethodPut, "/users/3/role", adminToken, promote), http.StatusForbidden)

	rr := env.do(t, http.MethodPut, "/users/3/role", superToken, promote)
	assertStatus(t, rr, http.StatusOK)
	var updated types.User
	decodeBody(t, rr, &updated)
	if updated.Role != types.RoleAdmin {
		t.Errorf("expected admin after assignment, got %s", updated.Role)
	}

	// The primordial account can never be reassigned, even by a super.
	assertStatus(t, env.do(t, http.MethodPut, "/users/1/role", superToken, promote), http.StatusForbidden)

	assertStatus(t, env.do(t, http.MethodPut, "/users/3/role", superToken, map[string]string{"role": "owner"}), http.StatusBadRequest)
}

func TestUserDeletionRules(t *testing.T) {
	env := newTestEnv(t)
	adminToken := env.login(t, "admin@worklog.com")
	superToken := env.login(t, "super@worklog.com")

	assertStatus(t, env.do(t, http.MethodDelete, "/users/3", adminToken, nil), http.StatusForbidden)
	assertStatus(t, env.do(t, http.MethodDelete, "/users/1", superToken, nil), http.StatusForbidden)
	assertStatus(t, env.do(t, http.MethodDelete, "/users/3", superToken, nil), http.StatusNoContent)
	assertStatus(t, env.do(t, http.MethodDelete, "/users/99", superToken, nil), http.StatusNotFound)
}

func TestUserCreateAndUpdate(t *testing.T) {
	env := newTestEnv(t)
	adminToken := env.login(t, "admin@worklog.com")

	rr := env.do(t, http.MethodPost, "/users/", adminToken, map[string]string{
		"username":   "钱设计",
		"email":      "user3@worklog.com",
		"password":   testPassword,
		"department": "设计部",
	})
	assertStatus(t, rr, http.StatusCreated)
	var created types.User
	decodeBody(t, rr, &created)
	if created.Role != types.RoleUser || created.Department != "设计部" {
		t.Errorf("unexpected created account: %+v", created)
	}

	// An admin cannot create a super account.
	rr = env.do(t, http.MethodPost, "/users/", adminToken, map[string]string{
		"username": "影子", "email": "shadow@worklog.com", "password": testPassword, "role": "super",
	})
	assertStatus(t, rr, http.StatusForbidden)

	rr = env.do(t, http.MethodPut, "/users/3", adminToken, map[string]string{
		"department": "运营部",
		"status":     "inactive",
	})
	assertStatus(t, rr, http.StatusOK)
	var updated types.User
	decodeBody(t, rr, &updated)
	if updated.Department != "运营部" || updated.Status != types.UserStatusInactive {
		t.Errorf("profile update not applied: %+v", updated)
	}

	// An admin cannot edit a super account.
	assertStatus(t, env.do(t, http.MethodPut, "/users/1", adminToken, map[string]string{"name": "x"}), http.StatusForbidden)
}

func TestDashboardSummary(t *testing.T) {
	env := newTestEnv(t)

	var summary services.Summary

	rr := env.do(t, http.MethodGet, "/dashboard/summary", env.login(t, "admin@worklog.com"), nil)
	assertStatus(t, rr, http.StatusOK)
	decodeBody(t, rr, &summary)
	if summary.TotalLogs != 3 {
		t.Errorf("admin summary should cover 3 entries, got %d", summary.TotalLogs)
	}
	if summary.UserStats == nil {
		t.Error("admin summary should include user stats")
	}

	rr = env.do(t, http.MethodGet, "/dashboard/summary", env.login(t, "user@worklog.com"), nil)
	assertStatus(t, rr, http.StatusOK)
	summary = services.Summary{}
	decodeBody(t, rr, &summary)
	if summary.TotalLogs != 1 {
		t.Errorf("user summary should cover 1 entry, got %d", summary.TotalLogs)
	}
	if summary.UserStats != nil {
		t.Error("user summary must not include user stats")
	}
}

func TestArchiveEndpoint(t *testing.T) {
	env := newTestEnv(t)

	assertStatus(t, env.do(t, http.MethodPost, "/settings/archive", env.login(t, "admin@worklog.com"), nil), http.StatusForbidden)

	// No storage backend is configured in the test environment.
	assertStatus(t, env.do(t, http.MethodPost, "/settings/archive", env.login(t, "super@worklog.com"), nil), http.StatusServiceUnavailable)
}

func hasDestination(items []policy.Destination, path string) bool {
	for _, item := range items {
		if item.Path == path {
			return true
		}
	}
	return false
}

// fakeUsers is an in-memory services.UserRepository.
type fakeUsers struct {
	users  []types.User
	nextID int
}

func (r *fakeUsers) List(context.Context) ([]types.User, error) {
	out := make([]types.User, len(r.users))
	copy(out, r.users)
	return out, nil
}

func (r *fakeUsers) GetByID(_ context.Context, id int) (types.User, error) {
	for _, user := range r.users {
		if user.ID == id {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (r *fakeUsers) GetByEmail(_ context.Context, email string) (types.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (r *fakeUsers) GetByUsername(_ context.Context, username string) (types.User, error) {
	for _, user := range r.users {
		if user.Username == username {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (r *fakeUsers) Create(_ context.Context, user types.User) (types.User, error) {
	user.ID = r.nextID
	r.nextID++
	r.users = append(r.users, user)
	return user, nil
}

func (r *fakeUsers) Update(_ context.Context, user types.User) (types.User, error) {
	for i := range r.users {
		if r.users[i].ID == user.ID {
			user.PasswordHash = r.users[i].PasswordHash
			r.users[i] = user
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (r *fakeUsers) UpdateRole(_ context.Context, id int, role types.Role) error {
	for i := range r.users {
		if r.users[i].ID == id {
			r.users[i].Role = role
			return nil
		}
	}
	return store.ErrNotFound
}

func (r *fakeUsers) UpdateLastLogin(_ context.Context, id int, at time.Time) error {
	for i := range r.users {
		if r.users[i].ID == id {
			r.users[i].LastLoginAt = at
			return nil
		}
	}
	return store.ErrNotFound
}

func (r *fakeUsers) Delete(_ context.Context, id int) error {
	for i := range r.users {
		if r.users[i].ID == id {
			r.users = append(r.users[:i], r.users[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

// fakeLogs is an in-memory services.WorkLogRepository.
type fakeLogs struct {
	logs   []types.WorkLog
	nextID int
}

func (r *fakeLogs) List(context.Context) ([]types.WorkLog, error) {
	out := make([]types.WorkLog, len(r.logs))
	copy(out, r.logs)
	return out, nil
}

func (r *fakeLogs) Get(_ context.Context, id int) (types.WorkLog, error) {
	for _, log := range r.logs {
		if log.ID == id {
			return log, nil
		}
	}
	return types.WorkLog{}, store.ErrNotFound
}

func (r *fakeLogs) Create(_ context.Context, log types.WorkLog) (types.WorkLog, error) {
	log.ID = r.nextID
	r.nextID++
	r.logs = append(r.logs, log)
	return log, nil
}

func (r *fakeLogs) Update(_ context.Context, log types.WorkLog) (types.WorkLog, error) {
	for i := range r.logs {
		if r.logs[i].ID == log.ID {
			r.logs[i] = log
			return log, nil
		}
	}
	return types.WorkLog{}, store.ErrNotFound
}

func (r *fakeLogs) Delete(_ context.Context, id int) error {
	for i := range r.logs {
		if r.logs[i].ID == id {
			r.logs = append(r.logs[:i], r.logs[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}
