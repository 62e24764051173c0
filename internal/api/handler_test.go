package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbukum/fittrack/auth/jwt"
	"github.com/kbukum/fittrack/auth/password"
	"github.com/kbukum/fittrack/auth/revocation"
	"github.com/kbukum/fittrack/auth/session"
	"github.com/kbukum/fittrack/database"
	"github.com/kbukum/fittrack/database/dbtest"
	apperrors "github.com/kbukum/fittrack/errors"
	"github.com/kbukum/fittrack/internal/account"
	"github.com/kbukum/fittrack/internal/api"
	"github.com/kbukum/fittrack/internal/migrations"
	"github.com/kbukum/fittrack/internal/training"
	"github.com/kbukum/fittrack/logger"
	"github.com/kbukum/fittrack/server"
)

func init() { gin.SetMode(gin.TestMode) }

// flakyRegistry wraps a MemoryRegistry with switchable failures.
type flakyRegistry struct {
	*revocation.MemoryRegistry
	failLookup atomic.Bool
	failRevoke atomic.Bool
}

func (r *flakyRegistry) Revoke(ctx context.Context, token string, expiresAt time.Time) error {
	if r.failRevoke.Load() {
		return errors.New("connection refused")
	}
	return r.MemoryRegistry.Revoke(ctx, token, expiresAt)
}

func (r *flakyRegistry) IsRevoked(ctx context.Context, token string) (bool, error) {
	if r.failLookup.Load() {
		return false, errors.New("connection refused")
	}
	return r.MemoryRegistry.IsRevoked(ctx, token)
}

type testAPI struct {
	handler  http.Handler
	registry *flakyRegistry
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	src, err := migrations.Source(database.DriverSQLite)
	require.NoError(t, err)
	db := dbtest.OpenMigrated(t, src)

	reg := &flakyRegistry{MemoryRegistry: revocation.NewMemoryRegistry()}
	sessions, err := session.NewManager(jwt.Config{Secret: "api-test-secret"}, reg, logger.Nop())
	require.NoError(t, err)

	accounts := account.NewService(
		account.NewGormStore(db),
		password.NewHasher(password.Config{BcryptCost: 4}),
		sessions,
		logger.Nop(),
	)
	workouts := training.NewService(training.NewGormStore(db), logger.Nop())

	cfg := server.Config{}
	cfg.ApplyDefaults()
	srv := server.New(cfg, "fittrack", logger.Nop())
	api.NewHandler(accounts, workouts, sessions).Register(srv.GinEngine())

	return &testAPI{handler: srv.Handler(), registry: reg}
}

func (a *testAPI) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	a.handler.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func errorCode(t *testing.T, rr *httptest.ResponseRecorder) apperrors.ErrorCode {
	t.Helper()
	return decode[apperrors.ErrorResponse](t, rr).Error.Code
}

type loginBody struct {
	Token string                 `json:"token"`
	User  map[string]interface{} `json:"user"`
}

func (a *testAPI) registerAnn(t *testing.T) string {
	t.Helper()
	rr := a.do(t, http.MethodPost, "/auth/register", "", map[string]string{"name": "Ann", "email": "a@x.com", "password": "pw1"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	body := decode[struct {
		User map[string]interface{} `json:"user"`
	}](t, rr)
	return body.User["id"].(string)
}

func (a *testAPI) loginAnn(t *testing.T) string {
	t.Helper()
	rr := a.do(t, http.MethodPost, "/auth/login", "", map[string]string{"email": "a@x.com", "password": "pw1"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	return decode[loginBody](t, rr).Token
}

func TestScenarioA_RegisterThenDuplicate(t *testing.T) {
	a := newTestAPI(t)

	rr := a.do(t, http.MethodPost, "/auth/register", "", map[string]string{"name": "Ann", "email": "a@x.com", "password": "pw1"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	body := decode[struct {
		User map[string]interface{} `json:"user"`
	}](t, rr)
	assert.NotEmpty(t, body.User["id"])
	assert.Equal(t, "Ann", body.User["name"])
	assert.Equal(t, "a@x.com", body.User["email"])
	assert.NotContains(t, body.User, "password_hash")
	assert.NotContains(t, rr.Body.String(), "$2a$")

	rr = a.do(t, http.MethodPost, "/auth/register", "", map[string]string{"name": "Ann", "email": "a@x.com", "password": "pw1"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, apperrors.ErrCodeDuplicateEmail, errorCode(t, rr))
}

func TestScenarioB_Login(t *testing.T) {
	a := newTestAPI(t)
	id := a.registerAnn(t)

	rr := a.do(t, http.MethodPost, "/auth/login", "", map[string]string{"email": "a@x.com", "password": "pw1"})
	require.Equal(t, http.StatusOK, rr.Code)
	body := decode[loginBody](t, rr)
	assert.NotEmpty(t, body.Token)
	assert.Equal(t, id, body.User["id"])
	assert.NotContains(t, body.User, "password_hash")
	assert.NotContains(t, body.User, "PasswordHash")
}

func TestScenarioC_WrongPassword(t *testing.T) {
	a := newTestAPI(t)
	a.registerAnn(t)

	rr := a.do(t, http.MethodPost, "/auth/login", "", map[string]string{"email": "a@x.com", "password": "nope"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, apperrors.ErrCodeInvalidCredentials, errorCode(t, rr))
	assert.NotContains(t, rr.Body.String(), "token\"")

	rr = a.do(t, http.MethodPost, "/auth/login", "", map[string]string{"email": "b@x.com", "password": "pw1"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, apperrors.ErrCodeUserNotFound, errorCode(t, rr))
}

func TestScenarioD_ProtectedRoute(t *testing.T) {
	a := newTestAPI(t)
	id := a.registerAnn(t)
	token := a.loginAnn(t)

	rr := a.do(t, http.MethodGet, "/auth/me", token, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	me := decode[map[string]string](t, rr)
	assert.Equal(t, id, me["id"])
	assert.Equal(t, "a@x.com", me["email"])
}

func TestScenarioE_LogoutRevokes(t *testing.T) {
	a := newTestAPI(t)
	a.registerAnn(t)
	token := a.loginAnn(t)

	rr := a.do(t, http.MethodPost, "/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.NotEmpty(t, decode[server.MessageResponse](t, rr).Message)

	rr = a.do(t, http.MethodGet, "/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, apperrors.ErrCodeTokenRevoked, errorCode(t, rr))

	rr = a.do(t, http.MethodPost, "/auth/logout", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, apperrors.ErrCodeTokenRevoked, errorCode(t, rr))
	assert.Equal(t, 1, a.registry.Len())
}

func TestScenarioF_NoToken(t *testing.T) {
	a := newTestAPI(t)

	for _, path := range []string{"/auth/me", "/plan", "/workout", "/user/profile", "/analytics/summary", "/analytics/weekly"} {
		rr := a.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rr.Code, path)
		assert.Equal(t, apperrors.ErrCodeNoToken, errorCode(t, rr), path)
	}
}

func TestInvalidToken(t *testing.T) {
	a := newTestAPI(t)

	rr := a.do(t, http.MethodGet, "/auth/me", "not.a.jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, apperrors.ErrCodeInvalidToken, errorCode(t, rr))
}

func TestRevocationLookupFailure(t *testing.T) {
	a := newTestAPI(t)
	a.registerAnn(t)
	token := a.loginAnn(t)

	a.registry.failLookup.Store(true)
	rr := a.do(t, http.MethodGet, "/auth/me", token, nil)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Equal(t, apperrors.ErrCodeStoreUnavailable, errorCode(t, rr))
}

func TestLogoutStoreFailure(t *testing.T) {
	a := newTestAPI(t)
	a.registerAnn(t)
	token := a.loginAnn(t)

	a.registry.failRevoke.Store(true)
	rr := a.do(t, http.MethodPost, "/auth/logout", token, nil)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, apperrors.ErrCodeStoreUnavailable, errorCode(t, rr))

	a.registry.failRevoke.Store(false)
	rr = a.do(t, http.MethodGet, "/auth/me", token, nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestMalformedBody(t *testing.T) {
	a := newTestAPI(t)

	req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewBufferString("{"))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	a.handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, apperrors.ErrCodeInvalidInput, errorCode(t, rr))
}

func TestRegisterValidation(t *testing.T) {
	a := newTestAPI(t)

	rr := a.do(t, http.MethodPost, "/auth/register", "", map[string]string{"email": "a@x.com"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	resp := decode[apperrors.ErrorResponse](t, rr)
	assert.Equal(t, apperrors.ErrCodeValidation, resp.Error.Code)
	assert.Contains(t, resp.Error.Details["fields"], "name")
	assert.Contains(t, resp.Error.Details["fields"], "password")
}

func TestProfileRoutes(t *testing.T) {
	a := newTestAPI(t)
	id := a.registerAnn(t)
	token := a.loginAnn(t)

	rr := a.do(t, http.MethodGet, "/user/profile", token, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, apperrors.ErrCodeNotFound, errorCode(t, rr))

	rr = a.do(t, http.MethodPost, "/user/profile", token, map[string]any{
		"age": 29, "weight": 58.5, "primaryGoal": "strength", "experienceLevel": "beginner",
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	p := decode[account.Profile](t, rr)
	assert.Equal(t, id, p.UserID)
	assert.Equal(t, 29, p.Age)

	rr = a.do(t, http.MethodGet, "/user/profile", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "strength", decode[account.Profile](t, rr).PrimaryGoal)
}

func TestPlanRoutes(t *testing.T) {
	a := newTestAPI(t)
	a.registerAnn(t)
	token := a.loginAnn(t)

	rr := a.do(t, http.MethodGet, "/plan", token, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = a.do(t, http.MethodPost, "/plan", token, map[string]any{"planName": "Squats", "reps": 10, "sets": 3, "formStatus": 90})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = a.do(t, http.MethodGet, "/plan", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	plan := decode[training.Plan](t, rr)
	assert.Equal(t, "Squats", plan.PlanName)
	assert.Equal(t, 90, plan.FormStatus)

	rr = a.do(t, http.MethodPost, "/plan", token, map[string]any{"planName": "Squats", "formStatus": 150})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, apperrors.ErrCodeValidation, errorCode(t, rr))
}

func TestWorkoutAndAnalyticsRoutes(t *testing.T) {
	a := newTestAPI(t)
	a.registerAnn(t)
	token := a.loginAnn(t)

	for _, w := range []map[string]int{
		{"reps": 10, "validReps": 8, "invalidReps": 2, "durationSec": 60},
		{"reps": 5, "validReps": 5, "invalidReps": 0, "durationSec": 30},
	} {
		rr := a.do(t, http.MethodPost, "/workout", token, w)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	}

	rr := a.do(t, http.MethodPost, "/workout", token, map[string]int{"reps": 1, "validReps": 2})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = a.do(t, http.MethodGet, "/workout", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	workouts := decode[[]training.Workout](t, rr)
	require.Len(t, workouts, 2)
	assert.ElementsMatch(t, []int{80, 100}, []int{workouts[0].FormStatus, workouts[1].FormStatus})

	rr = a.do(t, http.MethodGet, "/analytics/summary", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"total_reps":15,"total_sessions":2}`, rr.Body.String())

	rr = a.do(t, http.MethodGet, "/analytics/weekly", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	days := decode[[]training.DayReps](t, rr)
	require.NotEmpty(t, days)
	var total int64
	for _, d := range days {
		total += d.Reps
	}
	assert.Equal(t, int64(15), total)
}

func TestSessionsAreScopedToSubject(t *testing.T) {
	a := newTestAPI(t)
	a.registerAnn(t)
	annToken := a.loginAnn(t)

	rr := a.do(t, http.MethodPost, "/auth/register", "", map[string]string{"name": "Bob", "email": "b@x.com", "password": "pw2"})
	require.Equal(t, http.StatusOK, rr.Code)
	rr = a.do(t, http.MethodPost, "/auth/login", "", map[string]string{"email": "b@x.com", "password": "pw2"})
	require.Equal(t, http.StatusOK, rr.Code)
	bobToken := decode[loginBody](t, rr).Token

	rr = a.do(t, http.MethodPost, "/workout", annToken, map[string]int{"reps": 12})
	require.Equal(t, http.StatusOK, rr.Code)

	rr = a.do(t, http.MethodGet, "/analytics/summary", bobToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"total_reps":0,"total_sessions":0}`, rr.Body.String())

	rr = a.do(t, http.MethodPost, "/auth/logout", annToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	rr = a.do(t, http.MethodGet, "/auth/me", bobToken, nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}
