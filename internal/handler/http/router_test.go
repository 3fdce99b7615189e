package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/manas-swain-001/cms/internal/config"
	"github.com/manas-swain-001/cms/internal/domain/user"
	"github.com/manas-swain-001/cms/internal/pkg/clock"
	"github.com/manas-swain-001/cms/internal/pkg/jwt"
	"github.com/manas-swain-001/cms/internal/pkg/sse"
	"github.com/manas-swain-001/cms/internal/repository/memory"
	attendancesvc "github.com/manas-swain-001/cms/internal/service/attendance"
	authsvc "github.com/manas-swain-001/cms/internal/service/auth"
	notificationsvc "github.com/manas-swain-001/cms/internal/service/notification"
	tasksvc "github.com/manas-swain-001/cms/internal/service/task"

	domaintask "github.com/manas-swain-001/cms/internal/domain/task"
)

type routerFixture struct {
	router *chi.Mux
	clk    *clock.Fake
	users  user.Repository
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()

	cfg := &config.Config{
		App:  config.AppConfig{Env: "test"},
		CORS: config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
		Workday: config.WorkdayConfig{
			Timezone:      "UTC",
			StandardStart: "09:00",
			StandardEnd:   "17:30",
			StandardHours: 8.0,
		},
		Office: config.OfficeConfig{Latitude: -6.2088, Longitude: 106.8456, RadiusMeters: 1000},
	}

	clk := clock.NewFakeAt("2025-03-10", "09:05")
	userRepo := memory.NewUserRepository()
	jwtService := jwt.NewJWTService("router-test-secret", "1h", "24h")

	notifSvc := notificationsvc.NewNotificationService(
		memory.NewNotificationRepository(), userRepo, sse.NewHub(), nil, nil,
		notificationsvc.Config{FlushInterval: 20 * time.Millisecond, WorkerCount: 1})
	t.Cleanup(notifSvc.Stop)

	table := domaintask.MustSlotTable(domaintask.DefaultSlots, domaintask.DefaultWindowLeadMinutes)
	taskService := tasksvc.NewTaskService(memory.NewTaskRepository(), userRepo, notifSvc, table, clk, 10, 20)
	attendanceService := attendancesvc.NewAttendanceService(
		memory.NewAttendanceRepository(), taskService, notifSvc, clk, cfg.Workday, cfg.Office)
	authService := authsvc.NewAuthService(userRepo, jwtService)

	router := NewRouter(cfg, jwtService,
		NewAuthHandler(jwtService, authService),
		NewAttendanceHandler(attendanceService),
		NewTaskHandler(taskService),
		NewNotificationHandler(notifSvc, jwtService),
	)

	return &routerFixture{router: router, clk: clk, users: userRepo}
}

func (f *routerFixture) createUser(t *testing.T, email string, role user.Role) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	require.NoError(t, err)
	hashed := string(hash)

	_, err = f.users.Create(context.Background(), user.User{
		Email:        email,
		FullName:     "Test User",
		PasswordHash: &hashed,
		Role:         role,
		Active:       true,
	})
	require.NoError(t, err)
}

func (f *routerFixture) login(t *testing.T, email string) string {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":"password123"}`, email)
	rec := f.do(t, http.MethodPost, "/api/v1/auth/login", body, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Data struct {
			AccessToken string `json:"access_token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Data.AccessToken)
	return resp.Data.AccessToken
}

func (f *routerFixture) do(t *testing.T, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

const officePunchBody = `{"latitude":-6.2088,"longitude":106.8456}`

func TestRouter_PunchAndCheckpointFlow(t *testing.T) {
	f := newRouterFixture(t)
	f.createUser(t, "employee@example.com", user.RoleEmployee)
	f.createUser(t, "manager@example.com", user.RoleManager)

	employeeToken := f.login(t, "employee@example.com")

	// Punch in, which also seeds the day's checkpoints.
	rec := f.do(t, http.MethodPost, "/api/v1/attendance/punch-in", officePunchBody, employeeToken)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodGet, "/api/v1/checkpoints/my", "", employeeToken)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var ledger struct {
		Data struct {
			Entries []struct {
				Slot   string `json:"slot"`
				Status string `json:"status"`
			} `json:"entries"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ledger))
	assert.Len(t, ledger.Data.Entries, 5)

	// Before the first window opens nothing accepts.
	f.clk.SetClock("09:10")
	rec = f.do(t, http.MethodPost, "/api/v1/checkpoints/updates",
		`{"description":"too early"}`, employeeToken)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	// Submit inside the first window.
	f.clk.SetClock("10:00")
	rec = f.do(t, http.MethodPost, "/api/v1/checkpoints/updates",
		`{"description":"standup done, starting on the report"}`, employeeToken)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// A second submit for the same slot conflicts, even past the
	// deadline while the slot is still the target.
	rec = f.do(t, http.MethodPost, "/api/v1/checkpoints/updates",
		`{"description":"again"}`, employeeToken)
	assert.Equal(t, http.StatusConflict, rec.Code)

	f.clk.SetClock("10:45")
	rec = f.do(t, http.MethodPost, "/api/v1/checkpoints/updates",
		`{"description":"still the same slot"}`, employeeToken)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Manager sees the compliance view; the employee does not.
	managerToken := f.login(t, "manager@example.com")
	rec = f.do(t, http.MethodGet, "/api/v1/checkpoints/", "", managerToken)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodGet, "/api/v1/checkpoints/", "", employeeToken)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRouter_AttendanceGuards(t *testing.T) {
	f := newRouterFixture(t)
	f.createUser(t, "employee@example.com", user.RoleEmployee)
	token := f.login(t, "employee@example.com")

	// Punch out before ever punching in.
	rec := f.do(t, http.MethodPost, "/api/v1/attendance/punch-out", officePunchBody, token)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v1/attendance/punch-in", officePunchBody, token)
	require.Equal(t, http.StatusOK, rec.Code)

	// Double punch-in conflicts.
	rec = f.do(t, http.MethodPost, "/api/v1/attendance/punch-in", officePunchBody, token)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Malformed coordinates fail validation.
	rec = f.do(t, http.MethodPost, "/api/v1/attendance/punch-out", `{"latitude":999,"longitude":0}`, token)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/v1/attendance/today", "", token)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_AuthRequired(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/attendance/punch-in", officePunchBody, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/v1/checkpoints/my", "", "garbage-token")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_Login(t *testing.T) {
	f := newRouterFixture(t)
	f.createUser(t, "employee@example.com", user.RoleEmployee)

	rec := f.do(t, http.MethodPost, "/api/v1/auth/login",
		`{"email":"employee@example.com","password":"wrong"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v1/auth/login",
		`{"email":"employee@example.com","password":"password123"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)

	// Refresh token travels only via the HttpOnly cookie.
	cookies := rec.Result().Cookies()
	var found bool
	for _, c := range cookies {
		if c.Name == "refresh_token" && c.Value != "" {
			found = true
			assert.True(t, c.HttpOnly)
		}
	}
	assert.True(t, found, "expected a refresh_token cookie")
	assert.NotContains(t, rec.Body.String(), `"refresh_token"`)
}
