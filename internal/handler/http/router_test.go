package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cmlabs-hris/fieldforce-backend-go/internal/config"
	"github.com/cmlabs-hris/fieldforce-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/fieldforce-backend-go/internal/domain/office"
	"github.com/cmlabs-hris/fieldforce-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/fieldforce-backend-go/internal/pkg/sse"
	"github.com/cmlabs-hris/fieldforce-backend-go/internal/repository/memory"
	attendanceService "github.com/cmlabs-hris/fieldforce-backend-go/internal/service/attendance"
	feedService "github.com/cmlabs-hris/fieldforce-backend-go/internal/service/feed"
	officeService "github.com/cmlabs-hris/fieldforce-backend-go/internal/service/office"
	payrollService "github.com/cmlabs-hris/fieldforce-backend-go/internal/service/payroll"
	reportService "github.com/cmlabs-hris/fieldforce-backend-go/internal/service/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testOfficeID = "office-1"
	testPhone    = "+919800000001"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code string `json:"code"`
	} `json:"error"`
}

type testServer struct {
	router     http.Handler
	store      *memory.Store
	jwtService *jwt.JWTService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	store := memory.NewStore()
	require.NoError(t, store.Offices().Upsert(ctx, office.Office{
		ID:                     testOfficeID,
		Name:                   "Field Office",
		FirstDayOfMonthlyCycle: 1,
		Timezone:               "UTC",
		Employees: map[string]office.EmployeePolicy{
			testPhone: {PhoneNumber: testPhone, UID: "uid-asha", Name: "Asha", WeeklyOff: "Sunday"},
		},
	}))

	jwtSvc := jwt.NewJWTService("test-secret", time.Hour)
	feedSvc := feedService.NewFeedService(store.Feed(), sse.NewHub())
	payrollSvc := payrollService.NewPayrollService(store.Transactor(), store.Offices(), store.AttendanceMaps(), store.Vouchers(), store.Claims())
	aggregator := attendanceService.NewAggregatorService(
		store.Transactor(),
		store.Offices(),
		store.AttendanceMaps(),
		store.Addendum(),
		store.Feed(),
		feedSvc,
		payrollSvc,
		attendanceService.Config{},
	)
	reportSvc := reportService.NewReportService(payrollSvc, nil, nil)

	router := NewRouter(ctx, config.AppConfig{
		Env:              "test",
		Version:          "test",
		AllowedOrigins:   []string{"*"},
		TriggerRateLimit: 1000,
		TriggerBurst:     1000,
	}, jwtSvc, Handlers{
		Trigger:    NewTriggerHandler(aggregator, payrollSvc, officeService.NewOfficeService(store.Offices())),
		Attendance: NewAttendanceHandler(aggregator),
		Payroll:    NewPayrollHandler(payrollSvc),
		Report:     NewReportHandler(reportSvc),
		Update:     NewUpdateHandler(feedSvc, jwtSvc),
	})

	return &testServer{router: router, store: store, jwtService: jwtSvc}
}

func (s *testServer) token(t *testing.T, claims jwt.Claims) string {
	t.Helper()
	tok, _, err := s.jwtService.GenerateAccessToken(claims)
	require.NoError(t, err)
	return tok
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
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
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var env envelope
	if rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func checkInBody(eventID, phone string, at time.Time) attendance.CheckInRequest {
	return attendance.CheckInRequest{
		EventID:     eventID,
		OfficeID:    testOfficeID,
		PhoneNumber: phone,
		Timestamp:   at.UnixMilli(),
	}
}

// ===== TRIGGER TESTS =====

func TestTriggers_CheckInFlow(t *testing.T) {
	// Arrange
	s := newTestServer(t)
	dispatcher := s.token(t, jwt.Claims{Role: jwt.RoleDispatcher})
	admin := s.token(t, jwt.Claims{OfficeID: testOfficeID, Role: jwt.RoleAdmin})
	employee := s.token(t, jwt.Claims{UID: "uid-asha", Role: jwt.RoleEmployee})
	at := time.Date(2025, time.March, 5, 9, 0, 0, 0, time.UTC)

	// Act
	rec, env := s.do(t, http.MethodPost, "/api/v1/triggers/check-ins", dispatcher, checkInBody("ev-1", testPhone, at))

	// Assert
	require.Equal(t, http.StatusOK, rec.Code)
	var result TriggerResult
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, "check_in", result.Trigger)
	assert.False(t, result.Skipped)

	rec, env = s.do(t, http.MethodGet, "/api/v1/attendances/"+testPhone+"?month=3&year=2025", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var m attendance.AttendanceMap
	require.NoError(t, json.Unmarshal(env.Data, &m))
	day, ok := m.Lookup(5)
	require.True(t, ok)
	assert.Equal(t, 1, day.NumberOfCheckIns())

	rec, env = s.do(t, http.MethodGet, "/api/v1/updates?since=0", employee, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var records []map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &records))
	assert.Len(t, records, 1)
}

func TestTriggers_UnknownEmployeeIsSkipped(t *testing.T) {
	s := newTestServer(t)
	dispatcher := s.token(t, jwt.Claims{Role: jwt.RoleDispatcher})

	rec, env := s.do(t, http.MethodPost, "/api/v1/triggers/check-ins", dispatcher,
		checkInBody("ev-1", "+910000000000", time.Date(2025, time.March, 5, 9, 0, 0, 0, time.UTC)))

	assert.Equal(t, http.StatusAccepted, rec.Code)
	var result TriggerResult
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.True(t, result.Skipped)
	assert.Empty(t, s.store.FeedRecords())
}

func TestTriggers_Rejections(t *testing.T) {
	s := newTestServer(t)
	dispatcher := s.token(t, jwt.Claims{Role: jwt.RoleDispatcher})
	admin := s.token(t, jwt.Claims{OfficeID: testOfficeID, Role: jwt.RoleAdmin})

	tests := []struct {
		name   string
		token  string
		body   any
		status int
	}{
		{"admin cannot trigger", admin, checkInBody("ev-1", testPhone, time.Now()), http.StatusForbidden},
		{"missing token", "", checkInBody("ev-1", testPhone, time.Now()), http.StatusUnauthorized},
		{"invalid body", dispatcher, "not an object", http.StatusBadRequest},
		{"validation", dispatcher, attendance.CheckInRequest{OfficeID: testOfficeID}, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, _ := s.do(t, http.MethodPost, "/api/v1/triggers/check-ins", tt.token, tt.body)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

// ===== QUERY TESTS =====

func TestAttendance_InvalidMonth(t *testing.T) {
	s := newTestServer(t)
	admin := s.token(t, jwt.Claims{OfficeID: testOfficeID, Role: jwt.RoleAdmin})

	rec, _ := s.do(t, http.MethodGet, "/api/v1/attendances/"+testPhone+"?month=x&year=2025", admin, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = s.do(t, http.MethodGet, "/api/v1/attendances/"+testPhone+"?month=13&year=2025", admin, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPayroll_SummaryUsesTokenOffice(t *testing.T) {
	s := newTestServer(t)
	admin := s.token(t, jwt.Claims{OfficeID: testOfficeID, Role: jwt.RoleAdmin})
	otherAdmin := s.token(t, jwt.Claims{OfficeID: "office-404", Role: jwt.RoleAdmin})

	rec, env := s.do(t, http.MethodGet, "/api/v1/payroll/summary?month=3&year=2025", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var sheet struct {
		Dates []string `json:"dates"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &sheet))
	assert.Len(t, sheet.Dates, 31)

	rec, _ = s.do(t, http.MethodGet, "/api/v1/payroll/summary?month=3&year=2025", otherAdmin, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPayroll_WorkbookDownload(t *testing.T) {
	s := newTestServer(t)
	admin := s.token(t, jwt.Claims{OfficeID: testOfficeID, Role: jwt.RoleAdmin})

	rec, _ := s.do(t, http.MethodGet, "/api/v1/payroll/reports/workbook?month=3&year=2025", admin, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "payroll_"+testOfficeID+"_2025-03.xlsx")
	assert.NotZero(t, rec.Body.Len())
}

// ===== UPDATE FEED TESTS =====

func TestUpdates_SSEToken(t *testing.T) {
	s := newTestServer(t)
	employee := s.token(t, jwt.Claims{UID: "uid-asha", Role: jwt.RoleEmployee})

	rec, env := s.do(t, http.MethodGet, "/api/v1/updates/token", employee, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var tok SSETokenResponse
	require.NoError(t, json.Unmarshal(env.Data, &tok))

	uid, err := s.jwtService.ValidateSSEToken(tok.Token)
	require.NoError(t, err)
	assert.Equal(t, "uid-asha", uid)

	rec, _ = s.do(t, http.MethodGet, "/api/v1/updates/stream?token=bogus", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
