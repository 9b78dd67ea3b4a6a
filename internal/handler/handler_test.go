package handler_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/institute-console/internal/backend"
	"github.com/stemsi/institute-console/internal/backend/fakebackend"
	"github.com/stemsi/institute-console/internal/config"
	"github.com/stemsi/institute-console/internal/handler"
	"github.com/stemsi/institute-console/internal/metrics"
	"github.com/stemsi/institute-console/internal/model"
	"github.com/stemsi/institute-console/internal/repository"
	"github.com/stemsi/institute-console/internal/router"
	"github.com/stemsi/institute-console/internal/service"
	"github.com/stemsi/institute-console/internal/session"
	ws "github.com/stemsi/institute-console/internal/websocket"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type consoleEnv struct {
	fake   *fakebackend.Server
	engine *gin.Engine
}

func newConsoleEnv(t *testing.T) *consoleEnv {
	t.Helper()
	fake := fakebackend.New(t)
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	client := backend.New(fake.URL, 5*time.Second, zerolog.Nop(), backend.WithMetrics(m))
	broker := ws.NewMemoryBroker()
	audit := service.NewAuditService(nil, nil, zerolog.Nop())
	changes := service.NewChangeNotifier(audit, broker, m, zerolog.Nop())

	teacherRepo := repository.NewTeacherRepository(client)
	studentRepo := repository.NewStudentRepository(client)
	attendanceRepo := repository.NewAttendanceRepository(client)

	auth := service.NewAuthService(teacherRepo, repository.NewTokenRepository(client), zerolog.Nop())
	students := service.NewStudentService(studentRepo, changes)
	payments := service.NewPaymentService(repository.NewPaymentRepository(client), students, changes)
	provider := session.NewProvider(session.NewMemoryStore(), time.Hour, false, zerolog.Nop())

	cfg := &config.Config{GinMode: gin.TestMode, PortalLoginRate: 100, MaxUploadBytes: 1 << 20}
	handlers := &router.Handlers{
		Auth:       handler.NewAuthHandler(auth, provider, zerolog.Nop()),
		Dashboard:  handler.NewDashboardHandler(),
		Student:    handler.NewStudentHandler(students, cfg.MaxUploadBytes),
		Payment:    handler.NewPaymentHandler(payments),
		Attendance: handler.NewAttendanceHandler(service.NewAttendanceService(attendanceRepo, students, changes, m, 2)),
		Notice:     handler.NewNoticeHandler(service.NewNoticeService(repository.NewNoticeRepository(client), client, changes), cfg.MaxUploadBytes),
		Staff:      handler.NewStaffHandler(service.NewTeacherService(teacherRepo, changes), audit, cfg.MaxUploadBytes, zerolog.Nop()),
		Result:     handler.NewResultHandler(service.NewResultService(repository.NewResultRepository(client))),
		Portal:     handler.NewPortalHandler(service.NewPortalService(students, studentRepo, attendanceRepo, changes), provider, zerolog.Nop()),
		WS:         handler.NewWSHandler(broker, zerolog.Nop(), nil),
		System:     handler.NewSystemHandler(nil, nil),
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	engine, err := router.SetupRouter(ctx, router.Deps{
		Provider: provider,
		Auth:     auth,
		Gatherer: reg,
		Media:    client.ResolveURL,
		Log:      zerolog.Nop(),
	}, handlers, cfg)
	require.NoError(t, err)

	return &consoleEnv{fake: fake, engine: engine}
}

func (e *consoleEnv) do(method, target string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == session.CookieName && c.Value != "" {
			return c
		}
	}
	t.Fatalf("no %s cookie in response", session.CookieName)
	return nil
}

func (e *consoleEnv) loginTeacher(t *testing.T) *http.Cookie {
	t.Helper()
	e.fake.Seed(backend.PathTeachers, model.Teacher{
		TeacherID: 7, Title: "Mr", TeacherName: "Ravi", TeacherPassword: "chalk",
		TeacherPhone: "9876543210", TeacherEmail: "ravi@example.com",
	})
	w := e.do(http.MethodPost, "/login/teacher", url.Values{"teacher_phone": {"9876543210"}, "teacher_password": {"chalk"}})
	require.Equal(t, http.StatusSeeOther, w.Code)
	require.Equal(t, "/dashboard", w.Header().Get("Location"))
	return sessionCookie(t, w)
}

func (e *consoleEnv) loginAdmin(t *testing.T) *http.Cookie {
	t.Helper()
	e.fake.SetCredentials("admin", "secret", fakebackend.SignedToken(time.Now().Add(time.Hour)), "refresh-1", "")
	w := e.do(http.MethodPost, "/login", url.Values{"username": {"admin"}, "password": {"secret"}})
	require.Equal(t, http.StatusSeeOther, w.Code)
	require.Equal(t, "/staff", w.Header().Get("Location"))
	return sessionCookie(t, w)
}

func seedStudents(e *consoleEnv) {
	e.fake.Seed(backend.PathStudents,
		model.Student{ID: 1, StudentID: "S100", Name: "Asha", PhoneNumber: "9000000001", Department: "Science", Year: "2", Email: "asha@example.com", College: "City", Password: "pass1"},
		model.Student{ID: 2, StudentID: "S200", Name: "Bala", PhoneNumber: "9000000002", Department: "Commerce", Year: "1", Email: "bala@example.com", College: "City", Password: "pass2"},
	)
}

func TestTeacherPages_RedirectWithoutSession(t *testing.T) {
	e := newConsoleEnv(t)

	for _, target := range []string{"/dashboard", "/students", "/payments", "/attendance", "/notices"} {
		w := e.do(http.MethodGet, target, nil)
		assert.Equal(t, http.StatusFound, w.Code, target)
		assert.Equal(t, "/login/teacher", w.Header().Get("Location"), target)
	}
	assert.Empty(t, e.fake.Requests(""), "guard must run before any backend call")
}

func TestTeacherLogin_WrongPassword(t *testing.T) {
	e := newConsoleEnv(t)
	e.fake.Seed(backend.PathTeachers, model.Teacher{TeacherID: 7, TeacherName: "Ravi", TeacherPassword: "chalk", TeacherPhone: "9876543210"})

	w := e.do(http.MethodPost, "/login/teacher", url.Values{"teacher_phone": {"9876543210"}, "teacher_password": {"nope"}})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), `value="9876543210"`)
	for _, c := range w.Result().Cookies() {
		assert.NotEqual(t, session.CookieName, c.Name)
	}
}

func TestCreateStudent_ListShowsBackendState(t *testing.T) {
	e := newConsoleEnv(t)
	cookie := e.loginTeacher(t)
	seedStudents(e)

	form := url.Values{
		"student_id":   {"S300"},
		"name":         {"Chitra"},
		"Phone_number": {"9111111113"},
		"department":   {"Science"},
		"year":         {"2"},
		"email":        {"chitra@example.com"},
		"college":      {"Town"},
		"password":     {"pass3"},
	}
	w := e.do(http.MethodPost, "/students", form, cookie)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Len(t, e.fake.Items(backend.PathStudents), 3)
	body := w.Body.String()
	for _, name := range []string{"Asha", "Bala", "Chitra"} {
		assert.Contains(t, body, name)
	}
	assert.Contains(t, body, "Student S300 added.")
}

func TestCreateStudent_MissingFieldsNeverReachBackend(t *testing.T) {
	e := newConsoleEnv(t)
	cookie := e.loginTeacher(t)

	w := e.do(http.MethodPost, "/students", url.Values{"student_id": {"S300"}, "year": {"two"}}, cookie)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Zero(t, e.fake.Count(http.MethodPost, backend.PathStudents))
}

func TestDeletePayment_RequiresConfirmation(t *testing.T) {
	e := newConsoleEnv(t)
	cookie := e.loginTeacher(t)
	seedStudents(e)
	e.fake.Seed(backend.PathPayments, model.Payment{
		ID: 4, Student: model.PaymentStudent{ID: 1, StudentID: "S100", Name: "Asha"},
		Amount: "500", Status: model.PaymentPending, DueDate: "2024-02-01", ReferenceID: "R-1",
	})

	w := e.do(http.MethodPost, "/payments/4/delete?student_id=1", url.Values{"confirm": {"no"}}, cookie)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/payments/manage?student_id=1", w.Header().Get("Location"))
	assert.Zero(t, e.fake.Count(http.MethodDelete, backend.PathPayments))

	w = e.do(http.MethodGet, "/payments/4/delete?student_id=1", nil, cookie)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Asha")
	assert.Zero(t, e.fake.Count(http.MethodDelete, backend.PathPayments))

	w = e.do(http.MethodPost, "/payments/4/delete?student_id=1", url.Values{"confirm": {"yes"}}, cookie)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Payment deleted.")
	assert.Equal(t, 1, e.fake.Count(http.MethodDelete, backend.PathPayments))
	assert.Empty(t, e.fake.Items(backend.PathPayments))
}

func TestSubmitAttendance_TickedStudentsPresent(t *testing.T) {
	e := newConsoleEnv(t)
	cookie := e.loginTeacher(t)
	seedStudents(e)

	form := url.Values{"date": {"2024-05-02"}, "present": {"1", "1"}}
	w := e.do(http.MethodPost, "/attendance", form, cookie)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Attendance submitted.")
	status := map[string]string{}
	for _, item := range e.fake.Items(backend.PathAttendance) {
		assert.Equal(t, "2024-05-02", item["date"])
		status[fmt.Sprint(item["student"])] = fmt.Sprint(item["status"])
	}
	assert.Equal(t, map[string]string{"1": "Present", "2": "Absent"}, status)
}

func TestSubmitAttendance_PartialFailure(t *testing.T) {
	e := newConsoleEnv(t)
	cookie := e.loginTeacher(t)
	seedStudents(e)
	e.fake.FailWhen(http.MethodPost, backend.PathAttendance, func(r fakebackend.Recorded) bool {
		return fmt.Sprint(r.Fields["student"]) == "2"
	}, http.StatusBadRequest, `{"status":["Invalid choice."]}`)

	w := e.do(http.MethodPost, "/attendance", url.Values{"date": {"2024-05-02"}}, cookie)

	assert.Equal(t, http.StatusMultiStatus, w.Code)
	assert.Len(t, e.fake.Items(backend.PathAttendance), 1)
	assert.Equal(t, 2, e.fake.Count(http.MethodPost, backend.PathAttendance))
}

func TestStaff_RequiresAdminLogin(t *testing.T) {
	e := newConsoleEnv(t)
	cookie := e.loginTeacher(t)

	w := e.do(http.MethodGet, "/staff", nil, cookie)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
}

func TestCreateTeacher_EmptyNameRejected(t *testing.T) {
	e := newConsoleEnv(t)
	cookie := e.loginAdmin(t)

	form := url.Values{
		"title":            {"Ms"},
		"teacher_name":     {""},
		"teacher_password": {"pw"},
		"teacher_email":    {"new@example.com"},
		"teacher_phone":    {"9000011111"},
		"teacher_address":  {"Main road"},
		"details":          {"Maths"},
	}
	w := e.do(http.MethodPost, "/staff", form, cookie)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Zero(t, e.fake.Count(http.MethodPost, backend.PathTeachers))
	assert.Contains(t, w.Body.String(), `value="new@example.com"`)
}

func TestPortal_LoginAndMonthFilter(t *testing.T) {
	e := newConsoleEnv(t)
	seedStudents(e)
	e.fake.Seed(backend.PathAttendance,
		model.AttendanceEntry{ID: 1, Student: 1, Status: model.Present, Date: "2024-01-05"},
		model.AttendanceEntry{ID: 2, Student: 1, Status: model.Absent, Date: "2024-02-03"},
		model.AttendanceEntry{ID: 3, Student: 2, Status: model.Present, Date: "2024-01-09"},
	)

	w := e.do(http.MethodPost, "/portal", url.Values{"student_id": {"S100"}, "password": {"wrong"}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = e.do(http.MethodPost, "/portal", url.Values{"student_id": {"S100"}, "password": {"pass1"}})
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/portal", w.Header().Get("Location"))
	cookie := sessionCookie(t, w)

	w = e.do(http.MethodGet, "/portal?month=2024-01", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Asha (S100)")
	assert.Contains(t, body, "2024-01-05")
	assert.NotContains(t, body, "2024-02-03")
	assert.NotContains(t, body, "2024-01-09")
	assert.Contains(t, body, "Present: 1, Absent: 0")

	// A portal login is not a teacher login.
	w = e.do(http.MethodGet, "/students", nil, cookie)
	assert.Equal(t, http.StatusFound, w.Code)
}

func TestLogout_ReturnsToTeacherLogin(t *testing.T) {
	e := newConsoleEnv(t)
	cookie := e.loginTeacher(t)

	w := e.do(http.MethodPost, "/logout", url.Values{}, cookie)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login/teacher", w.Header().Get("Location"))

	w = e.do(http.MethodGet, "/dashboard", nil, cookie)
	assert.Equal(t, http.StatusFound, w.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	e := newConsoleEnv(t)

	w := e.do(http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Data struct {
			Status string `json:"status"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Data.Status)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = e.do(http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUnknownRoute(t *testing.T) {
	e := newConsoleEnv(t)

	w := e.do(http.MethodGet, "/nowhere", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Page not found.")
}
