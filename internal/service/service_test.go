package service

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/institute-console/internal/backend"
	"github.com/stemsi/institute-console/internal/backend/fakebackend"
	"github.com/stemsi/institute-console/internal/metrics"
	"github.com/stemsi/institute-console/internal/model"
	"github.com/stemsi/institute-console/internal/repository"
	ws "github.com/stemsi/institute-console/internal/websocket"
)

// env wires every service against one fake backend.
type env struct {
	fake       *fakebackend.Server
	client     *backend.Client
	broker     *ws.MemoryBroker
	auth       *AuthService
	teachers   *TeacherService
	students   *StudentService
	payments   *PaymentService
	notices    *NoticeService
	attendance *AttendanceService
	portal     *PortalService
	results    *ResultService
}

func newEnv(t *testing.T, concurrency int) *env {
	t.Helper()
	fake := fakebackend.New(t)
	m := metrics.New(prometheus.NewRegistry())
	client := backend.New(fake.URL, 5*time.Second, zerolog.Nop(), backend.WithMetrics(m))
	broker := ws.NewMemoryBroker()
	changes := NewChangeNotifier(NewAuditService(nil, nil, zerolog.Nop()), broker, m, zerolog.Nop())

	teacherRepo := repository.NewTeacherRepository(client)
	studentRepo := repository.NewStudentRepository(client)
	attendanceRepo := repository.NewAttendanceRepository(client)
	students := NewStudentService(studentRepo, changes)

	return &env{
		fake:       fake,
		client:     client,
		broker:     broker,
		auth:       NewAuthService(teacherRepo, repository.NewTokenRepository(client), zerolog.Nop()),
		teachers:   NewTeacherService(teacherRepo, changes),
		students:   students,
		payments:   NewPaymentService(repository.NewPaymentRepository(client), students, changes),
		notices:    NewNoticeService(repository.NewNoticeRepository(client), client, changes),
		attendance: NewAttendanceService(attendanceRepo, students, changes, m, concurrency),
		portal:     NewPortalService(students, studentRepo, attendanceRepo, changes),
		results:    NewResultService(repository.NewResultRepository(client)),
	}
}

func seedStudents(e *env) {
	e.fake.Seed(backend.PathStudents,
		model.Student{ID: 1, StudentID: "S100", Name: "Asha", PhoneNumber: "9000000001", Department: "Science", Year: "2", Email: "asha@example.com", College: "City", Password: "pass1"},
		model.Student{ID: 2, StudentID: "S200", Name: "Bala", PhoneNumber: "9000000002", Department: "Commerce", Year: "1", Email: "bala@example.com", College: "City", Password: "pass2"},
		model.Student{ID: 3, StudentID: "S300", Name: "Chitra", PhoneNumber: "9111111113", Department: "science", Year: "2", Email: "chitra@example.com", College: "Town", Password: "pass3"},
	)
}

// lastRequest returns the most recent request the fake saw.
func lastRequest(t *testing.T, e *env) fakebackend.Recorded {
	t.Helper()
	reqs := e.fake.Requests("")
	require.NotEmpty(t, reqs)
	return reqs[len(reqs)-1]
}

func testCtx() context.Context {
	return WithActor(context.Background(), "teacher:1")
}

