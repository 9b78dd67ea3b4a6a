package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/institute-console/internal/model"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newContext(cookie *http.Cookie) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	if cookie != nil {
		c.Request.AddCookie(cookie)
	}
	return c, w
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, ck := range w.Result().Cookies() {
		if ck.Name == CookieName && ck.Value != "" {
			return ck
		}
	}
	t.Fatal("no session cookie set")
	return nil
}

func teacherLogin(s *model.Session) {
	s.Teacher = &model.TeacherIdentity{TeacherID: 3, Name: "Ravi", Phone: "9000000001"}
}

func TestCurrentWithoutCookie(t *testing.T) {
	p := NewProvider(NewMemoryStore(), time.Hour, false, zerolog.Nop())
	c, _ := newContext(nil)

	_, err := p.Current(c)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestStartThenCurrent(t *testing.T) {
	store := NewMemoryStore()
	p := NewProvider(store, time.Hour, false, zerolog.Nop())

	c, w := newContext(nil)
	started, err := p.Start(c, teacherLogin)
	require.NoError(t, err)

	c2, _ := newContext(sessionCookie(t, w))
	got, err := p.Current(c2)
	require.NoError(t, err)
	assert.Equal(t, started.ID, got.ID)
	assert.Equal(t, "Ravi", got.Teacher.Name)
	assert.Equal(t, "teacher:3", got.Actor())
}

func TestStartKeepsOtherLoginsUnderNewID(t *testing.T) {
	store := NewMemoryStore()
	p := NewProvider(store, time.Hour, false, zerolog.Nop())

	c, w := newContext(nil)
	first, err := p.Start(c, teacherLogin)
	require.NoError(t, err)

	c2, _ := newContext(sessionCookie(t, w))
	second, err := p.Start(c2, func(s *model.Session) { s.StudentID = 12 })
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.NotNil(t, second.Teacher)
	assert.Equal(t, 12, second.StudentID)
	assert.Equal(t, 1, store.Len())
}

func TestMalformedSessionIsDiscarded(t *testing.T) {
	store := NewMemoryStore()
	p := NewProvider(store, time.Hour, false, zerolog.Nop())

	store.Put("broken", []byte(`{"id":"broken","teacher":"not an object"`), time.Hour)
	store.Put("empty", []byte(`{"id":"empty"}`), time.Hour)

	for _, id := range []string{"broken", "empty"} {
		c, _ := newContext(&http.Cookie{Name: CookieName, Value: id})
		_, err := p.Current(c)
		assert.ErrorIs(t, err, ErrMalformedSession, id)
	}
	assert.Equal(t, 0, store.Len())
}

func TestForgetEndsEmptySession(t *testing.T) {
	store := NewMemoryStore()
	p := NewProvider(store, time.Hour, false, zerolog.Nop())

	c, w := newContext(nil)
	_, err := p.Start(c, func(s *model.Session) { s.StudentID = 5 })
	require.NoError(t, err)

	c2, _ := newContext(sessionCookie(t, w))
	require.NoError(t, p.Forget(c2, func(s *model.Session) { s.StudentID = 0 }))
	assert.Equal(t, 0, store.Len())
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore()
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	sess := &model.Session{ID: "a", StudentID: 1}
	require.NoError(t, store.Save(context.Background(), sess, time.Minute))

	_, err := store.Load(context.Background(), "a")
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = store.Load(context.Background(), "a")
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestSaveRejectsIncompleteSession(t *testing.T) {
	store := NewMemoryStore()
	err := store.Save(context.Background(), &model.Session{ID: "x"}, time.Minute)
	assert.ErrorIs(t, err, model.ErrIncompleteSession)
}
