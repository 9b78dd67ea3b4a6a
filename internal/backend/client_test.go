package backend_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/institute-console/internal/backend"
	"github.com/stemsi/institute-console/internal/backend/fakebackend"
	"github.com/stemsi/institute-console/internal/metrics"
	"github.com/stemsi/institute-console/internal/model"
)

func newClient(t *testing.T) (*backend.Client, *fakebackend.Server) {
	t.Helper()
	fake := fakebackend.New(t)
	client := backend.New(fake.URL, 5*time.Second, zerolog.Nop(),
		backend.WithMetrics(metrics.New(prometheus.NewRegistry())))
	return client, fake
}

func TestGetDecodesCollection(t *testing.T) {
	client, fake := newClient(t)
	fake.Seed(backend.PathStudents, map[string]any{
		"id": 1, "student_id": "S100", "name": "Asha", "Phone_number": 9876543210, "year": "2",
	})

	var students []model.Student
	require.NoError(t, client.Get(context.Background(), backend.PathStudents, nil, &students))

	require.Len(t, students, 1)
	assert.Equal(t, "S100", students[0].StudentID)
	assert.Equal(t, "9876543210", students[0].PhoneNumber.String())
	assert.Equal(t, 2, students[0].Year.Int())
}

func TestQueryIsForwarded(t *testing.T) {
	client, fake := newClient(t)

	var payments []model.Payment
	err := client.Get(context.Background(), backend.PathPayments, url.Values{"student_id": {"7"}}, &payments)
	require.NoError(t, err)

	reqs := fake.Requests(http.MethodGet)
	require.Len(t, reqs, 1)
	assert.Equal(t, "7", reqs[0].Query.Get("student_id"))
}

func TestMultipartBody(t *testing.T) {
	client, fake := newClient(t)

	body := backend.MultipartBody{
		Fields: [][2]string{{"subject", "Exam"}, {"message", "Monday"}},
		Files:  []*backend.File{{Field: "attachment", Filename: "timetable.pdf", Data: []byte("%PDF")}},
	}
	var created model.Notice
	err := client.Do(context.Background(), backend.Request{Method: http.MethodPost, Path: backend.PathNotices, Body: body}, &created)
	require.NoError(t, err)

	assert.Equal(t, "Exam", created.Subject)
	assert.Equal(t, "/media/timetable.pdf", created.Attachment)
	rec := fake.Requests(http.MethodPost)[0]
	assert.Contains(t, rec.ContentType, "multipart/form-data")
	assert.Equal(t, "timetable.pdf", rec.Files["attachment"])
}

func TestBearerHeader(t *testing.T) {
	client, fake := newClient(t)

	err := client.Do(context.Background(), backend.Request{Method: http.MethodGet, Path: backend.PathTeachers, Bearer: "abc"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "abc", fake.Requests("")[0].Bearer)
}

func TestAPIErrorFlatten(t *testing.T) {
	client, fake := newClient(t)
	fake.Fail(http.MethodPost, backend.PathStudents, http.StatusBadRequest,
		`{"student_id":["student with this student id already exists."],"email":["Enter a valid email address.","Too long."]}`)

	err := client.Do(context.Background(), backend.Request{
		Method: http.MethodPost,
		Path:   backend.PathStudents,
		Body:   backend.JSONBody(map[string]string{"student_id": "S1"}),
	}, nil)

	apiErr, ok := backend.AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t,
		"email: Enter a valid email address., Too long.; student_id: student with this student id already exists.",
		apiErr.Flatten())
}

func TestAPIErrorFlattenPlainText(t *testing.T) {
	apiErr := &backend.APIError{Status: 502, Body: []byte(" Bad Gateway \n")}
	assert.Equal(t, "Bad Gateway", apiErr.Flatten())

	empty := &backend.APIError{Status: 500}
	assert.Equal(t, "request failed with status 500", empty.Flatten())
}

func TestTransportError(t *testing.T) {
	client := backend.New("http://127.0.0.1:1", time.Second, zerolog.Nop())

	err := client.Get(context.Background(), backend.PathNotices, nil, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, backend.ErrTransport))
}

func TestDecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>maintenance</html>"))
	}))
	defer srv.Close()

	client := backend.New(srv.URL, time.Second, zerolog.Nop())
	var notices []model.Notice
	err := client.Get(context.Background(), backend.PathNotices, nil, &notices)
	assert.True(t, errors.Is(err, backend.ErrDecode))
}

func TestResolveURL(t *testing.T) {
	client := backend.New("https://api.example.com/", time.Second, zerolog.Nop())

	assert.Equal(t, "https://api.example.com/media/a.pdf", client.ResolveURL("/media/a.pdf"))
	assert.Equal(t, "https://cdn.example.com/a.pdf", client.ResolveURL("https://cdn.example.com/a.pdf"))
	assert.Equal(t, "", client.ResolveURL(""))
	assert.Equal(t, "/x/7/", backend.ItemPath("/x/", 7))
}
