package web

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/institute-console/internal/model"
)

func TestParse_AllPages(t *testing.T) {
	tmpl, err := Parse(func(ref string) string { return "https://backend.test" + ref })
	require.NoError(t, err)

	for _, name := range []string{
		"login.html", "login_teacher.html", "dashboard.html", "error.html", "confirm_delete.html",
		"students.html", "student_edit.html", "payments.html", "payments_manage.html", "payment_edit.html",
		"attendance.html", "notices.html", "notice_edit.html", "staff.html", "staff_edit.html",
		"results.html", "portal.html",
	} {
		assert.NotNil(t, tmpl.Lookup(name), name)
	}
}

func TestErrorPage_RendersMessageAndWatch(t *testing.T) {
	tmpl, err := Parse(func(ref string) string { return ref })
	require.NoError(t, err)

	var buf bytes.Buffer
	page := Page{
		Title:   "Oops",
		Session: &model.Session{ID: "s", Teacher: &model.TeacherIdentity{TeacherID: 1, Name: "Ravi", Phone: "1"}},
		Error:   "Backend <down>",
		Watch:   []string{"students"},
	}
	require.NoError(t, tmpl.ExecuteTemplate(&buf, "error.html", page))

	out := buf.String()
	assert.Contains(t, out, "Backend &lt;down&gt;")
	assert.Contains(t, out, `["students"]`)
	assert.Contains(t, out, "/ws/invalidations")
}

func TestErrorPage_NoWatchNoSocket(t *testing.T) {
	tmpl, err := Parse(func(ref string) string { return ref })
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, tmpl.ExecuteTemplate(&buf, "error.html", Page{Title: "Not Found", Error: "Page not found."}))

	assert.Contains(t, buf.String(), "Page not found.")
	assert.NotContains(t, buf.String(), "WebSocket")
}
