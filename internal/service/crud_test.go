package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/institute-console/internal/backend"
	"github.com/stemsi/institute-console/internal/model"
)

func validTeacherForm() model.TeacherForm {
	return model.TeacherForm{
		Title:           "Mr",
		TeacherName:     "Ravi",
		TeacherPassword: "secret",
		TeacherEmail:    "ravi@example.com",
		TeacherPhone:    "9000000009",
		TeacherAddress:  "Main Road",
		Details:         "Physics",
	}
}

func TestTeacherCreateRejectsEmptyNameWithoutRequest(t *testing.T) {
	e := newEnv(t, 4)
	form := validTeacherForm()
	form.TeacherName = ""

	_, err := e.teachers.Create(testCtx(), "token", form, nil)

	ve, ok := AsValidationError(err)
	require.True(t, ok)
	assert.Contains(t, ve.Fields, "teacher_name")
	assert.Empty(t, e.fake.Requests(""))
}

func TestTeacherCreateSendsMultipartAndReloads(t *testing.T) {
	e := newEnv(t, 4)

	img := &backend.File{Field: "image", Filename: "ravi.png", Data: []byte{0x89, 'P', 'N', 'G'}}
	snap, err := e.teachers.Create(testCtx(), "token", validTeacherForm(), img)
	require.NoError(t, err)

	posts := e.fake.Requests(http.MethodPost)
	require.Len(t, posts, 1)
	assert.Contains(t, posts[0].ContentType, "multipart/form-data")
	assert.Equal(t, "Ravi", posts[0].Fields["teacher_name"])
	assert.Equal(t, "ravi.png", posts[0].Files["image"])
	assert.Equal(t, "token", posts[0].Bearer)

	require.Len(t, snap.Items, 1)
	assert.Equal(t, "Ravi", snap.Items[0].TeacherName)
	assert.Equal(t, http.MethodGet, lastRequest(t, e).Method)
}

func TestTeacherUpdateUsesPatch(t *testing.T) {
	e := newEnv(t, 4)
	e.fake.Seed(backend.PathTeachers, model.Teacher{TeacherID: 4, TeacherName: "Old", TeacherPhone: "1"})

	form := validTeacherForm()
	form.TeacherName = "New"
	snap, err := e.teachers.Update(testCtx(), "", 4, form, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, e.fake.Count(http.MethodPatch, "/teacher/teacher/4/"))
	assert.Equal(t, "New", snap.Items[0].TeacherName)
}

func TestStudentListEqualsLatestFetchAfterMutations(t *testing.T) {
	e := newEnv(t, 4)
	seedStudents(e)

	form := model.StudentForm{
		StudentID: "S400", Name: "Dev", PhoneNumber: "9000000004", Department: "Arts",
		Year: "3", Email: "dev@example.com", College: "City", Password: "pass4",
	}
	snap, err := e.students.Create(testCtx(), form, nil)
	require.NoError(t, err)
	assert.Len(t, snap.Items, 4)

	snap, err = e.students.Delete(testCtx(), 2)
	require.NoError(t, err)

	remote := e.fake.Items(backend.PathStudents)
	require.Len(t, snap.Items, len(remote))
	for i, item := range remote {
		assert.Equal(t, item["student_id"], snap.Items[i].StudentID)
	}
	assert.Equal(t, http.MethodGet, lastRequest(t, e).Method)
}

func TestStudentUpdateUsesPutMultipart(t *testing.T) {
	e := newEnv(t, 4)
	seedStudents(e)

	st, err := e.students.Get(testCtx(), 1)
	require.NoError(t, err)
	form := model.FormFromStudent(*st)
	form.College = "Metro"

	_, err = e.students.Update(testCtx(), 1, form, nil)
	require.NoError(t, err)

	puts := e.fake.Requests(http.MethodPut)
	require.Len(t, puts, 1)
	assert.Equal(t, "/payment/students/1/", puts[0].Path)
	assert.Contains(t, puts[0].ContentType, "multipart/form-data")
	assert.Equal(t, "Metro", puts[0].Fields["college"])
}

func TestFailedMutationKeepsListAndSkipsReload(t *testing.T) {
	e := newEnv(t, 4)
	seedStudents(e)
	e.fake.Fail(http.MethodDelete, "/payment/students/1/", http.StatusBadRequest, `{"detail":["Student has payments."]}`)

	_, err := e.students.Delete(testCtx(), 1)

	apiErr, ok := backend.AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, "detail: Student has payments.", apiErr.Flatten())
	assert.Equal(t, http.MethodDelete, lastRequest(t, e).Method)
	assert.Len(t, e.fake.Items(backend.PathStudents), 3)
}

func TestStudentFilterIdempotent(t *testing.T) {
	e := newEnv(t, 4)
	seedStudents(e)

	filter := model.StudentFilter{Department: "SCIENCE", Phone: "9"}
	once := e.students.List(testCtx(), filter)
	twice := FilterStudents(once, filter)

	require.Len(t, once.Items, 2)
	assert.Equal(t, once.Items, twice.Items)
}

func TestNoticeCreateWithAttachment(t *testing.T) {
	e := newEnv(t, 4)

	form := model.NoticeForm{Subject: "Exam", Message: "Starts Monday"}
	att := &backend.File{Field: "attachment", Filename: "dates.pdf", Data: []byte("%PDF")}
	snap, err := e.notices.Create(testCtx(), form, att)
	require.NoError(t, err)

	require.Len(t, snap.Items, 1)
	assert.Equal(t, e.fake.URL+"/media/dates.pdf", snap.Items[0].Attachment)
	_, hasDate := e.fake.Requests(http.MethodPost)[0].Fields["date"]
	assert.False(t, hasDate)
}

func TestNoticeUpdateAndDelete(t *testing.T) {
	e := newEnv(t, 4)
	e.fake.Seed(backend.PathNotices, model.Notice{ID: 9, Subject: "Old", Message: "m"})

	snap, err := e.notices.Update(testCtx(), 9, model.NoticeForm{Subject: "New", Message: "m"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "New", snap.Items[0].Subject)
	assert.Equal(t, 1, e.fake.Count(http.MethodPatch, "/notice/notices/9/"))

	snap, err = e.notices.Delete(testCtx(), 9)
	require.NoError(t, err)
	assert.Empty(t, snap.Items)
}

func TestPaymentAddCreatesPendingForSearchedStudent(t *testing.T) {
	e := newEnv(t, 4)
	seedStudents(e)

	ov, err := e.payments.Add(testCtx(), " S200 ", model.PaymentForm{Amount: "1500.5", DueDate: "2024-06-01", ReferenceID: "R-1"})
	require.NoError(t, err)

	post := e.fake.Requests(http.MethodPost)[0]
	assert.Equal(t, "application/json", post.ContentType)
	assert.Equal(t, float64(2), post.Fields["student_id"])
	assert.Equal(t, 1500.5, post.Fields["amount"])
	assert.Equal(t, "Pending", post.Fields["status"])

	require.NotNil(t, ov.Selected)
	assert.Equal(t, "Bala", ov.Selected.Name)
	require.Len(t, ov.StudentPayments, 1)
	assert.Equal(t, model.PaymentPending, ov.StudentPayments[0].Status)
	assert.Equal(t, "S200", ov.StudentPayments[0].Student.StudentID)
}

func TestPaymentAddUnknownStudent(t *testing.T) {
	e := newEnv(t, 4)
	seedStudents(e)

	_, err := e.payments.Add(testCtx(), "S999", model.PaymentForm{Amount: "10", DueDate: "2024-06-01", ReferenceID: "R"})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, e.fake.Requests(http.MethodPost))
}

func TestPaymentOverviewToleratesOneFailingCollection(t *testing.T) {
	e := newEnv(t, 4)
	seedStudents(e)
	e.fake.Fail(http.MethodGet, backend.PathPayments, http.StatusInternalServerError, "boom")

	ov := e.payments.Overview(testCtx(), "S100")

	assert.True(t, ov.Students.OK())
	assert.False(t, ov.Payments.OK())
	require.NotNil(t, ov.Selected)
	assert.Empty(t, ov.StudentPayments)
}

func TestPaymentUpdateAndDeleteReloadFilteredList(t *testing.T) {
	e := newEnv(t, 4)
	seedStudents(e)
	e.fake.Seed(backend.PathPayments,
		model.Payment{ID: 1, Student: model.PaymentStudent{ID: 1, StudentID: "S100"}, Amount: "100", Status: model.PaymentPending},
		model.Payment{ID: 2, Student: model.PaymentStudent{ID: 2, StudentID: "S200"}, Amount: "200", Status: model.PaymentPending},
	)

	snap, err := e.payments.Update(testCtx(), 1, model.PaymentUpdateForm{Amount: "150", Status: model.PaymentPaid, ReferenceID: "R"}, "1")
	require.NoError(t, err)

	put := e.fake.Requests(http.MethodPut)[0]
	assert.Equal(t, float64(1), put.Fields["student_id"])
	assert.Equal(t, "150", put.Fields["amount"])
	require.Len(t, snap.Items, 1)
	assert.True(t, snap.Items[0].IsPaid())
	assert.Equal(t, "1", lastRequest(t, e).Query.Get("student_id"))

	snap, err = e.payments.Delete(testCtx(), 1, "1")
	require.NoError(t, err)
	assert.Empty(t, snap.Items)
	assert.Len(t, e.fake.Items(backend.PathPayments), 1)
}

func TestPaymentByStudentEmptyFilterLoadsNothing(t *testing.T) {
	e := newEnv(t, 4)

	snap := e.payments.ByStudent(testCtx(), "  ")
	assert.True(t, snap.OK())
	assert.Empty(t, e.fake.Requests(""))
}

func TestResultsResolveAttachments(t *testing.T) {
	e := newEnv(t, 4)
	e.fake.Seed(backend.PathResults, model.Result{ID: 1, Title: "Sem 1", Description: "Final", Attachment: "/media/sem1.pdf"})

	snap := e.results.List(testCtx())
	require.Len(t, snap.Items, 1)
	assert.Equal(t, e.fake.URL+"/media/sem1.pdf", snap.Items[0].Attachment)
	assert.Equal(t, "Final", snap.Items[0].Description)
}

func TestMutationPublishesInvalidation(t *testing.T) {
	e := newEnv(t, 4)
	sub, cancel := e.broker.Subscribe(context.Background())
	defer cancel()

	_, err := e.notices.Create(testCtx(), model.NoticeForm{Subject: "s", Message: "m"}, nil)
	require.NoError(t, err)

	select {
	case got := <-sub:
		assert.Equal(t, ResourceNotices, got)
	case <-time.After(time.Second):
		t.Fatal("no invalidation published")
	}

	e.fake.Fail(http.MethodPost, backend.PathNotices, http.StatusBadRequest, `{"subject":["too long"]}`)
	_, err = e.notices.Create(testCtx(), model.NoticeForm{Subject: "s", Message: "m"}, nil)
	require.Error(t, err)

	select {
	case got := <-sub:
		t.Fatalf("unexpected invalidation %q after failed mutation", got)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestTransportErrorSurfaces(t *testing.T) {
	e := newEnv(t, 4)
	e.fake.Close()

	_, err := e.notices.Delete(testCtx(), 1)
	assert.True(t, errors.Is(err, backend.ErrTransport))
}
