package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/stemsi/institute-console/internal/collection"
	"github.com/stemsi/institute-console/internal/model"
	"github.com/stemsi/institute-console/internal/repository"
)

// MonthLayout is the format of the portal month filter.
const MonthLayout = "2006-01"

// PortalView is what a logged-in student sees.
type PortalView struct {
	Student    model.Student
	Month      string
	Attendance collection.Snapshot[model.AttendanceEntry]
	Entries    []model.AttendanceEntry
	Present    int
	Absent     int
}

// PortalService is the student self-service portal. Credentials are checked
// here; the student collection never leaves the server.
type PortalService struct {
	students   *StudentService
	studentsDB *repository.StudentRepository
	attendance *collection.Collection[model.AttendanceEntry]
	changes    *ChangeNotifier
}

// NewPortalService creates a new PortalService.
func NewPortalService(students *StudentService, studentRepo *repository.StudentRepository, attendanceRepo *repository.AttendanceRepository, changes *ChangeNotifier) *PortalService {
	return &PortalService{
		students:   students,
		studentsDB: studentRepo,
		attendance: collection.New(ResourceAttendance, attendanceRepo.List),
		changes:    changes,
	}
}

// Login returns the student whose student_id and password both match.
func (s *PortalService) Login(ctx context.Context, req model.PortalLoginRequest) (*model.Student, error) {
	if err := check(req); err != nil {
		return nil, err
	}
	snap, err := s.students.Collection().Load(ctx)
	if err != nil {
		return nil, err
	}
	id := strings.TrimSpace(req.StudentID)
	st, ok := collection.Find(snap.Items, func(st model.Student) bool {
		return st.StudentID == id && secretEqual(st.Password, req.Password)
	})
	if !ok {
		return nil, ErrInvalidCredentials
	}
	return &st, nil
}

// View loads the student and attendance concurrently and filters attendance
// to the student and month (YYYY-MM).
func (s *PortalService) View(ctx context.Context, studentRecordID int, month string) (*PortalView, error) {
	var students collection.Snapshot[model.Student]
	view := &PortalView{Month: month}
	collection.LoadAll(ctx,
		collection.Into(s.students.Collection(), &students),
		collection.Into(s.attendance, &view.Attendance),
	)
	if !students.OK() {
		return nil, students.Err
	}
	st, ok := collection.Find(students.Items, func(st model.Student) bool { return st.ID == studentRecordID })
	if !ok {
		return nil, ErrNotFound
	}
	view.Student = st
	view.Entries = FilterAttendance(view.Attendance.Items, st.ID, month)
	for _, e := range view.Entries {
		switch e.Status {
		case model.Present:
			view.Present++
		case model.Absent:
			view.Absent++
		}
	}
	return view, nil
}

// FilterAttendance keeps the entries of one student whose date falls in month.
func FilterAttendance(entries []model.AttendanceEntry, studentRecordID int, month string) []model.AttendanceEntry {
	return collection.Filter(entries, func(e model.AttendanceEntry) bool {
		return e.Student == studentRecordID && e.InMonth(month)
	})
}

// ChangePassword checks the current password and PUTs the full record with the new one.
func (s *PortalService) ChangePassword(ctx context.Context, studentRecordID int, form model.PasswordChangeForm) error {
	if err := check(form); err != nil {
		return err
	}
	newPassword := strings.TrimSpace(form.NewPassword)
	if newPassword == "" {
		return &ValidationError{Fields: map[string]string{"new_password": "new_password is a required field"}}
	}

	st, err := s.students.Get(ctx, studentRecordID)
	if err != nil {
		return err
	}
	if !secretEqual(st.Password, form.CurrentPassword) {
		return ErrWrongPassword
	}

	updated := model.FormFromStudent(*st)
	updated.Password = newPassword
	err = s.studentsDB.Replace(ctx, st.ID, updated, nil)
	s.changes.Done(ctx, http.MethodPut, ResourceStudents, st.ID, err)
	if err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	return nil
}

