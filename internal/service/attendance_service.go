package service

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/stemsi/institute-console/internal/collection"
	"github.com/stemsi/institute-console/internal/metrics"
	"github.com/stemsi/institute-console/internal/model"
	"github.com/stemsi/institute-console/internal/repository"
	"github.com/stemsi/institute-console/internal/response"
)

// DateLayout is the wire format of attendance dates.
const DateLayout = "2006-01-02"

// RosterRow is one student with the status that will be submitted.
type RosterRow struct {
	Student model.Student
	Status  model.AttendanceStatus
}

// Roster is the attendance sheet of one day. Every student starts Absent.
type Roster struct {
	students []model.Student
	status   map[int]model.AttendanceStatus
}

// NewRoster creates a roster with every student Absent.
func NewRoster(students []model.Student) *Roster {
	r := &Roster{students: students, status: make(map[int]model.AttendanceStatus, len(students))}
	for _, st := range students {
		r.status[st.ID] = model.Absent
	}
	return r
}

// Status returns the current status of a student.
func (r *Roster) Status(studentID int) model.AttendanceStatus {
	if s, ok := r.status[studentID]; ok {
		return s
	}
	return model.Absent
}

// Toggle flips a student between Present and Absent. Unknown ids are ignored.
func (r *Roster) Toggle(studentID int) {
	if s, ok := r.status[studentID]; ok {
		r.status[studentID] = s.Toggled()
	}
}

// Rows returns the students accepted by filter, in roster order.
func (r *Roster) Rows(filter model.RosterFilter) []RosterRow {
	visible := collection.Filter(r.students, filter.Match)
	rows := make([]RosterRow, 0, len(visible))
	for _, st := range visible {
		rows = append(rows, RosterRow{Student: st, Status: r.Status(st.ID)})
	}
	return rows
}

// Entries builds one attendance row per student for date. Filters do not apply.
func (r *Roster) Entries(date string) []model.AttendanceEntry {
	entries := make([]model.AttendanceEntry, 0, len(r.students))
	for _, st := range r.students {
		entries = append(entries, model.AttendanceEntry{Student: st.ID, Status: r.Status(st.ID), Date: date})
	}
	return entries
}

// Len returns the number of students on the roster.
func (r *Roster) Len() int { return len(r.students) }

// SubmitFailure is a roster row the backend did not accept.
type SubmitFailure struct {
	Student model.Student
	Status  model.AttendanceStatus
	Err     error
	Message string
}

// SubmitReport is the outcome of a bulk submit. Rows are never rolled back.
type SubmitReport struct {
	Date      string
	Total     int
	Succeeded int
	Failed    []SubmitFailure
}

// OK reports whether every row was accepted.
func (r SubmitReport) OK() bool { return len(r.Failed) == 0 }

// AttendanceService loads the roster and submits it.
type AttendanceService struct {
	repo        *repository.AttendanceRepository
	students    *StudentService
	changes     *ChangeNotifier
	metrics     *metrics.Metrics
	concurrency int
	now         func() time.Time
}

// NewAttendanceService creates an AttendanceService. concurrency bounds the
// number of rows in flight; 1 submits strictly one after another.
func NewAttendanceService(repo *repository.AttendanceRepository, students *StudentService, changes *ChangeNotifier, m *metrics.Metrics, concurrency int) *AttendanceService {
	if concurrency < 1 {
		concurrency = 1
	}
	return &AttendanceService{
		repo:        repo,
		students:    students,
		changes:     changes,
		metrics:     m,
		concurrency: concurrency,
		now:         time.Now,
	}
}

// Today returns the default attendance date.
func (s *AttendanceService) Today() string {
	return s.now().Format(DateLayout)
}

// Roster fetches all students and returns a fresh roster.
func (s *AttendanceService) Roster(ctx context.Context) (*Roster, collection.Snapshot[model.Student]) {
	snap, _ := s.students.Collection().Load(ctx)
	return NewRoster(snap.Items), snap
}

// Submit posts one row per roster student for date, at most concurrency at a
// time. Every row is attempted; failures are listed in the report.
func (s *AttendanceService) Submit(ctx context.Context, roster *Roster, date string) (SubmitReport, error) {
	if date == "" {
		date = s.Today()
	}
	if _, err := time.Parse(DateLayout, date); err != nil {
		return SubmitReport{}, &ValidationError{Fields: map[string]string{"date": "date must be YYYY-MM-DD"}}
	}

	entries := roster.Entries(date)
	errs := make([]error, len(entries))

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, entry := range entries {
		g.Go(func() error {
			errs[i] = s.repo.Create(ctx, entry)
			return nil
		})
	}
	_ = g.Wait()

	report := SubmitReport{Date: date, Total: len(entries)}
	for i, err := range errs {
		if err == nil {
			report.Succeeded++
			continue
		}
		report.Failed = append(report.Failed, SubmitFailure{
			Student: roster.students[i],
			Status:  entries[i].Status,
			Err:     err,
			Message: response.MessageFor(err),
		})
	}
	s.metrics.ObserveAttendance(report.Succeeded, len(report.Failed))

	var batchErr error
	if !report.OK() {
		batchErr = fmt.Errorf("%d of %d attendance rows failed", len(report.Failed), report.Total)
	}
	if report.Succeeded > 0 || batchErr != nil {
		s.changes.Done(ctx, http.MethodPost, ResourceAttendance, 0, batchErr)
	}
	return report, nil
}
