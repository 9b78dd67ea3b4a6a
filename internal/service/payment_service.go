package service

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/stemsi/institute-console/internal/collection"
	"github.com/stemsi/institute-console/internal/model"
	"github.com/stemsi/institute-console/internal/repository"
)

// PaymentOverview is the payments page: both collections plus the student
// searched for and that student's payments.
type PaymentOverview struct {
	Students        collection.Snapshot[model.Student]
	Payments        collection.Snapshot[model.Payment]
	Query           string
	Selected        *model.Student
	StudentPayments []model.Payment
}

// PaymentService manages payments.
type PaymentService struct {
	repo     *repository.PaymentRepository
	students *StudentService
	changes  *ChangeNotifier
	all      *collection.Collection[model.Payment]
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(repo *repository.PaymentRepository, students *StudentService, changes *ChangeNotifier) *PaymentService {
	return &PaymentService{
		repo:     repo,
		students: students,
		changes:  changes,
		all: collection.New(ResourcePayments, func(ctx context.Context) ([]model.Payment, error) {
			return repo.List(ctx, "")
		}),
	}
}

func (s *PaymentService) filtered(studentID string) *collection.Collection[model.Payment] {
	return collection.New(ResourcePayments, func(ctx context.Context) ([]model.Payment, error) {
		return s.repo.List(ctx, studentID)
	})
}

// Overview loads students and payments concurrently and selects the student
// whose student_id equals code.
func (s *PaymentService) Overview(ctx context.Context, code string) PaymentOverview {
	var ov PaymentOverview
	collection.LoadAll(ctx,
		collection.Into(s.students.Collection(), &ov.Students),
		collection.Into(s.all, &ov.Payments),
	)
	return s.selectStudent(ov, code)
}

func (s *PaymentService) selectStudent(ov PaymentOverview, code string) PaymentOverview {
	ov.Query = strings.TrimSpace(code)
	if ov.Query == "" {
		return ov
	}
	st, ok := collection.Find(ov.Students.Items, func(st model.Student) bool {
		return strings.TrimSpace(st.StudentID) == ov.Query
	})
	if !ok {
		return ov
	}
	ov.Selected = &st
	ov.StudentPayments = collection.Filter(ov.Payments.Items, func(p model.Payment) bool {
		return p.Student.ID == st.ID
	})
	return ov
}

// Add creates a Pending payment for the student whose student_id is code.
func (s *PaymentService) Add(ctx context.Context, code string, form model.PaymentForm) (PaymentOverview, error) {
	if err := check(form); err != nil {
		return PaymentOverview{}, err
	}
	amount, err := strconv.ParseFloat(strings.TrimSpace(form.Amount), 64)
	if err != nil {
		return PaymentOverview{}, &ValidationError{Fields: map[string]string{"amount": "amount must be a number"}}
	}

	students, err := s.students.Collection().Load(ctx)
	if err != nil {
		return PaymentOverview{}, err
	}
	ov := s.selectStudent(PaymentOverview{Students: students}, code)
	if ov.Selected == nil {
		return PaymentOverview{}, ErrNotFound
	}

	payload := model.CreatePaymentPayload{
		StudentID:   ov.Selected.ID,
		Amount:      amount,
		DueDate:     form.DueDate,
		ReferenceID: form.ReferenceID,
		Status:      model.PaymentPending,
	}
	payments, err := s.all.Mutate(ctx, s.changes.Track(http.MethodPost, ResourcePayments, 0, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, payload); err != nil {
			return fmt.Errorf("create payment: %w", err)
		}
		return nil
	}))
	if err != nil {
		return PaymentOverview{}, err
	}
	ov.Payments = payments
	return s.selectStudent(ov, code), nil
}

// ByStudent lists payments through the backend's ?student_id= filter.
// An empty filter loads nothing.
func (s *PaymentService) ByStudent(ctx context.Context, studentID string) collection.Snapshot[model.Payment] {
	studentID = strings.TrimSpace(studentID)
	if studentID == "" {
		return collection.Snapshot[model.Payment]{Items: []model.Payment{}}
	}
	snap, _ := s.filtered(studentID).Load(ctx)
	return snap
}

// Get finds one payment by id.
func (s *PaymentService) Get(ctx context.Context, id int) (*model.Payment, error) {
	snap, err := s.all.Load(ctx)
	if err != nil {
		return nil, err
	}
	p, ok := collection.Find(snap.Items, func(p model.Payment) bool { return p.ID == id })
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

// Update replaces amount, status and reference of a payment and reloads the
// list filtered by studentID.
func (s *PaymentService) Update(ctx context.Context, id int, form model.PaymentUpdateForm, studentID string) (collection.Snapshot[model.Payment], error) {
	if err := check(form); err != nil {
		return collection.Snapshot[model.Payment]{}, err
	}
	current, err := s.Get(ctx, id)
	if err != nil {
		return collection.Snapshot[model.Payment]{}, err
	}

	payload := model.UpdatePaymentPayload{
		Amount:      strings.TrimSpace(form.Amount),
		Status:      form.Status,
		ReferenceID: form.ReferenceID,
		StudentID:   current.Student.ID,
	}
	return s.listFor(studentID).Mutate(ctx, s.changes.Track(http.MethodPut, ResourcePayments, id, func(ctx context.Context) error {
		if err := s.repo.Replace(ctx, id, payload); err != nil {
			return fmt.Errorf("update payment %d: %w", id, err)
		}
		return nil
	}))
}

// Delete removes a payment and reloads the list filtered by studentID.
func (s *PaymentService) Delete(ctx context.Context, id int, studentID string) (collection.Snapshot[model.Payment], error) {
	return s.listFor(studentID).Mutate(ctx, s.changes.Track(http.MethodDelete, ResourcePayments, id, func(ctx context.Context) error {
		if err := s.repo.Delete(ctx, id); err != nil {
			return fmt.Errorf("delete payment %d: %w", id, err)
		}
		return nil
	}))
}

func (s *PaymentService) listFor(studentID string) *collection.Collection[model.Payment] {
	if studentID = strings.TrimSpace(studentID); studentID == "" {
		return s.all
	}
	return s.filtered(studentID)
}
