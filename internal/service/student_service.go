package service

import (
	"context"
	"fmt"
	"net/http"

	"github.com/stemsi/institute-console/internal/backend"
	"github.com/stemsi/institute-console/internal/collection"
	"github.com/stemsi/institute-console/internal/model"
	"github.com/stemsi/institute-console/internal/repository"
)

// StudentService manages student records.
type StudentService struct {
	repo    *repository.StudentRepository
	changes *ChangeNotifier
	list    *collection.Collection[model.Student]
}

// NewStudentService creates a new StudentService.
func NewStudentService(repo *repository.StudentRepository, changes *ChangeNotifier) *StudentService {
	return &StudentService{
		repo:    repo,
		changes: changes,
		list:    collection.New(ResourceStudents, repo.List),
	}
}

// Collection exposes the student collection for pages that load it alongside others.
func (s *StudentService) Collection() *collection.Collection[model.Student] { return s.list }

// List loads all students and applies filter.
func (s *StudentService) List(ctx context.Context, filter model.StudentFilter) collection.Snapshot[model.Student] {
	snap, _ := s.list.Load(ctx)
	return FilterStudents(snap, filter)
}

// FilterStudents narrows a loaded snapshot. Applying it twice changes nothing.
func FilterStudents(snap collection.Snapshot[model.Student], filter model.StudentFilter) collection.Snapshot[model.Student] {
	snap.Items = collection.Filter(snap.Items, filter.Match)
	return snap
}

// Get finds one student by record id.
func (s *StudentService) Get(ctx context.Context, id int) (*model.Student, error) {
	snap, err := s.list.Load(ctx)
	if err != nil {
		return nil, err
	}
	st, ok := collection.Find(snap.Items, func(st model.Student) bool { return st.ID == id })
	if !ok {
		return nil, ErrNotFound
	}
	return &st, nil
}

// Create validates form and posts a new student with an optional photo.
func (s *StudentService) Create(ctx context.Context, form model.StudentForm, img *backend.File) (collection.Snapshot[model.Student], error) {
	if err := check(form); err != nil {
		return collection.Snapshot[model.Student]{}, err
	}
	return s.list.Mutate(ctx, s.changes.Track(http.MethodPost, ResourceStudents, 0, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, form, img); err != nil {
			return fmt.Errorf("create student: %w", err)
		}
		return nil
	}))
}

// Update replaces a student record.
func (s *StudentService) Update(ctx context.Context, id int, form model.StudentForm, img *backend.File) (collection.Snapshot[model.Student], error) {
	if err := check(form); err != nil {
		return collection.Snapshot[model.Student]{}, err
	}
	return s.list.Mutate(ctx, s.changes.Track(http.MethodPut, ResourceStudents, id, func(ctx context.Context) error {
		if err := s.repo.Replace(ctx, id, form, img); err != nil {
			return fmt.Errorf("update student %d: %w", id, err)
		}
		return nil
	}))
}

// Delete removes a student.
func (s *StudentService) Delete(ctx context.Context, id int) (collection.Snapshot[model.Student], error) {
	return s.list.Mutate(ctx, s.changes.Track(http.MethodDelete, ResourceStudents, id, func(ctx context.Context) error {
		if err := s.repo.Delete(ctx, id); err != nil {
			return fmt.Errorf("delete student %d: %w", id, err)
		}
		return nil
	}))
}
