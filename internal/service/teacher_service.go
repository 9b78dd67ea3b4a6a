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

// TeacherService manages staff records. Every call carries the admin's access token.
type TeacherService struct {
	repo    *repository.TeacherRepository
	changes *ChangeNotifier
}

// NewTeacherService creates a new TeacherService.
func NewTeacherService(repo *repository.TeacherRepository, changes *ChangeNotifier) *TeacherService {
	return &TeacherService{repo: repo, changes: changes}
}

func (s *TeacherService) collection(bearer string) *collection.Collection[model.Teacher] {
	return collection.New(ResourceTeachers, func(ctx context.Context) ([]model.Teacher, error) {
		return s.repo.List(ctx, bearer)
	})
}

// List loads the staff list.
func (s *TeacherService) List(ctx context.Context, bearer string) collection.Snapshot[model.Teacher] {
	snap, _ := s.collection(bearer).Load(ctx)
	return snap
}

// Get finds one teacher by id.
func (s *TeacherService) Get(ctx context.Context, bearer string, id int) (*model.Teacher, error) {
	snap, err := s.collection(bearer).Load(ctx)
	if err != nil {
		return nil, err
	}
	t, ok := collection.Find(snap.Items, func(t model.Teacher) bool { return t.TeacherID == id })
	if !ok {
		return nil, ErrNotFound
	}
	return &t, nil
}

// Create validates form and posts a new teacher. Nothing is sent when validation fails.
func (s *TeacherService) Create(ctx context.Context, bearer string, form model.TeacherForm, image *backend.File) (collection.Snapshot[model.Teacher], error) {
	if err := check(form); err != nil {
		return collection.Snapshot[model.Teacher]{}, err
	}
	return s.collection(bearer).Mutate(ctx, s.changes.Track(http.MethodPost, ResourceTeachers, 0, func(ctx context.Context) error {
		if _, err := s.repo.Create(ctx, form, image, bearer); err != nil {
			return fmt.Errorf("create teacher: %w", err)
		}
		return nil
	}))
}

// Update patches a teacher.
func (s *TeacherService) Update(ctx context.Context, bearer string, id int, form model.TeacherForm, image *backend.File) (collection.Snapshot[model.Teacher], error) {
	if err := check(form); err != nil {
		return collection.Snapshot[model.Teacher]{}, err
	}
	return s.collection(bearer).Mutate(ctx, s.changes.Track(http.MethodPatch, ResourceTeachers, id, func(ctx context.Context) error {
		if err := s.repo.Update(ctx, id, form, image, bearer); err != nil {
			return fmt.Errorf("update teacher %d: %w", id, err)
		}
		return nil
	}))
}

// Delete removes a teacher.
func (s *TeacherService) Delete(ctx context.Context, bearer string, id int) (collection.Snapshot[model.Teacher], error) {
	return s.collection(bearer).Mutate(ctx, s.changes.Track(http.MethodDelete, ResourceTeachers, id, func(ctx context.Context) error {
		if err := s.repo.Delete(ctx, id, bearer); err != nil {
			return fmt.Errorf("delete teacher %d: %w", id, err)
		}
		return nil
	}))
}
