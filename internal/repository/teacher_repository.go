package repository

import (
	"context"
	"net/http"

	"github.com/stemsi/institute-console/internal/backend"
	"github.com/stemsi/institute-console/internal/model"
)

// TeacherRepository reads and writes staff records on the backend.
type TeacherRepository struct {
	client *backend.Client
}

// NewTeacherRepository creates a new TeacherRepository.
func NewTeacherRepository(client *backend.Client) *TeacherRepository {
	return &TeacherRepository{client: client}
}

// List returns every teacher. bearer may be empty.
func (r *TeacherRepository) List(ctx context.Context, bearer string) ([]model.Teacher, error) {
	var teachers []model.Teacher
	err := r.client.Do(ctx, backend.Request{Method: http.MethodGet, Path: backend.PathTeachers, Bearer: bearer}, &teachers)
	return teachers, err
}

// Create posts a new teacher as multipart, with an optional image.
func (r *TeacherRepository) Create(ctx context.Context, form model.TeacherForm, image *backend.File, bearer string) (*model.Teacher, error) {
	var created model.Teacher
	err := r.client.Do(ctx, backend.Request{
		Method: http.MethodPost,
		Path:   backend.PathTeachers,
		Body:   backend.MultipartBody{Fields: form.Fields(), Files: []*backend.File{image}},
		Bearer: bearer,
	}, &created)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// Update patches a teacher.
func (r *TeacherRepository) Update(ctx context.Context, id int, form model.TeacherForm, image *backend.File, bearer string) error {
	return r.client.Do(ctx, backend.Request{
		Method: http.MethodPatch,
		Path:   backend.ItemPath(backend.PathTeachers, id),
		Body:   backend.MultipartBody{Fields: form.Fields(), Files: []*backend.File{image}},
		Bearer: bearer,
	}, nil)
}

// Delete removes a teacher.
func (r *TeacherRepository) Delete(ctx context.Context, id int, bearer string) error {
	return r.client.Do(ctx, backend.Request{
		Method: http.MethodDelete,
		Path:   backend.ItemPath(backend.PathTeachers, id),
		Bearer: bearer,
	}, nil)
}
