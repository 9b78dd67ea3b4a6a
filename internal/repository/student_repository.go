package repository

import (
	"context"
	"net/http"

	"github.com/stemsi/institute-console/internal/backend"
	"github.com/stemsi/institute-console/internal/model"
)

// StudentRepository handles student data access on the backend.
type StudentRepository struct {
	client *backend.Client
}

// NewStudentRepository creates a new StudentRepository.
func NewStudentRepository(client *backend.Client) *StudentRepository {
	return &StudentRepository{client: client}
}

// List returns every student.
func (r *StudentRepository) List(ctx context.Context) ([]model.Student, error) {
	var students []model.Student
	err := r.client.Get(ctx, backend.PathStudents, nil, &students)
	return students, err
}

// Create posts a new student as multipart, with an optional photo in the "img" part.
func (r *StudentRepository) Create(ctx context.Context, form model.StudentForm, img *backend.File) error {
	return r.client.Do(ctx, backend.Request{
		Method: http.MethodPost,
		Path:   backend.PathStudents,
		Body:   backend.MultipartBody{Fields: form.Fields(), Files: []*backend.File{img}},
	}, nil)
}

// Replace PUTs the full student record.
func (r *StudentRepository) Replace(ctx context.Context, id int, form model.StudentForm, img *backend.File) error {
	return r.client.Do(ctx, backend.Request{
		Method: http.MethodPut,
		Path:   backend.ItemPath(backend.PathStudents, id),
		Body:   backend.MultipartBody{Fields: form.Fields(), Files: []*backend.File{img}},
	}, nil)
}

// Delete removes a student.
func (r *StudentRepository) Delete(ctx context.Context, id int) error {
	return r.client.Do(ctx, backend.Request{
		Method: http.MethodDelete,
		Path:   backend.ItemPath(backend.PathStudents, id),
	}, nil)
}
