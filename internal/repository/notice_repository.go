package repository

import (
	"context"
	"net/http"

	"github.com/stemsi/institute-console/internal/backend"
	"github.com/stemsi/institute-console/internal/model"
)

// NoticeRepository handles notice board data access on the backend.
type NoticeRepository struct {
	client *backend.Client
}

// NewNoticeRepository creates a new NoticeRepository.
func NewNoticeRepository(client *backend.Client) *NoticeRepository {
	return &NoticeRepository{client: client}
}

// List returns every notice.
func (r *NoticeRepository) List(ctx context.Context) ([]model.Notice, error) {
	var notices []model.Notice
	err := r.client.Get(ctx, backend.PathNotices, nil, &notices)
	return notices, err
}

// Create posts a notice with an optional attachment.
func (r *NoticeRepository) Create(ctx context.Context, form model.NoticeForm, attachment *backend.File) error {
	return r.client.Do(ctx, backend.Request{
		Method: http.MethodPost,
		Path:   backend.PathNotices,
		Body:   backend.MultipartBody{Fields: form.Fields(), Files: []*backend.File{attachment}},
	}, nil)
}

// Update patches a notice. A nil attachment keeps the existing one.
func (r *NoticeRepository) Update(ctx context.Context, id int, form model.NoticeForm, attachment *backend.File) error {
	return r.client.Do(ctx, backend.Request{
		Method: http.MethodPatch,
		Path:   backend.ItemPath(backend.PathNotices, id),
		Body:   backend.MultipartBody{Fields: form.Fields(), Files: []*backend.File{attachment}},
	}, nil)
}

// Delete removes a notice.
func (r *NoticeRepository) Delete(ctx context.Context, id int) error {
	return r.client.Do(ctx, backend.Request{
		Method: http.MethodDelete,
		Path:   backend.ItemPath(backend.PathNotices, id),
	}, nil)
}
