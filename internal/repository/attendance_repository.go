package repository

import (
	"context"
	"net/http"

	"github.com/stemsi/institute-console/internal/backend"
	"github.com/stemsi/institute-console/internal/model"
)

// AttendanceRepository handles attendance rows on the backend.
type AttendanceRepository struct {
	client *backend.Client
}

// NewAttendanceRepository creates a new AttendanceRepository.
func NewAttendanceRepository(client *backend.Client) *AttendanceRepository {
	return &AttendanceRepository{client: client}
}

// List returns every attendance row.
func (r *AttendanceRepository) List(ctx context.Context) ([]model.AttendanceEntry, error) {
	var entries []model.AttendanceEntry
	err := r.client.Get(ctx, backend.PathAttendance, nil, &entries)
	return entries, err
}

// Create posts one attendance row.
func (r *AttendanceRepository) Create(ctx context.Context, entry model.AttendanceEntry) error {
	return r.client.Do(ctx, backend.Request{
		Method: http.MethodPost,
		Path:   backend.PathAttendance,
		Body:   backend.JSONBody(entry),
	}, nil)
}
