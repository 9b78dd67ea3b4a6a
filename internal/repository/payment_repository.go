package repository

import (
	"context"
	"net/http"
	"net/url"

	"github.com/stemsi/institute-console/internal/backend"
	"github.com/stemsi/institute-console/internal/model"
)

// PaymentRepository handles payment data access on the backend.
type PaymentRepository struct {
	client *backend.Client
}

// NewPaymentRepository creates a new PaymentRepository.
func NewPaymentRepository(client *backend.Client) *PaymentRepository {
	return &PaymentRepository{client: client}
}

// List returns payments, filtered with ?student_id= when studentID is not empty.
func (r *PaymentRepository) List(ctx context.Context, studentID string) ([]model.Payment, error) {
	var query url.Values
	if studentID != "" {
		query = url.Values{"student_id": {studentID}}
	}
	var payments []model.Payment
	err := r.client.Get(ctx, backend.PathPayments, query, &payments)
	return payments, err
}

// Create posts a new payment as JSON.
func (r *PaymentRepository) Create(ctx context.Context, p model.CreatePaymentPayload) error {
	return r.client.Do(ctx, backend.Request{
		Method: http.MethodPost,
		Path:   backend.PathPayments,
		Body:   backend.JSONBody(p),
	}, nil)
}

// Replace PUTs a payment as JSON.
func (r *PaymentRepository) Replace(ctx context.Context, id int, p model.UpdatePaymentPayload) error {
	return r.client.Do(ctx, backend.Request{
		Method: http.MethodPut,
		Path:   backend.ItemPath(backend.PathPayments, id),
		Body:   backend.JSONBody(p),
	}, nil)
}

// Delete removes a payment.
func (r *PaymentRepository) Delete(ctx context.Context, id int) error {
	return r.client.Do(ctx, backend.Request{
		Method: http.MethodDelete,
		Path:   backend.ItemPath(backend.PathPayments, id),
	}, nil)
}
