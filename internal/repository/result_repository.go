package repository

import (
	"context"

	"github.com/stemsi/institute-console/internal/backend"
	"github.com/stemsi/institute-console/internal/model"
)

// ResultRepository lists published results.
type ResultRepository struct {
	client *backend.Client
}

// NewResultRepository creates a new ResultRepository.
func NewResultRepository(client *backend.Client) *ResultRepository {
	return &ResultRepository{client: client}
}

// List returns every result with attachment links made absolute.
func (r *ResultRepository) List(ctx context.Context) ([]model.Result, error) {
	var results []model.Result
	if err := r.client.Get(ctx, backend.PathResults, nil, &results); err != nil {
		return nil, err
	}
	for i := range results {
		results[i].Attachment = r.client.ResolveURL(results[i].Attachment)
	}
	return results, nil
}
