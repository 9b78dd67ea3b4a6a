package service

import (
	"context"

	"github.com/stemsi/institute-console/internal/collection"
	"github.com/stemsi/institute-console/internal/model"
	"github.com/stemsi/institute-console/internal/repository"
)

// ResultService lists published result attachments.
type ResultService struct {
	list *collection.Collection[model.Result]
}

// NewResultService creates a new ResultService.
func NewResultService(repo *repository.ResultRepository) *ResultService {
	return &ResultService{list: collection.New("results", repo.List)}
}

// List loads all results.
func (s *ResultService) List(ctx context.Context) collection.Snapshot[model.Result] {
	snap, _ := s.list.Load(ctx)
	return snap
}
