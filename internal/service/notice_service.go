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

// NoticeService manages the notice board.
type NoticeService struct {
	repo    *repository.NoticeRepository
	client  *backend.Client
	changes *ChangeNotifier
	list    *collection.Collection[model.Notice]
}

// NewNoticeService creates a new NoticeService.
func NewNoticeService(repo *repository.NoticeRepository, client *backend.Client, changes *ChangeNotifier) *NoticeService {
	s := &NoticeService{repo: repo, client: client, changes: changes}
	s.list = collection.New(ResourceNotices, s.fetch)
	return s
}

func (s *NoticeService) fetch(ctx context.Context) ([]model.Notice, error) {
	notices, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range notices {
		notices[i].Attachment = s.client.ResolveURL(notices[i].Attachment)
	}
	return notices, nil
}

// List loads all notices.
func (s *NoticeService) List(ctx context.Context) collection.Snapshot[model.Notice] {
	snap, _ := s.list.Load(ctx)
	return snap
}

// Get finds one notice by id.
func (s *NoticeService) Get(ctx context.Context, id int) (*model.Notice, error) {
	snap, err := s.list.Load(ctx)
	if err != nil {
		return nil, err
	}
	n, ok := collection.Find(snap.Items, func(n model.Notice) bool { return n.ID == id })
	if !ok {
		return nil, ErrNotFound
	}
	return &n, nil
}

// Create posts a notice with an optional attachment.
func (s *NoticeService) Create(ctx context.Context, form model.NoticeForm, attachment *backend.File) (collection.Snapshot[model.Notice], error) {
	if err := check(form); err != nil {
		return collection.Snapshot[model.Notice]{}, err
	}
	return s.list.Mutate(ctx, s.changes.Track(http.MethodPost, ResourceNotices, 0, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, form, attachment); err != nil {
			return fmt.Errorf("create notice: %w", err)
		}
		return nil
	}))
}

// Update patches a notice.
func (s *NoticeService) Update(ctx context.Context, id int, form model.NoticeForm, attachment *backend.File) (collection.Snapshot[model.Notice], error) {
	if err := check(form); err != nil {
		return collection.Snapshot[model.Notice]{}, err
	}
	return s.list.Mutate(ctx, s.changes.Track(http.MethodPatch, ResourceNotices, id, func(ctx context.Context) error {
		if err := s.repo.Update(ctx, id, form, attachment); err != nil {
			return fmt.Errorf("update notice %d: %w", id, err)
		}
		return nil
	}))
}

// Delete removes a notice.
func (s *NoticeService) Delete(ctx context.Context, id int) (collection.Snapshot[model.Notice], error) {
	return s.list.Mutate(ctx, s.changes.Track(http.MethodDelete, ResourceNotices, id, func(ctx context.Context) error {
		if err := s.repo.Delete(ctx, id); err != nil {
			return fmt.Errorf("delete notice %d: %w", id, err)
		}
		return nil
	}))
}
