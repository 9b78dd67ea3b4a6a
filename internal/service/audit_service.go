package service

import (
	"context"
	"errors"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/stemsi/institute-console/internal/config"
	"github.com/stemsi/institute-console/internal/model"
	"github.com/stemsi/institute-console/internal/repository"
)

// ErrAuditUnavailable is returned by Recent when no audit database is configured.
var ErrAuditUnavailable = errors.New("audit trail is not persisted")

// AuditService records mutations. With a queue configured events are pushed
// to Redis for the audit worker; otherwise they only go to the log.
type AuditService struct {
	rdb  *redis.Client
	repo *repository.AuditRepository
	log  zerolog.Logger
}

// NewAuditService creates an AuditService. rdb and repo may be nil.
func NewAuditService(rdb *redis.Client, repo *repository.AuditRepository, log zerolog.Logger) *AuditService {
	return &AuditService{rdb: rdb, repo: repo, log: log.With().Str("component", "audit").Logger()}
}

// Record queues or logs one event. It never fails the caller.
func (s *AuditService) Record(ctx context.Context, e model.AuditEvent) {
	if s == nil {
		return
	}
	if s.rdb != nil && s.repo != nil {
		payload, err := sonic.Marshal(e)
		if err == nil {
			err = s.rdb.RPush(context.WithoutCancel(ctx), config.CacheKey.AuditQueue(), payload).Err()
		}
		if err == nil {
			return
		}
		s.log.Error().Err(err).Msg("Queue audit event failed, logging instead")
	}

	s.log.Info().
		Str("actor", e.Actor).
		Str("method", e.Method).
		Str("resource", e.Resource).
		Str("resource_id", e.ResourceID).
		Str("outcome", string(e.Outcome)).
		Str("detail", e.Detail).
		Msg("Mutation")
}

// Recent returns the latest persisted events.
func (s *AuditService) Recent(ctx context.Context, limit int) ([]model.AuditEvent, error) {
	if s == nil || s.repo == nil {
		return nil, ErrAuditUnavailable
	}
	return s.repo.Recent(ctx, limit)
}
