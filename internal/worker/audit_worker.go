package worker

import (
	"context"
	"errors"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/stemsi/institute-console/internal/config"
	"github.com/stemsi/institute-console/internal/model"
)

const (
	auditBatchSize  = 50
	auditRetryDelay = 5 * time.Second
)

// AuditSink persists audit events. *repository.AuditRepository implements it.
type AuditSink interface {
	InsertBatch(ctx context.Context, events []model.AuditEvent) error
}

// AuditWorker consumes the audit queue and writes the events to PostgreSQL.
type AuditWorker struct {
	sink  AuditSink
	rdb   *redis.Client
	queue string
	log   zerolog.Logger
}

// NewAuditWorker creates a new AuditWorker.
func NewAuditWorker(sink AuditSink, rdb *redis.Client, log zerolog.Logger) *AuditWorker {
	return &AuditWorker{
		sink:  sink,
		rdb:   rdb,
		queue: config.CacheKey.AuditQueue(),
		log:   log.With().Str("component", "audit_worker").Logger(),
	}
}

// Start begins the infinite worker loop. Call in a goroutine.
func (w *AuditWorker) Start(ctx context.Context) {
	w.log.Info().Msg("Worker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Worker stopping...")
			// Drain remaining items before exit.
			w.drain(context.Background())
			w.log.Info().Msg("Worker stopped")
			return
		default:
			w.processNext(ctx)
		}
	}
}

func (w *AuditWorker) processNext(ctx context.Context) {
	// BLPop blocks until an item is available or timeout (1 second).
	result, err := w.rdb.BLPop(ctx, time.Second, w.queue).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
			w.log.Error().Err(err).Msg("BLPop error")
		}
		return
	}
	if len(result) < 2 {
		return
	}

	raw := []string{result[1]}
	if more, err := w.rdb.LPopCount(ctx, w.queue, auditBatchSize-1).Result(); err == nil {
		raw = append(raw, more...)
	}

	if err := w.persist(ctx, raw); err != nil {
		w.log.Error().Err(err).Int("count", len(raw)).Msg("Persist error, retrying in 5s")
		// Push back to queue for retry.
		w.requeue(context.WithoutCancel(ctx), raw)
		select {
		case <-ctx.Done():
		case <-time.After(auditRetryDelay):
		}
	}
}

// persist decodes raw queue items and inserts them in one batch.
// Items that do not decode are logged and dropped.
func (w *AuditWorker) persist(ctx context.Context, raw []string) error {
	events, bad := decodeEvents(raw)
	for _, item := range bad {
		w.log.Error().Str("payload", item).Msg("Unmarshal error, dropping audit event")
	}
	return w.sink.InsertBatch(ctx, events)
}

func (w *AuditWorker) requeue(ctx context.Context, raw []string) {
	values := make([]interface{}, len(raw))
	for i, item := range raw {
		values[i] = item
	}
	if err := w.rdb.RPush(ctx, w.queue, values...).Err(); err != nil {
		w.log.Error().Err(err).Int("count", len(raw)).Msg("Requeue failed, audit events lost")
	}
}

// drain processes all remaining items in the queue before shutdown.
func (w *AuditWorker) drain(ctx context.Context) {
	drained := 0
	for {
		raw, err := w.rdb.LPopCount(ctx, w.queue, auditBatchSize).Result()
		if err != nil || len(raw) == 0 {
			break
		}
		if err := w.persist(ctx, raw); err != nil {
			w.log.Error().Err(err).Msg("Drain persist error")
			w.requeue(ctx, raw)
			break
		}
		drained += len(raw)
	}

	if drained > 0 {
		w.log.Info().Int("count", drained).Msg("Drained remaining items")
	}
}

func decodeEvents(raw []string) ([]model.AuditEvent, []string) {
	events := make([]model.AuditEvent, 0, len(raw))
	var bad []string
	for _, item := range raw {
		var e model.AuditEvent
		if err := sonic.UnmarshalString(item, &e); err != nil || e.Resource == "" {
			bad = append(bad, item)
			continue
		}
		if e.OccurredAt.IsZero() {
			e.OccurredAt = time.Now().UTC()
		}
		events = append(events, e)
	}
	return events, bad
}
