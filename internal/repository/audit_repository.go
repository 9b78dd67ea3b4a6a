package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stemsi/institute-console/internal/model"
)

// AuditRepository persists audit events to PostgreSQL.
type AuditRepository struct {
	pool *pgxpool.Pool
}

// NewAuditRepository creates a new AuditRepository.
func NewAuditRepository(pool *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{pool: pool}
}

const insertAuditEvent = `INSERT INTO audit_events (actor, method, resource, resource_id, outcome, detail, occurred_at)
	 VALUES ($1, $2, $3, $4, $5, $6, $7)`

// Insert writes a single event.
func (r *AuditRepository) Insert(ctx context.Context, e model.AuditEvent) error {
	_, err := r.pool.Exec(ctx, insertAuditEvent,
		e.Actor, e.Method, e.Resource, e.ResourceID, e.Outcome, e.Detail, e.OccurredAt)
	return err
}

// InsertBatch writes events in one round trip.
func (r *AuditRepository) InsertBatch(ctx context.Context, events []model.AuditEvent) error {
	if len(events) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, e := range events {
		batch.Queue(insertAuditEvent, e.Actor, e.Method, e.Resource, e.ResourceID, e.Outcome, e.Detail, e.OccurredAt)
	}
	return r.pool.SendBatch(ctx, batch).Close()
}

// Recent returns the latest events, newest first.
func (r *AuditRepository) Recent(ctx context.Context, limit int) ([]model.AuditEvent, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, actor, method, resource, resource_id, outcome, detail, occurred_at
		 FROM audit_events ORDER BY occurred_at DESC, id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []model.AuditEvent
	for rows.Next() {
		var e model.AuditEvent
		if err := rows.Scan(&e.ID, &e.Actor, &e.Method, &e.Resource, &e.ResourceID, &e.Outcome, &e.Detail, &e.OccurredAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
