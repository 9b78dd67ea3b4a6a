package service

import (
	"context"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/stemsi/institute-console/internal/metrics"
	"github.com/stemsi/institute-console/internal/model"
	ws "github.com/stemsi/institute-console/internal/websocket"
)

// Resource names used for invalidations and audit records.
const (
	ResourceTeachers   = "teachers"
	ResourceStudents   = "students"
	ResourcePayments   = "payments"
	ResourceNotices    = "notices"
	ResourceAttendance = "attendance"
)

type actorKey struct{}

// WithActor attaches the session holder to ctx for audit records.
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFrom returns the actor set by WithActor, or "anonymous".
func ActorFrom(ctx context.Context) string {
	if actor, ok := ctx.Value(actorKey{}).(string); ok && actor != "" {
		return actor
	}
	return "anonymous"
}

// ChangeNotifier runs after every mutation: it records the audit event and,
// when the mutation succeeded, tells open pages to reload the collection.
type ChangeNotifier struct {
	audit   *AuditService
	broker  ws.Broker
	metrics *metrics.Metrics
	log     zerolog.Logger
}

// NewChangeNotifier creates a ChangeNotifier. broker may be nil.
func NewChangeNotifier(audit *AuditService, broker ws.Broker, m *metrics.Metrics, log zerolog.Logger) *ChangeNotifier {
	return &ChangeNotifier{
		audit:   audit,
		broker:  broker,
		metrics: m,
		log:     log.With().Str("component", "changes").Logger(),
	}
}

// Track wraps op so that its outcome is reported.
func (n *ChangeNotifier) Track(method, resource string, id int, op func(context.Context) error) func(context.Context) error {
	return func(ctx context.Context) error {
		err := op(ctx)
		n.Done(ctx, method, resource, id, err)
		return err
	}
}

// Done records the outcome of a finished mutation.
func (n *ChangeNotifier) Done(ctx context.Context, method, resource string, id int, err error) {
	if n == nil {
		return
	}
	event := model.AuditEvent{
		Actor:      ActorFrom(ctx),
		Method:     method,
		Resource:   resource,
		Outcome:    model.AuditSucceeded,
		OccurredAt: time.Now().UTC(),
	}
	if id > 0 {
		event.ResourceID = strconv.Itoa(id)
	}
	if err != nil {
		event.Outcome = model.AuditFailed
		event.Detail = err.Error()
	}
	n.audit.Record(ctx, event)

	if err != nil || n.broker == nil {
		return
	}
	if pubErr := n.broker.Publish(ctx, resource); pubErr != nil {
		n.log.Warn().Err(pubErr).Str("resource", resource).Msg("Publish invalidation failed")
		return
	}
	n.metrics.ObserveInvalidation(resource)
}
