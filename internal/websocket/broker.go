package websocket

import (
	"context"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/stemsi/institute-console/internal/config"
)

// Broker fans collection invalidations out to every console instance.
type Broker interface {
	Publish(ctx context.Context, resource string) error
	// Subscribe returns a channel of invalidated resource names. Call the
	// returned func to unsubscribe; the channel is closed afterwards.
	Subscribe(ctx context.Context) (<-chan string, func())
}

// ─── Redis ──────────────────────────────────────────────────────────

// RedisBroker uses Redis pub/sub so that pages served by other replicas reload too.
type RedisBroker struct {
	rdb *redis.Client
	log zerolog.Logger
}

// NewRedisBroker creates a pub/sub broker.
func NewRedisBroker(rdb *redis.Client, log zerolog.Logger) *RedisBroker {
	return &RedisBroker{rdb: rdb, log: log.With().Str("component", "invalidation_broker").Logger()}
}

func (b *RedisBroker) Publish(ctx context.Context, resource string) error {
	return b.rdb.Publish(ctx, config.CacheKey.InvalidationChannel(), resource).Err()
}

func (b *RedisBroker) Subscribe(ctx context.Context) (<-chan string, func()) {
	ctx, cancel := context.WithCancel(ctx)
	sub := b.rdb.Subscribe(ctx, config.CacheKey.InvalidationChannel())
	out := make(chan string, 16)

	go func() {
		defer close(out)
		defer sub.Close()
		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				select {
				case out <- msg.Payload:
				default:
					b.log.Warn().Str("resource", msg.Payload).Msg("Subscriber too slow, dropping invalidation")
				}
			}
		}
	}()
	return out, cancel
}

// ─── Memory ─────────────────────────────────────────────────────────

// MemoryBroker delivers invalidations within one process.
type MemoryBroker struct {
	mu   sync.Mutex
	next int
	subs map[int]chan string
}

// NewMemoryBroker creates an in-process broker.
func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{subs: make(map[int]chan string)}
}

func (b *MemoryBroker) Publish(_ context.Context, resource string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- resource:
		default:
		}
	}
	return nil
}

func (b *MemoryBroker) Subscribe(ctx context.Context) (<-chan string, func()) {
	b.mu.Lock()
	id := b.next
	b.next++
	ch := make(chan string, 16)
	b.subs[id] = ch
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			close(ch)
			b.mu.Unlock()
		})
	}
	go func() {
		<-ctx.Done()
		cancel()
	}()
	return ch, cancel
}
