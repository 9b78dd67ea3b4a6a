// Package session keeps console logins in a server-side store. The browser
// only carries an opaque cookie holding the session id.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"

	"github.com/stemsi/institute-console/internal/config"
	"github.com/stemsi/institute-console/internal/model"
)

var (
	// ErrNoSession means no session exists for the id (or there is no cookie).
	ErrNoSession = errors.New("no active session")

	// ErrMalformedSession means a stored record could not be decoded or lacks required fields.
	ErrMalformedSession = errors.New("malformed session record")
)

// Store persists session records.
type Store interface {
	Save(ctx context.Context, sess *model.Session, ttl time.Duration) error
	Load(ctx context.Context, id string) (*model.Session, error)
	Delete(ctx context.Context, id string) error
}

// decode parses and validates a stored record.
func decode(raw []byte) (*model.Session, error) {
	var sess model.Session
	if err := sonic.ConfigStd.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedSession, err)
	}
	if err := sess.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedSession, err)
	}
	return &sess, nil
}

func encode(sess *model.Session) ([]byte, error) {
	if err := sess.Validate(); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return sonic.ConfigStd.Marshal(sess)
}

// ─── Redis ─────────────────────────────────────────────────────────────

// RedisStore keeps each session as a JSON string with a TTL.
type RedisStore struct {
	rdb *redis.Client
}

// NewRedisStore creates a Redis-backed store.
func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) Save(ctx context.Context, sess *model.Session, ttl time.Duration) error {
	raw, err := encode(sess)
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, config.CacheKey.SessionKey(sess.ID), raw, ttl).Err(); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context, id string) (*model.Session, error) {
	raw, err := s.rdb.Get(ctx, config.CacheKey.SessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("load session: %w", err)
	}
	return decode(raw)
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	return s.rdb.Del(ctx, config.CacheKey.SessionKey(id)).Err()
}

// ─── Memory ────────────────────────────────────────────────────────────

type memoryEntry struct {
	raw       []byte
	expiresAt time.Time
}

// MemoryStore is an in-process store for development and tests.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]memoryEntry), now: time.Now}
}

func (s *MemoryStore) Save(_ context.Context, sess *model.Session, ttl time.Duration) error {
	raw, err := encode(sess)
	if err != nil {
		return err
	}
	s.Put(sess.ID, raw, ttl)
	return nil
}

// Put stores a raw record as-is. Tests use it to plant corrupt sessions.
func (s *MemoryStore) Put(id string, raw []byte, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var exp time.Time
	if ttl > 0 {
		exp = s.now().Add(ttl)
	}
	s.entries[id] = memoryEntry{raw: raw, expiresAt: exp}
}

func (s *MemoryStore) Load(_ context.Context, id string) (*model.Session, error) {
	s.mu.Lock()
	entry, ok := s.entries[id]
	if ok && !entry.expiresAt.IsZero() && !s.now().Before(entry.expiresAt) {
		delete(s.entries, id)
		ok = false
	}
	s.mu.Unlock()

	if !ok {
		return nil, ErrNoSession
	}
	return decode(entry.raw)
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
	return nil
}

// Len returns the number of stored records.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
