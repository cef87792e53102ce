package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Store persists full session snapshots in a key/value store with TTL.
type Store interface {
	Put(ctx context.Context, snap *Snapshot, ttl time.Duration) error
	Get(ctx context.Context, id string) (*Snapshot, error)
	Delete(ctx context.Context, id string) (bool, error)
	IncrCounter(ctx context.Context, name string) error
	Ping(ctx context.Context) error
}

// RedisStore implements Store on Redis. Each session is a single JSON
// document written with one SET, which is what makes the snapshot write
// atomic for concurrent readers.
type RedisStore struct {
	redis   *redis.Client
	tracer  trace.Tracer
	timeout time.Duration
}

// NewRedisStore creates a Redis-backed session store. Every operation is
// bounded by the given timeout so no lifecycle call blocks indefinitely.
func NewRedisStore(client *redis.Client, timeout time.Duration) *RedisStore {
	if client == nil {
		panic("session: redis client cannot be nil")
	}
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &RedisStore{
		redis:   client,
		tracer:  otel.Tracer("discovery.internal.session.store"),
		timeout: timeout,
	}
}

func sessionKey(id string) string {
	return fmt.Sprintf("session:%s", id)
}

func counterKey(name string) string {
	return fmt.Sprintf("session:counters:%s", name)
}

// Put writes the full snapshot atomically with the given TTL. The write
// runs on a context detached from caller cancellation so an abandoned
// turn can never truncate a persisted snapshot.
func (s *RedisStore) Put(ctx context.Context, snap *Snapshot, ttl time.Duration) error {
	ctx, span := s.tracer.Start(context.WithoutCancel(ctx), "session.store.put")
	defer span.End()
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	data, err := json.Marshal(snap)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("session: failed to marshal snapshot: %w", err)
	}
	if err := s.redis.Set(ctx, sessionKey(snap.ID), data, ttl).Err(); err != nil {
		span.RecordError(err)
		return classifyStoreErr(err)
	}
	return nil
}

// Get loads the latest committed snapshot, or ErrSessionNotFound.
func (s *RedisStore) Get(ctx context.Context, id string) (*Snapshot, error) {
	ctx, span := s.tracer.Start(ctx, "session.store.get")
	defer span.End()
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	data, err := s.redis.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		span.RecordError(err)
		return nil, classifyStoreErr(err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("session: failed to decode snapshot: %w", err)
	}
	return &snap, nil
}

// Delete removes a session's persisted snapshot, reporting whether the
// key existed. The DEL reply count is what tells a manager instance
// about sessions it never hydrated.
func (s *RedisStore) Delete(ctx context.Context, id string) (bool, error) {
	ctx, span := s.tracer.Start(ctx, "session.store.delete")
	defer span.End()
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	n, err := s.redis.Del(ctx, sessionKey(id)).Result()
	if err != nil {
		span.RecordError(err)
		return false, classifyStoreErr(err)
	}
	return n > 0, nil
}

// IncrCounter bumps an analytics counter. Counter failures are reported
// but callers treat them as non-fatal; they never block the live loop.
func (s *RedisStore) IncrCounter(ctx context.Context, name string) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()
	if err := s.redis.Incr(ctx, counterKey(name)).Err(); err != nil {
		return classifyStoreErr(err)
	}
	return nil
}

// Ping checks store reachability for health reporting.
func (s *RedisStore) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return classifyStoreErr(err)
	}
	return nil
}

// classifyStoreErr separates deadline misses from connection failures so
// callers can retry with the right backoff.
func classifyStoreErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrStorageTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
}
