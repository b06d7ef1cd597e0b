package migrate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const defaultLockTTL = 10 * time.Minute

// ErrLockHeld is returned when another migrator owns the lock.
var ErrLockHeld = errors.New("migration lock held by another process")

// Lock coordinates exclusive migration runs across processes.
type Lock interface {
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

// lockStore is satisfied by *redis.Client from pkg/redis.
type lockStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	CompareAndDelete(ctx context.Context, key, value string) (bool, error)
}

// RedisLock is a migration lease: SETNX with a TTL, owned by a random token.
// Release only removes the key while it still carries that token, so a
// migrator whose lease expired cannot free a successor's lock.
type RedisLock struct {
	client lockStore
	key    string
	ttl    time.Duration
	owner  string
}

// NewRedisLock constructs a Redis-backed lock.
func NewRedisLock(client lockStore, key string, ttl time.Duration) (*RedisLock, error) {
	if client == nil {
		return nil, errors.New("redis client required for lock")
	}
	if key == "" {
		return nil, errors.New("lock key is required")
	}
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &RedisLock{client: client, key: key, ttl: ttl}, nil
}

// Acquire takes the lease for the configured TTL. A lock already holding a
// lease reports true without touching redis.
func (l *RedisLock) Acquire(ctx context.Context) (bool, error) {
	if l.owner != "" {
		return true, nil
	}
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, l.key, token, l.ttl)
	if err != nil {
		return false, fmt.Errorf("take migration lease %s: %w", l.key, err)
	}
	if ok {
		l.owner = token
	}
	return ok, nil
}

// Release drops the lease in one compare-and-delete round trip.
func (l *RedisLock) Release(ctx context.Context) error {
	if l.owner == "" {
		return nil
	}
	token := l.owner
	l.owner = ""
	if _, err := l.client.CompareAndDelete(ctx, l.key, token); err != nil {
		return fmt.Errorf("drop migration lease %s: %w", l.key, err)
	}
	return nil
}

// WithLock runs fn while holding lock. A nil lock runs fn unguarded.
func WithLock(ctx context.Context, lock Lock, fn func(ctx context.Context) error) (err error) {
	if lock == nil {
		return fn(ctx)
	}
	ok, err := lock.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire migration lock: %w", err)
	}
	if !ok {
		return ErrLockHeld
	}
	defer func() {
		if relErr := lock.Release(context.WithoutCancel(ctx)); relErr != nil && err == nil {
			err = fmt.Errorf("release migration lock: %w", relErr)
		}
	}()
	return fn(ctx)
}
