// Package redisstore держит разделяемое состояние ассистента в Redis.
package redisstore

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/xela07ax/transit-assistant/internal/infra"
)

const (
	DefaultSessionTTL = 24 * time.Hour

	// после отказа Redis не трогаем столько времени, журнал не ждет сеть
	retryAfterFailure = 30 * time.Second
)

// SessionStore — audit.SessionProvider поверх Redis.
// Реплики с одинаковым instance получают один session id.
// Id кэшируется в процессе: в Redis ходим только за первым id и за продлением TTL.
// При недоступности Redis возвращается последний известный id, а если его еще нет —
// локальный, который затем и записывается в Redis.
type SessionStore struct {
	rdb   *redis.Client
	key   string
	ttl   time.Duration
	guard *guard

	mu        sync.Mutex
	current   string
	refreshAt time.Time
	now       func() time.Time

	logger *zap.Logger
}

func NewSessionStore(rdb *redis.Client, instance string, ttl time.Duration, logger *zap.Logger) *SessionStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	logger = logger.With(zap.String("mod", "session-store"))
	return &SessionStore{
		rdb:    rdb,
		key:    infra.RedisKeySession(instance),
		ttl:    ttl,
		guard:  newGuard("redis-session", logger),
		now:    time.Now,
		logger: logger,
	}
}

func (s *SessionStore) SessionID(ctx context.Context) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if s.current != "" && now.Before(s.refreshAt) {
		return s.current
	}

	candidate := s.current
	if candidate == "" {
		candidate = "session_" + uuid.NewString()
	}

	id, err := s.guard.do(ctx, func(ctx context.Context) (string, error) {
		return s.getOrCreate(ctx, candidate)
	})
	if err != nil || id == "" {
		if s.current == "" {
			s.current = candidate
		}
		s.refreshAt = now.Add(retryAfterFailure)
		s.logger.Warn("redis session unavailable, keeping local session",
			zap.String("key", s.key),
			zap.String("session_id", s.current),
			zap.Error(err),
		)
		return s.current
	}

	if s.current != "" && id != s.current {
		// другая реплика завела сессию, пока наш ключ отсутствовал
		s.logger.Info("adopted shared session", zap.String("previous", s.current), zap.String("session_id", id))
	}
	s.current = id
	s.refreshAt = now.Add(s.ttl / 2)
	return s.current
}

// getOrCreate: SETNX кандидата, иначе GET победителя и продление TTL
func (s *SessionStore) getOrCreate(ctx context.Context, candidate string) (string, error) {
	created, err := s.rdb.SetNX(ctx, s.key, candidate, s.ttl).Result()
	if err != nil {
		return "", err
	}
	if created {
		s.logger.Info("session stored", zap.String("session_id", candidate))
		return candidate, nil
	}

	id, err := s.rdb.Get(ctx, s.key).Result()
	if err != nil {
		return "", err
	}
	if err := s.rdb.Expire(ctx, s.key, s.ttl).Err(); err != nil {
		s.logger.Debug("failed to refresh session ttl", zap.Error(err))
	}
	return id, nil
}

// Ping проверяет доступность Redis при старте
func (s *SessionStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}
