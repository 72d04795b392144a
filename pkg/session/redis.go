package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/matzehuels/axnarrate/pkg/errors"
)

// RedisStore keeps entries in Redis. Entries expire with their TTL; a
// sorted set indexes them by creation time.
type RedisStore struct {
	client    *redis.Client
	namespace string
}

// NewRedisStore connects to addr (host:port or a redis:// URL) and stores
// keys under namespace.
func NewRedisStore(ctx context.Context, addr, namespace string) (*RedisStore, error) {
	var opts *redis.Options
	if u, err := redis.ParseURL(addr); err == nil {
		opts = u
	} else {
		opts = &redis.Options{Addr: addr}
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, apperrors.Wrap(apperrors.ErrCodeNetwork, err, "connect to redis at %s", opts.Addr)
	}
	return NewRedisStoreFromClient(client, namespace), nil
}

// NewRedisStoreFromClient wraps an existing client.
func NewRedisStoreFromClient(client *redis.Client, namespace string) *RedisStore {
	return &RedisStore{client: client, namespace: namespace}
}

func (s *RedisStore) entryKey(id string) string { return s.namespace + "session:" + id }
func (s *RedisStore) indexKey() string { return s.namespace + "sessions" }
func (s *RedisStore) latestKey() string { return s.namespace + "session-latest" }

func (s *RedisStore) Save(ctx context.Context, e *Entry) error {
	if err := apperrors.ValidateSessionID(e.ID); err != nil {
		return err
	}
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	var ttl time.Duration
	if !e.ExpiresAt.IsZero() {
		if ttl = time.Until(e.ExpiresAt); ttl <= 0 {
			// An entry past its expiry is never stored.
			return nil
		}
	}

	_, err = s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, s.entryKey(e.ID), data, ttl)
		p.ZAdd(ctx, s.indexKey(), redis.Z{Score: float64(e.CreatedAt.UnixNano()), Member: e.ID})
		p.Set(ctx, s.latestKey(), e.ID, 0)
		return nil
	})
	if err != nil {
		return apperrors.Wrap(apperrors.ErrCodeNetwork, err, "save session %s", e.ID)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*Entry, error) {
	if err := apperrors.ValidateSessionID(id); err != nil {
		return nil, err
	}
	data, err := s.client.Get(ctx, s.entryKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeNetwork, err, "get session %s", id)
	}
	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("parse session %s: %w", id, err)
	}
	if e.IsExpired() {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return &e, nil
}

func (s *RedisStore) Latest(ctx context.Context) (*Entry, error) {
	id, err := s.client.Get(ctx, s.latestKey()).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeNetwork, err, "get latest session")
	}
	return s.Get(ctx, id)
}

func (s *RedisStore) List(ctx context.Context) ([]*Entry, error) {
	ids, err := s.client.ZRevRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeNetwork, err, "list sessions")
	}
	var out []*Entry
	for _, id := range ids {
		e, err := s.Get(ctx, id)
		if errors.Is(err, ErrNotFound) {
			s.client.ZRem(ctx, s.indexKey(), id)
			continue
		}
		if err != nil {
			return nil, err
		}
		e.Data = nil
		out = append(out, e)
	}
	return out, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := apperrors.ValidateSessionID(id); err != nil {
		return err
	}
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, s.entryKey(id))
		p.ZRem(ctx, s.indexKey(), id)
		return nil
	})
	if err != nil {
		return apperrors.Wrap(apperrors.ErrCodeNetwork, err, "delete session %s", id)
	}
	if cur, err := s.client.Get(ctx, s.latestKey()).Result(); err == nil && cur == id {
		s.client.Del(ctx, s.latestKey())
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context) (int, error) {
	ids, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrCodeNetwork, err, "list sessions")
	}
	keys := []string{s.indexKey(), s.latestKey()}
	for _, id := range ids {
		keys = append(keys, s.entryKey(id))
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return 0, apperrors.Wrap(apperrors.ErrCodeNetwork, err, "clear sessions")
	}
	return len(ids), nil
}

func (s *RedisStore) Close() error { return s.client.Close() }

var _ Store = (*RedisStore)(nil)
