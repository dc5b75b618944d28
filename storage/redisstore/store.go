// Package redisstore keeps the session in a redis hash, so several operator hosts can share it.
package redisstore

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const (
	DefaultKey     = "masomo-admin:session"
	defaultTimeout = 3 * time.Second
)

type Store struct {
	client  *redis.Client
	key     string
	timeout time.Duration
}

// Connect initializes a redis client from a `redis://` URL or a host:port address.
func Connect(redisURL string) (*redis.Client, error) {
	if strings.HasPrefix(redisURL, "redis://") || strings.HasPrefix(redisURL, "rediss://") {
		opt, err := redis.ParseURL(redisURL)
		if err != nil {
			return nil, errors.Wrap(err, "parsing redis url")
		}
		return redis.NewClient(opt), nil
	}
	return redis.NewClient(&redis.Options{Addr: redisURL}), nil
}

// New returns a Store whose values live in the hash `key` (DefaultKey when empty).
func New(client *redis.Client, key string) *Store {
	if key == "" {
		key = DefaultKey
	}
	return &Store{client: client, key: key, timeout: defaultTimeout}
}

func (s *Store) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.timeout)
}

// Ping checks the redis server is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return errors.Wrap(s.client.Ping(ctx).Err(), "pinging redis")
}

func (s *Store) Get(key string) (string, bool, error) {
	ctx, cancel := s.ctx()
	defer cancel()
	v, err := s.client.HGet(ctx, s.key, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrapf(err, "reading %s", key)
	}
	return v, true, nil
}

func (s *Store) Set(key, value string) error {
	ctx, cancel := s.ctx()
	defer cancel()
	return errors.Wrapf(s.client.HSet(ctx, s.key, key, value).Err(), "writing %s", key)
}

func (s *Store) Delete(keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	ctx, cancel := s.ctx()
	defer cancel()
	return errors.Wrap(s.client.HDel(ctx, s.key, keys...).Err(), "deleting session keys")
}

func (s *Store) Close() error {
	return s.client.Close()
}
