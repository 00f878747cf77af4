package persist

import (
	"context"
	stderrors "errors"
	"slices"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/nodecanvas/pkg/errors"
)

// DefaultRedisPrefix namespaces diagram keys.
const DefaultRedisPrefix = "nodecanvas:diagram:"

// RedisConfig configures a [RedisSink].
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	// Prefix is prepended to every diagram name. Empty selects
	// DefaultRedisPrefix.
	Prefix string
}

// RedisSink stores each diagram under its own Redis key.
type RedisSink struct {
	client *redis.Client
	prefix string
}

// NewRedisSink connects to Redis and verifies the connection with PING.
func NewRedisSink(ctx context.Context, cfg RedisConfig) (*RedisSink, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, storageErr(err, "connect redis %s", cfg.Addr)
	}
	return NewRedisSinkFromClient(client, cfg.Prefix), nil
}

// NewRedisSinkFromClient wraps an existing client. The sink takes ownership
// and closes the client on Close.
func NewRedisSinkFromClient(client *redis.Client, prefix string) *RedisSink {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisSink{client: client, prefix: prefix}
}

// Name implements [Sink].
func (s *RedisSink) Name() string { return "redis" }

// Save implements [Sink].
func (s *RedisSink) Save(ctx context.Context, name string, data []byte) error {
	if err := errors.ValidateName(name); err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.prefix+name, data, 0).Err(); err != nil {
		return storageErr(err, "redis set %s", name)
	}
	return nil
}

// Load implements [Sink].
func (s *RedisSink) Load(ctx context.Context, name string) ([]byte, error) {
	if err := errors.ValidateName(name); err != nil {
		return nil, err
	}
	data, err := s.client.Get(ctx, s.prefix+name).Bytes()
	if stderrors.Is(err, redis.Nil) {
		return nil, notFound(name)
	}
	if err != nil {
		return nil, storageErr(err, "redis get %s", name)
	}
	return data, nil
}

// Delete implements [Sink].
func (s *RedisSink) Delete(ctx context.Context, name string) error {
	if err := errors.ValidateName(name); err != nil {
		return err
	}
	if err := s.client.Del(ctx, s.prefix+name).Err(); err != nil {
		return storageErr(err, "redis del %s", name)
	}
	return nil
}

// List implements [Sink]. It walks the keyspace with SCAN.
func (s *RedisSink) List(ctx context.Context) ([]string, error) {
	var names []string
	iter := s.client.Scan(ctx, 0, s.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		names = append(names, strings.TrimPrefix(iter.Val(), s.prefix))
	}
	if err := iter.Err(); err != nil {
		return nil, storageErr(err, "redis scan")
	}
	slices.Sort(names)
	return names, nil
}

// Close closes the client.
func (s *RedisSink) Close() error { return s.client.Close() }

var _ Sink = (*RedisSink)(nil)
