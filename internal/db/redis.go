package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/lukinoo0/Blazefield/internal/profile"
)

const profileKeyPrefix = "profile:"

// RedisProfileRepository stores each profile as a msgpack blob under profile:<id>
type RedisProfileRepository struct {
	client *redis.Client
}

// OpenRedis connects using a redis:// URL
func OpenRedis(ctx context.Context, url string, log zerolog.Logger) (*RedisProfileRepository, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}

	log.Info().Str("addr", opts.Addr).Msg("Using Redis profile store")
	return NewRedisProfileRepository(client), nil
}

func NewRedisProfileRepository(client *redis.Client) *RedisProfileRepository {
	return &RedisProfileRepository{client: client}
}

func (r *RedisProfileRepository) Get(ctx context.Context, id string) (*profile.Profile, error) {
	data, err := r.client.Get(ctx, profileKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, profile.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var p profile.Profile
	if err := msgpack.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decoding profile %s: %w", id, err)
	}
	return &p, nil
}

func (r *RedisProfileRepository) Save(ctx context.Context, p *profile.Profile) error {
	data, err := msgpack.Marshal(p)
	if err != nil {
		return fmt.Errorf("encoding profile %s: %w", p.ID, err)
	}
	return r.client.Set(ctx, profileKey(p.ID), data, 0).Err()
}

func (r *RedisProfileRepository) Close() error {
	return r.client.Close()
}

func profileKey(id string) string {
	return profileKeyPrefix + id
}
