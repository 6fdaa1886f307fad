package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cafecanastra/conteudo/internal/models"
	"github.com/redis/go-redis/v9"
)

const recentKey = "posts:recent"

// RecentCache is the cache-aside layer for the recent-posts projection.
type RecentCache interface {
	GetRecent(ctx context.Context, limit int) ([]models.PostSummary, bool)
	SetRecent(ctx context.Context, limit int, posts []models.PostSummary, ttl time.Duration)
	InvalidateRecent(ctx context.Context)
	Close() error
}

// RedisClient implements RecentCache on top of go-redis. Cache failures are
// logged by callers and never surface to consumers; the store is the source
// of truth.
type RedisClient struct {
	client *redis.Client
	prefix string
}

func NewRedisClient(redisURL string) (*RedisClient, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisClient{
		client: client,
		prefix: "blog:",
	}, nil
}

func (r *RedisClient) Close() error {
	return r.client.Close()
}

func (r *RedisClient) key(limit int) string {
	return fmt.Sprintf("%s%s:%d", r.prefix, recentKey, limit)
}

func (r *RedisClient) GetRecent(ctx context.Context, limit int) ([]models.PostSummary, bool) {
	data, err := r.client.Get(ctx, r.key(limit)).Bytes()
	if err != nil {
		return nil, false
	}
	var posts []models.PostSummary
	if err := json.Unmarshal(data, &posts); err != nil {
		return nil, false
	}
	return posts, true
}

func (r *RedisClient) SetRecent(ctx context.Context, limit int, posts []models.PostSummary, ttl time.Duration) {
	data, err := json.Marshal(posts)
	if err != nil {
		return
	}
	r.client.Set(ctx, r.key(limit), data, ttl)
}

// InvalidateRecent drops every cached recent-posts projection, regardless of
// the limit it was cached under.
func (r *RedisClient) InvalidateRecent(ctx context.Context) {
	iter := r.client.Scan(ctx, 0, r.prefix+recentKey+":*", 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if iter.Err() == nil && len(keys) > 0 {
		r.client.Del(ctx, keys...)
	}
}
