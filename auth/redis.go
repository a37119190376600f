package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore 把 users 文档存放在单个 Redis key 中，对应旧版 worker 的 KV 命名空间。
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore 通过 redis:// 或 rediss:// URL 创建存储；dsn 为空时连接 localhost:6379。
func NewRedisStore(dsn string) (*RedisStore, error) {
	dsn = strings.TrimSpace(dsn)
	opts := &redis.Options{Addr: "localhost:6379"}
	if dsn != "" {
		parsed, err := redis.ParseURL(dsn)
		if err != nil {
			return nil, fmt.Errorf("invalid redis dsn: %w", err)
		}
		opts = parsed
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second
	return NewRedisStoreWithClient(redis.NewClient(opts), UsersKey), nil
}

// NewRedisStoreWithClient 复用已有的 client，key 为空时使用 UsersKey。
func NewRedisStoreWithClient(client *redis.Client, key string) *RedisStore {
	if strings.TrimSpace(key) == "" {
		key = UsersKey
	}
	return &RedisStore{client: client, key: key}
}

func (s *RedisStore) Load(ctx context.Context) (Users, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Users{}, nil
		}
		return nil, fmt.Errorf("failed to read users from redis: %w", err)
	}
	return DecodeUsers(data)
}

func (s *RedisStore) Save(ctx context.Context, users Users) error {
	data, err := EncodeUsers(users)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to write users to redis: %w", err)
	}
	return nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to ping redis: %w", err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}
