package cache

import (
	"context"
	"errors"
	"strings"

	"github.com/redis/go-redis/v9"
)

// ErrRedisDisabled Redis 未启用
var ErrRedisDisabled = errors.New("redis is not enabled")

// CartStorage 基于 Redis 的购物车槽位
// 一个 key 保存一个购物车的 JSON 数组，不设置过期时间。
type CartStorage struct {
	client *redis.Client
	key    string
}

// NewCartStorage 使用全局客户端创建槽位，key 会自动加上全局前缀
func NewCartStorage(key string) (*CartStorage, error) {
	if !Enabled() {
		return nil, ErrRedisDisabled
	}
	return NewCartStorageWithClient(redisClient, buildKey(key))
}

// NewCartStorageWithClient 使用指定客户端创建槽位，key 原样使用
func NewCartStorageWithClient(client *redis.Client, key string) (*CartStorage, error) {
	if client == nil {
		return nil, ErrRedisDisabled
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, errors.New("cart storage key is empty")
	}
	return &CartStorage{client: client, key: key}, nil
}

// Key 槽位完整 key
func (s *CartStorage) Key() string {
	return s.key
}

// Load 读取槽位，key 不存在时返回 nil, nil
func (s *CartStorage) Load(ctx context.Context) ([]byte, error) {
	val, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return val, nil
}

// Save 覆盖槽位
func (s *CartStorage) Save(ctx context.Context, data []byte) error {
	return s.client.Set(ctx, s.key, data, 0).Err()
}

// Clear 删除槽位
func (s *CartStorage) Clear(ctx context.Context) error {
	return s.client.Del(ctx, s.key).Err()
}
