package cache

import (
	"context"
	"fmt"
	"time"
)

// CatalogTTL 商品目录缓存时长
const CatalogTTL = 60 * time.Second

const catalogVersionKey = "catalog:version"

// CategoriesKey 分类列表缓存 key
func CategoriesKey(version int64) string {
	return fmt.Sprintf("catalog:v%d:categories", version)
}

// ProductsKey 商品列表缓存 key
func ProductsKey(version int64, categorySlug, search string, page, pageSize int) string {
	return fmt.Sprintf("catalog:v%d:products:%s:%s:%d:%d", version, categorySlug, search, page, pageSize)
}

// ProductKey 商品详情缓存 key
func ProductKey(version int64, id uint) string {
	return fmt.Sprintf("catalog:v%d:product:%d", version, id)
}

// CatalogVersion 读取目录缓存版本号，未启用或读取失败时返回 0
func CatalogVersion(ctx context.Context) int64 {
	if !Enabled() {
		return 0
	}
	version, err := redisClient.Get(ctx, buildKey(catalogVersionKey)).Int64()
	if err != nil {
		return 0
	}
	return version
}

// BumpCatalogVersion 递增目录缓存版本号，使旧 key 自然过期
func BumpCatalogVersion(ctx context.Context) error {
	if !Enabled() {
		return nil
	}
	return redisClient.Incr(ctx, buildKey(catalogVersionKey)).Err()
}
