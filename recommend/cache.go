package recommend

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/rushteam/reviewkit/core"
	"github.com/rushteam/reviewkit/pkg/metrics"
)

// CachedRecommender 把 Engine 的结果缓存到 core.Store（内存或 Redis）。
//
// key 包含快照代数，新快照发布后旧结果自然失效（由 TTL 回收）。
// 缓存读写失败只记录日志，退化为直接计算。
type CachedRecommender struct {
	Engine *Engine
	Store  core.Store
	TTL    time.Duration
	Prefix string
	Logger zerolog.Logger
}

// NewCachedRecommender 创建带缓存的推荐器，ttl <= 0 时使用 RecommendConfig 的默认值。
func NewCachedRecommender(engine *Engine, store core.Store, ttl time.Duration, logger zerolog.Logger) *CachedRecommender {
	if ttl <= 0 {
		ttl = (&core.DefaultRecommendConfig{}).DefaultCacheTTL()
	}
	return &CachedRecommender{
		Engine: engine,
		Store:  store,
		TTL:    ttl,
		Prefix: "rec",
		Logger: logger,
	}
}

// CacheKey 返回缓存 key：{prefix}:{generation}:{topN}:{userID}
func (c *CachedRecommender) CacheKey(generation uint64, userID string, topN int) string {
	return fmt.Sprintf("%s:%d:%d:%s", c.Prefix, generation, topN, userID)
}

// Recommend 先查缓存，未命中时调用 Engine 计算并回写。
func (c *CachedRecommender) Recommend(
	ctx context.Context,
	generation uint64,
	userID string,
	catalog core.ItemCatalog,
	index core.NeighborIndex,
	topN int,
) []string {
	if topN <= 0 {
		topN = c.Engine.TopN()
	}
	if c.Store == nil {
		return c.Engine.Recommend(ctx, userID, catalog, index, topN)
	}

	key := c.CacheKey(generation, userID, topN)
	if ids, ok := c.lookup(ctx, key); ok {
		return ids
	}

	ids := c.Engine.Recommend(ctx, userID, catalog, index, topN)
	c.store(ctx, key, ids)
	return ids
}

func (c *CachedRecommender) lookup(ctx context.Context, key string) ([]string, bool) {
	data, err := c.Store.Get(ctx, key)
	if err != nil {
		if core.IsStoreNotFound(err) {
			metrics.CacheLookups.WithLabelValues("miss").Inc()
		} else {
			metrics.CacheLookups.WithLabelValues("error").Inc()
			c.Logger.Warn().Err(err).Str("key", key).Str("store", c.Store.Name()).Msg("recommendation cache read failed")
		}
		return nil, false
	}

	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		metrics.CacheLookups.WithLabelValues("error").Inc()
		c.Logger.Warn().Err(err).Str("key", key).Msg("recommendation cache entry corrupted")
		return nil, false
	}
	metrics.CacheLookups.WithLabelValues("hit").Inc()
	if ids == nil {
		ids = []string{}
	}
	return ids, true
}

func (c *CachedRecommender) store(ctx context.Context, key string, ids []string) {
	data, err := json.Marshal(ids)
	if err != nil {
		return
	}
	if err := c.Store.Set(ctx, key, data, c.TTL); err != nil {
		c.Logger.Warn().Err(err).Str("key", key).Str("store", c.Store.Name()).Msg("recommendation cache write failed")
	}
}
