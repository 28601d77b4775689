package core

import "time"

// RecommendConfig 是推荐相关的配置接口，用于提供默认值。
type RecommendConfig interface {
	// DefaultTopN 返回默认的推荐数量
	DefaultTopN() int

	// DefaultCacheTTL 返回推荐结果缓存的默认过期时间
	DefaultCacheTTL() time.Duration

	// DefaultRemoteTimeout 返回远程推荐源的默认超时时间
	DefaultRemoteTimeout() time.Duration
}

// DefaultRecommendConfig 是默认的推荐配置实现。
type DefaultRecommendConfig struct{}

func (c *DefaultRecommendConfig) DefaultTopN() int {
	return 5
}

func (c *DefaultRecommendConfig) DefaultCacheTTL() time.Duration {
	return 10 * time.Minute
}

func (c *DefaultRecommendConfig) DefaultRemoteTimeout() time.Duration {
	return 2 * time.Second
}
