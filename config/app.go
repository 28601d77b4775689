package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix 是环境变量前缀，例如 REVIEWKIT_DATA_INTERACTIONS
const EnvPrefix = "REVIEWKIT_"

// App 是 reviewkit 的应用配置
type App struct {
	Data      DataConfig      `koanf:"data"`
	Recommend RecommendConfig `koanf:"recommend"`
	Cache     CacheConfig     `koanf:"cache"`
	Remote    RemoteConfig    `koanf:"remote"`
	Server    ServerConfig    `koanf:"server"`
	Log       LogConfig       `koanf:"log"`
}

// DataConfig 描述两份输入数据的位置（http(s) URL 或本地路径）
type DataConfig struct {
	Interactions string        `koanf:"interactions"`
	Matrix       string        `koanf:"matrix"`
	FetchTimeout time.Duration `koanf:"fetch_timeout"`

	// Refresh 大于 0 时 serve 按此间隔重新加载数据并发布新快照
	Refresh time.Duration `koanf:"refresh"`
}

// RecommendConfig 推荐相关配置
type RecommendConfig struct {
	TopN int `koanf:"top_n"`

	// Pipeline 可选的 Pipeline YAML 路径，为空时使用内置的 tiered -> dedup -> topn
	Pipeline string `koanf:"pipeline"`
}

// CacheConfig 推荐结果缓存
type CacheConfig struct {
	// Backend: none / memory / redis
	Backend  string        `koanf:"backend"`
	Addr     string        `koanf:"addr"`
	Password string        `koanf:"password"`
	DB       int           `koanf:"db"`
	TTL      time.Duration `koanf:"ttl"`
}

// RemoteConfig 远程推荐服务，Endpoint 为空表示不启用
type RemoteConfig struct {
	Endpoint    string        `koanf:"endpoint"`
	Timeout     time.Duration `koanf:"timeout"`
	MaxFailures uint32        `koanf:"max_failures"`
	OpenTimeout time.Duration `koanf:"open_timeout"`
}

// ServerConfig HTTP 服务配置
type ServerConfig struct {
	Addr            string        `koanf:"addr"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// Default 返回默认配置
func Default() *App {
	return &App{
		Data: DataConfig{
			FetchTimeout: 30 * time.Second,
		},
		Recommend: RecommendConfig{
			TopN: 5,
		},
		Cache: CacheConfig{
			Backend: "memory",
			Addr:    "localhost:6379",
			TTL:     10 * time.Minute,
		},
		Remote: RemoteConfig{
			Timeout:     2 * time.Second,
			MaxFailures: 5,
			OpenTimeout: 30 * time.Second,
		},
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load 按 默认值 -> YAML 文件（path 非空时） -> REVIEWKIT_* 环境变量 的顺序加载配置，后者覆盖前者。
func Load(path string) (*App, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("load environment variables: %w", err)
	}

	cfg := &App{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// envKeys 把环境变量（去掉前缀、小写后）映射到配置路径。
// 字段名本身含下划线，无法按 "_" 机械拆分，所以显式列出。
var envKeys = map[string]string{
	"data_interactions":       "data.interactions",
	"data_matrix":             "data.matrix",
	"data_fetch_timeout":      "data.fetch_timeout",
	"data_refresh":            "data.refresh",
	"recommend_top_n":         "recommend.top_n",
	"recommend_pipeline":      "recommend.pipeline",
	"cache_backend":           "cache.backend",
	"cache_addr":              "cache.addr",
	"cache_password":          "cache.password",
	"cache_db":                "cache.db",
	"cache_ttl":               "cache.ttl",
	"remote_endpoint":         "remote.endpoint",
	"remote_timeout":          "remote.timeout",
	"remote_max_failures":     "remote.max_failures",
	"remote_open_timeout":     "remote.open_timeout",
	"server_addr":             "server.addr",
	"server_read_timeout":     "server.read_timeout",
	"server_write_timeout":    "server.write_timeout",
	"server_shutdown_timeout": "server.shutdown_timeout",
	"log_level":               "log.level",
	"log_format":              "log.format",
}

// envTransform 返回空串时该变量被忽略
func envTransform(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	return envKeys[key]
}

// Validate 校验配置
func (c *App) Validate() error {
	var errs []error
	if c.Recommend.TopN <= 0 {
		errs = append(errs, fmt.Errorf("recommend.top_n must be positive, got %d", c.Recommend.TopN))
	}
	switch c.Cache.Backend {
	case "", "none", "memory":
	case "redis":
		if c.Cache.Addr == "" {
			errs = append(errs, errors.New("cache.addr is required for redis backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown cache.backend %q", c.Cache.Backend))
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("unknown log.format %q", c.Log.Format))
	}
	if c.Data.Refresh < 0 {
		errs = append(errs, errors.New("data.refresh must not be negative"))
	}
	return errors.Join(errs...)
}
