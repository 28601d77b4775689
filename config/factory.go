// Package config 负责两类配置：
//   - Pipeline 的 Node 工厂（DefaultFactory / NewFactory），配合 pipeline.LoadFromYAML 使用
//   - 应用配置（Load），由 koanf 按 默认值 -> YAML 文件 -> 环境变量 分层加载
package config

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/rushteam/reviewkit/core"
	"github.com/rushteam/reviewkit/filter"
	"github.com/rushteam/reviewkit/pipeline"
	"github.com/rushteam/reviewkit/pkg/conv"
	"github.com/rushteam/reviewkit/pkg/logging"
	"github.com/rushteam/reviewkit/recall"
	"github.com/rushteam/reviewkit/rerank"
)

// Deps 是构建 Node 时可注入的依赖
type Deps struct {
	// Store 供 filter.blacklist 读取 Store 中的黑名单（可选）
	Store core.Store

	Logger zerolog.Logger
}

// DefaultFactory 返回一个包含所有内置 Node 的默认工厂。
func DefaultFactory() *pipeline.NodeFactory {
	return NewFactory(Deps{Logger: logging.Component("pipeline")})
}

// NewFactory 使用给定依赖创建工厂。
//
// 支持的 Node 类型：
//   - recall.tiered: sources 为 [{type: remote|matrix|popularity, ...}]，按顺序取第一个非空结果
//   - recall.fanout: 同样的 sources，并发执行后按 merge_strategy（first / union）合并
//   - recall.matrix / recall.popularity: 单独使用某个召回源
//   - filter: filters 为 [{type: known|reviewed|blacklist|expr, ...}]
//   - rerank.dedup / rerank.topn / rerank.diversity
func NewFactory(deps Deps) *pipeline.NodeFactory {
	factory := pipeline.NewNodeFactory()

	// 注册 Recall Nodes
	factory.Register("recall.tiered", func(cfg map[string]interface{}) (pipeline.Node, error) {
		return buildTieredNode(deps, cfg)
	})
	factory.Register("recall.fanout", func(cfg map[string]interface{}) (pipeline.Node, error) {
		return buildFanoutNode(deps, cfg)
	})
	factory.Register("recall.matrix", buildMatrixNode)
	factory.Register("recall.popularity", buildPopularityNode)

	// 注册 Filter Nodes
	factory.Register("filter", func(cfg map[string]interface{}) (pipeline.Node, error) {
		return buildFilterNode(deps, cfg)
	})

	// 注册 ReRank Nodes
	factory.Register("rerank.dedup", buildDedupNode)
	factory.Register("rerank.topn", buildTopNNode)
	factory.Register("rerank.diversity", buildDiversityNode)

	return factory
}

// ValidatePipelineConfig 校验 pipeline 配置中所有 node 类型均已在 factory 注册。
func ValidatePipelineConfig(cfg *pipeline.Config, factory *pipeline.NodeFactory) error {
	if cfg == nil {
		return nil
	}
	if len(cfg.Pipeline.Nodes) == 0 {
		return fmt.Errorf("pipeline %q has no nodes", cfg.Pipeline.Name)
	}
	supported := make(map[string]struct{})
	for _, t := range factory.Types() {
		supported[t] = struct{}{}
	}
	for i, nc := range cfg.Pipeline.Nodes {
		if _, ok := supported[nc.Type]; !ok {
			return fmt.Errorf("node %d: unsupported node type %q (supported: %v)", i, nc.Type, factory.Types())
		}
	}
	return nil
}

func buildTieredNode(deps Deps, cfg map[string]interface{}) (pipeline.Node, error) {
	sources, err := buildSources(deps, cfg)
	if err != nil {
		return nil, fmt.Errorf("recall.tiered: %w", err)
	}
	return &recall.Tiered{
		Sources: sources,
		Timeout: conv.ConfigGetDuration(cfg, "timeout", 0),
		Logger:  deps.Logger,
	}, nil
}

func buildFanoutNode(deps Deps, cfg map[string]interface{}) (pipeline.Node, error) {
	sources, err := buildSources(deps, cfg)
	if err != nil {
		return nil, fmt.Errorf("recall.fanout: %w", err)
	}
	strategy := conv.ConfigGet[string](cfg, "merge_strategy", "first")
	if strategy != "first" && strategy != "union" {
		return nil, fmt.Errorf("recall.fanout: unknown merge_strategy %q", strategy)
	}
	return &recall.Fanout{
		Sources:       sources,
		Timeout:       conv.ConfigGetDuration(cfg, "timeout", 0),
		MaxConcurrent: conv.ConfigGetInt(cfg, "max_concurrent", 0),
		MergeStrategy: strategy,
		Logger:        deps.Logger,
	}, nil
}

// buildSources 解析 sources: [{type: remote|matrix|popularity, ...}]
func buildSources(deps Deps, cfg map[string]interface{}) ([]recall.Source, error) {
	sourcesConfig, ok := cfg["sources"].([]interface{})
	if !ok {
		return nil, fmt.Errorf("sources not found or invalid")
	}

	sources := make([]recall.Source, 0, len(sourcesConfig))
	for _, sc := range sourcesConfig {
		sourceMap, ok := sc.(map[string]interface{})
		if !ok {
			continue
		}
		sourceType := conv.ConfigGet[string](sourceMap, "type", "")
		switch sourceType {
		case "matrix":
			sources = append(sources, &recall.NeighborFavorites{TopN: conv.ConfigGetInt(sourceMap, "top_n", 0)})
		case "popularity":
			sources = append(sources, &recall.Popularity{})
		case "remote":
			endpoint := conv.ConfigGet[string](sourceMap, "endpoint", "")
			if endpoint == "" {
				return nil, fmt.Errorf("remote source: endpoint not found")
			}
			sources = append(sources, recall.NewRemote(recall.RemoteConfig{
				Endpoint:    endpoint,
				Timeout:     conv.ConfigGetDuration(sourceMap, "timeout", 0),
				MaxFailures: uint32(conv.ConfigGetInt(sourceMap, "max_failures", 0)),
				OpenTimeout: conv.ConfigGetDuration(sourceMap, "open_timeout", 0),
				Logger:      deps.Logger,
			}))
		default:
			return nil, fmt.Errorf("unknown source type: %s", sourceType)
		}
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("no sources")
	}
	return sources, nil
}

func buildMatrixNode(cfg map[string]interface{}) (pipeline.Node, error) {
	return &recall.NeighborFavorites{TopN: conv.ConfigGetInt(cfg, "top_n", 0)}, nil
}

func buildPopularityNode(map[string]interface{}) (pipeline.Node, error) {
	return &recall.Popularity{}, nil
}

func buildFilterNode(deps Deps, cfg map[string]interface{}) (pipeline.Node, error) {
	filtersConfig, ok := cfg["filters"].([]interface{})
	if !ok {
		return nil, fmt.Errorf("filters not found or invalid")
	}

	filters := make([]filter.Filter, 0, len(filtersConfig))
	for _, fc := range filtersConfig {
		filterMap, ok := fc.(map[string]interface{})
		if !ok {
			continue
		}
		filterType := conv.ConfigGet[string](filterMap, "type", "")
		switch filterType {
		case "known":
			filters = append(filters, &filter.KnownItemFilter{})

		case "reviewed":
			filters = append(filters, &filter.ReviewedFilter{})

		case "blacklist":
			ids := conv.ConfigGetStrings(filterMap, "item_ids")
			key := conv.ConfigGet[string](filterMap, "key", "")
			filters = append(filters, filter.NewBlacklistFilter(ids, deps.Store, key))

		case "expr":
			f, err := filter.NewExprFilter(conv.ConfigGet[string](filterMap, "expr", ""))
			if err != nil {
				return nil, fmt.Errorf("expr filter: %w", err)
			}
			filters = append(filters, f)

		default:
			return nil, fmt.Errorf("unknown filter type: %s", filterType)
		}
	}

	return &filter.FilterNode{Filters: filters, Logger: deps.Logger}, nil
}

func buildDedupNode(map[string]interface{}) (pipeline.Node, error) {
	return &rerank.Dedup{}, nil
}

func buildTopNNode(cfg map[string]interface{}) (pipeline.Node, error) {
	return &rerank.TopNNode{N: conv.ConfigGetInt(cfg, "n", 0)}, nil
}

func buildDiversityNode(cfg map[string]interface{}) (pipeline.Node, error) {
	return &rerank.Diversity{
		LabelKey: conv.ConfigGet[string](cfg, "label_key", ""),
		Max:      conv.ConfigGetInt(cfg, "max", 0),
	}, nil
}
