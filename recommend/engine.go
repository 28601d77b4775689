// Package recommend 组装推荐 Pipeline 并对外提供 Recommend。
//
// 默认 Pipeline：
//
//	recall.Tiered{[remote], matrix, popularity} -> rerank.Dedup -> rerank.TopNNode
//
// matrix 层用相似用户的最爱物品；用户不在矩阵中或 matrix 层没有候选时，
// 落到 popularity 层（冷启动）。两层都为空时返回空切片。
package recommend

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/rushteam/reviewkit/core"
	"github.com/rushteam/reviewkit/pipeline"
	"github.com/rushteam/reviewkit/pkg/logging"
	"github.com/rushteam/reviewkit/pkg/metrics"
	"github.com/rushteam/reviewkit/pkg/utils"
	"github.com/rushteam/reviewkit/recall"
	"github.com/rushteam/reviewkit/rerank"
)

// Engine 是无状态的推荐引擎，可并发调用。
type Engine struct {
	pipeline *pipeline.Pipeline
	topN     int
	logger   zerolog.Logger
}

// Option 配置 Engine
type Option func(*options)

type options struct {
	config   core.RecommendConfig
	topN     int
	remote   recall.Source
	pipeline *pipeline.Pipeline
	logger   *zerolog.Logger
}

// WithTopN 设置默认推荐数量（调用时 topN <= 0 使用该值）
func WithTopN(n int) Option {
	return func(o *options) { o.topN = n }
}

// WithConfig 使用 RecommendConfig 提供默认值
func WithConfig(cfg core.RecommendConfig) Option {
	return func(o *options) { o.config = cfg }
}

// WithRemote 把远程推荐源放在本地层级之前；远程失败或为空时回落到本地计算。
// 与 WithPipeline 同时使用时不生效。
func WithRemote(src recall.Source) Option {
	return func(o *options) { o.remote = src }
}

// WithPipeline 使用自定义 Pipeline（例如从 YAML 构建）替换默认 Pipeline
func WithPipeline(p *pipeline.Pipeline) Option {
	return func(o *options) { o.pipeline = p }
}

// WithLogger 设置 logger
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.logger = &l }
}

// New 创建 Engine
func New(opts ...Option) *Engine {
	o := &options{config: &core.DefaultRecommendConfig{}}
	for _, opt := range opts {
		opt(o)
	}

	logger := logging.Component("recommend")
	if o.logger != nil {
		logger = *o.logger
	}

	topN := o.topN
	if topN <= 0 {
		topN = o.config.DefaultTopN()
	}

	p := o.pipeline
	if p == nil {
		p = DefaultPipeline(o.remote, logger)
	}

	return &Engine{pipeline: p, topN: topN, logger: logger}
}

// DefaultPipeline 构建默认 Pipeline，remote 可为 nil。
func DefaultPipeline(remote recall.Source, logger zerolog.Logger) *pipeline.Pipeline {
	sources := make([]recall.Source, 0, 3)
	if remote != nil {
		sources = append(sources, remote)
	}
	sources = append(sources, &recall.NeighborFavorites{}, &recall.Popularity{})

	return &pipeline.Pipeline{
		Nodes: []pipeline.Node{
			&recall.Tiered{Sources: sources, Logger: logger},
			&rerank.Dedup{},
			&rerank.TopNNode{},
		},
	}
}

// MaxTopN 是单次推荐数量的上限，更大的 topN 会被截到该值
const MaxTopN = 1000

// TopN 返回默认推荐数量
func (e *Engine) TopN() int { return e.topN }

// Pipeline 返回引擎使用的 Pipeline
func (e *Engine) Pipeline() *pipeline.Pipeline { return e.pipeline }

// Recommend 返回最多 topN 个物品 ID（topN <= 0 时使用默认值）。
// 对同样的输入总是返回同样的序列；没有候选时返回空切片，不返回错误。
func (e *Engine) Recommend(
	ctx context.Context,
	userID string,
	catalog core.ItemCatalog,
	index core.NeighborIndex,
	topN int,
) []string {
	items, err := e.RecommendItems(ctx, userID, catalog, index, topN)
	if err != nil {
		e.logger.Warn().Err(err).Str("user_id", userID).Msg("recommend failed")
		return []string{}
	}
	return core.ItemIDs(items)
}

// RecommendItems 与 Recommend 相同，但返回带 label 的 Item，用于解释推荐来源。
func (e *Engine) RecommendItems(
	ctx context.Context,
	userID string,
	catalog core.ItemCatalog,
	index core.NeighborIndex,
	topN int,
) ([]*core.Item, error) {
	if topN <= 0 {
		topN = e.topN
	}
	topN = min(topN, MaxTopN)

	rctx := &core.RecommendContext{
		UserID:  userID,
		TopN:    topN,
		Catalog: catalog,
		Index:   index,
	}

	items, err := e.pipeline.Run(ctx, rctx, nil)
	if err != nil {
		return nil, err
	}
	if len(items) > topN {
		items = items[:topN]
	}
	if items == nil {
		items = []*core.Item{}
	}

	path := Path(rctx, items)
	metrics.Recommendations.WithLabelValues(path).Inc()
	e.logger.Debug().
		Str("user_id", userID).
		Str("path", path).
		Int("count", len(items)).
		Msg("recommendation computed")
	return items, nil
}

// Path 返回本次推荐命中的路径：matrix / popularity / remote / empty。
func Path(rctx *core.RecommendContext, items []*core.Item) string {
	if len(items) == 0 {
		return "empty"
	}
	if rctx != nil {
		if lbl, ok := rctx.GetLabel(utils.LabelTier); ok && lbl.Value != "" {
			return strings.TrimPrefix(lbl.Value, "recall.")
		}
	}
	if src := items[0].Label(utils.LabelRecallSource); src != "" {
		return src
	}
	return "custom"
}
