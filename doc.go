// Package reviewkit 是一个评价聚合与推荐工具包。
//
// 设计要点：
// - 数据先行: 交互表 -> ingest -> aggregate.Store，相似度矩阵 -> similarity.Index，构建完成后只读
// - Pipeline-first: 推荐逻辑通过 Node 串联（Recall → Filter → ReRank）
// - Labels-first: labels 全链路透传，支持 explain / 观测
// - 确定性: 相同输入总是得到相同的有序结果
package reviewkit

import (
	"context"
	"sync"

	"github.com/rushteam/reviewkit/aggregate"
	"github.com/rushteam/reviewkit/core"
	"github.com/rushteam/reviewkit/ingest"
	"github.com/rushteam/reviewkit/pipeline"
	"github.com/rushteam/reviewkit/recommend"
	"github.com/rushteam/reviewkit/similarity"
)

// 轻量 facade：便于用户直接 import "reviewkit" 使用核心抽象。
type Pipeline = pipeline.Pipeline
type Node = pipeline.Node
type Kind = pipeline.Kind

const (
	KindRecall = pipeline.KindRecall
	KindFilter = pipeline.KindFilter
	KindReRank = pipeline.KindReRank
)

// Ingest 解析交互表的行
func Ingest(rows []map[string]string) ([]core.InteractionRecord, error) {
	return ingest.Ingest(rows)
}

// BuildStore 构建物品聚合画像
func BuildStore(records []core.InteractionRecord) *aggregate.Store {
	return aggregate.Build(records)
}

// BuildIndex 构建相似度索引
func BuildIndex(rows []map[string]string) (*similarity.Index, error) {
	return similarity.Build(rows)
}

var defaultEngine = sync.OnceValue(func() *recommend.Engine { return recommend.New() })

// Recommend 使用默认 Pipeline 计算推荐，topN <= 0 时为 5。
func Recommend(ctx context.Context, userID string, store *aggregate.Store, index *similarity.Index, topN int) []string {
	var (
		catalog core.ItemCatalog
		idx     core.NeighborIndex
	)
	if store != nil {
		catalog = store
	}
	if index != nil {
		idx = index
	}
	return defaultEngine().Recommend(ctx, userID, catalog, idx, topN)
}
