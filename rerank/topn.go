package rerank

import (
	"context"

	"github.com/rushteam/reviewkit/core"
	"github.com/rushteam/reviewkit/pipeline"
)

// TopNNode 是一个 Top-N 截断节点，通常放在 Pipeline 的最后。
//
// 示例：
//
//	pipeline := &pipeline.Pipeline{
//	    Nodes: []pipeline.Node{
//	        &recall.Tiered{...},      // 召回
//	        &rerank.Dedup{},          // 去重
//	        &rerank.TopNNode{},       // 截取 rctx.TopN 个
//	    },
//	}
type TopNNode struct {
	// N 要保留的物品数量。
	// N <= 0 时使用 rctx.TopN；两者都 <= 0 时不截断。
	N int
}

func (n *TopNNode) Name() string {
	return "rerank.topn"
}

func (n *TopNNode) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *TopNNode) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	limit := n.N
	if limit <= 0 && rctx != nil {
		limit = rctx.TopN
	}
	if limit <= 0 || len(items) <= limit {
		return items, nil
	}
	return items[:limit], nil
}
