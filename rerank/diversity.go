package rerank

import (
	"context"

	"github.com/rushteam/reviewkit/core"
	"github.com/rushteam/reviewkit/pipeline"
	"github.com/rushteam/reviewkit/pkg/utils"
)

// Diversity 限制同一 label 值的物品数量，保持原有顺序。
// 默认按 recall_source 限制，例如 fanout 召回时避免热度结果挤占相似用户的推荐。
// 没有该 label 的物品不受限制。
type Diversity struct {
	LabelKey string // 默认 "recall_source"
	Max      int    // 每个值最多保留的数量，默认 1
}

func (n *Diversity) Name() string {
	return "rerank.diversity"
}

func (n *Diversity) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *Diversity) Process(
	_ context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(items) == 0 {
		return items, nil
	}

	key := n.LabelKey
	if key == "" {
		key = utils.LabelRecallSource
	}
	limit := n.Max
	if limit <= 0 {
		limit = 1
	}

	seen := make(map[string]int, 8)
	out := make([]*core.Item, 0, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}
		v := it.Label(key)
		if v == "" {
			out = append(out, it)
			continue
		}
		if seen[v] >= limit {
			continue
		}
		seen[v]++
		out = append(out, it)
	}
	return out, nil
}
