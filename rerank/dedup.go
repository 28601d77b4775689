package rerank

import (
	"context"

	"github.com/rushteam/reviewkit/core"
	"github.com/rushteam/reviewkit/pipeline"
)

// Dedup 按 ID 去重，保留第一次出现的位置，后续重复项的 label 合并到首项上。
type Dedup struct{}

func (n *Dedup) Name() string {
	return "rerank.dedup"
}

func (n *Dedup) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *Dedup) Process(
	_ context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	return core.MergeDuplicates(items), nil
}
