package filter

import (
	"context"

	"github.com/rushteam/reviewkit/core"
)

// KnownItemFilter 过滤掉 Catalog 中不存在的物品（例如远程服务返回的未知 ID）。
// Catalog 为空时不过滤。
type KnownItemFilter struct{}

func (f *KnownItemFilter) Name() string {
	return "filter.known"
}

func (f *KnownItemFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil {
		return true, nil
	}
	if rctx == nil || rctx.Catalog == nil || rctx.Catalog.Len() == 0 {
		return false, nil
	}
	_, ok := rctx.Catalog.Get(item.ID)
	return !ok, nil
}
