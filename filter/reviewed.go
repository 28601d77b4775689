package filter

import (
	"context"

	"github.com/rushteam/reviewkit/core"
)

// ReviewedFilter 过滤掉目标用户已经评价过的物品。
// 评价历史来自 Catalog.RecordsByUser，用户没有记录时不过滤。
type ReviewedFilter struct{}

func (f *ReviewedFilter) Name() string {
	return "filter.reviewed"
}

func (f *ReviewedFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil {
		return true, nil
	}
	if rctx == nil || rctx.Catalog == nil || rctx.UserID == "" {
		return false, nil
	}
	for _, rec := range rctx.Catalog.RecordsByUser(rctx.UserID) {
		if rec.ItemID == item.ID {
			return true, nil
		}
	}
	return false, nil
}
