package filter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rushteam/reviewkit/core"
)

// BlacklistFilter 是黑名单过滤器，过滤掉黑名单中的物品。
// 黑名单来自内存列表，以及可选的 Store 中以 JSON 数组保存的 key。
type BlacklistFilter struct {
	// ItemIDs 是内存中的黑名单物品 ID 列表
	ItemIDs []string

	// Store 用于从存储中读取黑名单（可选）
	Store core.Store

	// Key 是 Store 中的黑名单 key（可选），值为 ["id1","id2"]
	Key string
}

// NewBlacklistFilter 创建一个黑名单过滤器。
func NewBlacklistFilter(itemIDs []string, store core.Store, key string) *BlacklistFilter {
	return &BlacklistFilter{
		ItemIDs: itemIDs,
		Store:   store,
		Key:     key,
	}
}

func (f *BlacklistFilter) Name() string {
	return "filter.blacklist"
}

func (f *BlacklistFilter) ShouldFilter(
	ctx context.Context,
	_ *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil {
		return true, nil
	}

	for _, id := range f.ItemIDs {
		if item.ID == id {
			return true, nil
		}
	}

	if f.Store == nil || f.Key == "" {
		return false, nil
	}
	data, err := f.Store.Get(ctx, f.Key)
	if err != nil {
		if core.IsStoreNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("load blacklist: %w", err)
	}
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return false, fmt.Errorf("decode blacklist: %w", err)
	}
	for _, id := range ids {
		if item.ID == id {
			return true, nil
		}
	}
	return false, nil
}
