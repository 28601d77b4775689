package core

import "github.com/rushteam/reviewkit/pkg/utils"

// Item 是推荐链路中的统一承载结构：物品 ID、分数、标签。
// Labels 用于解释（来自哪个召回源、由哪位相似用户带来）；Score 用于排序决策。
type Item struct {
	ID     string
	Score  float64
	Labels map[string]utils.Label
}

func NewItem(id string) *Item {
	return &Item{
		ID:     id,
		Labels: make(map[string]utils.Label),
	}
}

// PutLabel 写入 Label；若已存在同名 key，则按默认 Merge 规则累积。
func (it *Item) PutLabel(key string, lbl utils.Label) {
	if it.Labels == nil {
		it.Labels = make(map[string]utils.Label)
	}
	if old, ok := it.Labels[key]; ok {
		it.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	it.Labels[key] = lbl
}

// Label 读取 Label 的 Value，不存在时返回空串。
func (it *Item) Label(key string) string {
	if it == nil || it.Labels == nil {
		return ""
	}
	return it.Labels[key].Value
}

// MergeDuplicates 按 ID 去重：保留第一次出现的位置，后续重复项的 label 合并到首项上；nil 被丢弃。
func MergeDuplicates(items []*Item) []*Item {
	seen := make(map[string]*Item, len(items))
	out := make([]*Item, 0, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}
		if old, ok := seen[it.ID]; ok {
			for k, v := range it.Labels {
				old.PutLabel(k, v)
			}
			continue
		}
		seen[it.ID] = it
		out = append(out, it)
	}
	return out
}

// ItemIDs 提取物品 ID，保持顺序。
func ItemIDs(items []*Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}
		out = append(out, it.ID)
	}
	return out
}
