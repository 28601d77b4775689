package core

import "github.com/rushteam/reviewkit/pkg/utils"

// RecommendContext 承载一次推荐请求的全部输入，贯穿整个 Pipeline 透传。
//
// Catalog / Index 是本次请求使用的只读快照；Pipeline 中的节点不持有任何进程级可变状态。
type RecommendContext struct {
	UserID string

	// TopN 是期望返回的推荐数量（已应用默认值）
	TopN int

	// Catalog 是物品聚合画像（可为 nil，表示没有评价数据）
	Catalog ItemCatalog

	// Index 是用户相似度矩阵（可为 nil，表示没有矩阵数据）
	Index NeighborIndex

	// Labels 是请求级标签，例如命中的召回层级
	Labels map[string]utils.Label

	// Params 请求级参数，例如 remote 调用的附加字段
	Params map[string]any
}

// PutLabel 写入请求级 Label。
func (rctx *RecommendContext) PutLabel(key string, lbl utils.Label) {
	if rctx.Labels == nil {
		rctx.Labels = make(map[string]utils.Label)
	}
	if old, ok := rctx.Labels[key]; ok {
		rctx.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	rctx.Labels[key] = lbl
}

// GetLabel 获取请求级 Label。
func (rctx *RecommendContext) GetLabel(key string) (utils.Label, bool) {
	if rctx.Labels == nil {
		return utils.Label{}, false
	}
	lbl, ok := rctx.Labels[key]
	return lbl, ok
}
