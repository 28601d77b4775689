package recall

import (
	"context"

	"github.com/rushteam/reviewkit/core"
)

// Source 表示一个可复用的召回源（相似用户偏好 / 热度 / 远程服务）。
// 召回源只读取 RecommendContext 中的快照，不持有跨请求的可变状态。
type Source interface {
	Name() string
	Recall(ctx context.Context, rctx *core.RecommendContext) ([]*core.Item, error)
}
