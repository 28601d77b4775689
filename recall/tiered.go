package recall

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/rushteam/reviewkit/core"
	"github.com/rushteam/reviewkit/pipeline"
	"github.com/rushteam/reviewkit/pkg/utils"
)

// Tiered 是一个 Recall Node：按优先级依次执行召回源，返回第一个非空结果。
//
// 与并发 fan-out 不同，分层召回的后续层级只在前面的层级没有候选时才执行，
// 例如 remote -> matrix -> popularity。某一层出错时记录日志并继续下一层。
// 命中的层级写入 rctx 的 tier label。
type Tiered struct {
	Sources []Source

	// Timeout 每个召回源的超时时间（0 表示不限制）
	Timeout time.Duration

	Logger zerolog.Logger
}

func (n *Tiered) Name() string        { return "recall.tiered" }
func (n *Tiered) Kind() pipeline.Kind { return pipeline.KindRecall }

func (n *Tiered) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	for _, src := range n.Sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		items, err := n.recall(ctx, rctx, src)
		if err != nil {
			n.Logger.Warn().Err(err).Str("source", src.Name()).Msg("recall source failed, trying next tier")
			continue
		}
		if len(items) == 0 {
			continue
		}

		if rctx != nil {
			rctx.PutLabel(utils.LabelTier, utils.Label{Value: src.Name(), Source: "recall"})
		}
		return items, nil
	}
	return []*core.Item{}, nil
}

func (n *Tiered) recall(ctx context.Context, rctx *core.RecommendContext, src Source) ([]*core.Item, error) {
	if n.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.Timeout)
		defer cancel()
	}
	return src.Recall(ctx, rctx)
}
