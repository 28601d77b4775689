package recall

import (
	"context"
	"math"

	"github.com/rushteam/reviewkit/core"
	"github.com/rushteam/reviewkit/pipeline"
	"github.com/rushteam/reviewkit/pkg/utils"
)

// NeighborFavorites 是基于相似度矩阵的召回源（u2u -> u2i）。
//
// 算法流程：
//  1. 从 Index 取目标用户的相似用户（排除自己），按相似度降序
//  2. 每个相似用户贡献一个“最爱物品”：其撰写的记录中 PositiveScore 最高者，
//     同分取摄入顺序最早的一条；PositiveScore 全为 NaN 的用户不贡献物品
//  3. 按相似用户顺序输出，直到凑够 TopN 个不同物品
//
// 重复物品照常输出（带各自的 neighbor label），由 rerank.Dedup 合并；
// 因为按“不同物品数”计数，排在 TopN 之后的相似用户会补上被合并掉的名额。
type NeighborFavorites struct {
	// TopN 为 0 时使用 rctx.TopN
	TopN int
}

func (r *NeighborFavorites) Name() string        { return "recall.matrix" }
func (r *NeighborFavorites) Kind() pipeline.Kind { return pipeline.KindRecall }

// Process 实现 Node 接口，直接调用 Recall
func (r *NeighborFavorites) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

// Recall 实现 Source 接口
func (r *NeighborFavorites) Recall(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	if rctx == nil || rctx.Index == nil || rctx.Catalog == nil || rctx.UserID == "" {
		return nil, nil
	}
	if !rctx.Index.Has(rctx.UserID) {
		return nil, nil
	}

	topN := r.TopN
	if topN <= 0 {
		topN = rctx.TopN
	}

	neighbors := rctx.Index.Neighbors(rctx.UserID, true, 0)
	// topN 来自调用方，可能远大于相似用户数，容量只按 neighbors 估计
	out := make([]*core.Item, 0, min(topN, len(neighbors)))
	distinct := make(map[string]struct{}, min(topN, len(neighbors)))

	for _, nb := range neighbors {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if topN > 0 && len(distinct) >= topN {
			break
		}

		fav, ok := Favorite(rctx.Catalog.RecordsByUser(nb.UserID))
		if !ok {
			continue
		}
		distinct[fav.ItemID] = struct{}{}

		it := core.NewItem(fav.ItemID)
		it.Score = nb.Score
		it.PutLabel(utils.LabelRecallSource, utils.Label{Value: "matrix", Source: "recall"})
		it.PutLabel(utils.LabelNeighbor, utils.Label{Value: nb.UserID, Source: "recall"})
		out = append(out, it)
	}
	return out, nil
}

// Favorite 返回记录中 PositiveScore 最高的一条，同分取 Seq 最小者；NaN 不参与比较。
// records 为空或全部为 NaN 时返回 false。
func Favorite(records []core.InteractionRecord) (core.InteractionRecord, bool) {
	var (
		best  core.InteractionRecord
		found bool
	)
	for _, rec := range records {
		if rec.ItemID == "" || math.IsNaN(rec.PositiveScore) {
			continue
		}
		if !found ||
			rec.PositiveScore > best.PositiveScore ||
			(rec.PositiveScore == best.PositiveScore && rec.Seq < best.Seq) {
			best = rec
			found = true
		}
	}
	return best, found
}
