package recall

import (
	"context"
	"sort"

	"github.com/rushteam/reviewkit/core"
	"github.com/rushteam/reviewkit/pipeline"
	"github.com/rushteam/reviewkit/pkg/utils"
)

// Popularity 是冷启动热度召回源，不读取任何情感数据。
//
// 热度来源（按优先级）：
//   - 相似度矩阵的列合计，只保留与物品 ID 同名的列；Catalog 为空时保留全部列
//   - 上一步为空时，使用 Catalog 中每个物品的记录数
//
// 结果按热度降序，同热度按 ID 升序。输出全部候选，截断交给 rerank.TopNNode。
type Popularity struct{}

func (r *Popularity) Name() string        { return "recall.popularity" }
func (r *Popularity) Kind() pipeline.Kind { return pipeline.KindRecall }

// Process 实现 Node 接口，直接调用 Recall
func (r *Popularity) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

// Recall 实现 Source 接口
func (r *Popularity) Recall(
	_ context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	if rctx == nil {
		return nil, nil
	}

	volume, basis := Volumes(rctx.Catalog, rctx.Index)
	out := make([]*core.Item, 0, len(volume))
	for id, v := range volume {
		it := core.NewItem(id)
		it.Score = v
		it.PutLabel(utils.LabelRecallSource, utils.Label{Value: "popularity", Source: "recall"})
		it.PutLabel("popularity_basis", utils.Label{Value: basis, Source: "recall"})
		out = append(out, it)
	}
	SortByScore(out)
	return out, nil
}

// Volumes 计算每个物品的热度，并返回所用的依据（matrix / records）。
func Volumes(catalog core.ItemCatalog, index core.NeighborIndex) (map[string]float64, string) {
	out := make(map[string]float64)

	if index != nil {
		totals := index.ColumnTotals()
		restrict := catalog != nil && catalog.Len() > 0
		for col, v := range totals {
			if restrict {
				if _, ok := catalog.Get(col); !ok {
					continue
				}
			}
			out[col] = v
		}
		if len(out) > 0 {
			return out, "matrix"
		}
	}

	if catalog != nil {
		for _, id := range catalog.IDs() {
			agg, ok := catalog.Get(id)
			if !ok {
				continue
			}
			out[id] = float64(len(agg.Records))
		}
	}
	return out, "records"
}

// SortByScore 原地排序：Score 降序，同分按 ID 升序。
func SortByScore(items []*core.Item) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].Score != items[j].Score {
			return items[i].Score > items[j].Score
		}
		return items[i].ID < items[j].ID
	})
}
