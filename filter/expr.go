package filter

import (
	"context"

	"github.com/rushteam/reviewkit/core"
	"github.com/rushteam/reviewkit/pkg/dsl"
)

// ExprFilter 使用 CEL 表达式对物品的聚合画像求值，表达式为 true 时过滤。
//
// 示例：
//
//	f, _ := filter.NewExprFilter(`item.avg_negative > 0.8`)
//
// 物品不在 Catalog 中时保留（没有画像可供判断）。
type ExprFilter struct {
	pred *dsl.Predicate
}

// NewExprFilter 编译表达式
func NewExprFilter(expr string) (*ExprFilter, error) {
	pred, err := dsl.Compile(expr)
	if err != nil {
		return nil, err
	}
	return &ExprFilter{pred: pred}, nil
}

func (f *ExprFilter) Name() string {
	return "filter.expr"
}

// Expr 返回原始表达式
func (f *ExprFilter) Expr() string {
	return f.pred.String()
}

func (f *ExprFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil {
		return true, nil
	}
	if f.pred.String() == "" || rctx == nil || rctx.Catalog == nil {
		return false, nil
	}
	agg, ok := rctx.Catalog.Get(item.ID)
	if !ok {
		return false, nil
	}
	return f.pred.Match(agg)
}
