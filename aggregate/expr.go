package aggregate

import (
	"fmt"

	"github.com/rushteam/reviewkit/pkg/dsl"
)

// FilterByExpr 用 CEL 表达式筛选物品，结果保持 Store 的稳定顺序。
// 语法见 dsl.Predicate。
func (s *Store) FilterByExpr(expr string) ([]string, error) {
	pred, err := dsl.Compile(expr)
	if err != nil {
		return nil, err
	}

	out := make([]string, 0)
	for _, id := range s.IDs() {
		ok, err := pred.Match(s.items[id])
		if err != nil {
			return nil, fmt.Errorf("item %s: %w", id, err)
		}
		if ok {
			out = append(out, id)
		}
	}
	return out, nil
}
