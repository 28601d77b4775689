// Package similarity 解析预先计算好的用户相似度矩阵，并提供确定性的近邻查询。
package similarity

import (
	"math"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/rushteam/reviewkit/core"
	"github.com/rushteam/reviewkit/pkg/conv"
	"github.com/rushteam/reviewkit/pkg/logging"
	"github.com/rushteam/reviewkit/pkg/metrics"
)

// ColUserID 是矩阵的主键列
const ColUserID = "USER_ID"

// Row 是一个用户到其他用户（或物品列）的分数，值可能为 NaN。
type Row map[string]float64

// Index 是只读的相似度矩阵，实现 core.NeighborIndex。
type Index struct {
	rows   map[string]Row
	users  []string
	totals map[string]float64
}

var _ core.NeighborIndex = (*Index)(nil)

// Builder 构建 Index，Logger 用于记录被跳过的行。
type Builder struct {
	Logger zerolog.Logger
}

// Build 使用全局 logger 构建 Index。
func Build(rows []map[string]string) (*Index, error) {
	return (&Builder{Logger: logging.Component("similarity")}).Build(rows)
}

// Build 解析矩阵：移除 USER_ID 列，其余单元格解析为 float（无法解析为 NaN）。
// 缺少 USER_ID 的行被跳过；同一用户出现多行时后出现的行覆盖前者。
// rows 为 nil 表示整批不可用，返回 MalformedInputError；空切片得到空 Index。
func (b *Builder) Build(rows []map[string]string) (*Index, error) {
	if rows == nil {
		return nil, core.NewMalformedInputError(core.ModuleSimilarity, "similarity: batch is nil")
	}

	idx := &Index{
		rows:   make(map[string]Row, len(rows)),
		totals: make(map[string]float64),
	}

	for i, raw := range rows {
		userID, keyCol := lookupUser(raw)
		if userID == "" {
			metrics.SimilarityRejected.Inc()
			b.Logger.Warn().
				Int("row", i).
				Str("reason", "missing USER_ID").
				Msg("skip malformed matrix row")
			continue
		}
		if _, dup := idx.rows[userID]; dup {
			b.Logger.Warn().
				Int("row", i).
				Str("user_id", userID).
				Msg("duplicate matrix row, replacing previous one")
		}

		// 按原始列名升序处理；去除空白后同名的列保留第一个
		row := make(Row, len(raw))
		for _, rawCol := range conv.SortedKeys(raw) {
			if rawCol == keyCol {
				continue
			}
			col := strings.TrimSpace(rawCol)
			if col == "" {
				continue
			}
			if _, dup := row[col]; dup {
				b.Logger.Warn().
					Int("row", i).
					Str("user_id", userID).
					Str("column", rawCol).
					Msg("duplicate matrix column, keeping the first one")
				continue
			}
			row[col] = conv.ParseScore(raw[rawCol])
		}
		idx.rows[userID] = row
	}

	idx.users = make([]string, 0, len(idx.rows))
	for u := range idx.rows {
		idx.users = append(idx.users, u)
	}
	sort.Strings(idx.users)

	// 按用户顺序累加，浮点合计与 map 遍历顺序无关
	for _, u := range idx.users {
		for col, v := range idx.rows[u] {
			if math.IsNaN(v) {
				continue
			}
			idx.totals[col] += v
		}
	}
	return idx, nil
}

// lookupUser 返回用户 ID 与其所在的原始列名
func lookupUser(raw map[string]string) (string, string) {
	if v, ok := raw[ColUserID]; ok {
		return strings.TrimSpace(v), ColUserID
	}
	for _, k := range conv.SortedKeys(raw) {
		if conv.NormalizeKey(k) == ColUserID {
			return strings.TrimSpace(raw[k]), k
		}
	}
	return "", ""
}

// Has 报告矩阵中是否有该用户的行
func (idx *Index) Has(userID string) bool {
	if idx == nil {
		return false
	}
	_, ok := idx.rows[userID]
	return ok
}

// Row 返回用户的行（只读，调用方不应修改）
func (idx *Index) Row(userID string) (Row, bool) {
	if idx == nil {
		return nil, false
	}
	row, ok := idx.rows[userID]
	return row, ok
}

// Users 返回矩阵中的用户（升序）
func (idx *Index) Users() []string {
	if idx == nil {
		return nil
	}
	out := make([]string, len(idx.users))
	copy(out, idx.users)
	return out
}

// Len 返回行数
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.rows)
}

// Neighbors 返回用户的相似用户：分数降序，同分按 ID 升序，NaN 排在最后。
// 用户没有行时返回空切片；topN <= 0 表示不截断。
func (idx *Index) Neighbors(userID string, excludeSelf bool, topN int) []core.Neighbor {
	row, ok := idx.Row(userID)
	if !ok {
		return []core.Neighbor{}
	}

	out := make([]core.Neighbor, 0, len(row))
	for other, score := range row {
		if excludeSelf && other == userID {
			continue
		}
		out = append(out, core.Neighbor{UserID: other, Score: score})
	}
	SortNeighbors(out)

	if topN > 0 && len(out) > topN {
		out = out[:topN]
	}
	return out
}

// SortNeighbors 原地排序：分数降序，同分按 ID 升序，NaN 最后（NaN 之间按 ID 升序）。
func SortNeighbors(ns []core.Neighbor) {
	sort.Slice(ns, func(i, j int) bool {
		a, b := ns[i], ns[j]
		aNaN, bNaN := math.IsNaN(a.Score), math.IsNaN(b.Score)
		switch {
		case aNaN && bNaN:
			return a.UserID < b.UserID
		case aNaN:
			return false
		case bNaN:
			return true
		case a.Score != b.Score:
			return a.Score > b.Score
		default:
			return a.UserID < b.UserID
		}
	})
}

// ColumnTotals 返回每一列在所有行上的合计（跳过 NaN）；全部为 NaN 的列不出现。
func (idx *Index) ColumnTotals() map[string]float64 {
	if idx == nil {
		return map[string]float64{}
	}
	out := make(map[string]float64, len(idx.totals))
	for k, v := range idx.totals {
		out[k] = v
	}
	return out
}
