// Package aggregate 把交互记录折叠为每个物品一份的聚合画像（core.ItemAggregate）。
//
// Store 由 Build 一次性构建后只读，可被多个 goroutine 并发查询。
// 物品顺序为首次出现顺序，所有列表查询都保持该顺序，保证输出可复现。
package aggregate

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/rushteam/reviewkit/core"
)

// Store 是物品聚合画像的只读集合，实现 core.ItemCatalog。
type Store struct {
	order  []string
	items  map[string]*core.ItemAggregate
	byUser map[string][]core.InteractionRecord
}

var _ core.ItemCatalog = (*Store)(nil)

// Build 按 ItemID 分组构建聚合画像。ItemID 为空的记录被忽略（ingest 已过滤，这里只做兜底）。
func Build(records []core.InteractionRecord) *Store {
	s := &Store{
		items:  make(map[string]*core.ItemAggregate),
		byUser: make(map[string][]core.InteractionRecord),
	}

	type keywordSets struct {
		pos map[string]struct{}
		neg map[string]struct{}
	}
	seen := make(map[string]*keywordSets)

	for _, rec := range records {
		if rec.ItemID == "" {
			continue
		}
		agg, ok := s.items[rec.ItemID]
		if !ok {
			agg = &core.ItemAggregate{
				ItemID:          rec.ItemID,
				SentimentCounts: newCounts(),
			}
			s.items[rec.ItemID] = agg
			s.order = append(s.order, rec.ItemID)
			seen[rec.ItemID] = &keywordSets{
				pos: make(map[string]struct{}),
				neg: make(map[string]struct{}),
			}
		}

		agg.Records = append(agg.Records, rec)
		kw := seen[rec.ItemID]
		agg.PositiveKeywords = union(agg.PositiveKeywords, kw.pos, rec.PositiveKeywords)
		agg.NegativeKeywords = union(agg.NegativeKeywords, kw.neg, rec.NegativeKeywords)
		if rec.Event.Known() {
			agg.SentimentCounts[rec.Event]++
		}

		if rec.UserID != "" {
			s.byUser[rec.UserID] = append(s.byUser[rec.UserID], rec)
		}
	}

	for _, recs := range s.byUser {
		sort.SliceStable(recs, func(i, j int) bool { return recs[i].Seq < recs[j].Seq })
	}
	return s
}

func newCounts() map[core.Sentiment]int {
	counts := make(map[core.Sentiment]int, len(core.Sentiments))
	for _, sent := range core.Sentiments {
		counts[sent] = 0
	}
	return counts
}

func union(dst []string, set map[string]struct{}, src []string) []string {
	for _, kw := range src {
		if _, ok := set[kw]; ok {
			continue
		}
		set[kw] = struct{}{}
		dst = append(dst, kw)
	}
	return dst
}

// Get 读取单个物品的聚合画像
func (s *Store) Get(itemID string) (*core.ItemAggregate, bool) {
	if s == nil {
		return nil, false
	}
	agg, ok := s.items[itemID]
	return agg, ok
}

// IDs 返回全部物品 ID（首次出现顺序）。返回副本，调用方可修改。
func (s *Store) IDs() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Len 返回物品数量
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}

// RecordsByUser 返回某用户撰写的记录（按摄入顺序）
func (s *Store) RecordsByUser(userID string) []core.InteractionRecord {
	if s == nil {
		return nil
	}
	return s.byUser[userID]
}

// AverageScore 返回物品某类分数的均值（跳过 NaN）。
// 物品不存在或没有可用分数时返回 NaN，不会出现除零。
func (s *Store) AverageScore(itemID string, kind core.ScoreKind) float64 {
	agg, ok := s.Get(itemID)
	if !ok {
		return math.NaN()
	}
	return agg.AverageScore(kind)
}

// AveragePercent 返回展示用的百分比字符串（保留两位小数），NaN 时返回 "N/A"。
func (s *Store) AveragePercent(itemID string, kind core.ScoreKind) string {
	return FormatPercent(s.AverageScore(itemID, kind))
}

// FormatPercent 把 [0,1] 的分数格式化为百分比字符串。
func FormatPercent(v float64) string {
	if math.IsNaN(v) {
		return "N/A"
	}
	return fmt.Sprintf("%.2f", v*100)
}

// FilterByName 返回 predicate 为真的物品 ID，保持 Store 的稳定顺序。
func (s *Store) FilterByName(pred func(itemID string) bool) []string {
	if s == nil {
		return nil
	}
	out := make([]string, 0, len(s.order))
	for _, id := range s.order {
		if pred == nil || pred(id) {
			out = append(out, id)
		}
	}
	return out
}

// NameContains 返回大小写不敏感的子串匹配 predicate；空串匹配全部。
func NameContains(term string) func(string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	return func(itemID string) bool {
		return term == "" || strings.Contains(strings.ToLower(itemID), term)
	}
}
