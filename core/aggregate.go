package core

import "math"

// ItemAggregate 是单个物品的聚合画像：全部评价记录、关键词并集与情感计数。
//
// 由 aggregate.Build 一次性构建，之后只读；Records 至少包含一条记录。
type ItemAggregate struct {
	ItemID string

	// Records 按摄入顺序保存
	Records []InteractionRecord

	// 关键词并集，保持首次出现顺序
	PositiveKeywords []string
	NegativeKeywords []string

	// SentimentCounts 四个桶始终存在，默认 0；未知情感不计入任何桶
	SentimentCounts map[Sentiment]int
}

// AverageScore 返回某类分数在非 NaN 记录上的均值；没有可用记录时返回 NaN。
func (a *ItemAggregate) AverageScore(kind ScoreKind) float64 {
	if a == nil {
		return math.NaN()
	}
	var sum float64
	n := 0
	for _, r := range a.Records {
		v := r.Score(kind)
		if math.IsNaN(v) {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}

// CountedEvents 返回计入情感桶的记录数（即 SentimentCounts 之和）。
func (a *ItemAggregate) CountedEvents() int {
	total := 0
	for _, s := range Sentiments {
		total += a.SentimentCounts[s]
	}
	return total
}
