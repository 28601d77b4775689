package core

import (
	"math"
	"strings"
)

// Sentiment 是一条评价事件的情感类别（EVENT_VALUE 列）。
type Sentiment int

const (
	SentimentUnknown Sentiment = iota
	SentimentPositive
	SentimentNegative
	SentimentNeutral
	SentimentMixed
)

// Sentiments 是四个固定的计数桶，顺序即展示顺序。
var Sentiments = []Sentiment{SentimentPositive, SentimentNegative, SentimentNeutral, SentimentMixed}

// ParseSentiment 解析 EVENT_VALUE；大小写与首尾空白不敏感，无法识别的值返回 SentimentUnknown。
func ParseSentiment(s string) Sentiment {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "POSITIVE":
		return SentimentPositive
	case "NEGATIVE":
		return SentimentNegative
	case "NEUTRAL":
		return SentimentNeutral
	case "MIXED":
		return SentimentMixed
	default:
		return SentimentUnknown
	}
}

func (s Sentiment) String() string {
	switch s {
	case SentimentPositive:
		return "POSITIVE"
	case SentimentNegative:
		return "NEGATIVE"
	case SentimentNeutral:
		return "NEUTRAL"
	case SentimentMixed:
		return "MIXED"
	default:
		return "UNKNOWN"
	}
}

// Known 报告该值是否属于四个可计数的桶。
func (s Sentiment) Known() bool {
	return s >= SentimentPositive && s <= SentimentMixed
}

// ScoreKind 选择 InteractionRecord 上的某一个情感分数。
type ScoreKind string

const (
	ScorePositive ScoreKind = "positive"
	ScoreNegative ScoreKind = "negative"
	ScoreNeutral  ScoreKind = "neutral"
)

// ParseScoreKind 解析分数类型名，未知名称返回 false。
func ParseScoreKind(s string) (ScoreKind, bool) {
	switch ScoreKind(strings.ToLower(strings.TrimSpace(s))) {
	case ScorePositive:
		return ScorePositive, true
	case ScoreNegative:
		return ScoreNegative, true
	case ScoreNeutral:
		return ScoreNeutral, true
	default:
		return "", false
	}
}

// InteractionRecord 是一次用户对物品的评价事件，解析后不可变。
//
// 无法解析的分数保存为 NaN，聚合时跳过；关键词已去除空白、去重，保持首次出现顺序。
type InteractionRecord struct {
	ItemID string
	UserID string

	// Seq 是记录在摄入批次中的位置，跨物品比较“先后”时使用
	Seq int

	// Event 是解析后的情感类别；RawEvent 保留原始值，便于排查脏数据。
	Event    Sentiment
	RawEvent string

	PositiveScore float64
	NegativeScore float64
	NeutralScore  float64

	PositiveKeywords []string
	NegativeKeywords []string
}

// Score 按类型返回分数，未知类型返回 NaN。
func (r InteractionRecord) Score(kind ScoreKind) float64 {
	switch kind {
	case ScorePositive:
		return r.PositiveScore
	case ScoreNegative:
		return r.NegativeScore
	case ScoreNeutral:
		return r.NeutralScore
	default:
		return math.NaN()
	}
}
