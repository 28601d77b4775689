// Package ingest 把原始交互表（按列名取值的行）解析为 core.InteractionRecord。
//
// 容错策略：
//   - 缺少 ITEM_ID 的行被跳过，记一条 warn 日志并计数
//   - 缺少 USER_ID / EVENT_VALUE 的行保留，对应字段为空 / SentimentUnknown
//   - 分数无法解析时保存为 NaN
//   - 只有整批不可用（nil / 没有任何行）才返回 MalformedInputError
package ingest

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/rushteam/reviewkit/core"
	"github.com/rushteam/reviewkit/pkg/conv"
	"github.com/rushteam/reviewkit/pkg/logging"
	"github.com/rushteam/reviewkit/pkg/metrics"
)

// 交互表列名
const (
	ColItemID           = "ITEM_ID"
	ColUserID           = "USER_ID"
	ColEventValue       = "EVENT_VALUE"
	ColPositiveScore    = "POSITIVE_SCORE"
	ColNegativeScore    = "NEGATIVE_SCORE"
	ColNeutralScore     = "NEUTRAL_SCORE"
	ColPositiveKeywords = "POSITIVE_KEYWORDS"
	ColNegativeKeywords = "NEGATIVE_KEYWORDS"
)

// Ingester 是交互记录解析器，本身无状态。
type Ingester struct {
	Logger zerolog.Logger
}

// New 创建一个使用全局 logger 的 Ingester。
func New() *Ingester {
	return &Ingester{Logger: logging.Component("ingest")}
}

// Ingest 使用默认 Ingester 解析一批行。
func Ingest(rows []map[string]string) ([]core.InteractionRecord, error) {
	return New().Ingest(rows)
}

// Ingest 解析一批行，返回的记录按输入顺序排列，Seq 为记录在结果中的位置。
func (in *Ingester) Ingest(rows []map[string]string) ([]core.InteractionRecord, error) {
	if len(rows) == 0 {
		return nil, core.NewMalformedInputError(core.ModuleIngest, "ingest: batch has no rows")
	}

	out := make([]core.InteractionRecord, 0, len(rows))
	for i, row := range rows {
		metrics.IngestRows.Inc()

		itemID, _ := conv.Lookup(row, ColItemID)
		itemID = strings.TrimSpace(itemID)
		if itemID == "" {
			metrics.IngestRejected.WithLabelValues("missing_item_id").Inc()
			in.Logger.Warn().
				Int("row", i).
				Str("reason", "missing ITEM_ID").
				Msg("skip malformed row")
			continue
		}

		rec := parseRecord(row)
		rec.ItemID = itemID
		rec.Seq = len(out)
		out = append(out, rec)
	}

	in.Logger.Debug().
		Int("rows", len(rows)).
		Int("records", len(out)).
		Msg("ingest batch done")
	return out, nil
}

func parseRecord(row map[string]string) core.InteractionRecord {
	get := func(col string) string {
		v, _ := conv.Lookup(row, col)
		return v
	}

	rawEvent := strings.TrimSpace(get(ColEventValue))
	return core.InteractionRecord{
		UserID:           strings.TrimSpace(get(ColUserID)),
		Event:            core.ParseSentiment(rawEvent),
		RawEvent:         rawEvent,
		PositiveScore:    conv.ParseUnitScore(get(ColPositiveScore)),
		NegativeScore:    conv.ParseUnitScore(get(ColNegativeScore)),
		NeutralScore:     conv.ParseUnitScore(get(ColNeutralScore)),
		PositiveKeywords: conv.SplitKeywords(get(ColPositiveKeywords)),
		NegativeKeywords: conv.SplitKeywords(get(ColNegativeKeywords)),
	}
}
