// Package metrics 定义 reviewkit 的 Prometheus 指标。
//
// 所有指标注册在 Registry 上（而非默认 registry），server 通过 Handler() 暴露 /metrics。
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry 是 reviewkit 专用的指标注册表。
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

var (
	// IngestRows 摄入的原始行数（含被拒绝的行）
	IngestRows = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "reviewkit_ingest_rows_total",
			Help: "Total number of interaction rows seen by the ingester",
		},
	)

	// IngestRejected 被跳过的行，按原因区分
	IngestRejected = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reviewkit_ingest_rows_rejected_total",
			Help: "Total number of interaction rows skipped as malformed",
		},
		[]string{"reason"},
	)

	// CSVLinesSkipped 无法解析（如引号不匹配）而被跳过的 CSV 行
	CSVLinesSkipped = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "reviewkit_csv_lines_skipped_total",
			Help: "Total number of CSV lines skipped because they could not be parsed",
		},
	)

	// SimilarityRejected 相似度矩阵中缺少 USER_ID 被跳过的行
	SimilarityRejected = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "reviewkit_similarity_rows_rejected_total",
			Help: "Total number of similarity matrix rows skipped as malformed",
		},
	)

	// Recommendations 推荐请求，按命中的路径区分（matrix / popularity / remote / empty）
	Recommendations = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reviewkit_recommendations_total",
			Help: "Total number of recommendation requests by the path that produced the result",
		},
		[]string{"path"},
	)

	// CacheLookups 推荐缓存命中情况（hit / miss / error）
	CacheLookups = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reviewkit_recommendation_cache_lookups_total",
			Help: "Recommendation cache lookups by result",
		},
		[]string{"result"},
	)

	// RemoteFailures 远程推荐源失败次数（含熔断拒绝）
	RemoteFailures = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "reviewkit_remote_failures_total",
			Help: "Total number of failed remote recommendation calls",
		},
	)

	// BreakerState 熔断器状态：0 closed / 1 half-open / 2 open
	BreakerState = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "reviewkit_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	// SnapshotGeneration 当前发布的数据快照代数
	SnapshotGeneration = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "reviewkit_snapshot_generation",
			Help: "Generation number of the currently published dataset snapshot",
		},
	)

	// SnapshotItems 当前快照中的物品数
	SnapshotItems = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "reviewkit_snapshot_items",
			Help: "Number of items in the currently published dataset snapshot",
		},
	)
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// Handler 返回 /metrics 的 HTTP handler。
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
