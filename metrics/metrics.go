// Package metrics 定义离线任务与在线推荐的 Prometheus 指标。
//
// 指标通过 promauto 注册到默认 registry，暴露由调用方决定（如 promhttp.Handler）。
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// JobDuration 离线任务耗时，按 job 和结果（ok / error / skipped）区分。
	JobDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "eventrec",
		Name:      "job_duration_seconds",
		Help:      "Offline learning job duration in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"job", "status"})

	// TableEntries 各派生表最近一次写入的条目数。
	TableEntries = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "eventrec",
		Name:      "table_entries",
		Help:      "Number of top-level entries in the last persisted derived table",
	}, []string{"table"})

	// InteractionsAppended 写入交互日志的记录数。
	InteractionsAppended = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "eventrec",
		Name:      "interactions_appended_total",
		Help:      "Total number of interaction records appended",
	}, []string{"action"})

	// RecommendLatency 在线推荐耗时。
	RecommendLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "eventrec",
		Name:      "recommend_latency_seconds",
		Help:      "Recommend request latency in seconds",
		Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
	})

	// RecommendCandidates 每次请求的候选数分布。
	RecommendCandidates = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "eventrec",
		Name:      "recommend_candidates",
		Help:      "Number of candidate events per recommend request",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
	})

	// ExplorationSwaps 探索重排实际发生交换的次数。
	ExplorationSwaps = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "eventrec",
		Name:      "exploration_swaps_total",
		Help:      "Total number of exploration transpositions applied to ranked lists",
	})

	// WeightFallbacks 学习权重缺失或全零而回退默认权重的次数。
	WeightFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "eventrec",
		Name:      "weight_fallbacks_total",
		Help:      "Total number of scoring calls that fell back to default weights",
	})
)

// ObserveJob 记录一次任务耗时。
func ObserveJob(job, status string, start time.Time) {
	JobDuration.WithLabelValues(job, status).Observe(time.Since(start).Seconds())
}

// SetTableEntries 记录派生表大小。
func SetTableEntries(table string, n int) {
	TableEntries.WithLabelValues(table).Set(float64(n))
}
