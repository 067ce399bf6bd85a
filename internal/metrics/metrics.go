// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// サービス層とオラクルクライアントから利用する。
type MetricsCollector interface {
	RecordOracleAttempt(success bool)
	RecordOracleHTTPStatus(statusCode int)
	RecordOracleLatency(duration time.Duration)
	RecordOracleExhausted()
	RecordTranscriptProcessed(success bool)
	RecordReconcileStepFailure(step string)
	RecordLockConflict()
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	oracleAttempts       *prometheus.CounterVec
	oracleHTTPStatus     *prometheus.CounterVec
	oracleLatency        prometheus.Histogram
	oracleExhausted      prometheus.Counter
	transcriptsProcessed *prometheus.CounterVec
	reconcileStepFail    *prometheus.CounterVec
	lockConflicts        prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		oracleAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "daybook_oracle_attempts_total",
			Help: "解析サービス呼び出し試行の合計数",
		}, []string{"result"}),
		oracleHTTPStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "daybook_oracle_http_status_total",
			Help: "解析サービスのHTTPステータスコード別レスポンス数",
		}, []string{"status_code"}),
		oracleLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "daybook_oracle_latency_seconds",
			Help:    "解析サービス呼び出しのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		oracleExhausted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "daybook_oracle_exhausted_total",
			Help: "リトライ上限に達した解析サービス呼び出しの合計数",
		}),
		transcriptsProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "daybook_transcripts_processed_total",
			Help: "処理された文字起こしの合計数",
		}, []string{"result"}),
		reconcileStepFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "daybook_reconcile_step_failures_total",
			Help: "解析結果適用の段階別失敗数",
		}, []string{"step"}),
		lockConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "daybook_lock_conflicts_total",
			Help: "ユーザー処理ロックの競合による拒否数",
		}),
	}

	reg.MustRegister(
		c.oracleAttempts,
		c.oracleHTTPStatus,
		c.oracleLatency,
		c.oracleExhausted,
		c.transcriptsProcessed,
		c.reconcileStepFail,
		c.lockConflicts,
	)

	return c
}

func resultLabel(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}

// RecordOracleAttempt は解析サービス呼び出し試行を記録する。
func (c *Collector) RecordOracleAttempt(success bool) {
	c.oracleAttempts.WithLabelValues(resultLabel(success)).Inc()
}

// RecordOracleHTTPStatus は解析サービスのHTTPステータスコードを記録する。
func (c *Collector) RecordOracleHTTPStatus(statusCode int) {
	c.oracleHTTPStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordOracleLatency は解析サービス呼び出しのレイテンシを記録する。
func (c *Collector) RecordOracleLatency(duration time.Duration) {
	c.oracleLatency.Observe(duration.Seconds())
}

// RecordOracleExhausted はリトライ上限到達を記録する。
func (c *Collector) RecordOracleExhausted() {
	c.oracleExhausted.Inc()
}

// RecordTranscriptProcessed は文字起こし処理の完了を記録する。
func (c *Collector) RecordTranscriptProcessed(success bool) {
	c.transcriptsProcessed.WithLabelValues(resultLabel(success)).Inc()
}

// RecordReconcileStepFailure は解析結果適用の段階別失敗を記録する。
func (c *Collector) RecordReconcileStepFailure(step string) {
	c.reconcileStepFail.WithLabelValues(step).Inc()
}

// RecordLockConflict はユーザー処理ロックの競合を記録する。
func (c *Collector) RecordLockConflict() {
	c.lockConflicts.Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute は/metricsエンドポイントを提供するHTTPハンドラーを返す。
// Prometheusスクレイプに対応する。
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}

// NopCollector は何も記録しないMetricsCollector。テスト用。
type NopCollector struct{}

func (NopCollector) RecordOracleAttempt(success bool)       {}
func (NopCollector) RecordOracleHTTPStatus(statusCode int)  {}
func (NopCollector) RecordOracleLatency(d time.Duration)    {}
func (NopCollector) RecordOracleExhausted()                 {}
func (NopCollector) RecordTranscriptProcessed(success bool) {}
func (NopCollector) RecordReconcileStepFailure(step string) {}
func (NopCollector) RecordLockConflict()                    {}

// compile-time interface checks
var (
	_ MetricsCollector = (*Collector)(nil)
	_ MetricsCollector = NopCollector{}
)
