// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector はPrometheusメトリクスを収集する実装。
// news.Recorderインターフェースを満たし、取り込みパイプラインから利用される。
type Collector struct {
	ingestSuccess     prometheus.Counter
	ingestFallback    prometheus.Counter
	ingestFail        prometheus.Counter
	ingestLatency     prometheus.Histogram
	articlesPersisted prometheus.Counter
	httpStatus        *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		ingestSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dognews_ingest_success_total",
			Help: "ニュース取り込み成功の合計数（フォールバック使用を含む）",
		}),
		ingestFallback: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dognews_ingest_fallback_total",
			Help: "フォールバックセットで代替した取り込みの合計数",
		}),
		ingestFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dognews_ingest_fail_total",
			Help: "スナップショット書き込み失敗の合計数",
		}),
		ingestLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "dognews_ingest_latency_seconds",
			Help:    "取り込み実行1回のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		articlesPersisted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dognews_articles_persisted_total",
			Help: "永続化された記事の合計数",
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dognews_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
	}

	reg.MustRegister(
		c.ingestSuccess,
		c.ingestFallback,
		c.ingestFail,
		c.ingestLatency,
		c.articlesPersisted,
		c.httpStatus,
	)

	return c
}

// RecordIngestSuccess は取り込み成功を記録する。
// フォールバックセットを使用した場合はその旨も記録する。
func (c *Collector) RecordIngestSuccess(usedFallback bool) {
	c.ingestSuccess.Inc()
	if usedFallback {
		c.ingestFallback.Inc()
	}
}

// RecordIngestFailure はスナップショット書き込み失敗を記録する。
func (c *Collector) RecordIngestFailure() {
	c.ingestFail.Inc()
}

// RecordIngestLatency は取り込み実行のレイテンシを記録する。
func (c *Collector) RecordIngestLatency(d time.Duration) {
	c.ingestLatency.Observe(d.Seconds())
}

// RecordArticlesPersisted は永続化された記事数を記録する。
func (c *Collector) RecordArticlesPersisted(count int) {
	c.articlesPersisted.Add(float64(count))
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
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
