// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// エクスポートハンドラーから利用する。
type MetricsCollector interface {
	RecordExportAllowed(format string)
	RecordExportDenied(code string)
	RecordDemoFallback(reason string)
	RecordProviderFailure()
	RecordRenderLatency(format string, duration time.Duration)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	exportsAllowed   *prometheus.CounterVec
	exportsDenied    *prometheus.CounterVec
	demoFallback     *prometheus.CounterVec
	providerFailures prometheus.Counter
	renderLatency    *prometheus.HistogramVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		exportsAllowed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "exportman_exports_allowed_total",
			Help: "許可されたエクスポートの形式別合計数",
		}, []string{"format"}),
		exportsDenied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "exportman_exports_denied_total",
			Help: "拒否されたエクスポートの理由コード別合計数",
		}, []string{"code"}),
		demoFallback: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "exportman_demo_fallback_total",
			Help: "デモデータへのフォールバック発生数（原因別）",
		}, []string{"reason"}),
		providerFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "exportman_provider_failures_total",
			Help: "プロバイダーAPI呼び出し失敗の合計数",
		}),
		renderLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "exportman_render_latency_seconds",
			Help:    "エクスポートファイル生成のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}, []string{"format"}),
	}

	reg.MustRegister(
		c.exportsAllowed,
		c.exportsDenied,
		c.demoFallback,
		c.providerFailures,
		c.renderLatency,
	)

	return c
}

// RecordExportAllowed は許可されたエクスポートを記録する。
func (c *Collector) RecordExportAllowed(format string) {
	c.exportsAllowed.WithLabelValues(format).Inc()
}

// RecordExportDenied は拒否されたエクスポートを理由コード付きで記録する。
func (c *Collector) RecordExportDenied(code string) {
	c.exportsDenied.WithLabelValues(code).Inc()
}

// RecordDemoFallback はデモデータへのフォールバックを原因付きで記録する。
func (c *Collector) RecordDemoFallback(reason string) {
	c.demoFallback.WithLabelValues(reason).Inc()
}

// RecordProviderFailure はプロバイダー呼び出し失敗を記録する。
func (c *Collector) RecordProviderFailure() {
	c.providerFailures.Inc()
}

// RecordRenderLatency はファイル生成のレイテンシを記録する。
func (c *Collector) RecordRenderLatency(format string, duration time.Duration) {
	c.renderLatency.WithLabelValues(format).Observe(duration.Seconds())
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
