package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics はアプリケーションのメトリクスを管理する
type Metrics struct {
	// HTTPリクエストの総数（method, path, status_code）
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPリクエストのレイテンシ（method, path）
	HTTPRequestDuration *prometheus.HistogramVec

	// 予約リクエストの総数（status: success, conflict, lock_failed, error）
	ReservationsTotal *prometheus.CounterVec

	// テンプレート操作の総数（operation: create/update/delete, status: success/error）
	TemplateOperationsTotal *prometheus.CounterVec

	// 料金見積りの総数（status: success, no_match, error）
	PriceQuotesTotal *prometheus.CounterVec

	// スロットキャッシュの参照結果（result: hit/miss）
	SlotCacheTotal *prometheus.CounterVec

	// 分散ロックの操作時間（operation: acquire/release, status: success/failed）
	DistributedLockDuration *prometheus.HistogramVec

	// アクティブな予約数（status: pending, approved）
	ActiveReservations *prometheus.GaugeVec
}

// New は新しいMetricsインスタンスを作成し、デフォルトレジストリに登録する
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry は指定したレジストリにメトリクスを登録する
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		ReservationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rental_reservations_total",
				Help: "Total number of rental reservation attempts",
			},
			[]string{"status"},
		),
		TemplateOperationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "time_slot_template_operations_total",
				Help: "Total number of time slot template operations",
			},
			[]string{"operation", "status"},
		),
		PriceQuotesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "price_quotes_total",
				Help: "Total number of rental price quotes",
			},
			[]string{"status"},
		),
		SlotCacheTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "slot_cache_lookups_total",
				Help: "Slot cache lookup results",
			},
			[]string{"result"},
		),
		DistributedLockDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "distributed_lock_duration_seconds",
				Help:    "Time spent on distributed lock operations",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"operation", "status"},
		),
		ActiveReservations: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "active_reservations",
				Help: "Current number of active reservations",
			},
			[]string{"status"},
		),
	}

	// レジストリに登録
	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.ReservationsTotal,
		m.TemplateOperationsTotal,
		m.PriceQuotesTotal,
		m.SlotCacheTotal,
		m.DistributedLockDuration,
		m.ActiveReservations,
	)

	return m
}

// デフォルトのメトリクスインスタンス
var defaultMetrics *Metrics

// Init はデフォルトのメトリクスインスタンスを初期化する
func Init() *Metrics {
	defaultMetrics = New()
	return defaultMetrics
}

// Get はデフォルトのメトリクスインスタンスを返す
func Get() *Metrics {
	return defaultMetrics
}

// Set はデフォルトのメトリクスインスタンスを差し替える
func Set(m *Metrics) {
	defaultMetrics = m
}

// 以下はデフォルトインスタンスへの記録用ヘルパー
// Initが呼ばれていない場合は何もしない

// RecordReservation は予約リクエストの結果を記録する
func RecordReservation(status string) {
	if defaultMetrics == nil {
		return
	}
	defaultMetrics.ReservationsTotal.WithLabelValues(status).Inc()
}

// RecordTemplateOperation はテンプレート操作の結果を記録する
func RecordTemplateOperation(operation, status string) {
	if defaultMetrics == nil {
		return
	}
	defaultMetrics.TemplateOperationsTotal.WithLabelValues(operation, status).Inc()
}

// RecordPriceQuote は料金見積りの結果を記録する
func RecordPriceQuote(status string) {
	if defaultMetrics == nil {
		return
	}
	defaultMetrics.PriceQuotesTotal.WithLabelValues(status).Inc()
}

// RecordSlotCache はスロットキャッシュの参照結果を記録する
func RecordSlotCache(result string) {
	if defaultMetrics == nil {
		return
	}
	defaultMetrics.SlotCacheTotal.WithLabelValues(result).Inc()
}
