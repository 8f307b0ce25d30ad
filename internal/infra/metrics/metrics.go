// Package metrics Prometheus-метрики консоли: запросы к API, обновление токена, сводка.
package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cmms_api_requests_total",
			Help: "Total number of requests sent to the CMMS API",
		},
		[]string{"method", "endpoint", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cmms_api_request_duration_seconds",
			Help:    "CMMS API request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	TokenRefreshTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cmms_token_refresh_total",
			Help: "Access token refresh attempts by result",
		},
		[]string{"result"},
	)

	SessionExpiredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cmms_session_expired_total",
			Help: "Sessions torn down after an unrecoverable 401",
		},
	)

	ActiveAssets = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "cmms_assets_active",
		Help: "Assets in active status",
	})

	ActiveWorkOrders = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "cmms_workorders_active",
		Help: "Work orders assigned or in progress",
	})

	PendingWorkOrders = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "cmms_workorders_pending",
		Help: "Open work orders not yet assigned",
	})

	LowStockParts = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "cmms_spareparts_low_stock",
		Help: "Spare parts at or below minimum stock",
	})

	BatchResultsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cmms_batch_items_total",
			Help: "Batch operation items by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)
)

// Refresh results
const (
	RefreshOK      = "ok"
	RefreshFailed  = "failed"
	RefreshMissing = "missing"
)

// ObserveRequest учитывает один HTTP-запрос. status 0 означает сетевую ошибку.
func ObserveRequest(method, path string, status int, d time.Duration) {
	ep := Endpoint(path)
	code := "error"
	if status > 0 {
		code = strconv.Itoa(status)
	}
	APIRequestsTotal.WithLabelValues(method, ep, code).Inc()
	APIRequestDuration.WithLabelValues(method, ep).Observe(d.Seconds())
}

// Endpoint нормализует путь для меток: числовые сегменты заменяются на :id.
func Endpoint(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	for i, p := range parts {
		if p == "" {
			continue
		}
		if _, err := strconv.ParseInt(p, 10, 64); err == nil {
			parts[i] = ":id"
		}
	}
	return "/" + strings.Join(parts, "/")
}
