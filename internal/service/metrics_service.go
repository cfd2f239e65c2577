package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/hemo-scheduler-api/internal/models"
)

// Save outcome labels.
const (
	SaveOutcomeSaved     = "saved"
	SaveOutcomeProtected = "protected"
	SaveOutcomeError     = "error"
)

// MetricsService encapsulates Prometheus instrumentation and provides lightweight snapshots for API consumption.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLatency    prometheus.Observer
	cacheWrite      prometheus.Observer
	cacheHitRatio   prometheus.Gauge
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	dbQueryDuration *prometheus.HistogramVec
	saveOutcomes    *prometheus.CounterVec
	importRows      *prometheus.CounterVec
	occupiedSlots   *prometheus.GaugeVec
	uniquePatients  prometheus.Gauge
	snapshotVersion prometheus.Gauge

	cacheHitCount        uint64
	cacheMissCount       uint64
	requestCount         uint64
	requestDurationTotal uint64
	saveCount            uint64
	saveProtectedCount   uint64
	saveErrorCount       uint64
	slotCount            int64
	patientCount         int64
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_latency_seconds",
		Help:    "Latency for cache operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheWrite := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_write_seconds",
		Help:    "Latency for cache set operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheHitRatio := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cache_hit_ratio",
		Help: "Ratio of cache hits to total cache lookups",
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	dbQueryDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "db_query_duration_seconds",
		Help:    "Duration of snapshot store operations",
		Buckets: prometheus.DefBuckets,
	}, []string{"query"})

	saveOutcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "schedule_saves_total",
		Help: "Snapshot save attempts by outcome",
	}, []string{"outcome"})

	importRows := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "schedule_import_rows_total",
		Help: "Imported spreadsheet rows by result",
	}, []string{"result"})

	occupiedSlots := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "schedule_occupied_slots",
		Help: "Occupied chair turns per day group",
	}, []string{"day_group"})

	uniquePatients := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "schedule_unique_patients",
		Help: "Distinct patients by normalized name",
	})

	snapshotVersion := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "schedule_snapshot_version",
		Help: "Version of the in-memory schedule snapshot",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(
		requestDuration, requestTotal,
		cacheLatency, cacheWrite, cacheHitRatio, cacheHits, cacheMisses,
		dbQueryDuration, saveOutcomes, importRows,
		occupiedSlots, uniquePatients, snapshotVersion,
		goroutines,
	)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:        registry,
		handler:         handler,
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		cacheLatency:    cacheLatency,
		cacheWrite:      cacheWrite,
		cacheHitRatio:   cacheHitRatio,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
		dbQueryDuration: dbQueryDuration,
		saveOutcomes:    saveOutcomes,
		importRows:      importRows,
		occupiedSlots:   occupiedSlots,
		uniquePatients:  uniquePatients,
		snapshotVersion: snapshotVersion,
	}
}

// Registry exposes the underlying registry, mainly for tests.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics and aggregates simple stats for snapshots.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
	atomic.AddUint64(&m.requestDurationTotal, uint64(duration.Nanoseconds()))
}

// RecordCacheOperation records cache hit/miss metrics and updates hit ratio.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	if hit {
		m.cacheHits.Inc()
		atomic.AddUint64(&m.cacheHitCount, 1)
	} else {
		m.cacheMisses.Inc()
		atomic.AddUint64(&m.cacheMissCount, 1)
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	if total := hits + misses; total > 0 {
		m.cacheHitRatio.Set(float64(hits) / float64(total))
	}
}

// ObserveCacheWrite tracks the duration for cache write operations.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// ObserveDBQuery records snapshot store timing.
func (m *MetricsService) ObserveDBQuery(label string, duration time.Duration) {
	if m == nil {
		return
	}
	m.dbQueryDuration.WithLabelValues(label).Observe(duration.Seconds())
}

// RecordSave counts one save attempt by outcome.
func (m *MetricsService) RecordSave(outcome string) {
	if m == nil {
		return
	}
	m.saveOutcomes.WithLabelValues(outcome).Inc()
	switch outcome {
	case SaveOutcomeSaved:
		atomic.AddUint64(&m.saveCount, 1)
	case SaveOutcomeProtected:
		atomic.AddUint64(&m.saveProtectedCount, 1)
	default:
		atomic.AddUint64(&m.saveErrorCount, 1)
	}
}

// RecordImport counts processed and skipped rows of one import.
func (m *MetricsService) RecordImport(summary models.ImportSummary) {
	if m == nil {
		return
	}
	m.importRows.WithLabelValues("processed").Add(float64(summary.ProcessedRows))
	m.importRows.WithLabelValues("inserted").Add(float64(summary.Inserted))
	m.importRows.WithLabelValues("updated").Add(float64(summary.Updated))
	m.importRows.WithLabelValues("skipped").Add(float64(summary.SkippedPlacements))
}

// ObserveSchedule refreshes occupancy gauges from a committed snapshot.
func (m *MetricsService) ObserveSchedule(occupied map[models.DayGroup]int, uniquePatients int, version int64) {
	if m == nil {
		return
	}
	total := 0
	for _, g := range models.DayGroups() {
		m.occupiedSlots.WithLabelValues(string(g)).Set(float64(occupied[g]))
		total += occupied[g]
	}
	m.uniquePatients.Set(float64(uniquePatients))
	m.snapshotVersion.Set(float64(version))
	atomic.StoreInt64(&m.slotCount, int64(total))
	atomic.StoreInt64(&m.patientCount, int64(uniquePatients))
}

// Snapshot returns aggregated metrics suitable for the admin dashboard.
func (m *MetricsService) Snapshot() models.SystemMetrics {
	if m == nil {
		return models.SystemMetrics{}
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	requests := atomic.LoadUint64(&m.requestCount)
	reqDuration := atomic.LoadUint64(&m.requestDurationTotal)

	var cacheRatio float64
	if totalLookups := hits + misses; totalLookups > 0 {
		cacheRatio = float64(hits) / float64(totalLookups)
	}

	var avgRequestMs float64
	if requests > 0 {
		avgRequestMs = float64(reqDuration) / float64(requests) / float64(time.Millisecond)
	}

	return models.SystemMetrics{
		CacheHitRatio:            cacheRatio,
		CacheHits:                hits,
		CacheMisses:              misses,
		RequestsTotal:            requests,
		AverageRequestDurationMs: avgRequestMs,
		SavesTotal:               atomic.LoadUint64(&m.saveCount),
		SavesProtected:           atomic.LoadUint64(&m.saveProtectedCount),
		SavesFailed:              atomic.LoadUint64(&m.saveErrorCount),
		OccupiedSlots:            int(atomic.LoadInt64(&m.slotCount)),
		UniquePatients:           int(atomic.LoadInt64(&m.patientCount)),
		Goroutines:               runtime.NumGoroutine(),
		GeneratedAt:              time.Now().UTC(),
	}
}
