package observability

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yungbote/writecoach-backend/internal/platform/envutil"
	"github.com/yungbote/writecoach-backend/internal/platform/logger"
)

// Metrics is the process-wide metric set. Every method is safe on a nil
// receiver so callers never branch on whether metrics are enabled.
type Metrics struct {
	apiRequests *CounterVec
	apiLatency  *HistogramVec
	apiInflight *Gauge

	llmRequests *CounterVec
	llmLatency  *HistogramVec

	aggregateOps       *CounterVec
	aggregateLatency   *HistogramVec
	aggregateConflicts *CounterVec
	aggregateRetries   *CounterVec

	cascadeHooks   *CounterVec
	cascadeLatency *HistogramVec

	qualityRejections *CounterVec
	badgesUnlocked    *CounterVec

	redisUp   *Gauge
	redisPing *Gauge
}

var (
	initOnce sync.Once
	instance *Metrics
)

func Enabled() bool {
	return envutil.Bool("METRICS_ENABLED", false)
}

// Init builds the process metric set when METRICS_ENABLED is on.
func Init(log *logger.Logger) *Metrics {
	if !Enabled() {
		return nil
	}
	initOnce.Do(func() {
		instance = NewMetrics()
		if log != nil {
			log.Info("metrics enabled")
		}
	})
	return instance
}

// NewMetrics builds an independent metric set.
func NewMetrics() *Metrics {
	return &Metrics{
		apiRequests: NewCounterVec("wc_api_requests_total", "Total API requests by method/route/status.", []string{"method", "route", "status"}),
		apiLatency: NewHistogramVec(
			"wc_api_request_duration_seconds",
			"API request latency in seconds by method/route/status.",
			[]string{"method", "route", "status"},
			[]float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		),
		apiInflight: NewGauge("wc_api_inflight_requests", "In-flight API requests."),
		llmRequests: NewCounterVec("wc_llm_requests_total", "Model requests by provider/purpose/status.", []string{"provider", "purpose", "status"}),
		llmLatency: NewHistogramVec(
			"wc_llm_request_duration_seconds",
			"Model request latency in seconds by provider/purpose.",
			[]string{"provider", "purpose"},
			[]float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
		),
		aggregateOps: NewCounterVec("wc_aggregate_operations_total", "Aggregate writes by operation/status.", []string{"op", "status"}),
		aggregateLatency: NewHistogramVec(
			"wc_aggregate_operation_duration_seconds",
			"Aggregate write latency in seconds by operation.",
			[]string{"op"},
			[]float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2},
		),
		aggregateConflicts: NewCounterVec("wc_aggregate_conflicts_total", "Aggregate writes rejected by concurrency guards.", []string{"op"}),
		aggregateRetries:   NewCounterVec("wc_aggregate_retryable_total", "Aggregate writes that failed transiently.", []string{"op"}),
		cascadeHooks:       NewCounterVec("wc_cascade_hooks_total", "Progress cascade hook runs by hook/status.", []string{"hook", "status"}),
		cascadeLatency: NewHistogramVec(
			"wc_cascade_hook_duration_seconds",
			"Progress cascade hook latency in seconds.",
			[]string{"hook"},
			[]float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		),
		qualityRejections: NewCounterVec("wc_quality_rejections_total", "Submissions rejected before grading by reason.", []string{"code"}),
		badgesUnlocked:    NewCounterVec("wc_badges_unlocked_total", "Badges unlocked by badge id.", []string{"badge"}),
		redisUp:           NewGauge("wc_redis_up", "Redis reachability (1 up, 0 down)."),
		redisPing:         NewGauge("wc_redis_ping_seconds", "Last Redis ping latency in seconds."),
	}
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "UNKNOWN"
	}
	if route == "" {
		route = "unknown"
	}
	m.apiRequests.Inc(method, route, status)
	m.apiLatency.Observe(dur.Seconds(), method, route, status)
}

func (m *Metrics) APIInflightAdd(delta float64) {
	if m == nil {
		return
	}
	m.apiInflight.Add(delta)
}

func (m *Metrics) ObserveLLMRequest(provider, purpose, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.llmRequests.Inc(provider, purpose, status)
	m.llmLatency.Observe(dur.Seconds(), provider, purpose)
}

func (m *Metrics) ObserveAggregateOperation(op, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.aggregateOps.Inc(op, status)
	m.aggregateLatency.Observe(dur.Seconds(), op)
}

func (m *Metrics) IncAggregateConflict(op string) {
	if m == nil {
		return
	}
	m.aggregateConflicts.Inc(op)
}

func (m *Metrics) IncAggregateRetry(op string) {
	if m == nil {
		return
	}
	m.aggregateRetries.Inc(op)
}

func (m *Metrics) ObserveCascadeHook(hook, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.cascadeHooks.Inc(hook, status)
	m.cascadeLatency.Observe(dur.Seconds(), hook)
}

func (m *Metrics) CascadeHookCount(hook, status string) float64 {
	if m == nil {
		return 0
	}
	return m.cascadeHooks.Value(hook, status)
}

func (m *Metrics) IncQualityRejection(code string) {
	if m == nil {
		return
	}
	m.qualityRejections.Inc(code)
}

func (m *Metrics) IncBadgeUnlocked(badge string) {
	if m == nil {
		return
	}
	m.badgesUnlocked.Inc(badge)
}

// WriteHTTP serves the exposition format.
func (m *Metrics) WriteHTTP(w http.ResponseWriter, r *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.WritePrometheus(w)
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	writers := []interface{ WritePrometheus(io.Writer) error }{
		m.apiRequests, m.apiLatency, m.apiInflight,
		m.llmRequests, m.llmLatency,
		m.aggregateOps, m.aggregateLatency, m.aggregateConflicts, m.aggregateRetries,
		m.cascadeHooks, m.cascadeLatency,
		m.qualityRejections, m.badgesUnlocked,
		m.redisUp, m.redisPing,
	}
	for _, wr := range writers {
		if err := wr.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
}

// StartRedisCollector pings rdb on an interval until ctx is done.
func (m *Metrics) StartRedisCollector(ctx context.Context, log *logger.Logger, rdb *redis.Client) {
	if m == nil || rdb == nil {
		return
	}
	interval := envutil.Duration("METRICS_SCRAPE_INTERVAL", 15*time.Second)
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				start := time.Now()
				if err := rdb.Ping(ctx).Err(); err != nil {
					m.redisUp.Set(0)
					if log != nil {
						log.Warn("metrics: redis ping failed", "error", err)
					}
					continue
				}
				m.redisUp.Set(1)
				m.redisPing.Set(time.Since(start).Seconds())
			}
		}
	}()
}

func isServerErrorStatus(status string) bool {
	status = strings.TrimSpace(status)
	return len(status) == 3 && status[0] == '5'
}
