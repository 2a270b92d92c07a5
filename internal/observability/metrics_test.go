package observability

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestMetricsExposition(t *testing.T) {
	m := NewMetrics()
	m.ObserveAPI("POST", "/api/grade", "200", 120*time.Millisecond)
	m.ObserveCascadeHook("badges", "error", 5*time.Millisecond)
	m.ObserveCascadeHook("badges", "error", 5*time.Millisecond)
	m.IncQualityRejection("too_short")

	if got := m.CascadeHookCount("badges", "error"); got != 2 {
		t.Fatalf("CascadeHookCount: want=2 got=%v", got)
	}

	var buf bytes.Buffer
	if err := m.WritePrometheus(&buf); err != nil {
		t.Fatalf("WritePrometheus: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		`wc_api_requests_total{method="POST",route="/api/grade",status="200"} 1.000000`,
		`wc_cascade_hooks_total{hook="badges",status="error"} 2.000000`,
		`wc_quality_rejections_total{code="too_short"} 1.000000`,
		`wc_api_request_duration_seconds_bucket{method="POST",route="/api/grade",status="200",le="0.25"} 1`,
		"# TYPE wc_redis_up gauge",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("exposition missing %q", want)
		}
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	m.ObserveAPI("GET", "/", "200", time.Millisecond)
	m.ObserveLLMRequest("openai", "grade", "ok", time.Second)
	m.IncAggregateConflict("op")
	if m.CascadeHookCount("x", "ok") != 0 {
		t.Fatalf("nil metrics should report zero")
	}
	if isServerErrorStatus("200") || !isServerErrorStatus("503") {
		t.Fatalf("isServerErrorStatus misclassified")
	}
}
