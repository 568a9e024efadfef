package limiter

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/adamwoolhether/pacer/internal/clocktest"
)

func TestPrometheusMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewPrometheusMetrics(reg)
	if err != nil {
		t.Fatal(err)
	}

	src := clocktest.NewManual()
	rejecting, err := New(Config{Limit: 2, Interval: time.Second}, Value(0), WithName("rejecting"), WithMetrics(m), WithSource(src))
	if err != nil {
		t.Fatal(err)
	}
	waiting, err := New(Config{Limit: 1, Interval: time.Second, Wait: true}, Value(0), WithName("waiting"), WithMetrics(m), WithSource(src))
	if err != nil {
		t.Fatal(err)
	}

	one := func(ctx context.Context) (int, error) { return 1, nil }
	r, w := rejecting.Wrap(one), waiting.Wrap(one)
	for range 5 {
		_, _ = r(context.Background())
	}
	for range 3 {
		_, _ = w(context.Background())
	}

	testCases := []struct {
		limiter string
		result  string
		exp     float64
	}{
		{"rejecting", "allowed", 2},
		{"rejecting", "rejected", 3},
		{"waiting", "allowed", 1},
		{"waiting", "waited", 2},
	}
	for _, tc := range testCases {
		got := testutil.ToFloat64(m.calls.WithLabelValues(tc.limiter, tc.result))
		if got != tc.exp {
			t.Errorf("%s/%s = %v, want %v", tc.limiter, tc.result, got, tc.exp)
		}
	}

	if n := testutil.CollectAndCount(m.waits); n != 1 {
		t.Errorf("wait histograms = %d, want 1", n)
	}

	if _, err := NewPrometheusMetrics(reg); err == nil {
		t.Error("exp duplicate registration to fail")
	}
}

func TestNoopMetrics(t *testing.T) {
	l, err := New(Config{Limit: 1, Interval: time.Hour}, Value(""))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := l.metrics.(noopMetrics); !ok {
		t.Errorf("default metrics = %T, want noopMetrics", l.metrics)
	}
}
