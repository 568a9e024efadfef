package meter

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/adamwoolhether/pacer/clock"
	"github.com/adamwoolhether/pacer/internal/clocktest"
)

func newManual(t *testing.T, window time.Duration) (*Meter, *clocktest.Manual) {
	t.Helper()

	src := clocktest.NewManual()
	m, err := New(window, WithSource(src))
	if err != nil {
		t.Fatal(err)
	}

	return m, src
}

func TestNew_Validation(t *testing.T) {
	testCases := []struct {
		name   string
		window time.Duration
		expErr error
	}{
		{
			name:   "Zero window",
			window: 0,
			expErr: ErrMustBePositive,
		},
		{
			name:   "Negative window",
			window: -time.Second,
			expErr: ErrMustBePositive,
		},
		{
			name:   "Valid input",
			window: time.Second,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m, err := New(tc.window)

			if tc.expErr != nil {
				if !errors.Is(err, tc.expErr) {
					t.Errorf("exp err %v; got: %v", tc.expErr, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("exp nil err, got: %v", err)
			}
			if m.Window() != tc.window {
				t.Errorf("window = %v, want %v", m.Window(), tc.window)
			}
		})
	}
}

func TestUpdate_DefaultValues(t *testing.T) {
	m, src := newManual(t, time.Hour)

	for range 3 {
		m.Update()
		src.Advance(time.Second)
	}

	if diff := cmp.Diff([]float64{0, 1, 2}, m.values); diff != "" {
		t.Errorf("values mismatch (-want +got):\n%s", diff)
	}
	if got := m.Rate(); got != 1 {
		t.Errorf("rate = %v, want 1", got)
	}
}

func TestRate_Degenerate(t *testing.T) {
	m, _ := newManual(t, time.Second)

	if got := m.Rate(); got != 0 {
		t.Errorf("empty rate = %v, want 0", got)
	}

	m.UpdateValue(10)
	if got := m.Rate(); got != 0 {
		t.Errorf("single sample rate = %v, want 0", got)
	}

	// Same timestamp: zero span must not divide by zero.
	m.UpdateValue(20)
	if got := m.Rate(); got != 0 {
		t.Errorf("zero span rate = %v, want 0", got)
	}
}

func TestTrim(t *testing.T) {
	ms := time.Millisecond
	testCases := []struct {
		name     string
		window   time.Duration
		offsets  []time.Duration
		expTimes []time.Duration
	}{
		{
			name:     "Nothing older than the window",
			window:   time.Second,
			offsets:  []time.Duration{0, 300 * ms, 600 * ms, 900 * ms, 1200 * ms},
			expTimes: []time.Duration{0, 300 * ms, 600 * ms, 900 * ms, 1200 * ms},
		},
		{
			name:     "Keeps one sample before the cutoff",
			window:   time.Second,
			offsets:  []time.Duration{0, 300 * ms, 600 * ms, 900 * ms, 1200 * ms, 1500 * ms},
			expTimes: []time.Duration{300 * ms, 600 * ms, 900 * ms, 1200 * ms, 1500 * ms},
		},
		{
			name:     "Sample exactly on the cutoff",
			window:   time.Second,
			offsets:  []time.Duration{0, 500 * ms, 1000 * ms, 1500 * ms},
			expTimes: []time.Duration{500 * ms, 1000 * ms, 1500 * ms},
		},
		{
			name:     "Long gap",
			window:   time.Second,
			offsets:  []time.Duration{0, 100 * ms, 200 * ms, 5000 * ms},
			expTimes: []time.Duration{200 * ms, 5000 * ms},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m, src := newManual(t, tc.window)
			start := src.Now()

			for _, off := range tc.offsets {
				src.Advance(start.Add(off).Sub(src.Now()))
				m.Update()
			}

			got := make([]time.Duration, len(m.times))
			for i, ts := range m.times {
				got[i] = ts.Sub(start)
			}
			if diff := cmp.Diff(tc.expTimes, got); diff != "" {
				t.Errorf("retained times mismatch (-want +got):\n%s", diff)
			}
			if len(m.values) != len(m.times) {
				t.Errorf("values = %d, times = %d; must match", len(m.values), len(m.times))
			}

			span := m.times[len(m.times)-1].Sub(m.times[0])
			last := tc.offsets[len(tc.offsets)-1]
			if last >= tc.window && span < tc.window {
				t.Errorf("retained span %v shorter than window %v", span, tc.window)
			}
		})
	}
}

func TestRate_Converges(t *testing.T) {
	const rate = 1000.0
	m, src := newManual(t, time.Second)
	step := time.Duration(float64(time.Second) / rate)

	for range 3 * int(rate) {
		m.Update()
		src.Advance(step)
	}

	got := m.Rate()
	if math.Abs(got-rate)/rate > 0.001 {
		t.Errorf("rate = %v, want %v within 0.1%%", got, rate)
	}
	if m.Len() > int(rate)+2 {
		t.Errorf("retained %d samples, window should hold about %d", m.Len(), int(rate))
	}
}

func TestUpdateValue_RunningTotal(t *testing.T) {
	m, src := newManual(t, 2*time.Second)

	var total float64
	for range 10 {
		total += 512
		m.UpdateValue(total)
		src.Advance(250 * time.Millisecond)
	}

	if got := m.Rate(); got != 2048 {
		t.Errorf("rate = %v, want 2048", got)
	}
}

func TestRestart(t *testing.T) {
	m, src := newManual(t, time.Second)

	for range 5 {
		m.Update()
		src.Advance(100 * time.Millisecond)
	}
	m.Restart()

	if m.Len() != 0 || len(m.values) != 0 {
		t.Errorf("samples after restart = %d/%d, want 0/0", len(m.times), len(m.values))
	}
	if got := m.Rate(); got != 0 {
		t.Errorf("rate after restart = %v, want 0", got)
	}

	m.Update()
	if m.values[0] != 0 {
		t.Errorf("first value after restart = %v, want 0", m.values[0])
	}
}

func TestGaugeFunc(t *testing.T) {
	m, src := newManual(t, time.Second)
	for range 11 {
		m.Update()
		src.Advance(100 * time.Millisecond)
	}

	g := m.GaugeFunc(prometheus.GaugeOpts{Name: "pacer_test_rate", Help: "test"})
	if got := testutil.ToFloat64(g); math.Abs(got-10) > 1e-9 {
		t.Errorf("gauge = %v, want 10", got)
	}

	reg := prometheus.NewRegistry()
	opts := prometheus.GaugeOpts{Name: "pacer_test_rate", Help: "test"}
	if err := m.Register(reg, opts); err != nil {
		t.Fatal(err)
	}
	if err := m.Register(reg, opts); err == nil {
		t.Error("exp duplicate registration to fail")
	}
}

func TestWithSource_Nil(t *testing.T) {
	m, err := New(time.Second, WithSource(nil))
	if err != nil {
		t.Fatal(err)
	}
	if m.src != clock.System {
		t.Errorf("src = %T, want clock.System", m.src)
	}
}
