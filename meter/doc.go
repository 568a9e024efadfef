// Package meter measures throughput over a sliding window.
//
// A [Meter] is fed samples as work happens and reports the rate of
// change across the last window of time:
//
//	m, _ := meter.New(time.Second)
//	for item := range items {
//		process(item)
//		m.Update()
//	}
//	fmt.Printf("%.1f items/s\n", m.Rate())
//
// [Meter.UpdateValue] records running totals instead of counting calls,
// e.g. bytes transferred. Rates can be exported to Prometheus with
// [Meter.GaugeFunc].
package meter
