package meter

import "github.com/prometheus/client_golang/prometheus"

// GaugeFunc exposes the meter's current rate as a Prometheus gauge that
// is evaluated on every scrape.
func (m *Meter) GaugeFunc(opts prometheus.GaugeOpts) prometheus.GaugeFunc {
	return prometheus.NewGaugeFunc(opts, m.Rate)
}

// Register registers a rate gauge for the meter on reg, falling back to
// the default registerer when reg is nil.
func (m *Meter) Register(reg prometheus.Registerer, opts prometheus.GaugeOpts) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	return reg.Register(m.GaugeFunc(opts))
}
