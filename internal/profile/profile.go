// Package profile times a paced run and compares the achieved rate
// against its target.
package profile

import (
	"time"

	"github.com/adamwoolhether/pacer/clock"
)

// Profiler measures how long a fixed number of iterations took.
type Profiler struct {
	Iterations int
	TargetRate float64

	src   clock.Source
	start time.Time
	end   time.Time
}

// New returns a Profiler for iterations at targetRate per second. A nil
// src uses [clock.System].
func New(iterations int, targetRate float64, src clock.Source) *Profiler {
	if src == nil {
		src = clock.System
	}

	return &Profiler{
		Iterations: iterations,
		TargetRate: targetRate,
		src:        src,
	}
}

// Start marks the beginning of the measured run.
func (p *Profiler) Start() {
	p.start = p.src.Now()
	p.end = time.Time{}
}

// Stop marks the end of the measured run.
func (p *Profiler) Stop() {
	p.end = p.src.Now()
}

// Time runs fn between Start and Stop.
func (p *Profiler) Time(fn func() error) error {
	p.Start()
	defer p.Stop()

	return fn()
}

// Elapsed returns the measured duration.
func (p *Profiler) Elapsed() time.Duration {
	return p.end.Sub(p.start)
}

// MeasuredRate returns iterations per second over the measured run, or
// zero for an empty run.
func (p *Profiler) MeasuredRate() float64 {
	elapsed := p.Elapsed().Seconds()
	if elapsed <= 0 {
		return 0
	}

	return float64(p.Iterations) / elapsed
}

// Error returns the relative shortfall of the measured rate against the
// target: positive when running slow, negative when running fast.
func (p *Profiler) Error() float64 {
	if p.TargetRate == 0 {
		return 0
	}

	return 1 - p.MeasuredRate()/p.TargetRate
}
