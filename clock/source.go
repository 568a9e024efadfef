package clock

import "time"

// Source supplies monotonic time and the two wait primitives a [Clock]
// needs: a goroutine sleep and a timer channel that can be raced
// against a context.
type Source interface {
	Now() time.Time
	Sleep(d time.Duration)
	After(d time.Duration) <-chan time.Time
}

// System is the [Source] backed by the runtime's monotonic clock.
var System Source = systemSource{}

type systemSource struct{}

func (systemSource) Now() time.Time                         { return time.Now() }
func (systemSource) Sleep(d time.Duration)                  { time.Sleep(d) }
func (systemSource) After(d time.Duration) <-chan time.Time { return time.After(d) }
