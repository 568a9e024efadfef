// Pacer exercises interval clocks, call limiters and rate meters from
// the command line.
//
// Usage:
//
//	# Pace a loop at 500 iterations per second for 3 seconds
//	pacer bench --rate 500 --duration 3s --mode await
//
//	# Same, exposing the trailing rate at :9090/metrics
//	pacer bench --rate 500 --duration 30s --metrics-addr :9090
//
//	# Push a burst of calls through every configured limiter
//	pacer limits --config pacer.yaml
//
//	# Show version information
//	pacer version
package main

func main() {
	Execute()
}
