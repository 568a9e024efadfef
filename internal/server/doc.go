// Package server runs an HTTP server until its context ends, then shuts
// it down gracefully.
//
// Basic usage:
//
//	srv := server.New(mux, server.WithHost(":3000"))
//	if err := srv.Run(ctx); err != nil {
//		log.Fatal(err)
//	}
//
// [NewMetrics] builds a server exposing a Prometheus registry, which is
// how the pacer CLI publishes limiter and meter metrics.
package server
