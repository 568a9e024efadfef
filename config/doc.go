// Package config loads pacer configuration from YAML.
//
// A file names the clocks, limiters and meters a program uses, plus its
// logging and metrics settings:
//
//	logging:
//	  level: debug
//	  format: json
//	metrics:
//	  enabled: true
//	  address: ":9090"
//	clocks:
//	  poll: {interval: 250ms}
//	limiters:
//	  api: {limit: 10, interval: 1s, wait: true}
//	meters:
//	  requests: {window: 1m}
//
// [Load] applies defaults and validates; [LoadWithEnvOverrides] also
// applies PACER_* environment variables. Validation failures are
// reported as [FieldErrors].
package config
