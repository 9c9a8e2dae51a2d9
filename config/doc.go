// Package config loads the failover engine's configuration from defaults,
// an optional YAML file, OBER_* environment variables and command-line
// flags, in increasing order of precedence, and validates the result.
//
// A minimal failover.yaml:
//
//	environment: prod
//	health:
//	  port: 8404
//	  interval: 1s
//	vips:
//	  - 10.0.100.1/32
//	cluster:
//	  node: lb01
//	  roster: ["lb[01-03]"]
package config
