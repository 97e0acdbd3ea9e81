// Package monitoring exposes Prometheus metrics for the desktop runtime.
package monitoring
