// Package monitoring exposes Prometheus metrics for the terminal
// service: HTTP traffic, command execution, and session activity.
package monitoring
