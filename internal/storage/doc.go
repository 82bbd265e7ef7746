// Package storage reaches the backing record store that owns all durable
// terminal state: accounts, virtual filesystem entries, usage counters,
// and the activity log.
//
// The production implementation speaks PostgREST over HTTP; retries and
// timeouts live in the transport, not in callers. The in-memory
// implementation backs tests and local runs.
package storage
