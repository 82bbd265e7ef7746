// Package session owns per-user terminal state: the two-step account
// provisioning flow (username, then password) and active sessions.
//
// Session state lives in process memory inside the Manager and is lost
// on restart; durable account and filesystem state is unaffected, users
// simply re-enter the terminal. One session per user, created on enter,
// evicted on exit.
package session
