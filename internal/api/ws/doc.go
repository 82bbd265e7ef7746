// Package ws streams an interactive terminal over a WebSocket. Each
// inbound frame is one message (enter the terminal, a line of input, or
// a ping) and each outbound frame carries one structured reply.
package ws
