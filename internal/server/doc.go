// Package server assembles the terminal service: store selection,
// session manager, HTTP and WebSocket surfaces, and middleware.
package server
