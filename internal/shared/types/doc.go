// Package types defines the core data model shared across the backend:
// terminal accounts, virtual filesystem entries, and the structured
// replies returned to the presentation layer.
package types
