// Package vfs implements the virtual filesystem shell: a quote-aware
// tokenizer, path resolution and normalization, the octal permission
// codec, and the command dispatcher for the POSIX-like command set
// (pwd, cd, ls, mkdir, touch, cat, echo, rm, cp, mv, chmod, whoami,
// clear, help).
//
// Filesystem state lives in a backing record store reached through the
// Store interface; nothing is cached between commands. User-level
// failures (missing paths, bad modes, wrong entry types) are returned
// as bash-style output text, never as Go errors. A non-nil error from
// Execute always means the backing store failed.
package vfs
