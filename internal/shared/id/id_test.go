package id

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewSessionID(t *testing.T) {
	first := NewSessionID()
	assert.True(t, strings.HasPrefix(first.String(), "sess_"))
	// Prefix plus a 26-character ULID.
	assert.Len(t, first.String(), len("sess_")+26)
}

func TestSessionIDsUnique(t *testing.T) {
	seen := make(map[SessionID]bool)
	for i := 0; i < 1000; i++ {
		id := NewSessionID()
		assert.False(t, seen[id])
		seen[id] = true
	}
}
