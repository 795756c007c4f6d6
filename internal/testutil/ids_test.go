package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/srcid/internal/session"
)

var _ session.IDGenerator = (*FixedSessionGenerator)(nil)

func TestFixedSessionGenerator_ReturnsSameID(t *testing.T) {
	gen := NewFixedSessionGenerator("test-session-123")

	assert.Equal(t, "test-session-123", gen.Generate())
	assert.Equal(t, "test-session-123", gen.Generate())
	assert.Equal(t, "test-session-123", gen.Generate())
}

func TestFixedSessionGenerator_EmptyIDDefault(t *testing.T) {
	gen := NewFixedSessionGenerator("")
	assert.Equal(t, "test-session-default", gen.Generate())
}

func TestFixedSessionGenerator_ThreadSafe(t *testing.T) {
	gen := NewFixedSessionGenerator("thread-safe-id")

	done := make(chan bool)
	for i := 0; i < 10; i++ {
		go func() {
			for j := 0; j < 100; j++ {
				assert.Equal(t, "thread-safe-id", gen.Generate())
			}
			done <- true
		}()
	}

	for i := 0; i < 10; i++ {
		<-done
	}
}
