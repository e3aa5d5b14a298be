// Package testutils provides simplified testing utilities and helper functions
package testutils

import (
	"bytes"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// DefaultWait is how long helpers wait for asynchronous conditions
const DefaultWait = 5 * time.Second

// DiscardLogger returns a logger that drops every record
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// BufferLogger returns a logger writing text records into a buffer that is
// safe to read while the logger is in use.
func BufferLogger() (*slog.Logger, *SyncBuffer) {
	buf := &SyncBuffer{}
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})), buf
}

// SyncBuffer is a mutex-guarded bytes.Buffer
type SyncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *SyncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *SyncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// WaitClosed fails the test if ch is not closed within DefaultWait
func WaitClosed(t testing.TB, ch <-chan struct{}, msgAndArgs ...interface{}) bool {
	t.Helper()
	select {
	case <-ch:
		return true
	case <-time.After(DefaultWait):
		return assert.Fail(t, "channel was not closed in time", msgAndArgs...)
	}
}

// AssertEventually waits for condition to be true
func AssertEventually(t testing.TB, condition func() bool, msgAndArgs ...interface{}) bool {
	t.Helper()
	return assert.Eventually(t, condition, DefaultWait, time.Millisecond, msgAndArgs...)
}
