package netutil

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	tele "gopkg.in/telebot.v4"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestShouldRetry(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"cancelled", context.Canceled, false},
		{"timeout", fmt.Errorf("post: %w", timeoutErr{}), true},
		{"dial", &net.OpError{Op: "dial", Err: errors.New("refused")}, true},
		{"reset", fmt.Errorf("read: %w", syscall.ECONNRESET), true},
		{"flood", tele.FloodError{RetryAfter: 3}, true},
		{"5xx", errors.New("telegram: Bad Gateway (502)"), true},
		{"4xx", errors.New("telegram: Bad Request: message is not modified (400)"), false},
		{"plain", errors.New("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShouldRetry(tt.err))
		})
	}
}

func TestRetryAfterAndClassify(t *testing.T) {
	d, ok := RetryAfter(tele.FloodError{RetryAfter: 5})
	assert.True(t, ok)
	assert.Equal(t, 5*time.Second, d)

	assert.Equal(t, "flood", Classify(tele.FloodError{RetryAfter: 1}))
	assert.Equal(t, "timeout", Classify(context.DeadlineExceeded))
	assert.Equal(t, "dial", Classify(&net.OpError{Op: "dial", Err: errors.New("x")}))
	assert.Equal(t, "http_4xx", Classify(errors.New("telegram: Forbidden (403)")))
	assert.Equal(t, "unknown", Classify(errors.New("boom")))
	assert.Equal(t, "", Classify(nil))
}

func TestBackoff(t *testing.T) {
	assert.Equal(t, time.Duration(0), Backoff(0, time.Second, 0))
	assert.Equal(t, time.Second, Backoff(1, time.Second, 10*time.Second))
	assert.Equal(t, 4*time.Second, Backoff(3, time.Second, 10*time.Second))
	assert.Equal(t, 10*time.Second, Backoff(6, time.Second, 10*time.Second))
	assert.Equal(t, 8*time.Second, Backoff(4, time.Second, 0))
}

func TestRedact(t *testing.T) {
	err := errors.New(`Post "https://api.telegram.org/bot123456:AA-bb_cc/sendMessage": EOF`)
	assert.Equal(t, `Post "https://api.telegram.org/bot<redacted>/sendMessage": EOF`, Redact(err))
}
