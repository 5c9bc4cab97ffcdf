package registry

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"
)

// Backoff bounds for retried registry calls.
const (
	InitialBackoff = 2 * time.Second
	MaxBackoff     = 30 * time.Second
)

// SleepWithContext blocks for the given duration, returning early if the
// context is cancelled.
func SleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// statusError is a non-2xx registry response.
type statusError struct {
	code       int
	retryAfter time.Duration
}

func (e *statusError) Error() string {
	return "registry returned " + strconv.Itoa(e.code) + " " + http.StatusText(e.code)
}

// IsRetriable reports whether err is a rate limit, gateway failure or timeout.
func IsRetriable(err error) bool {
	if err == nil {
		return false
	}
	var status *statusError
	if errors.As(err, &status) {
		switch status.code {
		case http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return true
		}
		return false
	}
	return isTimeout(err)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func backoffFor(attempt int, base time.Duration, err error) time.Duration {
	var status *statusError
	if errors.As(err, &status) && status.retryAfter > 0 {
		return min(status.retryAfter, MaxBackoff)
	}
	if base <= 0 {
		base = InitialBackoff
	}
	return min(base*time.Duration(1<<uint(attempt-1)), MaxBackoff)
}

func parseRetryAfter(value string) time.Duration {
	secs, err := strconv.Atoi(value)
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
