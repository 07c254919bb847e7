package indexer

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// retryAfterBackOff honors a server supplied Retry-After delay for the next
// attempt and otherwise defers to the wrapped policy. The wrapped policy still
// decides when to stop.
type retryAfterBackOff struct {
	backoff.BackOff
	retryAfter time.Duration
	maxDelay   time.Duration
}

func newRetryAfterBackOff(b backoff.BackOff, maxDelay time.Duration) *retryAfterBackOff {
	return &retryAfterBackOff{
		BackOff:  b,
		maxDelay: maxDelay,
	}
}

func (r *retryAfterBackOff) setRetryAfter(d time.Duration) {
	if r.maxDelay > 0 && d > r.maxDelay {
		d = r.maxDelay
	}
	r.retryAfter = d
}

func (r *retryAfterBackOff) NextBackOff() time.Duration {
	next := r.BackOff.NextBackOff()
	if next == backoff.Stop {
		return backoff.Stop
	}
	if r.retryAfter > 0 {
		d := r.retryAfter
		r.retryAfter = 0
		return d
	}
	return next
}

// parseRetryAfter reads a Retry-After header given either in seconds or as an
// HTTP date. Missing or unparseable values yield zero.
func parseRetryAfter(value string, now time.Time) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds < 0 {
			return 0
		}
		return time.Duration(seconds) * time.Second
	}
	if at, err := http.ParseTime(value); err == nil {
		if d := at.Sub(now); d > 0 {
			return d
		}
	}
	return 0
}
