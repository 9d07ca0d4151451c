// Package ratelimit provides a token-bucket limited reader, used to cap
// copy throughput during relocations so a housekeeping run does not
// saturate a shared disk or network mount.
package ratelimit

import (
	"context"
	"io"
	"sync"
	"time"
)

const minBucketSize = 65536

// Limiter controls the rate of data transfer. A single limiter may be
// shared by several readers; the budget is global across them.
type Limiter struct {
	bytesPerSecond int64
	bucketSize     int64

	mu         sync.Mutex
	tokens     int64
	lastRefill time.Time
}

// NewLimiter creates a limiter for the given bytes-per-second cap.
// A non-positive cap returns nil, meaning no limiting.
func NewLimiter(bytesPerSecond int64) *Limiter {
	if bytesPerSecond <= 0 {
		return nil
	}

	bucketSize := bytesPerSecond
	if bucketSize < minBucketSize {
		bucketSize = minBucketSize
	}

	return &Limiter{
		bytesPerSecond: bytesPerSecond,
		bucketSize:     bucketSize,
		tokens:         bucketSize,
		lastRefill:     time.Now(),
	}
}

// take blocks until n tokens are available, then consumes them
func (l *Limiter) take(n int64) {
	for {
		l.mu.Lock()
		l.refill()
		if l.tokens >= n {
			l.tokens -= n
			l.mu.Unlock()
			return
		}

		deficit := n - l.tokens
		wait := time.Duration(float64(deficit) / float64(l.bytesPerSecond) * float64(time.Second))
		if wait < time.Millisecond {
			wait = time.Millisecond
		}
		l.mu.Unlock()

		time.Sleep(wait)
	}
}

// refill adds tokens for the elapsed time; caller holds the lock
func (l *Limiter) refill() {
	now := time.Now()
	elapsed := now.Sub(l.lastRefill)

	added := int64(float64(elapsed) / float64(time.Second) * float64(l.bytesPerSecond))
	if added > 0 {
		l.tokens += added
		if l.tokens > l.bucketSize {
			l.tokens = l.bucketSize
		}
		l.lastRefill = now
	}
}

// reader wraps an io.Reader with the limiter
type reader struct {
	inner   io.Reader
	limiter *Limiter
	ctx     context.Context
}

// NewReader wraps r with rate limiting. A nil limiter returns r unchanged.
func NewReader(ctx context.Context, r io.Reader, limiter *Limiter) io.Reader {
	if limiter == nil {
		return r
	}
	return &reader{inner: r, limiter: limiter, ctx: ctx}
}

// Read implements io.Reader, waiting for bucket tokens before each read
func (r *reader) Read(p []byte) (int, error) {
	select {
	case <-r.ctx.Done():
		return 0, r.ctx.Err()
	default:
	}

	n := int64(len(p))
	if n > r.limiter.bucketSize {
		n = r.limiter.bucketSize
	}
	r.limiter.take(n)

	return r.inner.Read(p[:n])
}

// readCloser pairs the limited reader with the original closer
type readCloser struct {
	reader
	closer io.Closer
}

// NewReadCloser wraps rc with rate limiting. A nil limiter returns rc unchanged.
func NewReadCloser(ctx context.Context, rc io.ReadCloser, limiter *Limiter) io.ReadCloser {
	if limiter == nil {
		return rc
	}
	return &readCloser{
		reader: reader{inner: rc, limiter: limiter, ctx: ctx},
		closer: rc,
	}
}

// Close implements io.Closer
func (rc *readCloser) Close() error {
	return rc.closer.Close()
}
