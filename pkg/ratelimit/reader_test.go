package ratelimit

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"
)

// TestNewLimiter tests limiter construction
func TestNewLimiter(t *testing.T) {
	t.Run("ValidCap", func(t *testing.T) {
		limiter := NewLimiter(1024 * 1024)
		if limiter == nil {
			t.Fatal("NewLimiter() returned nil for valid cap")
		}
		if limiter.bytesPerSecond != 1024*1024 {
			t.Errorf("bytesPerSecond = %d, want %d", limiter.bytesPerSecond, 1024*1024)
		}
	})

	t.Run("ZeroCapMeansUnlimited", func(t *testing.T) {
		if NewLimiter(0) != nil {
			t.Error("NewLimiter(0) should return nil")
		}
	})

	t.Run("NegativeCapMeansUnlimited", func(t *testing.T) {
		if NewLimiter(-1) != nil {
			t.Error("NewLimiter(-1) should return nil")
		}
	})

	t.Run("SmallCapGetsMinimumBucket", func(t *testing.T) {
		limiter := NewLimiter(1000)
		if limiter.bucketSize < minBucketSize {
			t.Errorf("bucketSize = %d, want at least %d", limiter.bucketSize, minBucketSize)
		}
	})
}

// TestNewReaderPassthrough tests that a nil limiter disables wrapping
func TestNewReaderPassthrough(t *testing.T) {
	src := strings.NewReader("data")
	r := NewReader(context.Background(), src, nil)
	if r != io.Reader(src) {
		t.Error("NewReader(nil limiter) should return the original reader")
	}
}

// TestReaderDeliversAllData tests that limiting preserves content
func TestReaderDeliversAllData(t *testing.T) {
	content := bytes.Repeat([]byte("x"), 128*1024)
	limiter := NewLimiter(10 * 1024 * 1024)
	r := NewReader(context.Background(), bytes.NewReader(content), limiter)

	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if !bytes.Equal(got, content) {
		t.Errorf("read %d bytes, want %d", len(got), len(content))
	}
}

// TestReaderThrottles tests that a tight cap slows transfer down
func TestReaderThrottles(t *testing.T) {
	// 128KB at 64KB/s should take about a second after the initial
	// full bucket is spent.
	content := bytes.Repeat([]byte("x"), 128*1024)
	limiter := NewLimiter(64 * 1024)
	r := NewReader(context.Background(), bytes.NewReader(content), limiter)

	start := time.Now()
	if _, err := io.ReadAll(r); err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if elapsed := time.Since(start); elapsed < 500*time.Millisecond {
		t.Errorf("transfer took %v, expected throttling to at least 500ms", elapsed)
	}
}

// TestReaderContextCancellation tests cancellation mid-read
func TestReaderContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	limiter := NewLimiter(1024)
	r := NewReader(ctx, strings.NewReader("data"), limiter)

	if _, err := r.Read(make([]byte, 4)); err == nil {
		t.Error("Read() should fail on cancelled context")
	}
}

// TestReadCloserCloses tests that Close reaches the wrapped closer
func TestReadCloserCloses(t *testing.T) {
	rc := &trackingCloser{Reader: strings.NewReader("data")}
	wrapped := NewReadCloser(context.Background(), rc, NewLimiter(1024*1024))

	if err := wrapped.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !rc.closed {
		t.Error("Close() did not reach the wrapped closer")
	}
}

type trackingCloser struct {
	io.Reader
	closed bool
}

func (c *trackingCloser) Close() error {
	c.closed = true
	return nil
}
