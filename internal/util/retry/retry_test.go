package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestDo_Success(t *testing.T) {
	t.Parallel()
	attempts := 0
	operation := func() error {
		attempts++
		return nil
	}

	err := Do(context.Background(), operation)

	if err != nil {
		t.Errorf("Expected no error, got: %v", err)
	}
	if attempts != 1 {
		t.Errorf("Expected 1 attempt, got: %d", attempts)
	}
}

func TestDo_SuccessAfterRetries(t *testing.T) {
	t.Parallel()
	attempts := 0
	operation := func() error {
		attempts++
		if attempts < 3 {
			return errors.New("temporary error")
		}
		return nil
	}

	err := Do(context.Background(), operation, WithInitialDelay(10*time.Millisecond))

	if err != nil {
		t.Errorf("Expected no error after retries, got: %v", err)
	}
	if attempts != 3 {
		t.Errorf("Expected 3 attempts, got: %d", attempts)
	}
}

func TestDo_MaxRetries(t *testing.T) {
	t.Parallel()
	attempts := 0
	operation := func() error {
		attempts++
		return errors.New("persistent error")
	}

	maxRetries := 3
	err := Do(context.Background(), operation,
		WithMaxRetries(maxRetries),
		WithInitialDelay(10*time.Millisecond))

	if err == nil {
		t.Error("Expected error after max retries, got nil")
	}
	// MaxRetries is the number of retries after the first attempt
	// So total attempts = maxRetries + 1
	expectedAttempts := maxRetries + 1
	if attempts != expectedAttempts {
		t.Errorf("Expected %d attempts (1 + %d retries), got: %d", expectedAttempts, maxRetries, attempts)
	}
}

func TestDo_FatalStopsRetrying(t *testing.T) {
	t.Parallel()
	attempts := 0
	operation := func() error {
		attempts++
		return Fatal(errors.New("no such stack"))
	}

	err := Do(context.Background(), operation,
		WithMaxRetries(5),
		WithInitialDelay(10*time.Millisecond))

	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if attempts != 1 {
		t.Errorf("Expected 1 attempt for a fatal error, got: %d", attempts)
	}
}

func TestDo_ContextCancellation(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	operation := func() error {
		attempts++
		if attempts == 1 {
			cancel()
		}
		return errors.New("keep retrying")
	}

	err := Do(ctx, operation, WithInitialDelay(10*time.Millisecond))

	if err == nil {
		t.Fatal("Expected error after cancellation, got nil")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled in chain, got: %v", err)
	}
}

func TestDo_MaxDelayCapsBackoff(t *testing.T) {
	t.Parallel()
	attempts := 0
	start := time.Now()
	operation := func() error {
		attempts++
		return errors.New("err")
	}

	_ = Do(context.Background(), operation,
		WithMaxRetries(3),
		WithInitialDelay(time.Millisecond),
		WithMaxDelay(2*time.Millisecond))

	// 3 waits of at most 2ms each; generous bound for slow CI.
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("backoff not capped, took %s", elapsed)
	}
	if attempts != 4 {
		t.Errorf("Expected 4 attempts, got: %d", attempts)
	}
}

func TestIsFatal(t *testing.T) {
	t.Parallel()
	if IsFatal(errors.New("plain")) {
		t.Error("plain error reported fatal")
	}
	if !IsFatal(Fatal(errors.New("x"))) {
		t.Error("Fatal() error not reported fatal")
	}
	wrapped := errors.Join(errors.New("ctx"), Fatal(errors.New("inner")))
	if !IsFatal(wrapped) {
		t.Error("wrapped fatal error not detected")
	}
	if Fatal(nil) != nil {
		t.Error("Fatal(nil) should be nil")
	}
}
