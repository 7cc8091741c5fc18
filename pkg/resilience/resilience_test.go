// Copyright 2026 © The Loom Authors
// SPDX-License-Identifier: Apache-2.0

package resilience

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/loomworks/loom/pkg/errors"
)

func TestRetrySucceedsAfterTransientFailures(t *testing.T) {
	attempts := 0
	rc := ImmediateRetryConfig(3)

	err := rc.Do(context.Background(), func() error {
		attempts++
		if attempts < 3 {
			return errors.New(errors.CodeBackend, "runtime busy", nil)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestRetryStopsOnNonRecoverable(t *testing.T) {
	attempts := 0
	rc := ImmediateRetryConfig(5)

	err := rc.Do(context.Background(), func() error {
		attempts++
		return errors.New(errors.CodeConfiguration, "bad template", nil)
	})
	if !errors.IsCode(err, errors.CodeConfiguration) {
		t.Fatalf("err = %v", err)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, non-recoverable errors must not retry", attempts)
	}
}

func TestRetryPlainErrorsNotRetriedByDefault(t *testing.T) {
	attempts := 0
	rc := ImmediateRetryConfig(4)

	rc.Do(context.Background(), func() error {
		attempts++
		return stderrors.New("plain")
	})
	if attempts != 1 {
		t.Errorf("attempts = %d, plain errors have no recoverable flag", attempts)
	}
}

func TestRetryExhaustsAttempts(t *testing.T) {
	attempts := 0
	rc := ImmediateRetryConfig(3)

	err := rc.Do(context.Background(), func() error {
		attempts++
		return errors.New(errors.CodeBackend, "still down", nil)
	})
	if !errors.IsCode(err, errors.CodeBackend) {
		t.Fatalf("err = %v", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestRetryCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rc := DefaultRetryConfig().WithInitialDelay(time.Hour)
	err := rc.Do(ctx, func() error {
		return errors.New(errors.CodeBackend, "down", nil)
	})
	if !errors.IsCode(err, errors.CodeContextLost) {
		t.Errorf("err = %v", err)
	}
}

func TestDoWithResult(t *testing.T) {
	attempts := 0
	out, err := DoWithResult(context.Background(), ImmediateRetryConfig(2), func() (string, error) {
		attempts++
		if attempts == 1 {
			return "", errors.New(errors.CodeBackend, "flaky", nil)
		}
		return "value", nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if out != "value" {
		t.Errorf("out = %q", out)
	}
}

func TestBackoffGrowsAndCaps(t *testing.T) {
	rc := RetryConfig{
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     300 * time.Millisecond,
		Multiplier:   2.0,
	}
	if d := calculateBackoff(1, rc); d != 200*time.Millisecond {
		t.Errorf("attempt 1 delay = %v", d)
	}
	if d := calculateBackoff(4, rc); d != 300*time.Millisecond {
		t.Errorf("attempt 4 delay = %v, want cap", d)
	}
}

func TestWithTimeoutDeadlineExceeded(t *testing.T) {
	err := WithTimeout(context.Background(), 10*time.Millisecond, func(ctx context.Context) error {
		select {
		case <-ctx.Done():
		case <-time.After(time.Second):
		}
		return nil
	})
	if !errors.IsCode(err, errors.CodeTimeout) {
		t.Fatalf("err = %v", err)
	}
	if !errors.IsRecoverable(err) {
		t.Error("timeout errors should be recoverable")
	}
}

func TestWithTimeoutResultCompletes(t *testing.T) {
	out, err := WithTimeoutResult(context.Background(), time.Second, func(context.Context) (int, error) {
		return 42, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if out != 42 {
		t.Errorf("out = %d", out)
	}
}

func TestWithTimeoutZeroDurationDisabled(t *testing.T) {
	called := false
	if err := WithTimeout(context.Background(), 0, func(context.Context) error {
		called = true
		return nil
	}); err != nil {
		t.Fatal(err)
	}
	if !called {
		t.Error("fn should run inline when no timeout is set")
	}
}
