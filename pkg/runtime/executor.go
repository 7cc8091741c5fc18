// Copyright 2026 © The Loom Authors
// SPDX-License-Identifier: Apache-2.0

// Package runtime provides the instrumented execution layer: the
// Executor (timing, bounded history, bounded retry) and the Session
// (chain plus memory pairing).
package runtime

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/loomworks/loom/pkg/chain"
	"github.com/loomworks/loom/pkg/errors"
	"github.com/loomworks/loom/pkg/resilience"
	"github.com/loomworks/loom/pkg/telemetry"
)

const defaultHistorySize = 100

// Record captures one executed invocation for inspection.
type Record struct {
	ID         string
	ChainName  string
	InputText  string
	OutputText string
	Error      string
	StartedAt  time.Time
	DurationMs int64
	Attempts   int
}

// Executor wraps chain invocations with timing, a bounded execution
// history and an optional bounded retry policy for transient backend
// failures. Retries reuse the same input with no delay between
// attempts.
type Executor struct {
	mu          sync.Mutex
	history     []Record
	historySize int
	maxRetries  int
	logger      *slog.Logger
	metrics     *telemetry.ChainMetrics
	tracer      trace.Tracer
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithHistorySize bounds the execution history ring. Zero or negative
// disables history retention.
func WithHistorySize(n int) ExecutorOption {
	return func(e *Executor) {
		e.historySize = n
	}
}

// WithMaxRetries sets how many additional attempts are made after a
// transient failure. Non-transient failures never retry.
func WithMaxRetries(n int) ExecutorOption {
	return func(e *Executor) {
		if n >= 0 {
			e.maxRetries = n
		}
	}
}

// WithLogger sets the executor's logger.
func WithLogger(logger *slog.Logger) ExecutorOption {
	return func(e *Executor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithMetrics attaches a metrics recorder.
func WithMetrics(m *telemetry.ChainMetrics) ExecutorOption {
	return func(e *Executor) {
		e.metrics = m
	}
}

// NewExecutor creates an executor with no retries and the default
// history size.
func NewExecutor(opts ...ExecutorOption) *Executor {
	e := &Executor{
		historySize: defaultHistorySize,
		logger:      slog.Default(),
		tracer:      otel.Tracer("loom/runtime"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute invokes c with in, retrying transient failures up to the
// configured bound. Returns the first successful output or the last
// failure after exhausting attempts.
func (e *Executor) Execute(ctx context.Context, c chain.Chain, in chain.Input) (chain.Output, error) {
	if c == nil {
		return chain.Output{}, errors.New(errors.CodeConfiguration, "executor requires a chain", nil)
	}

	executionID := uuid.NewString()
	ctx, span := e.tracer.Start(ctx, "executor.execute",
		trace.WithAttributes(telemetry.ChainAttributes(c.Name(), "")...),
		trace.WithAttributes(telemetry.ExecutionAttributes(executionID, 0, e.maxRetries)...),
	)
	defer span.End()

	start := time.Now()
	attempts := 0
	out, err := resilience.DoWithResult(ctx, resilience.ImmediateRetryConfig(e.maxRetries+1),
		func() (chain.Output, error) {
			attempts++
			if attempts > 1 {
				e.metrics.RecordRetry(ctx, c.Name())
				e.logger.WarnContext(ctx, "executor.retry",
					slog.String("chain", c.Name()),
					slog.String("execution_id", executionID),
					slog.Int("attempt", attempts),
				)
			}
			return c.Invoke(ctx, in)
		})
	durationMs := time.Since(start).Milliseconds()

	rec := Record{
		ID:        executionID,
		ChainName: c.Name(),
		InputText: in.Text,
		StartedAt: start,
		Attempts:  attempts,
	}
	rec.DurationMs = durationMs
	if err != nil {
		rec.Error = err.Error()
		span.RecordError(err)
		e.metrics.RecordFailure(ctx, c.Name(), err)
		e.logger.ErrorContext(ctx, "executor.execute.failed",
			slog.String("chain", c.Name()),
			slog.String("execution_id", executionID),
			slog.Int("attempts", attempts),
			slog.Int64("duration_ms", durationMs),
			slog.String("error", err.Error()),
		)
	} else {
		rec.OutputText = out.Text
		e.metrics.RecordInvocation(ctx, c.Name(), float64(durationMs))
		e.logger.InfoContext(ctx, "executor.execute.ok",
			slog.String("chain", c.Name()),
			slog.String("execution_id", executionID),
			slog.Int("attempts", attempts),
			slog.Int64("duration_ms", durationMs),
		)
	}
	e.record(rec)

	return out, err
}

func (e *Executor) record(rec Record) {
	if e.historySize <= 0 {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.history = append(e.history, rec)
	if len(e.history) > e.historySize {
		e.history = e.history[len(e.history)-e.historySize:]
	}
}

// History returns a copy of the retained execution records, oldest
// first.
func (e *Executor) History() []Record {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Record, len(e.history))
	copy(out, e.history)
	return out
}
